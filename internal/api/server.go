package api

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// MessageHandler processes one inbound message and returns the reply text.
type MessageHandler interface {
	HandleMessage(ctx context.Context, from, body string) (string, error)
}

// Server exposes the messaging webhook and the operational endpoints.
type Server struct {
	engine MessageHandler
	logger *logrus.Logger
	router chi.Router
}

// NewServer creates a Server, registers all routes, and returns it.
func NewServer(engine MessageHandler, logger *logrus.Logger) *Server {
	s := &Server{engine: engine, logger: logger, router: chi.NewRouter()}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)

	s.router.Get("/", s.handleStatus)
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Post("/webhook", s.handleWebhook)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Family Tree Bot API is running"})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleWebhook receives one inbound message as Twilio form data (From,
// Body) and answers with a TwiML messaging response.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	from := r.PostFormValue("From")
	body := r.PostFormValue("Body")
	if from == "" {
		http.Error(w, "From is required", http.StatusBadRequest)
		return
	}

	messagesTotal.WithLabelValues("webhook").Inc()
	start := time.Now()

	reply, err := s.engine.HandleMessage(r.Context(), from, body)
	messageDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		messageErrorsTotal.WithLabelValues("webhook").Inc()
		s.logger.WithError(err).WithField("from", from).Error("Webhook message failed")
		reply = "An error occurred. Please try again or type 'reset'."
	}

	s.respondTwiML(w, reply)
}

func (s *Server) respondTwiML(w http.ResponseWriter, segments ...string) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte(xml.Header)); err != nil {
		s.logger.WithError(err).Error("Failed to write TwiML header")
		return
	}
	if err := xml.NewEncoder(w).Encode(newTwiML(segments...)); err != nil {
		s.logger.WithError(err).Error("Failed to encode TwiML response")
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("Failed to encode JSON response")
		}
	}
}
