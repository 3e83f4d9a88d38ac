package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "famtreebot_messages_total",
		Help: "Inbound messages handled, by transport.",
	}, []string{"transport"})

	messageErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "famtreebot_message_errors_total",
		Help: "Messages that failed with an infrastructure error, by transport.",
	}, []string{"transport"})

	messageDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "famtreebot_message_duration_seconds",
		Help:    "Time spent handling one inbound message.",
		Buckets: prometheus.DefBuckets,
	})
)
