// Package chatbot implements the conversation state machine. Every inbound
// message is interpreted against the sender's persisted session: the current
// state picks the handler, the handler validates the input, mutates the flow
// draft and the family graph, and decides the next state. The updated session
// is saved only after the handler succeeds, so an unexpected failure leaves
// the conversation exactly where it was.
package chatbot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"famtreebot/internal/models"
	"famtreebot/internal/service"
	"famtreebot/internal/session"

	"github.com/sirupsen/logrus"
)

const genericErrorReply = "An error occurred. Please try again or type 'reset'."

// conversation carries the per-message context through a handler.
type conversation struct {
	user *models.User
	sess *session.Session
	body string
}

type handlerFunc func(ctx context.Context, c *conversation) (string, error)

// Engine drives the conversation protocol.
type Engine struct {
	family   *service.FamilyService
	access   *service.AccessService
	locks    *service.LockManager
	sessions session.Store
	logger   *logrus.Logger
	handlers map[session.State]handlerFunc

	// mu guards userLocks. Each user's messages are processed one at a
	// time so the session read-modify-write cannot interleave when
	// duplicate or rapid messages arrive.
	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// NewEngine creates the engine and registers a handler for every state.
func NewEngine(
	family *service.FamilyService,
	access *service.AccessService,
	locks *service.LockManager,
	sessions session.Store,
	logger *logrus.Logger,
) *Engine {
	e := &Engine{
		family:    family,
		access:    access,
		locks:     locks,
		sessions:  sessions,
		logger:    logger,
		userLocks: make(map[string]*sync.Mutex),
	}

	e.handlers = map[session.State]handlerFunc{
		session.StateAddMemberName:         e.handleAddMemberName,
		session.StateAddMemberDOB:          e.handleAddMemberDOB,
		session.StateAddMemberGender:       e.handleAddMemberGender,
		session.StateAddMemberPhone:        e.handleAddMemberPhone,
		session.StateAddMemberRelation:     e.handleAddMemberRelation,
		session.StateAddMemberRelationType: e.handleAddMemberRelationType,

		session.StateEditSelectMember: e.handleEditSelectMember,
		session.StateEditSelectField:  e.handleEditSelectField,
		session.StateEditEnterValue:   e.handleEditEnterValue,

		session.StateShareEnterPhone:    e.handleShareEnterPhone,
		session.StateTransferEnterPhone: e.handleTransferEnterPhone,
		session.StateDeleteConfirm:      e.handleDeleteConfirm,

		session.StateEventSelectMember: e.handleEventSelectMember,
		session.StateEventAction:       e.handleEventAction,
		session.StateEventType:         e.handleEventType,
		session.StateEventDate:         e.handleEventDate,
	}

	return e
}

// NormalizeIdentity strips the transport prefix from a sender identity so
// the same contact always maps to the same user key.
func NormalizeIdentity(raw string) string {
	return strings.TrimPrefix(strings.TrimSpace(raw), "whatsapp:")
}

// HandleMessage processes one inbound message and returns the reply text.
// The returned error is reserved for infrastructure failures (session store
// or user lookup down); every domain outcome is expressed in the reply.
func (e *Engine) HandleMessage(ctx context.Context, from, body string) (string, error) {
	key := NormalizeIdentity(from)

	lock := e.userLock(key)
	lock.Lock()
	defer lock.Unlock()

	user, err := e.family.EnsureUser(ctx, key)
	if err != nil {
		return "", err
	}

	sess, err := e.sessions.Get(ctx, key)
	if err != nil {
		return "", err
	}

	body = strings.TrimSpace(body)

	// "reset" overrides any in-progress flow. If the caller holds an edit
	// lock recorded in the draft, release it so the member does not stay
	// locked forever.
	if strings.EqualFold(body, "reset") {
		if sess.Edit != nil && sess.Edit.MemberID != 0 {
			if err := e.locks.Release(ctx, sess.Edit.MemberID, user.ID); err != nil {
				e.logger.WithError(err).WithField("member_id", sess.Edit.MemberID).
					Warn("Failed to release edit lock on reset")
			}
		}
		sess.Reset()
		if err := e.sessions.Save(ctx, key, sess); err != nil {
			return "", err
		}
		return mainMenuText, nil
	}

	c := &conversation{user: user, sess: sess, body: body}

	reply, err := e.safeDispatch(ctx, c)
	if err != nil {
		// The session is deliberately not saved: the persisted state
		// and drafts stay exactly as they were before this message.
		e.logger.WithError(err).WithFields(logrus.Fields{
			"user":  key,
			"state": sess.State,
		}).Error("Message handling failed")
		return genericErrorReply, nil
	}

	if err := e.sessions.Save(ctx, key, sess); err != nil {
		return "", err
	}

	return reply, nil
}

// safeDispatch converts a handler panic into an error so one malformed
// session cannot take the process down.
func (e *Engine) safeDispatch(ctx context.Context, c *conversation) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in state handler: %v", r)
		}
	}()
	return e.dispatch(ctx, c)
}

func (e *Engine) dispatch(ctx context.Context, c *conversation) (string, error) {
	if handler, ok := e.handlers[c.sess.State]; ok {
		return handler(ctx, c)
	}
	// Empty state (first contact) and MAIN_MENU both land here.
	return e.handleMainMenu(ctx, c)
}

func (e *Engine) userLock(key string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.userLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		e.userLocks[key] = lock
	}
	return lock
}
