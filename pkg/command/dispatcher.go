package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"unimind-be/internal/constant"
	"unimind-be/internal/pkg/logger"
	"unimind-be/pkg/assistant"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

var (
	// ErrCommandOutstanding rejects a second command while one is pending.
	ErrCommandOutstanding = errors.New("a command is already awaiting resolution for this session")
	// ErrNoPendingCommand means consent arrived for a session with nothing pending.
	ErrNoPendingCommand = errors.New("no pending command for this session")
	// ErrUnknownKind means the assistant proposed a command outside the handler table.
	ErrUnknownKind = errors.New("unknown command kind")
)

// Handler executes one command kind with a granted credential and returns a
// short summary naming the created artifact.
type Handler interface {
	Execute(ctx context.Context, token *oauth2.Token, pending *Pending) (string, error)
}

// MessageAppender lets the dispatcher emit follow-up messages back into the
// conversation log without depending on the chat service.
type MessageAppender interface {
	AppendAssistantMessage(ctx context.Context, session SessionRef, text string) error
}

// AuditSink records terminal command outcomes.
type AuditSink interface {
	RecordCommandOutcome(ctx context.Context, session SessionRef, kind string, payload []byte, status Status) error
}

// Dispatcher is the consent-gated command state machine:
// IDLE -> COMMAND_RECEIVED -> AWAITING_CONSENT -> EXECUTING -> RESOLVED|FAILED -> IDLE.
// At most one command per session is outstanding; commands are never retried.
type Dispatcher struct {
	pending  *PendingStore
	handlers map[assistant.CommandKind]Handler
	consent  *GoogleCalendarClient
	appender MessageAppender
	audits   AuditSink
	logger   logger.ILogger
}

func NewDispatcher(
	consent *GoogleCalendarClient,
	appender MessageAppender,
	audits AuditSink,
	log logger.ILogger,
) *Dispatcher {
	d := &Dispatcher{
		pending:  NewPendingStore(),
		handlers: make(map[assistant.CommandKind]Handler),
		consent:  consent,
		appender: appender,
		audits:   audits,
		logger:   log,
	}

	// Closed handler table: adding a command kind is an explicit registration
	// here, not a new branch in the ask path.
	d.handlers[assistant.KindScheduleExternalEvent] = &scheduleEventHandler{calendar: consent}

	return d
}

// Receive accepts a command attached to an assistant answer and moves it to
// AWAITING_CONSENT. The caller has already appended the plain-text answer to
// the log, independent of the command outcome.
func (d *Dispatcher) Receive(ctx context.Context, session SessionRef, cmd *assistant.Command) (string, error) {
	if _, found := d.pending.Get(session.SessionID); found {
		return "", ErrCommandOutstanding
	}

	if _, ok := d.handlers[cmd.Kind]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, cmd.Kind)
	}

	d.pending.Put(&Pending{
		Session:    session,
		Kind:       cmd.Kind,
		Payload:    cmd.EventDetails,
		Status:     StatusAwaitingConsent,
		ReceivedAt: time.Now(),
	})

	d.logger.Info("CommandDispatcher", "Command awaiting consent", map[string]interface{}{
		"session_id": session.SessionID,
		"kind":       cmd.Kind,
	})

	return d.consent.ConsentURL(session.SessionID.String()), nil
}

// Pending exposes the current pending command of a session, if any.
func (d *Dispatcher) Pending(sessionId uuid.UUID) (*Pending, bool) {
	return d.pending.Get(sessionId)
}

// ConsentURL rebuilds the consent URL for an already-pending command, e.g.
// after a page reload.
func (d *Dispatcher) ConsentURL(userId, sessionId uuid.UUID) (string, error) {
	if _, err := d.pendingOwnedBy(userId, sessionId); err != nil {
		return "", err
	}
	return d.consent.ConsentURL(sessionId.String()), nil
}

// Grant resumes a pending command with the authorization code from the
// consent callback. Exactly one external write is issued.
func (d *Dispatcher) Grant(ctx context.Context, userId, sessionId uuid.UUID, code string) (Status, string, error) {
	pending, err := d.pendingOwnedBy(userId, sessionId)
	if err != nil {
		return StatusNone, "", err
	}

	pending.Status = StatusExecuting
	d.pending.Put(pending)

	token, err := d.consent.Exchange(ctx, code)
	if err != nil {
		msg := constant.CommandFailedReply
		d.finish(ctx, pending, StatusFailed, msg)
		return StatusFailed, msg, nil
	}

	handler := d.handlers[pending.Kind]
	summary, err := handler.Execute(ctx, token, pending)
	if err != nil {
		d.logger.Error("CommandDispatcher", "Command execution failed", map[string]interface{}{
			"session_id": sessionId,
			"kind":       pending.Kind,
			"error":      err.Error(),
		})
		msg := constant.CommandFailedReply
		d.finish(ctx, pending, StatusFailed, msg)
		return StatusFailed, msg, nil
	}

	msg := fmt.Sprintf(constant.CommandResolvedReply, summary)
	d.finish(ctx, pending, StatusResolved, msg)
	return StatusResolved, msg, nil
}

// Deny resolves a dismissed consent prompt. The command fails, it is not
// silently retried.
func (d *Dispatcher) Deny(ctx context.Context, userId, sessionId uuid.UUID) (string, error) {
	pending, err := d.pendingOwnedBy(userId, sessionId)
	if err != nil {
		return "", err
	}

	msg := constant.CommandDeniedReply
	d.finish(ctx, pending, StatusFailed, msg)
	return msg, nil
}

// pendingOwnedBy looks up the pending command and verifies the caller owns
// the session it came from. A foreign caller gets the same answer as an empty
// slot, so the endpoint does not reveal other users' pending commands.
func (d *Dispatcher) pendingOwnedBy(userId, sessionId uuid.UUID) (*Pending, error) {
	pending, found := d.pending.Get(sessionId)
	if !found || pending.Session.UserID != userId {
		return nil, ErrNoPendingCommand
	}
	return pending, nil
}

// finish appends the outcome message, records the audit row and clears the
// pending slot. Failures here degrade to log lines; the state machine always
// returns to IDLE.
func (d *Dispatcher) finish(ctx context.Context, pending *Pending, status Status, message string) {
	if err := d.appender.AppendAssistantMessage(ctx, pending.Session, message); err != nil {
		d.logger.Error("CommandDispatcher", "Failed to append outcome message", map[string]interface{}{
			"session_id": pending.Session.SessionID,
			"error":      err.Error(),
		})
	}

	if d.audits != nil {
		payload, _ := json.Marshal(pending.Payload)
		if err := d.audits.RecordCommandOutcome(ctx, pending.Session, string(pending.Kind), payload, status); err != nil {
			d.logger.Warn("CommandDispatcher", "Failed to record command audit", map[string]interface{}{
				"session_id": pending.Session.SessionID,
				"error":      err.Error(),
			})
		}
	}

	d.pending.Clear(pending.Session.SessionID)
}

type scheduleEventHandler struct {
	calendar CalendarWriter
}

func (h *scheduleEventHandler) Execute(ctx context.Context, token *oauth2.Token, pending *Pending) (string, error) {
	if pending.Payload == nil {
		return "", errors.New("schedule command without event details")
	}
	return h.calendar.CreateEvent(ctx, token, pending.Payload)
}
