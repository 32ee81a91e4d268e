package command

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"unimind-be/internal/constant"
	"unimind-be/internal/pkg/logger"
	"unimind-be/pkg/assistant"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type recordedMessage struct {
	Session SessionRef
	Text    string
}

type fakeAppender struct {
	mu       sync.Mutex
	messages []recordedMessage
}

func (f *fakeAppender) AppendAssistantMessage(ctx context.Context, session SessionRef, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, recordedMessage{Session: session, Text: text})
	return nil
}

type recordedAudit struct {
	Kind   string
	Status Status
}

type fakeAuditSink struct {
	mu     sync.Mutex
	audits []recordedAudit
}

func (f *fakeAuditSink) RecordCommandOutcome(ctx context.Context, session SessionRef, kind string, payload []byte, status Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audits = append(f.audits, recordedAudit{Kind: kind, Status: status})
	return nil
}

// newTestConsent points both the token exchange and the event write at local
// test servers.
func newTestConsent(t *testing.T, tokenStatus, eventsStatus int) (*GoogleCalendarClient, *int) {
	t.Helper()

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tokenStatus != http.StatusOK {
			w.WriteHeader(tokenStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	t.Cleanup(tokenSrv.Close)

	eventWrites := 0
	eventsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		eventWrites++
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.WriteHeader(eventsStatus)
	}))
	t.Cleanup(eventsSrv.Close)

	conf := &oauth2.Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost/callback",
		Scopes:       []string{"calendar.events"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "http://localhost/auth",
			TokenURL: tokenSrv.URL,
		},
	}

	return NewGoogleCalendarClient(eventsSrv.URL, "UTC", conf), &eventWrites
}

func newTestDispatcher(t *testing.T, tokenStatus, eventsStatus int) (*Dispatcher, *fakeAppender, *fakeAuditSink, *int) {
	t.Helper()
	consent, eventWrites := newTestConsent(t, tokenStatus, eventsStatus)
	appender := &fakeAppender{}
	audits := &fakeAuditSink{}
	d := NewDispatcher(consent, appender, audits, logger.NewNopLogger())
	return d, appender, audits, eventWrites
}

func scheduleCommand() *assistant.Command {
	return &assistant.Command{
		Kind: assistant.KindScheduleExternalEvent,
		EventDetails: &assistant.EventDetails{
			Title:     "Study group",
			StartTime: "2026-09-02T14:00:00",
			EndTime:   "2026-09-02T15:00:00",
		},
	}
}

func TestReceiveMovesCommandToAwaitingConsent(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t, http.StatusOK, http.StatusOK)
	session := SessionRef{SessionID: uuid.New(), UserID: uuid.New()}

	url, err := d.Receive(context.Background(), session, scheduleCommand())
	require.NoError(t, err)
	assert.Contains(t, url, session.SessionID.String())

	pending, found := d.Pending(session.SessionID)
	require.True(t, found)
	assert.Equal(t, StatusAwaitingConsent, pending.Status)
	assert.Equal(t, assistant.KindScheduleExternalEvent, pending.Kind)
}

func TestReceiveRejectsSecondCommandWhilePending(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t, http.StatusOK, http.StatusOK)
	session := SessionRef{SessionID: uuid.New(), UserID: uuid.New()}

	_, err := d.Receive(context.Background(), session, scheduleCommand())
	require.NoError(t, err)

	_, err = d.Receive(context.Background(), session, scheduleCommand())
	assert.ErrorIs(t, err, ErrCommandOutstanding)

	// The first command is untouched.
	pending, found := d.Pending(session.SessionID)
	require.True(t, found)
	assert.Equal(t, StatusAwaitingConsent, pending.Status)
}

func TestReceiveRejectsUnknownKind(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t, http.StatusOK, http.StatusOK)
	session := SessionRef{SessionID: uuid.New(), UserID: uuid.New()}

	_, err := d.Receive(context.Background(), session, &assistant.Command{Kind: "format_hard_drive"})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, found := d.Pending(session.SessionID)
	assert.False(t, found)
}

func TestGrantResolvesCommandExactlyOnce(t *testing.T) {
	d, appender, audits, eventWrites := newTestDispatcher(t, http.StatusOK, http.StatusOK)
	session := SessionRef{SessionID: uuid.New(), UserID: uuid.New()}

	_, err := d.Receive(context.Background(), session, scheduleCommand())
	require.NoError(t, err)

	status, msg, err := d.Grant(context.Background(), session.UserID, session.SessionID, "auth-code")
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, status)
	assert.Equal(t, fmt.Sprintf(constant.CommandResolvedReply, "Study group"), msg)
	assert.Equal(t, 1, *eventWrites)

	// Outcome appended to the conversation and audited.
	require.Len(t, appender.messages, 1)
	assert.Equal(t, msg, appender.messages[0].Text)
	require.Len(t, audits.audits, 1)
	assert.Equal(t, StatusResolved, audits.audits[0].Status)

	// Back to idle: the session accepts a new command.
	_, found := d.Pending(session.SessionID)
	assert.False(t, found)
	_, err = d.Receive(context.Background(), session, scheduleCommand())
	assert.NoError(t, err)
}

func TestGrantExchangeFailureFailsCommand(t *testing.T) {
	d, appender, audits, eventWrites := newTestDispatcher(t, http.StatusUnauthorized, http.StatusOK)
	session := SessionRef{SessionID: uuid.New(), UserID: uuid.New()}

	_, err := d.Receive(context.Background(), session, scheduleCommand())
	require.NoError(t, err)

	status, msg, err := d.Grant(context.Background(), session.UserID, session.SessionID, "bad-code")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, status)
	assert.Equal(t, constant.CommandFailedReply, msg)
	assert.Equal(t, 0, *eventWrites)

	require.Len(t, appender.messages, 1)
	require.Len(t, audits.audits, 1)
	assert.Equal(t, StatusFailed, audits.audits[0].Status)

	_, found := d.Pending(session.SessionID)
	assert.False(t, found)
}

func TestGrantExecutionFailureFailsCommandWithoutRetry(t *testing.T) {
	d, _, audits, eventWrites := newTestDispatcher(t, http.StatusOK, http.StatusForbidden)
	session := SessionRef{SessionID: uuid.New(), UserID: uuid.New()}

	_, err := d.Receive(context.Background(), session, scheduleCommand())
	require.NoError(t, err)

	status, msg, err := d.Grant(context.Background(), session.UserID, session.SessionID, "auth-code")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, status)
	assert.Equal(t, constant.CommandFailedReply, msg)
	assert.Equal(t, 1, *eventWrites)

	require.Len(t, audits.audits, 1)
	assert.Equal(t, StatusFailed, audits.audits[0].Status)

	_, found := d.Pending(session.SessionID)
	assert.False(t, found)
}

func TestGrantWithoutPendingCommand(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t, http.StatusOK, http.StatusOK)

	_, _, err := d.Grant(context.Background(), uuid.New(), uuid.New(), "auth-code")
	assert.ErrorIs(t, err, ErrNoPendingCommand)
}

func TestDenyFailsCommandAndClearsPending(t *testing.T) {
	d, appender, audits, eventWrites := newTestDispatcher(t, http.StatusOK, http.StatusOK)
	session := SessionRef{SessionID: uuid.New(), UserID: uuid.New()}

	_, err := d.Receive(context.Background(), session, scheduleCommand())
	require.NoError(t, err)

	msg, err := d.Deny(context.Background(), session.UserID, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, constant.CommandDeniedReply, msg)
	assert.Equal(t, 0, *eventWrites)

	require.Len(t, appender.messages, 1)
	assert.Equal(t, constant.CommandDeniedReply, appender.messages[0].Text)
	require.Len(t, audits.audits, 1)
	assert.Equal(t, StatusFailed, audits.audits[0].Status)

	_, found := d.Pending(session.SessionID)
	assert.False(t, found)
}

func TestConsentURLRequiresPendingCommand(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t, http.StatusOK, http.StatusOK)
	session := SessionRef{SessionID: uuid.New(), UserID: uuid.New()}

	_, err := d.ConsentURL(session.UserID, session.SessionID)
	assert.ErrorIs(t, err, ErrNoPendingCommand)

	_, err = d.Receive(context.Background(), session, scheduleCommand())
	require.NoError(t, err)

	url, err := d.ConsentURL(session.UserID, session.SessionID)
	require.NoError(t, err)
	assert.Contains(t, url, session.SessionID.String())
}

func TestConsentOperationsRejectForeignUser(t *testing.T) {
	d, appender, audits, eventWrites := newTestDispatcher(t, http.StatusOK, http.StatusOK)
	session := SessionRef{SessionID: uuid.New(), UserID: uuid.New()}
	intruder := uuid.New()

	_, err := d.Receive(context.Background(), session, scheduleCommand())
	require.NoError(t, err)

	// Knowing the session id is not enough to act on someone else's command.
	_, err = d.ConsentURL(intruder, session.SessionID)
	assert.ErrorIs(t, err, ErrNoPendingCommand)

	_, _, err = d.Grant(context.Background(), intruder, session.SessionID, "auth-code")
	assert.ErrorIs(t, err, ErrNoPendingCommand)

	_, err = d.Deny(context.Background(), intruder, session.SessionID)
	assert.ErrorIs(t, err, ErrNoPendingCommand)

	// The owner's command is untouched: still pending, no writes, no messages
	// pushed into the owner's conversation.
	pending, found := d.Pending(session.SessionID)
	require.True(t, found)
	assert.Equal(t, StatusAwaitingConsent, pending.Status)
	assert.Equal(t, 0, *eventWrites)
	assert.Empty(t, appender.messages)
	assert.Empty(t, audits.audits)

	// The real owner can still resolve it.
	msg, err := d.Deny(context.Background(), session.UserID, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, constant.CommandDeniedReply, msg)
}
