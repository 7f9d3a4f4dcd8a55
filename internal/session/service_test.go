package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(client *stubClient) (*Service, *Store) {
	store := NewStore(nil)
	runner := NewRunner(store, client, nil, nil, nil)
	return NewService(store, runner, testSelection(), nil, nil), store
}

func TestServiceCreateUsesDefaultSelection(t *testing.T) {
	svc, _ := newTestService(&stubClient{reply: "ok"})

	sess := svc.Create(context.Background(), "msg-1", testSubject())
	require.NotNil(t, sess)
	assert.Equal(t, testSelection(), sess.Selection)
	assert.Equal(t, PhasePicking, sess.Phase)
}

func TestServiceSetSelection(t *testing.T) {
	client := &stubClient{reply: "ok", gate: make(chan struct{})}
	svc, store := newTestService(client)
	svc.Create(context.Background(), "msg-1", testSubject())

	override := ProviderSelection{Provider: "anthropic", Model: "claude-sonnet-4"}
	require.NoError(t, svc.SetSelection("msg-1", override))

	sess, _ := svc.Get("msg-1")
	assert.Equal(t, override, sess.Selection)

	t.Run("unknown session", func(t *testing.T) {
		err := svc.SetSelection("missing", override)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("busy session", func(t *testing.T) {
		require.NoError(t, svc.Send(context.Background(), "msg-1", "go"))
		err := svc.SetSelection("msg-1", testSelection())
		assert.ErrorIs(t, err, ErrSessionBusy)
	})

	t.Run("frozen after first exchange", func(t *testing.T) {
		close(client.gate)
		waitReply(t, store, "msg-1")

		err := svc.SetSelection("msg-1", testSelection())
		assert.ErrorIs(t, err, ErrSelectionFrozen)
	})
}

func TestServiceAutoDraftSkipsPicking(t *testing.T) {
	svc, store := newTestService(&stubClient{reply: "Dear Contracting Officer,"})

	require.NoError(t, svc.AutoDraft(context.Background(), "msg-1", testSubject()))

	// The session is active immediately, before the provider responds.
	sess, ok := svc.Get("msg-1")
	require.True(t, ok)
	assert.NotEqual(t, PhasePicking, sess.Phase)

	sess = waitReply(t, store, "msg-1")
	assert.Contains(t, sess.Transcript[1].Text, "Draft a professional reply")
	last, _ := sess.LastMessage()
	assert.Equal(t, "Dear Contracting Officer,", last.Text)
}

func TestServiceFormatDraft(t *testing.T) {
	svc, store := newTestService(&stubClient{reply: "Cleaned."})

	subject := testSubject()
	subject.Body = "teh draft needs cleanup"
	require.NoError(t, svc.FormatDraft(context.Background(), "draft-1", subject))

	sess := waitReply(t, store, "draft-1")
	assert.Contains(t, sess.Transcript[1].Text, "Clean up the draft")
	assert.Contains(t, sess.Transcript[0].Text, "teh draft needs cleanup")
}

func TestServiceDismiss(t *testing.T) {
	svc, _ := newTestService(&stubClient{reply: "ok"})
	svc.Create(context.Background(), "msg-1", testSubject())
	svc.Focus("msg-1")

	assert.True(t, svc.Dismiss(context.Background(), "msg-1"))
	assert.False(t, svc.Dismiss(context.Background(), "msg-1"))

	// Dismissal releases focus so it never points at a disposed session.
	_, ok := svc.Focused()
	assert.False(t, ok)

	_, ok = svc.Get("msg-1")
	assert.False(t, ok)
}

func TestServiceDismissOtherSessionKeepsFocus(t *testing.T) {
	svc, _ := newTestService(&stubClient{reply: "ok"})
	svc.Create(context.Background(), "msg-1", testSubject())
	svc.Create(context.Background(), "msg-2", testSubject())
	svc.Focus("msg-1")

	assert.True(t, svc.Dismiss(context.Background(), "msg-2"))

	id, ok := svc.Focused()
	assert.True(t, ok)
	assert.Equal(t, "msg-1", id)
}

func TestServiceListActive(t *testing.T) {
	client := &stubClient{reply: "done"}
	svc, store := newTestService(client)

	svc.Create(context.Background(), "picking", testSubject())
	require.NoError(t, svc.AutoDraft(context.Background(), "active", testSubject()))
	waitReply(t, store, "active")

	views := svc.ListActive()
	require.Len(t, views, 1)
	assert.Equal(t, "active", views[0].SessionID)
	assert.Equal(t, StatusDone, views[0].Status)
}

func TestServiceConcurrentSessionsAreIndependent(t *testing.T) {
	client := &stubClient{reply: "ok", gate: make(chan struct{})}
	svc, store := newTestService(client)

	svc.Create(context.Background(), "msg-1", testSubject())
	svc.Create(context.Background(), "msg-2", testSubject())

	// One session's in-flight exchange never blocks another session.
	require.NoError(t, svc.Send(context.Background(), "msg-1", "first"))
	require.NoError(t, svc.Send(context.Background(), "msg-2", "second"))

	close(client.gate)
	waitReply(t, store, "msg-1")
	waitReply(t, store, "msg-2")

	require.Eventually(t, func() bool {
		return len(svc.ListActive()) == 2
	}, 2*time.Second, 5*time.Millisecond)
}
