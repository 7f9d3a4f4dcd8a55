package session

import (
	"context"
	"log/slog"

	"github.com/draftdesk/draftdesk/internal/instrumentation"
	"github.com/draftdesk/draftdesk/internal/logging"
)

// Fixed first prompts for the one-click flows. They are ordinary exchanges
// with a predetermined first user message, not separate machinery.
const (
	autoDraftPrompt = "Draft a professional reply to this email on my behalf, " +
		"keeping the tone appropriate for a government procurement context."

	formatDraftPrompt = "Clean up the draft below: fix grammar and formatting and keep the meaning unchanged."
)

// Service is the complete surface the presentation layer talks to. Nothing
// else in the core is addressable from outside.
type Service struct {
	store   *Store
	runner  *Runner
	focus   *FocusController
	metrics *instrumentation.Metrics
	logger  *slog.Logger

	defaultSelection ProviderSelection
}

// NewService wires the store, runner and focus controller together.
func NewService(store *Store, runner *Runner, defaultSelection ProviderSelection, metrics *instrumentation.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:            store,
		runner:           runner,
		focus:            NewFocusController(),
		metrics:          metrics,
		logger:           logger,
		defaultSelection: defaultSelection,
	}
}

// Create opens a session for the given message or draft key. Idempotent:
// invoking it again for the same key returns the existing session untouched.
func (svc *Service) Create(ctx context.Context, id string, subject SubjectContext) *Session {
	before := svc.store.Count()
	sess := svc.store.Create(id, subject, svc.defaultSelection)
	if svc.store.Count() > before {
		svc.metrics.AddActiveSessions(ctx, 1)
	}
	return sess
}

// Get returns a copy of a session for rendering.
func (svc *Service) Get(id string) (*Session, bool) {
	return svc.store.Get(id)
}

// SetSelection changes the session's provider/model. Allowed only while no
// exchange is in flight and none has ever started.
func (svc *Service) SetSelection(id string, selection ProviderSelection) error {
	return svc.store.TryMutate(id, func(s *Session) error {
		if s.Busy {
			return ErrSessionBusy
		}
		if s.ExchangeStarted {
			return ErrSelectionFrozen
		}
		s.Selection = selection
		return nil
	})
}

// Send runs one exchange for the session. See Runner.Send for the admission
// and completion semantics.
func (svc *Service) Send(ctx context.Context, id, text string) error {
	return svc.runner.Send(ctx, id, text)
}

// AutoDraft is the one-click flow: create the session if needed and
// immediately send the fixed drafting prompt, skipping the picking phase.
func (svc *Service) AutoDraft(ctx context.Context, id string, subject SubjectContext) error {
	svc.Create(ctx, id, subject)
	return svc.runner.Send(ctx, id, autoDraftPrompt)
}

// FormatDraft is the one-click cleanup flow for an existing draft body.
func (svc *Service) FormatDraft(ctx context.Context, id string, subject SubjectContext) error {
	svc.Create(ctx, id, subject)
	return svc.runner.Send(ctx, id, formatDraftPrompt)
}

// Dismiss removes the session. Only explicit dismissal disposes a session;
// navigation or panel teardown never does. An in-flight exchange for the
// dismissed session completes and is silently dropped.
func (svc *Service) Dismiss(ctx context.Context, id string) bool {
	removed := svc.store.Remove(id)
	if removed {
		svc.focus.Drop(id)
		svc.metrics.AddActiveSessions(ctx, -1)
		svc.logger.Info("session dismissed", logging.SessionID(id))
	}
	return removed
}

// Focus points the primary pane at a session; empty id clears focus. The
// session itself is never altered.
func (svc *Service) Focus(id string) {
	svc.focus.Focus(id)
}

// Focused returns the currently focused session id, if any.
func (svc *Service) Focused() (string, bool) {
	return svc.focus.Focused()
}

// ListActive returns the ambient status projection over all sessions that
// have left picking mode.
func (svc *Service) ListActive() []StatusView {
	return Project(svc.store)
}
