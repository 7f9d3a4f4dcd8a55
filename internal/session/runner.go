package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/draftdesk/draftdesk/internal/ai"
	"github.com/draftdesk/draftdesk/internal/instrumentation"
	"github.com/draftdesk/draftdesk/internal/logging"
	"github.com/draftdesk/draftdesk/internal/match"
)

// FailureMarker prefixes every synthetic assistant notice produced for a
// failed exchange. The projector keys off it to derive error status, so the
// transcript itself is the only channel failures travel through.
const FailureMarker = "⚠"

const (
	throttledNotice = FailureMarker + " The AI provider is rate limiting requests right now. " +
		"Give it a moment and send your message again."

	genericNoticeFormat = FailureMarker + " The AI request failed: %s. " +
		"Sending another message will retry."
)

// IsFailureNotice reports whether a transcript entry is a synthetic failure
// notice rather than a real assistant reply.
func IsFailureNotice(m ai.Message) bool {
	return m.Role == ai.RoleAssistant && strings.HasPrefix(m.Text, FailureMarker)
}

// CandidateSource supplies the attachment candidate listing for a session.
// It is consulted at most once per session; the result is cached.
type CandidateSource interface {
	ListCandidates(ctx context.Context) ([]match.FileRef, error)
}

// Runner executes asynchronous exchanges against the AI provider and folds
// results back into the store. Runners for different sessions never wait on
// each other; within one session the busy flag serializes exchanges.
type Runner struct {
	store      *Store
	client     ai.Client
	candidates CandidateSource
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
}

// NewRunner creates a runner. candidates and metrics may be nil.
func NewRunner(store *Store, client ai.Client, candidates CandidateSource, metrics *instrumentation.Metrics, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		store:      store,
		client:     client,
		candidates: candidates,
		metrics:    metrics,
		logger:     logger,
	}
}

// exchangeState is the snapshot captured when an exchange is admitted.
type exchangeState struct {
	transcript []ai.Message
	selection  ProviderSelection
	firstTurn  bool
	candidates []match.FileRef
	loaded     bool
}

// Send admits one exchange for the session: the user message is appended and
// the busy flag raised atomically before this function returns, so the
// transcript reflects the user's input regardless of provider latency. The
// provider round trip then proceeds on its own goroutine, detached from ctx;
// a torn-down caller never cancels an in-flight exchange.
//
// Returns ErrSessionBusy when an exchange is already in flight for this
// session, and ErrSessionNotFound when it was dismissed.
func (r *Runner) Send(ctx context.Context, sessionID, userText string) error {
	var state exchangeState

	err := r.store.TryMutate(sessionID, func(s *Session) error {
		if s.Busy {
			return ErrSessionBusy
		}

		if len(s.Transcript) == 0 {
			s.Transcript = append(s.Transcript, ai.Message{
				Role: ai.RoleSystem,
				Text: systemPrompt(s.Subject),
			})
		}
		s.Transcript = append(s.Transcript, ai.Message{Role: ai.RoleUser, Text: userText})
		s.Busy = true
		if s.Phase == PhasePicking {
			s.Phase = PhaseAwaitingFirst
		}

		state.firstTurn = !s.ExchangeStarted
		s.ExchangeStarted = true

		state.transcript = append([]ai.Message(nil), s.Transcript...)
		state.selection = s.Selection
		state.candidates = append([]match.FileRef(nil), s.AttachmentCandidates...)
		state.loaded = s.CandidatesLoaded
		return nil
	})
	if err != nil {
		return err
	}

	exchangeID := uuid.NewString()
	go r.exchange(context.WithoutCancel(ctx), exchangeID, sessionID, state)
	return nil
}

// exchange performs the provider round trip and merges the outcome into the
// session's state at completion time. The merge goes through the store by id,
// never through a captured session reference, so a session dismissed mid-
// flight simply absorbs nothing.
func (r *Runner) exchange(ctx context.Context, exchangeID, sessionID string, state exchangeState) {
	logger := r.logger.With(
		logging.SessionID(sessionID),
		logging.ExchangeID(exchangeID),
		logging.Provider(state.selection.Provider),
	)

	ctx, span := instrumentation.StartExchangeSpan(ctx, state.selection.Provider, state.selection.Model)
	defer span.End()

	candidates := state.candidates
	if state.firstTurn && !state.loaded {
		candidates = r.loadCandidates(ctx, sessionID, logger)
	}

	req := &ai.ConversationRequest{
		Provider: state.selection.Provider,
		Model:    state.selection.Model,
		Messages: state.transcript,
	}
	if state.firstTurn {
		// Attachment refs are only sent on the first turn to avoid
		// re-uploading large context on every follow-up.
		req.FileRefs = fileRefs(candidates)
	}

	start := time.Now()
	resp, err := r.client.SendConversation(ctx, req)
	duration := time.Since(start)

	if err != nil {
		r.completeWithFailure(sessionID, err)
		instrumentation.SetSpanError(span, err)
		status := logging.StatusError
		if ai.IsThrottled(err) {
			status = logging.StatusThrottled
		}
		r.metrics.RecordExchange(ctx, state.selection.Provider, status, duration)
		logger.Warn("exchange failed",
			logging.Status(status),
			slog.Duration(logging.KeyDuration, duration),
			logging.Err(err),
		)
		return
	}

	recommended := match.Recommendations(resp.ReplyText, candidates)
	r.completeWithReply(sessionID, resp.ReplyText, recommended)
	instrumentation.SetSpanSuccess(span)

	r.metrics.RecordExchange(ctx, state.selection.Provider, logging.StatusSuccess, duration)
	for _, rec := range recommended {
		r.metrics.RecordRecommendation(ctx, string(rec.Stage))
	}
	logger.Info("exchange completed",
		logging.Status(logging.StatusSuccess),
		slog.Duration(logging.KeyDuration, duration),
		slog.Int("recommendations", len(recommended)),
	)
}

// loadCandidates fetches and caches the candidate file listing. Failures are
// absorbed: a missing listing only costs recommendations, never the exchange.
func (r *Runner) loadCandidates(ctx context.Context, sessionID string, logger *slog.Logger) []match.FileRef {
	if r.candidates == nil {
		return nil
	}

	listed, err := r.candidates.ListCandidates(ctx)
	if err != nil {
		r.metrics.RecordCandidateLoadFailure(ctx)
		logger.Warn("failed to list attachment candidates", logging.Err(err))
		return nil
	}

	r.store.Mutate(sessionID, func(s *Session) {
		s.AttachmentCandidates = append([]match.FileRef(nil), listed...)
		s.CandidatesLoaded = true
	})
	return listed
}

// completeWithReply merges a successful exchange into the session.
func (r *Runner) completeWithReply(sessionID, reply string, recommended []match.RecommendedAttachment) {
	r.store.Mutate(sessionID, func(s *Session) {
		s.Transcript = append(s.Transcript, ai.Message{Role: ai.RoleAssistant, Text: reply})
		s.Busy = false
		s.Phase = PhaseInConversation

		// Only overwrite the recommendation set when the matcher produced at
		// least one confident match; a reply with nothing recoverable must
		// not erase a previously valid set.
		if hasConfidentMatch(recommended) {
			s.Recommended = recommended
		}
	})
}

// completeWithFailure converts the error into a synthetic assistant notice.
// Nothing is ever thrown to the caller: the transcript stays a complete,
// inspectable log and retry is just another message.
func (r *Runner) completeWithFailure(sessionID string, err error) {
	notice := genericNotice(err)
	if ai.IsThrottled(err) {
		notice = throttledNotice
	}

	r.store.Mutate(sessionID, func(s *Session) {
		s.Transcript = append(s.Transcript, ai.Message{Role: ai.RoleAssistant, Text: notice})
		s.Busy = false
		s.Phase = PhaseInConversation
	})
}

func genericNotice(err error) string {
	detail := "the provider did not return a reply"
	if err != nil {
		detail = err.Error()
	}
	return fmt.Sprintf(genericNoticeFormat, detail)
}

func hasConfidentMatch(recommended []match.RecommendedAttachment) bool {
	for _, rec := range recommended {
		if rec.MatchedFile != nil {
			return true
		}
	}
	return false
}

func fileRefs(candidates []match.FileRef) []ai.FileRef {
	if len(candidates) == 0 {
		return nil
	}
	refs := make([]ai.FileRef, 0, len(candidates))
	for _, c := range candidates {
		refs = append(refs, ai.FileRef{ID: c.ID, Name: c.Name, MimeType: c.MimeType})
	}
	return refs
}

// systemPrompt seeds a conversation with the message snapshot the session
// was opened for.
func systemPrompt(subject SubjectContext) string {
	var b strings.Builder
	b.WriteString("You are a drafting assistant for a government-contracting team. ")
	b.WriteString("Help the user draft a reply to the email below. ")
	b.WriteString("If specific files should be attached to the reply, end your answer with a block delimited by ")
	b.WriteString(match.BlockStart)
	b.WriteString(" and ")
	b.WriteString(match.BlockEnd)
	b.WriteString(" containing one line per file in the form 'filename: NAME | reason: WHY', or the single word 'none'.\n\n")

	fmt.Fprintf(&b, "From: %s\n", subject.Sender)
	fmt.Fprintf(&b, "To: %s\n", subject.Recipient)
	fmt.Fprintf(&b, "Subject: %s\n", subject.Subject)
	if subject.Opportunity != nil {
		fmt.Fprintf(&b, "Linked opportunity: %s\n", subject.Opportunity.SolicitationNumber)
	}
	b.WriteString("\n")
	b.WriteString(subject.Body)
	return b.String()
}
