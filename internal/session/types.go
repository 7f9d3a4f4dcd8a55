package session

import (
	"strings"
	"time"

	"github.com/draftdesk/draftdesk/internal/ai"
	"github.com/draftdesk/draftdesk/internal/match"
	"github.com/draftdesk/draftdesk/internal/opportunity"
)

// Phase tracks where a session is in its lifecycle.
type Phase string

const (
	// PhasePicking: the user is still choosing a preset/provider; the
	// session is not yet active and does not appear in ambient status.
	PhasePicking Phase = "picking-mode"

	// PhaseAwaitingFirst: the first exchange has been sent and no assistant
	// reply has arrived yet.
	PhaseAwaitingFirst Phase = "awaiting-first-response"

	// PhaseInConversation: at least one exchange has been started; the
	// transcript is live.
	PhaseInConversation Phase = "in-conversation"
)

// SubjectContext is the immutable snapshot of the email or draft a session
// was opened for. It seeds the conversation and never changes afterwards.
type SubjectContext struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`

	// Opportunity is the linked procurement opportunity, when one could be
	// resolved for the underlying message.
	Opportunity *opportunity.Metadata `json:"opportunity,omitempty"`
}

// Preview returns a short subject line for ambient status displays.
func (s SubjectContext) Preview() string {
	preview := strings.TrimSpace(s.Subject)
	if preview == "" {
		preview = strings.TrimSpace(s.Body)
	}
	if len(preview) > 80 {
		preview = preview[:77] + "..."
	}
	return preview
}

// ProviderSelection names the provider and model a session talks to. It is
// mutable only before the first exchange starts.
type ProviderSelection struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Session is the stateful record of one AI-assisted conversation tied to a
// single email message or draft. All mutation goes through the Store.
type Session struct {
	// ID is the caller-supplied key (the message or draft being worked on).
	// It never changes and is never reused after disposal.
	ID string `json:"id"`

	Subject   SubjectContext    `json:"subject"`
	Phase     Phase             `json:"phase"`
	Selection ProviderSelection `json:"selection"`

	// Transcript is append-only; the system prompt is set once at session
	// start and user/assistant entries accumulate behind it.
	Transcript []ai.Message `json:"transcript"`

	// Busy is true exactly while an exchange is in flight.
	Busy bool `json:"busy"`

	// AttachmentCandidates is the cached candidate file listing, loaded at
	// most once per session before the first exchange.
	AttachmentCandidates []match.FileRef `json:"attachmentCandidates,omitempty"`
	CandidatesLoaded     bool            `json:"-"`

	// Recommended is the attachment recommendation set derived from the most
	// recent successful exchange. May be stale while an exchange is in
	// flight.
	Recommended []match.RecommendedAttachment `json:"recommended,omitempty"`

	// ExchangeStarted latches once the first exchange begins; it freezes the
	// provider selection.
	ExchangeStarted bool `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// clone returns a deep copy so callers can never race against runner updates.
func (s *Session) clone() *Session {
	c := *s
	c.Transcript = append([]ai.Message(nil), s.Transcript...)
	c.AttachmentCandidates = append([]match.FileRef(nil), s.AttachmentCandidates...)
	c.Recommended = append([]match.RecommendedAttachment(nil), s.Recommended...)
	if s.Subject.Opportunity != nil {
		opp := *s.Subject.Opportunity
		c.Subject.Opportunity = &opp
	}
	return &c
}

// LastMessage returns the most recent transcript entry, or false when the
// transcript is empty.
func (s *Session) LastMessage() (ai.Message, bool) {
	if len(s.Transcript) == 0 {
		return ai.Message{}, false
	}
	return s.Transcript[len(s.Transcript)-1], true
}

// HasAssistantReply reports whether any assistant entry exists.
func (s *Session) HasAssistantReply() bool {
	for _, m := range s.Transcript {
		if m.Role == ai.RoleAssistant {
			return true
		}
	}
	return false
}
