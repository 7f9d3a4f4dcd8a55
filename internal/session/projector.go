package session

import (
	"sort"
	"time"
)

// Status is the ambient state of a session as shown in badges, lists and
// toasts.
type Status string

const (
	// StatusPending: the session is active but no exchange has produced an
	// assistant reply yet and none is in flight.
	StatusPending Status = "pending"

	// StatusThinking: an exchange is in flight.
	StatusThinking Status = "thinking"

	// StatusDone: the most recent outcome is a real assistant reply.
	StatusDone Status = "done"

	// StatusError: the most recent transcript entry is a failure notice.
	StatusError Status = "error"
)

// StatusView is one row of the ambient status projection.
type StatusView struct {
	SessionID      string    `json:"id"`
	Status         Status    `json:"status"`
	SubjectPreview string    `json:"subjectPreview"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Project derives the ambient status list from the store. Both the persistent
// list panel and per-session toasts consume this same projection, which is
// what keeps them consistent: there is no second copy to drift.
//
// Sessions still in picking mode are excluded; they are being configured, not
// active.
func Project(store *Store) []StatusView {
	active := store.Active()

	views := make([]StatusView, 0, len(active))
	for _, s := range active {
		views = append(views, StatusView{
			SessionID:      s.ID,
			Status:         statusOf(s),
			SubjectPreview: s.Subject.Preview(),
			UpdatedAt:      s.UpdatedAt,
		})
	}

	// Stable presentation order: most recently touched first.
	sort.Slice(views, func(i, j int) bool {
		if views[i].UpdatedAt.Equal(views[j].UpdatedAt) {
			return views[i].SessionID < views[j].SessionID
		}
		return views[i].UpdatedAt.After(views[j].UpdatedAt)
	})
	return views
}

func statusOf(s *Session) Status {
	if s.Busy {
		return StatusThinking
	}
	if last, ok := s.LastMessage(); ok && IsFailureNotice(last) {
		return StatusError
	}
	if s.HasAssistantReply() {
		return StatusDone
	}
	return StatusPending
}
