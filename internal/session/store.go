package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/draftdesk/draftdesk/internal/logging"
)

// Store errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionBusy     = errors.New("session has an exchange in flight")
	ErrSelectionFrozen = errors.New("provider selection is frozen once an exchange has started")
)

// Store owns every session's lifecycle. Sessions are keyed by the message or
// draft they were opened for, and many of them can have exchanges in flight
// at once; the store is the single synchronization point.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *slog.Logger
	now      func() time.Time
}

// NewStore creates a session store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions: make(map[string]*Session),
		logger:   logger,
		now:      time.Now,
	}
}

// Create registers a session for the given key, or returns the existing one
// unchanged. Creation is idempotent because the UI may invoke "Ask AI"
// repeatedly on the same message.
func (s *Store) Create(id string, subject SubjectContext, selection ProviderSelection) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[id]; ok {
		return existing.clone()
	}

	now := s.now()
	sess := &Session{
		ID:        id,
		Subject:   subject,
		Phase:     PhasePicking,
		Selection: selection,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[id] = sess

	s.logger.Debug("session created",
		logging.SessionID(id),
		logging.UserHash(subject.Sender),
	)
	return sess.clone()
}

// Get returns a copy of the session, or false when it does not exist.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return sess.clone(), true
}

// Mutate applies fn to the live session under the store lock. The mutation is
// atomic from any other caller's perspective. When the session no longer
// exists the mutation is silently dropped: an exchange that completes after
// its session was dismissed must not resurrect it or fail.
func (s *Store) Mutate(id string, fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		s.logger.Debug("mutation dropped for disposed session", logging.SessionID(id))
		return
	}
	fn(sess)
	sess.UpdatedAt = s.now()
}

// TryMutate is Mutate with a precondition: fn may reject the mutation by
// returning an error, in which case nothing is changed. Returns
// ErrSessionNotFound when the session does not exist.
func (s *Store) TryMutate(id string, fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if err := fn(sess); err != nil {
		return err
	}
	sess.UpdatedAt = s.now()
	return nil
}

// Remove deletes a session. An exchange already in flight for it still runs
// to completion; its eventual mutation becomes a no-op.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	s.logger.Debug("session removed", logging.SessionID(id))
	return true
}

// List returns copies of all sessions, including ones still in picking mode.
func (s *Store) List() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess.clone())
	}
	return sessions
}

// Active returns copies of the sessions that have left picking mode. Only
// these count for ambient status.
func (s *Store) Active() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if sess.Phase == PhasePicking {
			continue
		}
		sessions = append(sessions, sess.clone())
	}
	return sessions
}

// Count returns the number of sessions in the store.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
