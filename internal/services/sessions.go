package services

import (
	"errors"
	"sync"
	"time"

	"github.com/bobby-s-dev/countries-explorer/internal/search"
	"github.com/bobby-s-dev/countries-explorer/internal/weather"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("session not found")

type sessionItem struct {
	session   *Session
	expiresAt time.Time
}

// SessionStore keeps sessions in memory with a sliding expiry. Nothing is
// written anywhere else; a restart drops every session.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionItem
	querier  search.CountryQuerier
	fetcher  weather.Fetcher
	logger   *zap.Logger
	ttl      time.Duration
	maxSize  int
	now      func() time.Time
	onChange func(active int)
}

func NewSessionStore(querier search.CountryQuerier, fetcher weather.Fetcher, ttl time.Duration, maxSize int, logger *zap.Logger) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*sessionItem),
		querier:  querier,
		fetcher:  fetcher,
		logger:   logger,
		ttl:      ttl,
		maxSize:  maxSize,
		now:      time.Now,
	}
}

// OnChange registers a callback receiving the session count after every
// change. Used for the active sessions gauge.
func (s *SessionStore) OnChange(fn func(active int)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *SessionStore) Create() *Session {
	session := NewSession(uuid.NewString(), s.querier, s.fetcher, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Evict if store is full
	if s.maxSize > 0 && len(s.sessions) >= s.maxSize {
		s.evictOldest()
	}

	s.sessions[session.ID] = &sessionItem{
		session:   session,
		expiresAt: s.now().Add(s.ttl),
	}

	s.logger.Debug("Session created",
		zap.String("session", session.ID),
		zap.Time("expires_at", s.now().Add(s.ttl)))
	s.notify()

	return session
}

// Get returns the session and pushes its expiry forward.
func (s *SessionStore) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}

	now := s.now()
	if now.After(item.expiresAt) {
		s.remove(id, item)
		return nil, ErrSessionNotFound
	}

	item.expiresAt = now.Add(s.ttl)
	return item.session, nil
}

func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.sessions[id]
	if !exists {
		return ErrSessionNotFound
	}
	s.remove(id, item)
	return nil
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	expiredCount := 0

	for id, item := range s.sessions {
		if now.After(item.expiresAt) {
			s.remove(id, item)
			expiredCount++
		}
	}

	if expiredCount > 0 {
		s.logger.Debug("Swept expired sessions",
			zap.Int("count", expiredCount))
	}
	return expiredCount
}

func (s *SessionStore) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"active_sessions": len(s.sessions),
		"max_size":        s.maxSize,
		"ttl":             s.ttl.String(),
	}
}

func (s *SessionStore) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, item := range s.sessions {
		if oldestKey == "" || item.expiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = item.expiresAt
		}
	}

	if oldestKey != "" {
		s.remove(oldestKey, s.sessions[oldestKey])
		s.logger.Debug("Evicted oldest session",
			zap.String("session", oldestKey))
	}
}

// remove must be called with mu held.
func (s *SessionStore) remove(id string, item *sessionItem) {
	delete(s.sessions, id)
	item.session.Close()
	s.notify()
}

func (s *SessionStore) notify() {
	if s.onChange != nil {
		s.onChange(len(s.sessions))
	}
}
