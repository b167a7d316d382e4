package storage

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/pdfscan/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPageNotFound    = errors.New("page not found")
	ErrInvalidOrder    = errors.New("order must list every page exactly once")
)

// Direction moves a page one slot toward the start or end of the session.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

type SessionStore struct {
	sessions map[string]*models.ScanSession
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.ScanSession),
	}
}

// Create starts an empty session.
func (s *SessionStore) Create(enhanceEnabled bool, settings models.Enhancement) *models.ScanSession {
	session := &models.ScanSession{
		ID:        uuid.NewString(),
		Pages:     []*models.ScannedPage{},
		Enhance:   enhanceEnabled,
		Settings:  settings,
		CreatedAt: time.Now(),
	}
	s.Set(session.ID, session)
	return snapshot(session)
}

// Get returns a copy of the session; the page slice can be read without
// holding the lock.
func (s *SessionStore) Get(sessionID string) (*models.ScanSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, false
	}
	return snapshot(session), true
}

func (s *SessionStore) Set(sessionID string, session *models.ScanSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = session
}

// GetAll returns copies of every session, oldest first.
func (s *SessionStore) GetAll() []*models.ScanSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.ScanSession, 0, len(s.sessions))
	for _, v := range s.sessions {
		result = append(result, snapshot(v))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// AppendPages adds pages to the end of the session in the given order.
func (s *SessionStore) AppendPages(sessionID string, pages []*models.ScannedPage) (*models.ScanSession, error) {
	return s.update(sessionID, func(session *models.ScanSession) error {
		session.Pages = append(session.Pages, pages...)
		return nil
	})
}

// Page returns a single page of a session.
func (s *SessionStore) Page(sessionID, pageID string) (*models.ScannedPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	for _, p := range session.Pages {
		if p.ID == pageID {
			return p, nil
		}
	}
	return nil, ErrPageNotFound
}

// RemovePage drops one page, keeping the order of the rest.
func (s *SessionStore) RemovePage(sessionID, pageID string) (*models.ScanSession, error) {
	return s.update(sessionID, func(session *models.ScanSession) error {
		for i, p := range session.Pages {
			if p.ID == pageID {
				session.Pages = append(session.Pages[:i:i], session.Pages[i+1:]...)
				return nil
			}
		}
		return ErrPageNotFound
	})
}

// MovePage swaps the page at index with its neighbor. Moving past either
// end is a no-op.
func (s *SessionStore) MovePage(sessionID string, index int, dir Direction) (*models.ScanSession, error) {
	return s.update(sessionID, func(session *models.ScanSession) error {
		var target int
		switch dir {
		case Up:
			target = index - 1
		case Down:
			target = index + 1
		default:
			return fmt.Errorf("invalid direction %q", dir)
		}
		if index < 0 || index >= len(session.Pages) || target < 0 || target >= len(session.Pages) {
			return nil
		}
		session.Pages[index], session.Pages[target] = session.Pages[target], session.Pages[index]
		return nil
	})
}

// Reorder replaces the page order. pageIDs must be a permutation of the
// session's current page ids.
func (s *SessionStore) Reorder(sessionID string, pageIDs []string) (*models.ScanSession, error) {
	return s.update(sessionID, func(session *models.ScanSession) error {
		if len(pageIDs) != len(session.Pages) {
			return ErrInvalidOrder
		}
		byID := make(map[string]*models.ScannedPage, len(session.Pages))
		for _, p := range session.Pages {
			byID[p.ID] = p
		}
		ordered := make([]*models.ScannedPage, 0, len(pageIDs))
		for _, id := range pageIDs {
			p, ok := byID[id]
			if !ok {
				return ErrInvalidOrder
			}
			delete(byID, id)
			ordered = append(ordered, p)
		}
		session.Pages = ordered
		return nil
	})
}

// Clear removes every page but keeps the session.
func (s *SessionStore) Clear(sessionID string) (*models.ScanSession, error) {
	return s.update(sessionID, func(session *models.ScanSession) error {
		session.Pages = []*models.ScannedPage{}
		return nil
	})
}

func (s *SessionStore) update(sessionID string, fn func(*models.ScanSession) error) (*models.ScanSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	// Mutate a copy so a failed update leaves the stored order untouched.
	working := snapshot(session)
	if err := fn(working); err != nil {
		return nil, err
	}
	s.sessions[sessionID] = working
	return snapshot(working), nil
}

func snapshot(session *models.ScanSession) *models.ScanSession {
	cp := *session
	cp.Pages = make([]*models.ScannedPage, len(session.Pages))
	copy(cp.Pages, session.Pages)
	return &cp
}
