package memory

import (
	"sync"
	"time"

	"docchat/internal/domain"
)

// Store is the in-process degradation tier: sessions with their conversation
// history, and documents keyed by session+document. No persistence, no
// eviction, no size bound — acceptable only because it backs the fallback
// path, not the primary store. Everything here resets on restart.
//
// Constructed once at process start and injected; never package-global.
type Store struct {
	mu        sync.RWMutex
	sessions  map[string]*domain.Session
	documents map[string]domain.Document
	docOrder  map[string][]string
}

func NewStore() *Store {
	return &Store{
		sessions:  make(map[string]*domain.Session),
		documents: make(map[string]domain.Document),
		docOrder:  make(map[string][]string),
	}
}

// Touch creates the session if the id has not been seen before
func (s *Store) Touch(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked(sessionID)
}

func (s *Store) touchLocked(sessionID string) *domain.Session {
	if sess, ok := s.sessions[sessionID]; ok {
		return sess
	}
	sess := &domain.Session{ID: sessionID, CreatedAt: time.Now()}
	s.sessions[sessionID] = sess
	return sess
}

// AppendMessage appends to the session's ordered message sequence,
// creating the session lazily.
func (s *Store) AppendMessage(sessionID string, msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.touchLocked(sessionID)
	sess.Messages = append(sess.Messages, msg)
}

// History returns a copy of the session's messages in submission order
func (s *Store) History(sessionID string) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	out := make([]domain.Message, len(sess.Messages))
	copy(out, sess.Messages)
	return out
}

// PutDocument stores a document under its session, creating the session
// lazily. Documents are never updated in place; a duplicate id keeps its
// original storage-order slot.
func (s *Store) PutDocument(doc domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked(doc.SessionID)
	key := docKey(doc.SessionID, doc.ID)
	if _, exists := s.documents[key]; !exists {
		s.docOrder[doc.SessionID] = append(s.docOrder[doc.SessionID], key)
	}
	s.documents[key] = doc
}

// SessionDocuments returns up to limit documents for the session in storage
// order. A non-positive limit returns all of them.
func (s *Store) SessionDocuments(sessionID string, limit int) []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := s.docOrder[sessionID]
	if limit > 0 && limit < len(keys) {
		keys = keys[:limit]
	}
	out := make([]domain.Document, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.documents[k])
	}
	return out
}

// DocumentCount returns how many documents the session holds
func (s *Store) DocumentCount(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docOrder[sessionID])
}

func docKey(sessionID, documentID string) string {
	return sessionID + "\x00" + documentID
}
