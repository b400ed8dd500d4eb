package document

import (
	"fmt"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Store tracks the documents currently open in the editor, keyed by URI.
// It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

func NewStore() *Store {
	return &Store{docs: make(map[string]*Document)}
}

// Open registers a newly opened document. Opening an already-open URI is an
// error.
func (s *Store) Open(uri string, content string, version protocol.Integer) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[uri]; exists {
		return nil, fmt.Errorf("document already open: %s", uri)
	}
	doc := New(uri, content, version)
	s.docs[uri] = doc
	return doc, nil
}

// Get returns the open document for uri, if any.
func (s *Store) Get(uri string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, exists := s.docs[uri]
	return doc, exists
}

// Close forgets an open document.
func (s *Store) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, uri)
}
