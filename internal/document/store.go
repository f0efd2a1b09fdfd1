package document

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrNotFound is returned for a document name that is not open.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicate is returned when opening a name that is already open.
	ErrDuplicate = errors.New("document already open")
)

// Store keeps the open documents by name. It is safe for concurrent use;
// the documents themselves are not.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{docs: make(map[string]*Document)}
}

// Add stores d under its name.
func (s *Store) Add(d *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[d.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, d.Name())
	}
	s.docs[d.Name()] = d
	return nil
}

// Get returns the document called name.
func (s *Store) Get(name string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return d, nil
}

// Remove closes the document called name and forgets it.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	d, ok := s.docs[name]
	delete(s.docs, name)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	d.Close()
	return nil
}

// Names returns the open document names in order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.docs))
	for n := range s.docs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Clear closes every document.
func (s *Store) Clear() {
	s.mu.Lock()
	docs := s.docs
	s.docs = make(map[string]*Document)
	s.mu.Unlock()
	for _, d := range docs {
		d.Close()
	}
}
