package memsink

import (
	"context"
	"log/slog"
	"sync"

	"github.com/soapsift/soapsift/internal/usecase"
)

// Document is one stored entry.
type Document struct {
	Text     string
	Metadata map[string]string
}

// Sink provides an in-memory implementation of the DocumentSink contract.
// NOTE: not persistent; used by tests and dry runs without a vector store.
type Sink struct {
	mu     sync.RWMutex
	docs   map[string]Document
	logger *slog.Logger
}

// New creates an in-memory document sink.
func New(logger *slog.Logger) *Sink {
	return &Sink{
		docs:   make(map[string]Document),
		logger: logger.With("component", "mem_sink"),
	}
}

// Insert stores the document, overwriting any previous entry with the id.
func (s *Sink) Insert(ctx context.Context, text string, metadata map[string]string, id string) error {
	if id == "" {
		return usecase.ErrSinkRejected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = Document{Text: text, Metadata: metadata}
	s.logger.Debug("Stored document.", slog.String("id", id), slog.Int("total", len(s.docs)))
	return nil
}

// Remove deletes the document if present.
func (s *Sink) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

// Get returns a stored document by id.
func (s *Sink) Get(id string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	return doc, ok
}

// Len returns the number of stored documents.
func (s *Sink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
