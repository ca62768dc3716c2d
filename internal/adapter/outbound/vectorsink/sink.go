// Package vectorsink is a minimal REST client for a document store that
// computes embeddings on its own side. The core hands it text, metadata and
// an id per chunk and assumes nothing else about the wire protocol; timeout
// and retry policy live in the configured HTTP client.
package vectorsink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Config configures the sink endpoint.
type Config struct {
	// BaseURL is the store's root, e.g. "http://localhost:6333".
	BaseURL string
	// APIKey is sent as the api-key header when non-empty.
	APIKey string
	// Timeout bounds each request; defaults to 15s.
	Timeout time.Duration
}

// Sink implements usecase.DocumentSink over HTTP.
type Sink struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a REST document sink.
func New(cfg Config, logger *slog.Logger) *Sink {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Sink{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With("component", "vector_sink"),
	}
}

type insertRequest struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

// Insert posts one document to the store.
func (s *Sink) Insert(ctx context.Context, text string, metadata map[string]string, id string) error {
	payload := insertRequest{ID: id, Text: text, Metadata: metadata}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", id, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/documents", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create insert request for %s: %w", id, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("insert %s failed: %w", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("insert %s failed: %s", id, resp.Status)
	}
	s.logger.Debug("Inserted document.", slog.String("id", id), slog.Int("text_length", len(text)))
	return nil
}

// Remove deletes one document by id.
func (s *Sink) Remove(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.baseURL+"/documents/"+url.PathEscape(id), nil)
	if err != nil {
		return fmt.Errorf("failed to create remove request for %s: %w", id, err)
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("remove %s failed: %w", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("remove %s failed: %s", id, resp.Status)
	}
	s.logger.Debug("Removed document.", slog.String("id", id))
	return nil
}
