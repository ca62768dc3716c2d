package chunker

import (
	"log/slog"
	"strings"

	"github.com/soapsift/soapsift/internal/domain"
)

// FixedSizeChunker slides a window of ChunkSize across the full rendering
// with ChunkOverlap, snapping window ends to sentence boundaries.
type FixedSizeChunker struct {
	cfg    Config
	logger *slog.Logger
}

func (c *FixedSizeChunker) Chunk(spec *domain.CommonSpec) ([]domain.Chunk, error) {
	text := RenderSpec(spec)
	pieces := splitWindow(text, c.cfg.ChunkSize, c.cfg.ChunkOverlap)
	chunks := make([]domain.Chunk, 0, len(pieces))
	for _, piece := range pieces {
		chunks = append(chunks, domain.Chunk{Text: piece, Type: domain.ChunkTypeFixedSize})
	}
	c.logger.Debug("Produced fixed-size chunks.",
		slog.Int("text_length", len(text)),
		slog.Int("chunk_count", len(chunks)))
	return finalize(chunks, spec), nil
}

// splitWindow slides a window of the given size across text with the given
// overlap. When the window end falls inside the text, the cut snaps backward
// to the nearest sentence terminator if one lies within the last 30% of the
// window, avoiding mid-sentence breaks. The window start advances to
// end-overlap; when the sentence snap pulls the end so far back that this
// makes no forward progress, the start is forced forward by half the window
// size so the loop always terminates.
func splitWindow(text string, size, overlap int) []string {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	var pieces []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			if piece := strings.TrimSpace(text[start:]); piece != "" {
				pieces = append(pieces, piece)
			}
			break
		}
		cut := end
		limit := end - size*3/10
		if limit < start {
			limit = start
		}
		for i := end - 1; i >= limit; i-- {
			if isSentenceEnd(text[i]) {
				cut = i + 1
				break
			}
		}
		if piece := strings.TrimSpace(text[start:cut]); piece != "" {
			pieces = append(pieces, piece)
		}
		next := cut - overlap
		if next <= start {
			next = start + size/2
			if next <= start {
				next = start + 1
			}
		}
		start = next
	}
	return pieces
}

func isSentenceEnd(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}
