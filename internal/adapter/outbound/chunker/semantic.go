package chunker

import (
	"log/slog"
	"strings"

	"github.com/soapsift/soapsift/internal/domain"
)

// SemanticChunker splits the full rendering on blank-line boundaries and
// greedily packs paragraphs into chunks of at most ChunkSize.
type SemanticChunker struct {
	cfg    Config
	logger *slog.Logger
}

func (c *SemanticChunker) Chunk(spec *domain.CommonSpec) ([]domain.Chunk, error) {
	pieces := semanticPieces(RenderSpec(spec), c.cfg.ChunkSize)
	chunks := make([]domain.Chunk, 0, len(pieces))
	for _, piece := range pieces {
		chunks = append(chunks, domain.Chunk{Text: piece, Type: domain.ChunkTypeSemantic})
	}
	c.logger.Debug("Produced semantic chunks.", slog.Int("chunk_count", len(chunks)))
	return finalize(chunks, spec), nil
}

// semanticPieces accumulates paragraphs until adding the next one would
// exceed size, then closes the chunk. Any accumulated chunk still over size
// (a single oversized paragraph) is re-split with the same
// sentence-boundary-snapping rule fixed-size chunking uses.
func semanticPieces(text string, size int) []string {
	if size <= 0 {
		size = 1000
	}
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}

	var pieces []string
	var current strings.Builder
	flush := func() {
		if current.Len() == 0 {
			return
		}
		pieces = append(pieces, current.String())
		current.Reset()
	}
	for _, p := range paragraphs {
		if current.Len() > 0 && current.Len()+2+len(p) > size {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	flush()

	var bounded []string
	for _, piece := range pieces {
		if len(piece) <= size {
			bounded = append(bounded, piece)
			continue
		}
		bounded = append(bounded, splitWindow(piece, size, 0)...)
	}
	return bounded
}
