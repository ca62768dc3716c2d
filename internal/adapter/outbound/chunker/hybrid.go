package chunker

import (
	"log/slog"
	"strings"

	"github.com/soapsift/soapsift/internal/domain"
)

// HybridChunker runs the endpoint strategy first and, while the chunk budget
// is not exhausted, appends semantic chunks that add text the endpoint
// chunks did not already cover.
type HybridChunker struct {
	cfg    Config
	logger *slog.Logger
}

func (c *HybridChunker) Chunk(spec *domain.CommonSpec) ([]domain.Chunk, error) {
	chunks := endpointChunks(spec, c.cfg)

	if len(chunks) < c.cfg.MaxChunks {
		covered := make([]string, 0, len(chunks))
		for _, chunk := range chunks {
			covered = append(covered, chunk.Text)
		}
		for _, piece := range semanticPieces(RenderSpec(spec), c.cfg.ChunkSize) {
			if len(chunks) >= c.cfg.MaxChunks {
				break
			}
			if isCovered(piece, covered) {
				continue
			}
			chunks = append(chunks, domain.Chunk{Text: piece, Type: domain.ChunkTypeSemantic})
			covered = append(covered, piece)
		}
	}

	c.logger.Debug("Produced hybrid chunks.", slog.Int("chunk_count", len(chunks)))
	return finalize(chunks, spec), nil
}

// isCovered reports whether piece is already present, in whole, inside any
// previously produced chunk.
func isCovered(piece string, covered []string) bool {
	for _, text := range covered {
		if strings.Contains(text, piece) {
			return true
		}
	}
	return false
}
