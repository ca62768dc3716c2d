package chunker

import (
	"log/slog"

	"github.com/soapsift/soapsift/internal/domain"
)

// Truncation priorities. When the chunk budget is exceeded, candidates with
// the highest priority value go first, so operation chunks outlive the
// aggregate data-model and integration chunks.
const (
	prioCore        = 0 // overview, authentication
	prioOperation   = 1
	prioDataModel   = 2
	prioIntegration = 3
)

type candidate struct {
	chunk    domain.Chunk
	priority int
}

// EndpointChunker is the default strategy: one chunk for the API overview,
// one for authentication, one per operation, one aggregate data-model chunk
// and one integration chunk.
type EndpointChunker struct {
	cfg    Config
	logger *slog.Logger
}

func (c *EndpointChunker) Chunk(spec *domain.CommonSpec) ([]domain.Chunk, error) {
	chunks := endpointChunks(spec, c.cfg)
	c.logger.Debug("Produced endpoint-based chunks.", slog.Int("chunk_count", len(chunks)))
	return finalize(chunks, spec), nil
}

// endpointChunks builds the un-finalized endpoint chunk sequence. Shared
// with the hybrid strategy, which appends to it before finalizing.
func endpointChunks(spec *domain.CommonSpec, cfg Config) []domain.Chunk {
	var candidates []candidate
	add := func(text string, typ domain.ChunkType, meta map[string]string, priority int) {
		if text == "" || len(text) < cfg.MinChunkSize {
			return
		}
		candidates = append(candidates, candidate{
			chunk:    domain.Chunk{Text: text, Type: typ, Metadata: meta},
			priority: priority,
		})
	}

	add(renderOverview(spec), domain.ChunkTypeOverview, nil, prioCore)
	add(renderAuth(spec), domain.ChunkTypeAuthentication, nil, prioCore)
	for i := range spec.Operations {
		op := &spec.Operations[i]
		add(renderOperation(op), domain.ChunkTypeOperation, map[string]string{
			"operation":   op.Name,
			"soap_action": op.SOAPAction,
			"path":        op.Path,
			"summary":     op.Documentation,
		}, prioOperation)
	}
	add(renderDataModel(spec), domain.ChunkTypeDataModel, nil, prioDataModel)
	add(renderIntegration(spec), domain.ChunkTypeIntegration, nil, prioIntegration)

	// Truncate lowest-priority candidates first, later ones before earlier.
	for len(candidates) > cfg.MaxChunks {
		drop := -1
		for i, cand := range candidates {
			if drop < 0 || cand.priority >= candidates[drop].priority {
				drop = i
			}
		}
		candidates = append(candidates[:drop], candidates[drop+1:]...)
	}

	chunks := make([]domain.Chunk, 0, len(candidates))
	for _, cand := range candidates {
		chunks = append(chunks, cand.chunk)
	}
	return chunks
}
