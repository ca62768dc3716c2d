// Package chunker segments a normalized CommonSpec into retrieval-ready
// chunks under one of four interchangeable strategies. Chunking only reads
// the spec; a chunk sequence is regenerable at any time without re-resolving
// the type graph.
package chunker

import (
	"fmt"
	"log/slog"

	"github.com/soapsift/soapsift/internal/domain"
	"github.com/soapsift/soapsift/internal/usecase"
)

// Config holds the segmentation knobs shared by all strategies.
type Config struct {
	// ChunkSize is the window size (fixed-size) or accumulation limit
	// (semantic) in bytes.
	ChunkSize int
	// ChunkOverlap is the fixed-size window overlap.
	ChunkOverlap int
	// MinChunkSize drops endpoint-strategy chunks below this length.
	MinChunkSize int
	// MaxChunks caps the chunk count per spec; lowest-priority chunks are
	// truncated first.
	MaxChunks int
}

func (c Config) normalized() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = 1000
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		c.ChunkOverlap = c.ChunkSize / 5
	}
	if c.MinChunkSize < 0 {
		c.MinChunkSize = 0
	}
	if c.MaxChunks <= 0 {
		c.MaxChunks = 50
	}
	return c
}

// New selects a chunker implementation for the given strategy.
func New(strategy domain.Strategy, cfg Config, logger *slog.Logger) (usecase.Chunker, error) {
	cfg = cfg.normalized()
	log := logger.With("component", "chunker", "strategy", string(strategy))
	switch strategy {
	case domain.StrategyEndpoint, "":
		return &EndpointChunker{cfg: cfg, logger: log}, nil
	case domain.StrategyFixedSize:
		return &FixedSizeChunker{cfg: cfg, logger: log}, nil
	case domain.StrategySemantic:
		return &SemanticChunker{cfg: cfg, logger: log}, nil
	case domain.StrategyHybrid:
		return &HybridChunker{cfg: cfg, logger: log}, nil
	default:
		return nil, fmt.Errorf("unknown chunking strategy: %s", strategy)
	}
}

// finalize assigns dense 0..N-1 indices, back-fills total_chunks, and stamps
// the parent spec identity onto every chunk's metadata.
func finalize(chunks []domain.Chunk, spec *domain.CommonSpec) []domain.Chunk {
	for i := range chunks {
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = make(map[string]string)
		}
		chunks[i].Metadata["api_name"] = spec.APIName
		chunks[i].Metadata["api_version"] = spec.Version
		chunks[i].Index = i
		chunks[i].TotalChunks = len(chunks)
	}
	return chunks
}
