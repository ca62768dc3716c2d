package domain

import "fmt"

// ChunkType tags what a chunk describes.
type ChunkType string

const (
	ChunkTypeOverview       ChunkType = "overview"
	ChunkTypeAuthentication ChunkType = "authentication"
	ChunkTypeOperation      ChunkType = "operation"
	ChunkTypeDataModel      ChunkType = "data-model"
	ChunkTypeIntegration    ChunkType = "integration"
	ChunkTypeFixedSize      ChunkType = "fixed-size"
	ChunkTypeSemantic       ChunkType = "semantic"
)

// Chunk is one retrieval-ready unit derived from a CommonSpec. Chunks carry
// enough denormalized metadata to be indexed and displayed without
// dereferencing the parent spec.
type Chunk struct {
	Text string    `json:"text"`
	Type ChunkType `json:"chunk_type"`
	// Metadata always includes the parent spec identity under "api_name".
	Metadata map[string]string `json:"metadata"`
	// Index is this chunk's position in its batch, a dense 0..N-1 range.
	Index int `json:"chunk_index"`
	// TotalChunks equals the length of the sequence this chunk belongs to.
	// Back-filled once the full sequence is known.
	TotalChunks int `json:"total_chunks"`
}

// Strategy selects how a CommonSpec is segmented into chunks.
type Strategy string

const (
	StrategyEndpoint  Strategy = "endpoint-based"
	StrategyFixedSize Strategy = "fixed-size"
	StrategySemantic  Strategy = "semantic"
	StrategyHybrid    Strategy = "hybrid"
)

// ParseStrategy validates a strategy selector against the closed enumeration.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyEndpoint, StrategyFixedSize, StrategySemantic, StrategyHybrid:
		return Strategy(s), nil
	case "":
		return StrategyEndpoint, nil
	default:
		return "", fmt.Errorf("unknown chunking strategy %q (want one of %s, %s, %s, %s)",
			s, StrategyEndpoint, StrategyFixedSize, StrategySemantic, StrategyHybrid)
	}
}
