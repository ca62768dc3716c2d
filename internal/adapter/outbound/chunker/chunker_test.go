package chunker

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soapsift/soapsift/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// orderSpec has three operations with no resolvable payloads and no
// integration metadata, so the endpoint strategy yields overview, auth and
// one chunk per operation and nothing else.
func orderSpec() *domain.CommonSpec {
	return &domain.CommonSpec{
		APIName:     "OrderService",
		Version:     "1.0",
		Description: "Handles purchase orders.",
		BaseURL:     "https://api.example.com",
		Auth:        domain.Authentication{Type: "none"},
		Operations: []domain.Operation{
			{Name: "CreateOrder", SOAPAction: "urn:CreateOrder", Path: "/soap/orders", Documentation: "Creates an order."},
			{Name: "GetOrder", Documentation: "Returns one order."},
			{Name: "CancelOrder", Documentation: "Cancels a pending order."},
		},
	}
}

func richSpec() *domain.CommonSpec {
	spec := orderSpec()
	for i := range spec.Operations {
		spec.Operations[i].Input = []domain.ResolvedAttribute{
			{Name: "orderId", Type: "string"},
		}
	}
	spec.Integration = domain.Integration{
		Steps:         []string{"request credentials", "call CreateOrder"},
		BestPractices: "Retry idempotent operations with backoff.",
	}
	return spec
}

func assertFinalized(t *testing.T, chunks []domain.Chunk, spec *domain.CommonSpec) {
	t.Helper()
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, len(chunks), chunk.TotalChunks)
		require.NotNil(t, chunk.Metadata)
		assert.Equal(t, spec.APIName, chunk.Metadata["api_name"])
		assert.Equal(t, spec.Version, chunk.Metadata["api_version"])
		assert.NotEmpty(t, chunk.Text)
	}
}

func TestEndpointChunker_ThreeOperations(t *testing.T) {
	spec := orderSpec()
	c, err := New(domain.StrategyEndpoint, Config{MinChunkSize: 10}, testLogger())
	require.NoError(t, err)

	chunks, err := c.Chunk(spec)
	require.NoError(t, err)
	require.Len(t, chunks, 5)
	assertFinalized(t, chunks, spec)

	assert.Equal(t, domain.ChunkTypeOverview, chunks[0].Type)
	assert.Equal(t, domain.ChunkTypeAuthentication, chunks[1].Type)
	for i, opName := range []string{"CreateOrder", "GetOrder", "CancelOrder"} {
		chunk := chunks[2+i]
		assert.Equal(t, domain.ChunkTypeOperation, chunk.Type)
		assert.Equal(t, opName, chunk.Metadata["operation"])
		assert.Contains(t, chunk.Text, opName)
	}
}

func TestEndpointChunker_DataModelAndIntegration(t *testing.T) {
	spec := richSpec()
	c, err := New(domain.StrategyEndpoint, Config{MinChunkSize: 10}, testLogger())
	require.NoError(t, err)

	chunks, err := c.Chunk(spec)
	require.NoError(t, err)
	require.Len(t, chunks, 7)
	assert.Equal(t, domain.ChunkTypeDataModel, chunks[5].Type)
	assert.Contains(t, chunks[5].Text, "orderId (string)")
	assert.Equal(t, domain.ChunkTypeIntegration, chunks[6].Type)
	assert.Contains(t, chunks[6].Text, "Retry idempotent operations")
}

func TestEndpointChunker_MinSizeDropsAll(t *testing.T) {
	c, err := New(domain.StrategyEndpoint, Config{MinChunkSize: 5000}, testLogger())
	require.NoError(t, err)

	chunks, err := c.Chunk(orderSpec())
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestEndpointChunker_TruncationDropsLowestPriorityFirst(t *testing.T) {
	spec := richSpec()
	c, err := New(domain.StrategyEndpoint, Config{MinChunkSize: 10, MaxChunks: 4}, testLogger())
	require.NoError(t, err)

	chunks, err := c.Chunk(spec)
	require.NoError(t, err)
	require.Len(t, chunks, 4)
	// Integration goes first, then data-model, then the latest operation.
	// Overview and authentication always survive.
	assert.Equal(t, domain.ChunkTypeOverview, chunks[0].Type)
	assert.Equal(t, domain.ChunkTypeAuthentication, chunks[1].Type)
	assert.Equal(t, "CreateOrder", chunks[2].Metadata["operation"])
	assert.Equal(t, "GetOrder", chunks[3].Metadata["operation"])
	assertFinalized(t, chunks, spec)
}

func TestSplitWindow_NoTerminators(t *testing.T) {
	text := strings.Repeat("a", 1000)
	pieces := splitWindow(text, 100, 20)

	// With no sentence boundary to snap to, the window advances by exactly
	// size-overlap, so the count is bounded by ceil(len/(size-overlap))+1.
	assert.LessOrEqual(t, len(pieces), 1000/80+2)
	for _, piece := range pieces {
		assert.LessOrEqual(t, len(piece), 100)
	}
	assert.Equal(t, text[:100], pieces[0])
}

func TestSplitWindow_SnapsToSentenceBoundary(t *testing.T) {
	text := "Alpha beta gamma delta. Epsilon zeta eta theta."
	pieces := splitWindow(text, 30, 0)
	require.NotEmpty(t, pieces)
	assert.Equal(t, "Alpha beta gamma delta.", pieces[0])
}

func TestSplitWindow_TerminatesOnPathologicalInput(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"all terminators", strings.Repeat(".", 500)},
		{"terminator at snap limit", strings.Repeat("a", 35) + "." + strings.Repeat("b", 500)},
		{"overlap near size", strings.Repeat("c", 300)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pieces := splitWindow(tt.text, 50, 45)
			assert.NotEmpty(t, pieces)
			for _, piece := range pieces {
				assert.LessOrEqual(t, len(piece), 50)
			}
		})
	}
}

func TestFixedSizeChunker(t *testing.T) {
	spec := richSpec()
	c, err := New(domain.StrategyFixedSize, Config{ChunkSize: 120, ChunkOverlap: 20}, testLogger())
	require.NoError(t, err)

	chunks, err := c.Chunk(spec)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assertFinalized(t, chunks, spec)
	for _, chunk := range chunks {
		assert.Equal(t, domain.ChunkTypeFixedSize, chunk.Type)
		assert.LessOrEqual(t, len(chunk.Text), 120)
	}
}

func TestSemanticPieces_ParagraphPerChunk(t *testing.T) {
	paragraph := strings.TrimSpace(strings.Repeat("lorem ipsum ", 21)) // ~250 bytes
	text := strings.Join([]string{paragraph, paragraph, paragraph, paragraph}, "\n\n")

	pieces := semanticPieces(text, 300)
	require.Len(t, pieces, 4)
	for _, piece := range pieces {
		assert.Equal(t, paragraph, piece)
	}
}

func TestSemanticPieces_PacksSmallParagraphs(t *testing.T) {
	paragraph := strings.Repeat("x", 100)
	text := strings.Join([]string{paragraph, paragraph, paragraph, paragraph}, "\n\n")

	pieces := semanticPieces(text, 300)
	require.Len(t, pieces, 2)
	for _, piece := range pieces {
		assert.Equal(t, paragraph+"\n\n"+paragraph, piece)
	}
}

func TestSemanticPieces_ResplitsOversizedParagraph(t *testing.T) {
	oversized := strings.Repeat("y", 700)
	pieces := semanticPieces(oversized, 300)
	require.Greater(t, len(pieces), 1)
	for _, piece := range pieces {
		assert.LessOrEqual(t, len(piece), 300)
	}
}

func TestSemanticChunker(t *testing.T) {
	spec := richSpec()
	c, err := New(domain.StrategySemantic, Config{ChunkSize: 200}, testLogger())
	require.NoError(t, err)

	chunks, err := c.Chunk(spec)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assertFinalized(t, chunks, spec)
	for _, chunk := range chunks {
		assert.Equal(t, domain.ChunkTypeSemantic, chunk.Type)
	}
}

func TestHybridChunker_AppendsUncoveredText(t *testing.T) {
	spec := orderSpec()
	// A generous chunk size packs the whole rendering into one semantic
	// piece, which no single endpoint chunk contains.
	c, err := New(domain.StrategyHybrid, Config{ChunkSize: 4000, MinChunkSize: 10}, testLogger())
	require.NoError(t, err)

	chunks, err := c.Chunk(spec)
	require.NoError(t, err)
	require.Len(t, chunks, 6)
	assertFinalized(t, chunks, spec)
	last := chunks[len(chunks)-1]
	assert.Equal(t, domain.ChunkTypeSemantic, last.Type)
	assert.Contains(t, last.Text, "CreateOrder")
}

func TestHybridChunker_RespectsBudget(t *testing.T) {
	spec := orderSpec()
	c, err := New(domain.StrategyHybrid, Config{ChunkSize: 4000, MinChunkSize: 10, MaxChunks: 5}, testLogger())
	require.NoError(t, err)

	chunks, err := c.Chunk(spec)
	require.NoError(t, err)
	assert.Len(t, chunks, 5)
	assertFinalized(t, chunks, spec)
}

func TestNew_UnknownStrategy(t *testing.T) {
	_, err := New(domain.Strategy("recursive"), Config{}, testLogger())
	assert.Error(t, err)
}

func TestRenderSpec_SectionsSeparatedByBlankLines(t *testing.T) {
	text := RenderSpec(richSpec())
	sections := strings.Split(text, "\n\n")
	assert.GreaterOrEqual(t, len(sections), 5)
	assert.Contains(t, sections[0], "OrderService")
	assert.Contains(t, text, "Authentication: none.")
	assert.Contains(t, text, "Data model for OrderService")
}
