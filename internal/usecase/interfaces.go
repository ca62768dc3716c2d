package usecase

import (
	"context"
	"errors"

	"github.com/soapsift/soapsift/internal/domain"
)

// Standard errors returned by use cases and adapters.
var (
	// ErrInputDirMissing is a configuration error: the whole run aborts.
	ErrInputDirMissing = errors.New("input directory does not exist")
	// ErrNoOperations marks a service group that produced zero resolvable
	// operations. It fails only that group.
	ErrNoOperations = errors.New("no resolvable operations in service group")
	// ErrSinkRejected wraps a document sink refusal.
	ErrSinkRejected = errors.New("document sink rejected chunk")
)

// --- Discovery & grouping ---

// Discoverer scans an input location and classifies files by extension into
// interface descriptions and schema descriptions.
type Discoverer interface {
	Discover(ctx context.Context, root string) (interfaces []domain.SourceFile, schemas []domain.SourceFile, err error)
}

// GroupingStrategy associates each interface file with the schema files it
// likely depends on. Schema files matched by no interface file are returned
// as orphans; orphans are reported, never silently dropped.
//
// The default implementation matches by filename-token overlap. The exact
// matching behavior may be relied upon by existing outputs, so replacements
// plug in here rather than changing the default.
type GroupingStrategy interface {
	Group(interfaces []domain.SourceFile, schemas []domain.SourceFile) (groups []domain.ServiceGroup, orphans []domain.SourceFile)
}

// --- Resolution & normalization ---

// SpecGenerator turns one service group into a normalized CommonSpec.
// Attribute-level problems degrade to placeholders and come back as warnings;
// a group with zero resolvable operations returns ErrNoOperations.
type SpecGenerator interface {
	Generate(ctx context.Context, group domain.ServiceGroup) (*domain.CommonSpec, []string, error)
}

// --- Chunking ---

// Chunker segments a CommonSpec into an ordered chunk sequence. The spec is
// never mutated; the sequence is regenerable at any time.
type Chunker interface {
	Chunk(spec *domain.CommonSpec) ([]domain.Chunk, error)
}

// --- Sinks ---

// SpecWriter persists a CommonSpec and returns the location it was written to.
type SpecWriter interface {
	Write(ctx context.Context, spec *domain.CommonSpec) (string, error)
}

// SpecExporter renders a CommonSpec into an alternate representation (e.g. an
// OpenAPI document) and returns where it landed.
type SpecExporter interface {
	Export(ctx context.Context, spec *domain.CommonSpec) (string, error)
}

// DocumentSink is the minimal vector-store contract: one insert and one
// remove per chunk. The core never assumes a particular wire protocol.
type DocumentSink interface {
	Insert(ctx context.Context, text string, metadata map[string]string, id string) error
	Remove(ctx context.Context, id string) error
}

// --- Results ---

// GroupResult is the structured outcome of one group's pipeline.
type GroupResult struct {
	Group      string
	SpecPath   string
	ExportPath string
	ChunkCount int
	Warnings   []string
	Err        error
}

// RunReport aggregates a whole run. A run with zero resolvable groups is a
// non-fatal empty result, not an error.
type RunReport struct {
	FilesFound      int
	GroupsProcessed int
	GroupsFailed    int
	Orphans         []string
	Results         []GroupResult
}
