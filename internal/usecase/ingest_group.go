package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/soapsift/soapsift/internal/domain"
)

// IngestGroupUseCase runs the resolve → normalize → chunk → persist pipeline
// for one service group. Each group owns its own registry and output, so
// instances can run concurrently for different groups without shared state.
type IngestGroupUseCase struct {
	generator SpecGenerator
	chunker   Chunker
	writer    SpecWriter
	exporter  SpecExporter // optional
	sink      DocumentSink // optional
	logger    *slog.Logger
}

// NewIngestGroupUseCase creates the per-group pipeline. exporter and sink
// may be nil when the corresponding output is disabled.
func NewIngestGroupUseCase(
	generator SpecGenerator,
	chunker Chunker,
	writer SpecWriter,
	exporter SpecExporter,
	sink DocumentSink,
	logger *slog.Logger,
) *IngestGroupUseCase {
	return &IngestGroupUseCase{
		generator: generator,
		chunker:   chunker,
		writer:    writer,
		exporter:  exporter,
		sink:      sink,
		logger:    logger.With("usecase", "IngestGroup"),
	}
}

// Execute processes one group end to end. Failures are recorded on the
// returned result, never propagated as panics or shared state; a failing
// group must not affect sibling groups.
func (uc *IngestGroupUseCase) Execute(ctx context.Context, group domain.ServiceGroup) GroupResult {
	log := uc.logger.With(slog.String("group", group.Name))
	result := GroupResult{Group: group.Name}

	spec, warnings, err := uc.generator.Generate(ctx, group)
	result.Warnings = warnings
	if err != nil {
		log.Error("Failed to generate specification.", slog.Any("error", err))
		result.Err = err
		return result
	}

	specPath, err := uc.writer.Write(ctx, spec)
	if err != nil {
		log.Error("Failed to persist specification.", slog.Any("error", err))
		result.Err = fmt.Errorf("failed to persist spec for group %s: %w", group.Name, err)
		return result
	}
	result.SpecPath = specPath

	if uc.exporter != nil {
		exportPath, exportErr := uc.exporter.Export(ctx, spec)
		if exportErr != nil {
			// Export is a supplementary projection; its failure degrades to
			// a warning rather than failing the group.
			log.Warn("Failed to export alternate representation.", slog.Any("error", exportErr))
			result.Warnings = append(result.Warnings, fmt.Sprintf("export failed: %v", exportErr))
		} else {
			result.ExportPath = exportPath
		}
	}

	chunks, err := uc.chunker.Chunk(spec)
	if err != nil {
		log.Error("Failed to chunk specification.", slog.Any("error", err))
		result.Err = fmt.Errorf("failed to chunk spec for group %s: %w", group.Name, err)
		return result
	}
	result.ChunkCount = len(chunks)

	if uc.sink != nil {
		for _, chunk := range chunks {
			id := fmt.Sprintf("%s#%d", spec.APIName, chunk.Index)
			if sinkErr := uc.sink.Insert(ctx, chunk.Text, chunk.Metadata, id); sinkErr != nil {
				log.Error("Failed to hand chunk to document sink.",
					slog.String("chunk_id", id), slog.Any("error", sinkErr))
				result.Err = fmt.Errorf("%w: %s: %v", ErrSinkRejected, id, sinkErr)
				return result
			}
		}
	}

	log.Info("Group pipeline completed.",
		slog.String("spec_path", result.SpecPath),
		slog.Int("chunk_count", result.ChunkCount),
		slog.Int("warning_count", len(result.Warnings)))
	return result
}
