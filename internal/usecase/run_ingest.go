package usecase

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/soapsift/soapsift/internal/domain"
)

// RunIngestUseCase orchestrates a whole run: discover, group, then fan the
// independent group pipelines out to a bounded set of workers. Discovery is
// sequential; group pipelines share no mutable state with one another.
type RunIngestUseCase struct {
	discoverer Discoverer
	grouping   GroupingStrategy
	ingest     *IngestGroupUseCase
	workers    int
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewRunIngestUseCase creates the run orchestrator. workers below 1 are
// clamped to 1.
func NewRunIngestUseCase(
	discoverer Discoverer,
	grouping GroupingStrategy,
	ingest *IngestGroupUseCase,
	workers int,
	logger *slog.Logger,
) *RunIngestUseCase {
	if workers < 1 {
		workers = 1
	}
	return &RunIngestUseCase{
		discoverer: discoverer,
		grouping:   grouping,
		ingest:     ingest,
		workers:    workers,
		tracer:     otel.Tracer("soapsift/usecase"),
		logger:     logger.With("usecase", "RunIngest"),
	}
}

// Execute runs the full pipeline over root. Only configuration errors (a
// missing or unreadable input location) are returned as errors; per-group
// failures are recorded on the report, and zero groups is a clean empty
// result.
func (uc *RunIngestUseCase) Execute(ctx context.Context, root string) (*RunReport, error) {
	ctx, span := uc.tracer.Start(ctx, "run_ingest")
	defer span.End()

	interfaces, schemas, err := uc.discoverer.Discover(ctx, root)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	groups, orphans := uc.grouping.Group(interfaces, schemas)
	report := &RunReport{FilesFound: len(interfaces) + len(schemas)}
	for _, orphan := range orphans {
		report.Orphans = append(report.Orphans, orphan.Path)
	}
	span.SetAttributes(
		attribute.Int("files_found", report.FilesFound),
		attribute.Int("group_count", len(groups)),
		attribute.Int("orphan_count", len(orphans)),
	)
	if len(groups) == 0 {
		uc.logger.Info("No service groups to process.", slog.Int("files_found", report.FilesFound))
		return report, nil
	}

	jobs := make(chan domain.ServiceGroup)
	results := make(chan GroupResult, len(groups))
	var wg sync.WaitGroup
	for i := 0; i < uc.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for group := range jobs {
				results <- uc.processGroup(ctx, group)
			}
		}()
	}
	for _, group := range groups {
		jobs <- group
	}
	close(jobs)
	wg.Wait()
	close(results)

	for result := range results {
		report.Results = append(report.Results, result)
		if result.Err != nil {
			report.GroupsFailed++
		} else {
			report.GroupsProcessed++
		}
	}
	// Worker completion order is nondeterministic; report in group order.
	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].Group < report.Results[j].Group
	})

	uc.logger.Info("Run completed.",
		slog.Int("files_found", report.FilesFound),
		slog.Int("groups_processed", report.GroupsProcessed),
		slog.Int("groups_failed", report.GroupsFailed),
		slog.Int("orphan_count", len(report.Orphans)))
	return report, nil
}

func (uc *RunIngestUseCase) processGroup(ctx context.Context, group domain.ServiceGroup) GroupResult {
	ctx, span := uc.tracer.Start(ctx, "ingest_group",
		trace.WithAttributes(attribute.String("group", group.Name)))
	defer span.End()

	result := uc.ingest.Execute(ctx, group)
	if result.Err != nil {
		span.SetStatus(codes.Error, result.Err.Error())
	} else {
		span.SetAttributes(attribute.Int("chunk_count", result.ChunkCount))
	}
	return result
}
