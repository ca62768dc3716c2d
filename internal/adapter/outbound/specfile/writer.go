package specfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/soapsift/soapsift/internal/domain"
)

// Writer persists a CommonSpec as one JSON document per service. Filenames
// are timestamp-qualified and collision-avoiding: a write never overwrites
// an existing file in place, so a failed write leaves prior output intact.
type Writer struct {
	outputDir string
	logger    *slog.Logger
	now       func() time.Time
}

// NewWriter creates a spec writer targeting outputDir. The directory is
// created on first write if missing.
func NewWriter(outputDir string, logger *slog.Logger) *Writer {
	return &Writer{
		outputDir: outputDir,
		logger:    logger.With("component", "specfile_writer"),
		now:       time.Now,
	}
}

// Write serializes the spec and returns the path it was written to.
func (w *Writer) Write(ctx context.Context, spec *domain.CommonSpec) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", w.outputDir, err)
	}
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize spec %s: %w", spec.APIName, err)
	}

	base := fmt.Sprintf("%s_%s", sanitizeFilename(spec.APIName), w.now().Format("20060102T150405"))
	path := filepath.Join(w.outputDir, base+".json")
	for i := 1; ; i++ {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			break
		}
		path = filepath.Join(w.outputDir, fmt.Sprintf("%s_%d.json", base, i))
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write spec file %s: %w", path, err)
	}
	w.logger.Info("Wrote specification file.",
		slog.String("api_name", spec.APIName),
		slog.String("path", path),
		slog.Int("bytes", len(data)))
	return path, nil
}

func sanitizeFilename(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	if out == "" {
		out = "spec"
	}
	return out
}
