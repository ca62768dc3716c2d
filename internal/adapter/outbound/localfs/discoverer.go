package localfs

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/soapsift/soapsift/internal/domain"
	"github.com/soapsift/soapsift/internal/usecase"
)

const (
	interfaceExt = ".wsdl"
	schemaExt    = ".xsd"
)

// Discoverer implements usecase.Discoverer over a local directory tree.
type Discoverer struct {
	logger *slog.Logger
}

// NewDiscoverer creates a filesystem discoverer.
func NewDiscoverer(logger *slog.Logger) *Discoverer {
	return &Discoverer{logger: logger.With("component", "localfs_discoverer")}
}

// Discover walks root recursively and returns interface files and schema
// files, classified by extension. A missing root is a configuration error
// for the whole run; an empty result set is not.
func (d *Discoverer) Discover(ctx context.Context, root string) ([]domain.SourceFile, []domain.SourceFile, error) {
	log := d.logger.With(slog.String("root", root))

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", usecase.ErrInputDirMissing, root)
		}
		return nil, nil, fmt.Errorf("failed to stat input directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s is not a directory", usecase.ErrInputDirMissing, root)
	}

	var interfaces, schemas []domain.SourceFile
	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			return nil
		}
		var kind domain.FileKind
		switch strings.ToLower(filepath.Ext(path)) {
		case interfaceExt:
			kind = domain.FileKindInterface
		case schemaExt:
			kind = domain.FileKindSchema
		default:
			return nil
		}
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("failed to read %s: %w", path, readErr)
		}
		file := domain.SourceFile{Path: path, Kind: kind, Content: content}
		if kind == domain.FileKindInterface {
			interfaces = append(interfaces, file)
		} else {
			schemas = append(schemas, file)
		}
		return nil
	})
	if walkErr != nil {
		return nil, nil, fmt.Errorf("failed to scan input directory %s: %w", root, walkErr)
	}

	log.Info("Discovered source files.",
		slog.Int("interface_count", len(interfaces)),
		slog.Int("schema_count", len(schemas)))
	return interfaces, schemas, nil
}

// TokenOverlapGrouping is the default usecase.GroupingStrategy: an interface
// file claims a schema file when any filename-stem token of one is a
// substring of a stem token of the other. The heuristic is deliberately kept
// as-is; existing outputs may rely on its exact matching behavior.
type TokenOverlapGrouping struct {
	logger *slog.Logger
}

// NewTokenOverlapGrouping creates the default grouping strategy.
func NewTokenOverlapGrouping(logger *slog.Logger) *TokenOverlapGrouping {
	return &TokenOverlapGrouping{logger: logger.With("component", "grouping")}
}

// Group assigns each schema file to every interface file it token-matches.
// Schema files matched by no interface become orphans.
func (g *TokenOverlapGrouping) Group(interfaces, schemas []domain.SourceFile) ([]domain.ServiceGroup, []domain.SourceFile) {
	groups := make([]domain.ServiceGroup, 0, len(interfaces))
	claimed := make(map[string]bool, len(schemas))

	for _, iface := range interfaces {
		group := domain.ServiceGroup{
			Name:          fileStem(iface.Path),
			InterfaceFile: iface,
		}
		ifaceTokens := stemTokens(iface.Path)
		for _, schema := range schemas {
			if tokensOverlap(ifaceTokens, stemTokens(schema.Path)) {
				group.SchemaFiles = append(group.SchemaFiles, schema)
				claimed[schema.Path] = true
			}
		}
		g.logger.Debug("Grouped service.",
			slog.String("group", group.Name),
			slog.Int("schema_count", len(group.SchemaFiles)))
		groups = append(groups, group)
	}

	var orphans []domain.SourceFile
	for _, schema := range schemas {
		if !claimed[schema.Path] {
			orphans = append(orphans, schema)
		}
	}
	if len(orphans) > 0 {
		g.logger.Info("Schema files matched no interface file.", slog.Int("orphan_count", len(orphans)))
	}
	return groups, orphans
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// stemTokens splits a file stem on non-alphanumeric separators, lowercased.
func stemTokens(path string) []string {
	stem := strings.ToLower(fileStem(path))
	tokens := strings.FieldsFunc(stem, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return tokens
}

func tokensOverlap(a, b []string) bool {
	for _, ta := range a {
		for _, tb := range b {
			if strings.Contains(ta, tb) || strings.Contains(tb, ta) {
				return true
			}
		}
	}
	return false
}
