package localfs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soapsift/soapsift/internal/domain"
	"github.com/soapsift/soapsift/internal/usecase"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "user-service.wsdl", "<definitions/>")
	writeFile(t, dir, "user-types.xsd", "<schema/>")
	writeFile(t, dir, "nested/order-service.WSDL", "<definitions/>")
	writeFile(t, dir, "readme.txt", "ignore me")

	interfaces, schemas, err := NewDiscoverer(testLogger()).Discover(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, interfaces, 2, "extension match is case-insensitive and recursive")
	require.Len(t, schemas, 1)
	assert.Equal(t, domain.FileKindInterface, interfaces[0].Kind)
	assert.Equal(t, domain.FileKindSchema, schemas[0].Kind)
	assert.Equal(t, []byte("<schema/>"), schemas[0].Content)
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, _, err := NewDiscoverer(testLogger()).Discover(context.Background(), "/no/such/dir")
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrInputDirMissing))
}

func TestDiscover_RootIsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "not-a-dir.wsdl", "<definitions/>")

	_, _, err := NewDiscoverer(testLogger()).Discover(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrInputDirMissing))
}

func TestDiscover_EmptyDirIsCleanResult(t *testing.T) {
	interfaces, schemas, err := NewDiscoverer(testLogger()).Discover(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, interfaces)
	assert.Empty(t, schemas)
}

func TestDiscover_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "svc.wsdl", "<definitions/>")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewDiscoverer(testLogger()).Discover(ctx, dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func sourceFile(path string, kind domain.FileKind) domain.SourceFile {
	return domain.SourceFile{Path: path, Kind: kind}
}

func TestGroup_TokenOverlap(t *testing.T) {
	interfaces := []domain.SourceFile{
		sourceFile("/in/user-service.wsdl", domain.FileKindInterface),
		sourceFile("/in/billing.wsdl", domain.FileKindInterface),
	}
	schemas := []domain.SourceFile{
		sourceFile("/in/user-types.xsd", domain.FileKindSchema),
		sourceFile("/in/user-common.xsd", domain.FileKindSchema),
		sourceFile("/in/billing-invoice.xsd", domain.FileKindSchema),
		sourceFile("/in/unrelated.xsd", domain.FileKindSchema),
	}

	groups, orphans := NewTokenOverlapGrouping(testLogger()).Group(interfaces, schemas)
	require.Len(t, groups, 2)

	assert.Equal(t, "user-service", groups[0].Name)
	require.Len(t, groups[0].SchemaFiles, 2)
	assert.Equal(t, "/in/user-types.xsd", groups[0].SchemaFiles[0].Path)
	assert.Equal(t, "/in/user-common.xsd", groups[0].SchemaFiles[1].Path)

	assert.Equal(t, "billing", groups[1].Name)
	require.Len(t, groups[1].SchemaFiles, 1)
	assert.Equal(t, "/in/billing-invoice.xsd", groups[1].SchemaFiles[0].Path)

	require.Len(t, orphans, 1)
	assert.Equal(t, "/in/unrelated.xsd", orphans[0].Path)
}

func TestGroup_SchemaSharedByTwoInterfaces(t *testing.T) {
	interfaces := []domain.SourceFile{
		sourceFile("/in/user-read.wsdl", domain.FileKindInterface),
		sourceFile("/in/user-write.wsdl", domain.FileKindInterface),
	}
	schemas := []domain.SourceFile{
		sourceFile("/in/user-types.xsd", domain.FileKindSchema),
	}

	groups, orphans := NewTokenOverlapGrouping(testLogger()).Group(interfaces, schemas)
	require.Len(t, groups, 2)
	assert.Empty(t, orphans)
	// A schema is not consumed by assignment; both claimants keep it.
	require.Len(t, groups[0].SchemaFiles, 1)
	require.Len(t, groups[1].SchemaFiles, 1)
}

func TestGroup_SubstringTokenMatch(t *testing.T) {
	// "accountsvc" contains "account", so stem tokens need only substring
	// overlap, not equality.
	interfaces := []domain.SourceFile{sourceFile("/in/accountsvc.wsdl", domain.FileKindInterface)}
	schemas := []domain.SourceFile{sourceFile("/in/account.xsd", domain.FileKindSchema)}

	groups, orphans := NewTokenOverlapGrouping(testLogger()).Group(interfaces, schemas)
	require.Len(t, groups, 1)
	assert.Empty(t, orphans)
	assert.Len(t, groups[0].SchemaFiles, 1)
}

func TestStemTokens(t *testing.T) {
	assert.Equal(t, []string{"user", "service", "v2"}, stemTokens("/in/User-Service_v2.wsdl"))
	assert.Empty(t, stemTokens("/in/---.xsd"))
}
