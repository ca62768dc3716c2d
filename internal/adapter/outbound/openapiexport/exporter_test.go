package openapiexport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soapsift/soapsift/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func exportSpec() *domain.CommonSpec {
	return &domain.CommonSpec{
		APIName:     "User Service",
		Version:     "2.1",
		Description: "Manages user accounts.",
		BaseURL:     "https://api.example.com",
		Operations: []domain.Operation{
			{
				Name: "GetUser",
				Path: "/soap/users",
				Input: []domain.ResolvedAttribute{
					{Name: "userId", Type: "string"},
				},
				Responses: map[string]domain.ResponseBody{
					"200": {Attributes: []domain.ResolvedAttribute{
						{Name: "id", Type: "string"},
						{Name: "age", Type: "int"},
						{Name: "createdAt", Type: "dateTime"},
						{Name: "manager", Type: "User", Circular: true},
						{Name: "address", Type: "Address", Children: []domain.ResolvedAttribute{
							{Name: "street", Type: "string"},
						}},
					}},
					"500": {Attributes: []domain.ResolvedAttribute{
						{Name: "code", Type: "int"},
					}},
				},
			},
		},
		Auth: domain.Authentication{Type: "api-key"},
	}
}

func TestBuild(t *testing.T) {
	doc := Build(exportSpec())

	assert.Equal(t, "3.0.3", doc.OpenAPI)
	require.NotNil(t, doc.Info)
	assert.Equal(t, "User Service", doc.Info.Title)
	assert.Equal(t, "2.1", doc.Info.Version)
	require.Len(t, doc.Servers, 1)
	assert.Equal(t, "https://api.example.com", doc.Servers[0].URL)

	item := doc.Paths.Value("/soap/users/GetUser")
	require.NotNil(t, item, "operation name is appended to the service path")
	op := item.Post
	require.NotNil(t, op, "every operation maps to POST")
	assert.Equal(t, "GetUser", op.OperationID)

	require.NotNil(t, op.RequestBody)
	reqSchema := op.RequestBody.Value.Content.Get("application/json").Schema.Value
	require.Contains(t, reqSchema.Properties, "userId")

	okResp := op.Responses.Value("200")
	require.NotNil(t, okResp)
	okSchema := okResp.Value.Content.Get("application/json").Schema.Value
	assert.True(t, okSchema.Type.Is("object"))

	props := okSchema.Properties
	assert.True(t, props["id"].Value.Type.Is("string"))
	assert.True(t, props["age"].Value.Type.Is("integer"))
	assert.True(t, props["createdAt"].Value.Type.Is("string"))
	assert.Equal(t, "date-time", props["createdAt"].Value.Format)

	// A circular sentinel terminates as a bare object instead of recursing.
	manager := props["manager"].Value
	assert.True(t, manager.Type.Is("object"))
	assert.Empty(t, manager.Properties)
	assert.Contains(t, manager.Description, "circular")

	address := props["address"].Value
	assert.True(t, address.Type.Is("object"))
	require.Contains(t, address.Properties, "street")

	faultResp := op.Responses.Value("500")
	require.NotNil(t, faultResp)
	assert.Equal(t, "Fault response", *faultResp.Value.Description)
}

func TestBuild_Validates(t *testing.T) {
	doc := Build(exportSpec())
	assert.NoError(t, doc.Validate(context.Background()))
}

func TestExport_WritesDocument(t *testing.T) {
	dir := t.TempDir()
	exporter := New(dir, testLogger())

	path, err := exporter.Export(context.Background(), exportSpec())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "user_service_openapi.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "3.0.3", decoded["openapi"])
}

func TestPrimitiveToJSON(t *testing.T) {
	tests := []struct {
		xsd        string
		wantType   string
		wantFormat string
	}{
		{"int", "integer", ""},
		{"long", "integer", ""},
		{"decimal", "number", ""},
		{"boolean", "boolean", ""},
		{"date", "string", "date"},
		{"dateTime", "string", "date-time"},
		{"string", "string", ""},
		{"SomeComplexType", "string", ""},
	}
	for _, tt := range tests {
		typ, format := primitiveToJSON(tt.xsd)
		assert.Equal(t, tt.wantType, typ, "xsd type %s", tt.xsd)
		assert.Equal(t, tt.wantFormat, format, "xsd type %s", tt.xsd)
	}
}
