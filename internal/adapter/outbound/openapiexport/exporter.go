// Package openapiexport renders a normalized CommonSpec as an OpenAPI 3
// document, giving REST-oriented tooling a consumable projection of a SOAP
// service. Each operation becomes a POST with the operation name appended to
// the service path, since SOAP multiplexes operations over one endpoint.
package openapiexport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/soapsift/soapsift/internal/domain"
)

// Exporter implements usecase.SpecExporter using kin-openapi.
type Exporter struct {
	outputDir string
	logger    *slog.Logger
}

// New creates an OpenAPI exporter targeting outputDir.
func New(outputDir string, logger *slog.Logger) *Exporter {
	return &Exporter{
		outputDir: outputDir,
		logger:    logger.With("component", "openapi_exporter"),
	}
}

// Export builds an openapi3.T from the spec and writes it next to the spec
// JSON output. Returns the written path.
func (e *Exporter) Export(ctx context.Context, spec *domain.CommonSpec) (string, error) {
	doc := Build(spec)
	if err := doc.Validate(ctx); err != nil {
		e.logger.Warn("Exported OpenAPI document failed validation.", slog.Any("error", err))
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize OpenAPI document for %s: %w", spec.APIName, err)
	}
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", e.outputDir, err)
	}
	path := filepath.Join(e.outputDir, sanitize(spec.APIName)+"_openapi.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write OpenAPI document %s: %w", path, err)
	}
	e.logger.Info("Exported OpenAPI document.",
		slog.String("api_name", spec.APIName),
		slog.String("path", path))
	return path, nil
}

// Build converts a CommonSpec into an OpenAPI 3 document.
func Build(spec *domain.CommonSpec) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       spec.APIName,
			Version:     spec.Version,
			Description: spec.Description,
		},
		Paths: openapi3.NewPaths(),
	}
	if spec.BaseURL != "" {
		doc.Servers = openapi3.Servers{&openapi3.Server{URL: spec.BaseURL}}
	}

	for i := range spec.Operations {
		op := &spec.Operations[i]
		apiOp := &openapi3.Operation{
			OperationID: op.Name,
			Summary:     op.Name,
			Description: op.Documentation,
			Responses:   openapi3.NewResponses(),
		}
		if len(op.Input) > 0 {
			body := openapi3.NewRequestBody().WithJSONSchema(attrsToSchema(op.Input))
			apiOp.RequestBody = &openapi3.RequestBodyRef{Value: body}
		}
		for code, responseBody := range op.Responses {
			desc := "Operation response"
			if code == "500" {
				desc = "Fault response"
			}
			resp := openapi3.NewResponse().
				WithDescription(desc).
				WithJSONSchema(attrsToSchema(responseBody.Attributes))
			apiOp.Responses.Set(code, &openapi3.ResponseRef{Value: resp})
		}
		doc.Paths.Set(operationPath(op), &openapi3.PathItem{Post: apiOp})
	}
	return doc
}

func operationPath(op *domain.Operation) string {
	base := strings.TrimRight(op.Path, "/")
	return base + "/" + op.Name
}

// attrsToSchema maps a resolved attribute tree onto a JSON object schema.
// Circular sentinels become terminal objects so the output stays finite.
func attrsToSchema(attrs []domain.ResolvedAttribute) *openapi3.Schema {
	schema := &openapi3.Schema{
		Type:       &openapi3.Types{"object"},
		Properties: make(openapi3.Schemas, len(attrs)),
	}
	for _, attr := range attrs {
		schema.Properties[attr.Name] = &openapi3.SchemaRef{Value: attrToSchema(attr)}
	}
	return schema
}

func attrToSchema(attr domain.ResolvedAttribute) *openapi3.Schema {
	if attr.Circular {
		return &openapi3.Schema{
			Type:        &openapi3.Types{"object"},
			Description: fmt.Sprintf("circular reference to %s", attr.Type),
		}
	}
	if len(attr.Children) > 0 {
		return attrsToSchema(attr.Children)
	}
	typ, format := primitiveToJSON(attr.Type)
	return &openapi3.Schema{Type: &openapi3.Types{typ}, Format: format}
}

// primitiveToJSON maps XSD primitive names to JSON schema type/format pairs.
func primitiveToJSON(xsdType string) (string, string) {
	switch xsdType {
	case "int", "integer", "long", "short", "byte", "unsignedInt", "unsignedLong", "nonNegativeInteger", "positiveInteger":
		return "integer", ""
	case "decimal", "double", "float":
		return "number", ""
	case "boolean":
		return "boolean", ""
	case "date":
		return "string", "date"
	case "dateTime":
		return "string", "date-time"
	default:
		return "string", ""
	}
}

func sanitize(name string) string {
	name = strings.ToLower(name)
	replacer := strings.NewReplacer(" ", "_", "-", "_", "/", "_", ".", "_")
	name = replacer.Replace(name)
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	return strings.Trim(name, "_")
}
