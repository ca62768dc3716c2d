package wsdl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/soapsift/soapsift/internal/domain"
	"github.com/soapsift/soapsift/internal/usecase"
)

// SpecDefaults supplies the metadata a WSDL cannot carry on its own:
// versioning, categorization, authentication and integration guidance.
type SpecDefaults struct {
	Version     string
	Category    string
	OwningApp   string
	SealID      string
	Auth        domain.Authentication
	Integration domain.Integration
}

// SpecGenerator implements usecase.SpecGenerator for WSDL/XSD service groups.
// It builds one type registry per group from every file in the group, then
// flattens each operation's messages against it.
type SpecGenerator struct {
	defaults SpecDefaults
	logger   *slog.Logger
}

// NewSpecGenerator creates a WSDL SpecGenerator.
func NewSpecGenerator(defaults SpecDefaults, logger *slog.Logger) *SpecGenerator {
	if defaults.Version == "" {
		defaults.Version = "1.0"
	}
	if defaults.Auth.Type == "" {
		defaults.Auth.Type = "none"
	}
	return &SpecGenerator{
		defaults: defaults,
		logger:   logger.With("component", "wsdl_generator"),
	}
}

// Generate normalizes one service group into a CommonSpec. Attribute-level
// failures degrade to placeholders and are returned as warnings; a group
// yielding zero operations returns usecase.ErrNoOperations.
func (g *SpecGenerator) Generate(ctx context.Context, group domain.ServiceGroup) (*domain.CommonSpec, []string, error) {
	log := g.logger.With(slog.String("group", group.Name))
	log.Info("Generating specification from service group.",
		slog.Int("schema_file_count", len(group.SchemaFiles)))

	defs, err := parseDefinitions(group.InterfaceFile.Content)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse interface file %s: %w", group.InterfaceFile.Path, err)
	}

	var warnings []string
	warn := func(msg string) {
		warnings = append(warnings, msg)
		log.Warn("Attribute resolution degraded.", slog.String("detail", msg))
	}

	// Build phase: merge every schema in the group into one registry. Inline
	// WSDL <types> schemas register first, then the standalone XSD files, so
	// imports across files resolve transitively.
	registry := newTypeRegistry(g.logger)
	for i := range defs.Types.Schemas {
		registry.addSchema(&defs.Types.Schemas[i], group.InterfaceFile.Path)
	}
	for _, schemaFile := range group.SchemaFiles {
		schema, parseErr := parseSchema(schemaFile.Content)
		if parseErr != nil {
			warn(fmt.Sprintf("skipping unparsable schema file %s: %v", schemaFile.Path, parseErr))
			continue
		}
		registry.addSchema(schema, schemaFile.Path)
	}
	warnings = append(warnings, registry.checkImports(group.Files())...)

	prefixes := prefixMap(defs.Attrs)
	messages := make(map[string]wsdlMessage, len(defs.Messages))
	for _, msg := range defs.Messages {
		messages[msg.Name] = msg
	}
	actions := defs.soapActions()
	baseURL, basePath := splitEndpoint(defs.endpointLocation())

	// Flatten phase: the registry is immutable from here on.
	var operations []domain.Operation
	for _, portType := range defs.PortTypes {
		for _, rawOp := range portType.Operations {
			op := domain.Operation{
				Name:          rawOp.Name,
				SOAPAction:    actions[rawOp.Name],
				Path:          basePath,
				Documentation: strings.TrimSpace(rawOp.Documentation),
				Responses:     make(map[string]domain.ResponseBody),
			}
			if g.defaults.Auth.Type != "" && g.defaults.Auth.Type != "none" {
				op.Security = g.defaults.Auth.Type
			}

			op.Input = g.resolveMessage(registry, messages, prefixes, defs.TargetNamespace, rawOp.Input.Message, warn)

			if rawOp.Output.Message != "" {
				attrs := g.resolveMessage(registry, messages, prefixes, defs.TargetNamespace, rawOp.Output.Message, warn)
				op.Responses["200"] = domain.ResponseBody{
					Attributes:    attrs,
					AllAttributes: domain.FlattenAttributes(attrs),
				}
			}
			var faultAttrs []domain.ResolvedAttribute
			for _, fault := range rawOp.Faults {
				faultAttrs = append(faultAttrs, g.resolveMessage(registry, messages, prefixes, defs.TargetNamespace, fault.Message, warn)...)
			}
			if len(faultAttrs) > 0 {
				op.Responses["500"] = domain.ResponseBody{
					Attributes:    faultAttrs,
					AllAttributes: domain.FlattenAttributes(faultAttrs),
				}
			}
			operations = append(operations, op)
		}
	}

	if len(operations) == 0 {
		log.Error("Service group produced no resolvable operations.")
		return nil, warnings, fmt.Errorf("group %s: %w", group.Name, usecase.ErrNoOperations)
	}

	spec := &domain.CommonSpec{
		APIName:     defs.serviceName(),
		Version:     g.defaults.Version,
		Description: strings.TrimSpace(defs.Documentation),
		BaseURL:     baseURL,
		Category:    g.defaults.Category,
		Operations:  operations,
		Auth:        g.defaults.Auth,
		Integration: g.defaults.Integration,
		OwningApp:   g.defaults.OwningApp,
		SealID:      g.defaults.SealID,
	}
	log.Info("Generated specification.",
		slog.String("api_name", spec.APIName),
		slog.Int("operation_count", len(spec.Operations)),
		slog.Int("warning_count", len(warnings)))
	return spec, warnings, nil
}

// resolveMessage follows message → part → root element → flattened tree.
// Parts declared with type= instead of element= resolve the type directly
// under the part name.
func (g *SpecGenerator) resolveMessage(registry *typeRegistry, messages map[string]wsdlMessage, prefixes map[string]string, targetNS, msgRef string, warn func(string)) []domain.ResolvedAttribute {
	if msgRef == "" {
		return nil
	}
	msgName := resolveQName(msgRef, prefixes, targetNS).Local
	msg, ok := messages[msgName]
	if !ok {
		warn(fmt.Sprintf("message %q is referenced but not declared", msgName))
		return nil
	}
	var attrs []domain.ResolvedAttribute
	for _, part := range msg.Parts {
		switch {
		case part.Element != "":
			rootQN := resolveQName(part.Element, prefixes, targetNS)
			resolved, found := registry.resolveElement(rootQN, warn)
			if !found {
				warn(fmt.Sprintf("message %q part %q references unknown element %s", msgName, part.Name, rootQN))
				attrs = append(attrs, domain.ResolvedAttribute{
					Name:      rootQN.Local,
					Type:      typeUnresolved,
					Namespace: rootQN.Namespace,
				})
				continue
			}
			attrs = append(attrs, resolved...)
		case part.Type != "":
			decl := attrDecl{name: part.Name, ref: typeRef{qname: resolveQName(part.Type, prefixes, targetNS)}}
			attrs = append(attrs, registry.expandAttr(decl, targetNS, 0, make(map[domain.QName]bool), warn))
		}
	}
	return attrs
}

// splitEndpoint splits a soap:address location into scheme://host and path.
func splitEndpoint(location string) (string, string) {
	if location == "" {
		return "", ""
	}
	u, err := url.Parse(location)
	if err != nil || u.Host == "" {
		return location, ""
	}
	return u.Scheme + "://" + u.Host, u.Path
}
