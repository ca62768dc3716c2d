package wsdl

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/soapsift/soapsift/internal/domain"
)

const xsdNamespace = "http://www.w3.org/2001/XMLSchema"

// --- Raw XSD decoding ---

type xsdSchema struct {
	XMLName         xml.Name         `xml:"schema"`
	TargetNamespace string           `xml:"targetNamespace,attr"`
	Attrs           []xml.Attr       `xml:",any,attr"`
	Imports         []xsdImport      `xml:"import"`
	Includes        []xsdImport      `xml:"include"`
	Elements        []xsdElement     `xml:"element"`
	ComplexTypes    []xsdComplexType `xml:"complexType"`
}

type xsdImport struct {
	Namespace      string `xml:"namespace,attr"`
	SchemaLocation string `xml:"schemaLocation,attr"`
}

type xsdElement struct {
	Name        string          `xml:"name,attr"`
	Type        string          `xml:"type,attr"`
	Ref         string          `xml:"ref,attr"`
	ComplexType *xsdComplexType `xml:"complexType"`
}

type xsdComplexType struct {
	Name     string        `xml:"name,attr"`
	Sequence *xsdModelGroup `xml:"sequence"`
	All      *xsdModelGroup `xml:"all"`
	Choice   *xsdModelGroup `xml:"choice"`
}

type xsdModelGroup struct {
	Elements  []xsdElement    `xml:"element"`
	Sequences []xsdModelGroup `xml:"sequence"`
	Choices   []xsdModelGroup `xml:"choice"`
}

// parseSchema decodes one standalone XSD document.
func parseSchema(content []byte) (*xsdSchema, error) {
	var schema xsdSchema
	if err := xml.Unmarshal(content, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse schema document: %w", err)
	}
	return &schema, nil
}

// prefixMap extracts xmlns prefix declarations from a decoded attribute list.
// The empty key holds the default namespace.
func prefixMap(attrs []xml.Attr) map[string]string {
	prefixes := make(map[string]string)
	for _, attr := range attrs {
		if attr.Name.Space == "xmlns" {
			prefixes[attr.Name.Local] = attr.Value
		} else if attr.Name.Space == "" && attr.Name.Local == "xmlns" {
			prefixes[""] = attr.Value
		}
	}
	return prefixes
}

// resolveQName turns a possibly-prefixed reference ("tns:Profile") into a
// QName using the declaring document's prefix map. An unprefixed reference
// falls back to the default namespace, then to the target namespace.
func resolveQName(ref string, prefixes map[string]string, targetNS string) domain.QName {
	if ref == "" {
		return domain.QName{}
	}
	if idx := strings.IndexByte(ref, ':'); idx >= 0 {
		prefix, local := ref[:idx], ref[idx+1:]
		if ns, ok := prefixes[prefix]; ok {
			return domain.QName{Namespace: ns, Local: local}
		}
		return domain.QName{Local: local}
	}
	if ns, ok := prefixes[""]; ok {
		return domain.QName{Namespace: ns, Local: ref}
	}
	return domain.QName{Namespace: targetNS, Local: ref}
}

// --- Type graph registry ---

// typeRef points at either a named type in the registry or an anonymous
// inline type owned by the declaring element.
type typeRef struct {
	qname  domain.QName
	inline *complexType
}

func (r typeRef) isZero() bool { return r.qname == (domain.QName{}) && r.inline == nil }

type attrDecl struct {
	name string
	ref  typeRef
}

// complexType is one node of the type graph: an identity plus an ordered
// attribute list. Edges are the attribute type references.
type complexType struct {
	name  domain.QName
	attrs []attrDecl
}

type importDecl struct {
	namespace  string
	location   string
	declaredBy string
}

// typeRegistry holds every type and global element visible to one service
// group, keyed by (namespace, local name). It is built incrementally from
// all of the group's files before any flattening begins and is immutable
// afterwards, so concurrent reads are safe.
type typeRegistry struct {
	types    map[domain.QName]*complexType
	elements map[domain.QName]typeRef
	imports  []importDecl
	logger   *slog.Logger
}

func newTypeRegistry(logger *slog.Logger) *typeRegistry {
	return &typeRegistry{
		types:    make(map[domain.QName]*complexType),
		elements: make(map[domain.QName]typeRef),
		logger:   logger.With("component", "type_registry"),
	}
}

// addSchema merges one schema document's declarations into the registry.
func (r *typeRegistry) addSchema(schema *xsdSchema, sourcePath string) {
	prefixes := prefixMap(schema.Attrs)
	targetNS := schema.TargetNamespace

	for _, imp := range schema.Imports {
		r.imports = append(r.imports, importDecl{namespace: imp.Namespace, location: imp.SchemaLocation, declaredBy: sourcePath})
	}
	for _, inc := range schema.Includes {
		r.imports = append(r.imports, importDecl{namespace: targetNS, location: inc.SchemaLocation, declaredBy: sourcePath})
	}

	for i := range schema.ComplexTypes {
		ct := &schema.ComplexTypes[i]
		if ct.Name == "" {
			continue
		}
		qn := domain.QName{Namespace: targetNS, Local: ct.Name}
		r.types[qn] = r.buildComplexType(qn, ct, prefixes, targetNS)
	}
	for i := range schema.Elements {
		el := &schema.Elements[i]
		if el.Name == "" {
			continue
		}
		qn := domain.QName{Namespace: targetNS, Local: el.Name}
		r.elements[qn] = r.elementRef(el, prefixes, targetNS)
	}

	r.logger.Debug("Registered schema document.",
		slog.String("source", sourcePath),
		slog.String("target_namespace", targetNS),
		slog.Int("type_count", len(schema.ComplexTypes)),
		slog.Int("element_count", len(schema.Elements)))
}

func (r *typeRegistry) elementRef(el *xsdElement, prefixes map[string]string, targetNS string) typeRef {
	if el.Type != "" {
		return typeRef{qname: resolveQName(el.Type, prefixes, targetNS)}
	}
	if el.ComplexType != nil {
		return typeRef{inline: r.buildComplexType(domain.QName{}, el.ComplexType, prefixes, targetNS)}
	}
	return typeRef{}
}

func (r *typeRegistry) buildComplexType(qn domain.QName, ct *xsdComplexType, prefixes map[string]string, targetNS string) *complexType {
	built := &complexType{name: qn}
	for _, group := range []*xsdModelGroup{ct.Sequence, ct.All, ct.Choice} {
		r.collectAttrs(built, group, prefixes, targetNS)
	}
	return built
}

// collectAttrs walks a model group in document order, including nested
// sequence/choice groups, and appends one attrDecl per element.
func (r *typeRegistry) collectAttrs(ct *complexType, group *xsdModelGroup, prefixes map[string]string, targetNS string) {
	if group == nil {
		return
	}
	for i := range group.Elements {
		el := &group.Elements[i]
		name := el.Name
		ref := r.elementRef(el, prefixes, targetNS)
		if name == "" && el.Ref != "" {
			// Element references resolve through the global element table
			// at flatten time, once every file has been registered.
			refQN := resolveQName(el.Ref, prefixes, targetNS)
			name = refQN.Local
			ref = typeRef{qname: refQN}
		}
		if name == "" {
			continue
		}
		ct.attrs = append(ct.attrs, attrDecl{name: name, ref: ref})
	}
	for i := range group.Sequences {
		r.collectAttrs(ct, &group.Sequences[i], prefixes, targetNS)
	}
	for i := range group.Choices {
		r.collectAttrs(ct, &group.Choices[i], prefixes, targetNS)
	}
}

// checkImports reports declared import/include locations that are referenced
// but not present in the group's file set. Missing imports surface as
// warnings here and as unresolved placeholders on any attribute that needs
// them; they never fail the group on their own.
func (r *typeRegistry) checkImports(provided []domain.SourceFile) []string {
	paths := make(map[string]bool, len(provided))
	for _, f := range provided {
		paths[filepath.Clean(f.Path)] = true
	}
	var warnings []string
	for _, imp := range r.imports {
		if imp.location == "" {
			continue
		}
		// Relative locations resolve against the declaring file, the same way
		// an XML processor would fetch them.
		resolved := imp.location
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(filepath.Dir(imp.declaredBy), resolved)
		}
		if !paths[filepath.Clean(resolved)] {
			warnings = append(warnings,
				fmt.Sprintf("schema %s imports %s which is not in the group's file set", imp.declaredBy, imp.location))
		}
	}
	return warnings
}
