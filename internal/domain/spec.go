package domain

// QName identifies a schema type by namespace and local name, the same way
// the source schemas themselves refer to types. Two types with the same local
// name in different namespaces are distinct nodes in the type graph.
type QName struct {
	Namespace string `json:"namespace,omitempty"`
	Local     string `json:"local"`
}

func (q QName) String() string {
	if q.Namespace == "" {
		return q.Local
	}
	return "{" + q.Namespace + "}" + q.Local
}

// ResolvedAttribute is one node of a flattened type tree. The tree is always
// finite: a type re-entered along the current resolution path is emitted once
// as a sentinel with Circular set and no children instead of being expanded
// again.
type ResolvedAttribute struct {
	// Name is the attribute (element) name as declared in the schema.
	Name string `json:"name"`
	// Type is the primitive name ("string", "int", ...), the referenced
	// complex type's local name, or "unresolved" for a dangling reference.
	Type string `json:"type"`
	// Namespace is the origin namespace of the attribute's type. Attributes
	// pulled in across an import chain keep the namespace they were actually
	// defined in.
	Namespace string `json:"namespace,omitempty"`
	// Circular marks a sentinel emitted in place of re-expanding a type that
	// is already being expanded on the current path.
	Circular bool `json:"circular,omitempty"`
	// Children holds the nested attributes of a complex type.
	Children []ResolvedAttribute `json:"attributes,omitempty"`
}

// ResponseBody is the resolved payload for one response code.
type ResponseBody struct {
	// Attributes is the nested attribute tree of the response type.
	Attributes []ResolvedAttribute `json:"attributes"`
	// AllAttributes is the denormalized pre-order flattening of Attributes.
	// Downstream search needs "does this response contain a field named X"
	// without walking the tree, so every attribute produced anywhere in the
	// tree also appears here, childless.
	AllAttributes []ResolvedAttribute `json:"all_attributes,omitempty"`
}

// Operation is one resolved service operation.
type Operation struct {
	Name          string                  `json:"name"`
	SOAPAction    string                  `json:"soap_action,omitempty"`
	Path          string                  `json:"path,omitempty"`
	Documentation string                  `json:"documentation,omitempty"`
	Input         []ResolvedAttribute     `json:"parameters"`
	Responses     map[string]ResponseBody `json:"responses"`
	// Security is the declared security requirement, empty when absent.
	Security string `json:"security,omitempty"`
}

// Authentication describes how a service authenticates callers.
type Authentication struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	ParamName   string `json:"param_name,omitempty"`
}

// Integration carries the free-text usage metadata supplied alongside the
// input. Custom holds data-dependent fields whose shape is not known
// statically.
type Integration struct {
	Steps         []string             `json:"steps,omitempty"`
	BestPractices string               `json:"best_practices,omitempty"`
	UseCases      []string             `json:"use_cases,omitempty"`
	Custom        map[string]MetaValue `json:"custom,omitempty"`
}

// CommonSpec is the normalized, canonical specification record for one
// service. It is immutable after normalization; chunking and export only
// read it.
type CommonSpec struct {
	APIName     string         `json:"api_name"`
	Version     string         `json:"version"`
	Description string         `json:"description,omitempty"`
	BaseURL     string         `json:"base_url,omitempty"`
	Category    string         `json:"category,omitempty"`
	Operations  []Operation    `json:"endpoints"`
	Auth        Authentication `json:"authentication"`
	Integration Integration    `json:"integration"`
	// OwningApp and SealID are external identifiers carried through verbatim.
	OwningApp string `json:"owning_app,omitempty"`
	SealID    string `json:"seal_id,omitempty"`
}

// FlattenAttributes returns the pre-order flattening of an attribute tree.
// Each returned attribute is a childless copy so the flat view never aliases
// the nested one.
func FlattenAttributes(attrs []ResolvedAttribute) []ResolvedAttribute {
	var flat []ResolvedAttribute
	var walk func(list []ResolvedAttribute)
	walk = func(list []ResolvedAttribute) {
		for _, a := range list {
			copied := a
			copied.Children = nil
			flat = append(flat, copied)
			walk(a.Children)
		}
	}
	walk(attrs)
	return flat
}
