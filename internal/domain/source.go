package domain

// FileKind classifies a discovered source file.
type FileKind string

const (
	// FileKindInterface is a service interface description (WSDL).
	FileKindInterface FileKind = "interface"
	// FileKindSchema is a reusable type schema (XSD).
	FileKindSchema FileKind = "schema"
)

// SourceFile is one discovered input file. Immutable once read.
type SourceFile struct {
	// Path is the absolute or run-relative location the file was read from.
	Path string
	// Kind classifies the file by extension.
	Kind FileKind
	// Content holds the raw bytes as read at discovery time.
	Content []byte
}

// ServiceGroup associates one interface description with the schema files it
// likely depends on. Groups are the unit of work for the whole pipeline: each
// group resolves, normalizes and chunks independently of every other group.
type ServiceGroup struct {
	// Name is derived from the interface file stem.
	Name string
	// InterfaceFile is the WSDL anchoring the group.
	InterfaceFile SourceFile
	// SchemaFiles are the XSDs matched to this group by the grouping strategy.
	SchemaFiles []SourceFile
}

// Files returns the interface file followed by all schema files.
func (g ServiceGroup) Files() []SourceFile {
	files := make([]SourceFile, 0, len(g.SchemaFiles)+1)
	files = append(files, g.InterfaceFile)
	files = append(files, g.SchemaFiles...)
	return files
}
