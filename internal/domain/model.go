package domain

import (
	"sort"
	"strings"
)

// Layer is the architectural tier a module belongs to.
type Layer string

const (
	LayerDomain         Layer = "domain"
	LayerApplication    Layer = "application"
	LayerInfrastructure Layer = "infrastructure"
	LayerApi            Layer = "api"
	LayerUnknown        Layer = "unknown"
)

// Role is the structural purpose of a module within its layer.
type Role string

const (
	RoleEntity         Role = "entity"
	RoleValueObject    Role = "value_object"
	RoleAggregateRoot  Role = "aggregate_root"
	RoleDomainEvent    Role = "domain_event"
	RoleCommand        Role = "command"
	RoleQuery          Role = "query"
	RoleCommandHandler Role = "command_handler"
	RoleQueryHandler   Role = "query_handler"
	RoleRepository     Role = "repository"
	RoleRepositoryPort Role = "repository_port"
	RoleClient         Role = "client"
	RoleController     Role = "controller"
	RoleOther          Role = "other"
)

// TypeKind distinguishes the declaration form of a source unit.
// Repository vs RepositoryPort classification depends on it.
type TypeKind string

const (
	KindClass     TypeKind = "class"
	KindInterface TypeKind = "interface"
	KindRecord    TypeKind = "record"
	KindEnum      TypeKind = "enum"
)

// RefKind is the structural relationship a reference was extracted from.
type RefKind string

const (
	RefImplements    RefKind = "implements"
	RefExtends       RefKind = "extends"
	RefFieldType     RefKind = "field_type"
	RefParameterType RefKind = "parameter_type"
	RefAnnotation    RefKind = "annotation"
	RefCallSite      RefKind = "call_site"
)

// Reference is one declared outgoing reference of a module, kept in
// declaration order. Symbol is the referenced simple type name; Call
// carries the invoked method name for call_site references.
type Reference struct {
	Symbol string  `json:"symbol"`
	Kind   RefKind `json:"kind"`
	Member string  `json:"member,omitempty"`
	Call   string  `json:"call,omitempty"`
	Line   int     `json:"line,omitempty"`
}

// MarkerClass buckets an annotation by what it couples the code to.
type MarkerClass string

const (
	MarkerFramework   MarkerClass = "framework"
	MarkerStandard    MarkerClass = "standard"
	MarkerUnspecified MarkerClass = "unknown"
)

// Marker is a declarative metadata annotation attached to a module or one
// of its members. Qualifier is the import-resolved annotation type when it
// can be determined.
type Marker struct {
	Name      string      `json:"name"`
	Qualifier string      `json:"qualifier,omitempty"`
	Member    string      `json:"member,omitempty"`
	Line      int         `json:"line,omitempty"`
	Class     MarkerClass `json:"class"`
}

// ReturnCategory buckets an operation's return type for rule evaluation.
type ReturnCategory string

const (
	ReturnVoid    ReturnCategory = "void"
	ReturnValue   ReturnCategory = "value"
	ReturnEntity  ReturnCategory = "entity"
	ReturnUnknown ReturnCategory = "unknown"
)

// Operation is one public operation signature of a module.
type Operation struct {
	Name       string         `json:"name"`
	Params     int            `json:"params"`
	ReturnType string         `json:"returnType,omitempty"`
	Returns    ReturnCategory `json:"returns"`
	Line       int            `json:"line,omitempty"`
}

// Module is one classified source unit. Paths are slash-separated and
// relative to the scanned root so reports are reproducible across machines.
// A Module is assembled once during model building and never mutated
// afterwards.
type Module struct {
	Path       string      `json:"path"`
	Package    string      `json:"package,omitempty"`
	Name       string      `json:"name"`
	Kind       TypeKind    `json:"kind"`
	Layer      Layer       `json:"layer"`
	Role       Role        `json:"role"`
	Imports    []string    `json:"imports,omitempty"`
	Refs       []Reference `json:"refs,omitempty"`
	Markers    []Marker    `json:"markers,omitempty"`
	Operations []Operation `json:"operations,omitempty"`
}

// Qualified returns the package-qualified name of the module's primary type.
func (m *Module) Qualified() string {
	if m.Package == "" {
		return m.Name
	}
	return m.Package + "." + m.Name
}

// HasMarker reports whether a marker with the given simple name is attached
// to the module or one of its members.
func (m *Module) HasMarker(name string) bool {
	for _, mk := range m.Markers {
		if mk.Name == name {
			return true
		}
	}
	return false
}

// ProjectModel is the aggregated, queryable set of modules for one
// validation run. It is assembled once and read-only downstream.
type ProjectModel struct {
	root    string
	modules map[string]*Module
	paths   []string
	byRole  map[Role][]string
	byName  map[string][]string
}

// NewProjectModel assembles a model from classified modules. Modules with a
// duplicate path are dropped; path order is normalized so the model is
// identical regardless of scan order.
func NewProjectModel(root string, modules []*Module) *ProjectModel {
	pm := &ProjectModel{
		root:    root,
		modules: make(map[string]*Module, len(modules)),
		byRole:  make(map[Role][]string),
		byName:  make(map[string][]string),
	}
	for _, m := range modules {
		if _, dup := pm.modules[m.Path]; dup {
			continue
		}
		pm.modules[m.Path] = m
		pm.paths = append(pm.paths, m.Path)
	}
	sort.Strings(pm.paths)
	for _, p := range pm.paths {
		m := pm.modules[p]
		pm.byRole[m.Role] = append(pm.byRole[m.Role], p)
		pm.byName[m.Name] = append(pm.byName[m.Name], p)
	}
	resolveReturnCategories(pm)
	return pm
}

// Root returns the path the model was scanned from.
func (pm *ProjectModel) Root() string { return pm.root }

// Len returns the number of modules in the model.
func (pm *ProjectModel) Len() int { return len(pm.modules) }

// Paths returns all module paths in sorted order.
func (pm *ProjectModel) Paths() []string { return pm.paths }

// Module returns the module for a path, or nil.
func (pm *ProjectModel) Module(path string) *Module { return pm.modules[path] }

// ByRole returns the sorted paths of all modules with the given role.
func (pm *ProjectModel) ByRole(role Role) []string { return pm.byRole[role] }

// Modules returns all modules in path order.
func (pm *ProjectModel) Modules() []*Module {
	out := make([]*Module, 0, len(pm.paths))
	for _, p := range pm.paths {
		out = append(out, pm.modules[p])
	}
	return out
}

// Resolve maps a referenced symbol, as seen from the given module, to an
// in-project module path. The second return is the fully qualified name the
// symbol resolves to when imports determine one, whether or not the target
// is in-project. ok is false for external targets.
func (pm *ProjectModel) Resolve(from *Module, symbol string) (path, qualifier string, ok bool) {
	if symbol == "" {
		return "", "", false
	}

	// Already qualified: a.b.C
	if i := strings.LastIndex(symbol, "."); i > 0 {
		qualifier = symbol
		simple := symbol[i+1:]
		for _, p := range pm.byName[simple] {
			if pm.modules[p].Qualified() == symbol {
				return p, qualifier, true
			}
		}
		return "", qualifier, false
	}

	// Explicit import of the simple name.
	for _, imp := range from.Imports {
		if strings.HasSuffix(imp, "."+symbol) {
			qualifier = imp
			for _, p := range pm.byName[symbol] {
				if pm.modules[p].Qualified() == imp {
					return p, qualifier, true
				}
			}
			return "", qualifier, false
		}
	}

	// Same package.
	for _, p := range pm.byName[symbol] {
		if pm.modules[p].Package == from.Package {
			return p, pm.modules[p].Qualified(), true
		}
	}

	// Wildcard imports.
	for _, imp := range from.Imports {
		if pkg, isWild := strings.CutSuffix(imp, ".*"); isWild {
			for _, p := range pm.byName[symbol] {
				if pm.modules[p].Package == pkg {
					return p, pm.modules[p].Qualified(), true
				}
			}
		}
	}

	// Unique simple name anywhere in the project.
	if cands := pm.byName[symbol]; len(cands) == 1 {
		return cands[0], pm.modules[cands[0]].Qualified(), true
	}

	return "", "", false
}

// resolveReturnCategories finalizes operation return categories once all
// modules are known: a return type resolving to an in-project entity-like
// module is entity. Void and value categories were already settled during
// classification.
func resolveReturnCategories(pm *ProjectModel) {
	for _, p := range pm.paths {
		m := pm.modules[p]
		for i := range m.Operations {
			op := &m.Operations[i]
			if op.Returns != ReturnUnknown {
				continue
			}
			target, _, ok := pm.Resolve(m, op.ReturnType)
			if !ok {
				continue
			}
			switch pm.modules[target].Role {
			case RoleEntity, RoleAggregateRoot:
				op.Returns = ReturnEntity
			case RoleValueObject, RoleDomainEvent, RoleCommand, RoleQuery:
				op.Returns = ReturnValue
			}
		}
	}
}

// SourceFile is the raw structural parse of one source file, before
// classification. The language parser produces it and BuildModel consumes it.
type SourceFile struct {
	Path    string
	Package string
	Imports []string
	Types   []TypeDecl
}

// TypeDecl is one top-level type declaration in a source file.
type TypeDecl struct {
	Name        string
	Kind        TypeKind
	Line        int
	Extends     []string
	Implements  []string
	Annotations []AnnotationUse
	Fields      []FieldDecl
	Methods     []MethodDecl
}

// AnnotationUse is one annotation occurrence, by simple name.
type AnnotationUse struct {
	Name string
	Line int
}

// FieldDecl is one declared field or record component.
type FieldDecl struct {
	Name        string
	Type        string
	Final       bool
	Line        int
	Annotations []AnnotationUse
}

// MethodDecl is one declared method or constructor.
type MethodDecl struct {
	Name        string
	Public      bool
	Constructor bool
	ReturnType  string
	ParamTypes  []string
	Line        int
	Annotations []AnnotationUse
	Calls       []CallExpr
}

// CallExpr is one method invocation inside a method body. Receiver is the
// leftmost receiver identifier, empty for unqualified calls.
type CallExpr struct {
	Receiver string
	Name     string
	Line     int
}

// ScanResult holds everything the scanner produced for one run: parsed
// files in path order plus per-file parse failure diagnostics.
type ScanResult struct {
	RootPath string
	Files    []SourceFile
	Failures []Diagnostic
}
