package domain

import (
	"strings"

	"github.com/fatih/camelcase"
)

// LayerRule maps a path pattern to a layer. Patterns are plain substrings
// matched against the slash-relative module path wrapped in separators, so
// "/domain/" matches both "domain/Order.java" and "src/domain/Order.java".
type LayerRule struct {
	Pattern string `yaml:"pattern"`
	Layer   Layer  `yaml:"layer"`
}

// DefaultLayerRules is the conventional package-to-layer mapping applied
// when the project carries no configuration.
func DefaultLayerRules() []LayerRule {
	return []LayerRule{
		{Pattern: "/domain/", Layer: LayerDomain},
		{Pattern: "/application/", Layer: LayerApplication},
		{Pattern: "/infrastructure/", Layer: LayerInfrastructure},
		{Pattern: "/api/", Layer: LayerApi},
	}
}

// LayerFor resolves a module path to a layer using ordered rules,
// first match wins.
func LayerFor(path string, rules []LayerRule) Layer {
	wrapped := "/" + strings.Trim(path, "/") + "/"
	for _, r := range rules {
		pat := r.Pattern
		if !strings.HasPrefix(pat, "/") {
			pat = "/" + pat
		}
		if !strings.HasSuffix(pat, "/") {
			pat += "/"
		}
		if strings.Contains(wrapped, pat) {
			return r.Layer
		}
	}
	return LayerUnknown
}

var (
	standardPrefixes  = []string{"java."}
	frameworkPrefixes = []string{
		"jakarta.", "javax.", "org.springframework.", "org.hibernate.",
		"lombok.", "com.fasterxml.",
	}

	// Fallback classification for annotations whose qualifier cannot be
	// recovered from imports.
	frameworkMarkers = map[string]bool{
		"Entity": true, "Table": true, "Id": true, "GeneratedValue": true,
		"Column": true, "Embeddable": true, "Embedded": true, "Document": true,
		"MappedSuperclass": true, "OneToMany": true, "ManyToOne": true,
		"OneToOne": true, "ManyToMany": true, "JoinColumn": true,
		"Transient": true, "Version": true, "Enumerated": true,
		"Repository": true, "Service": true, "Component": true,
		"Configuration": true, "Bean": true, "Controller": true,
		"RestController": true, "ControllerAdvice": true, "Autowired": true,
		"Qualifier": true, "Value": true, "Transactional": true,
		"RequestMapping": true, "GetMapping": true, "PostMapping": true,
		"PutMapping": true, "DeleteMapping": true, "PatchMapping": true,
		"RequestBody": true, "RequestParam": true, "PathVariable": true,
		"ResponseStatus": true, "ExceptionHandler": true, "Valid": true,
		"Data": true, "Builder": true, "Getter": true, "Setter": true,
		"AllArgsConstructor": true, "NoArgsConstructor": true,
		"RequiredArgsConstructor": true, "EqualsAndHashCode": true,
		"JsonProperty": true, "JsonIgnore": true, "JsonCreator": true,
	}
	standardMarkers = map[string]bool{
		"Override": true, "Deprecated": true, "SuppressWarnings": true,
		"FunctionalInterface": true, "SafeVarargs": true,
	}
)

// ClassifyQualifier buckets a fully qualified external name by what it
// couples the referencing code to.
func ClassifyQualifier(qualifier string) MarkerClass {
	for _, p := range standardPrefixes {
		if strings.HasPrefix(qualifier, p) {
			return MarkerStandard
		}
	}
	for _, p := range frameworkPrefixes {
		if strings.HasPrefix(qualifier, p) {
			return MarkerFramework
		}
	}
	return MarkerUnspecified
}

func classifyMarker(name, qualifier string) MarkerClass {
	if qualifier != "" {
		return ClassifyQualifier(qualifier)
	}
	switch {
	case standardMarkers[name]:
		return MarkerStandard
	case frameworkMarkers[name]:
		return MarkerFramework
	default:
		return MarkerUnspecified
	}
}

// javaLangTypes never carry an import statement, so unresolved references
// to them classify as standard-library rather than unknown.
var javaLangTypes = map[string]bool{
	"Object": true, "Class": true, "Enum": true, "Number": true,
	"CharSequence": true, "StringBuilder": true, "StringBuffer": true,
	"Comparable": true, "Iterable": true, "Runnable": true, "Thread": true,
	"Math": true, "System": true, "Void": true, "Record": true,
	"Exception": true, "RuntimeException": true, "Error": true,
	"Throwable": true, "IllegalArgumentException": true,
	"IllegalStateException": true, "NullPointerException": true,
	"UnsupportedOperationException": true, "Objects": true,
}

// ClassifyExternalSymbol buckets an unresolved reference target. The import
// qualifier wins when one was recovered; otherwise well-known simple names
// decide, and everything else is unknown.
func ClassifyExternalSymbol(symbol, qualifier string) MarkerClass {
	if qualifier != "" {
		return ClassifyQualifier(qualifier)
	}
	name := simpleName(symbol)
	switch {
	case javaLangTypes[name] || valueReturnTypes[name]:
		return MarkerStandard
	case standardMarkers[name]:
		return MarkerStandard
	case frameworkMarkers[name]:
		return MarkerFramework
	default:
		return MarkerUnspecified
	}
}

// Role signal tables, evaluated first match wins in the order
// markers, supertypes, suffixes, structural shape.
var (
	entityMarkers = []string{"Entity", "Table", "Document", "MappedSuperclass"}
	webMarkers    = []string{"RestController", "Controller"}

	roleSuffixes = []struct {
		Suffix string
		Role   Role
	}{
		{"CommandHandler", RoleCommandHandler},
		{"QueryHandler", RoleQueryHandler},
		{"Command", RoleCommand},
		{"Query", RoleQuery},
		{"Repository", RoleRepository}, // interface kind upgrades to port
		{"Client", RoleClient},
		{"Controller", RoleController},
	}

	queryVerbs = map[string]bool{
		"get": true, "find": true, "list": true, "fetch": true,
		"search": true, "count": true,
	}

	mutationPrefixes = []string{
		"save", "insert", "update", "delete", "remove", "persist", "store",
	}
)

// IsMutationCall reports whether an invoked method name denotes a state
// mutation, by prefix ("deleteById", "saveAll").
func IsMutationCall(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range mutationPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// IsQueryVerb reports whether the first camel-case word of a name is a
// read-side verb.
func IsQueryVerb(name string) bool {
	words := camelcase.Split(name)
	if len(words) == 0 {
		return false
	}
	return queryVerbs[strings.ToLower(words[0])]
}

func inferRole(t TypeDecl, layer Layer) Role {
	// (a) marker signals
	for _, m := range entityMarkers {
		if hasAnnotation(t, m) {
			return RoleEntity
		}
	}
	if hasAnnotation(t, "Embeddable") {
		return RoleValueObject
	}
	for _, m := range webMarkers {
		if hasAnnotation(t, m) {
			return RoleController
		}
	}
	if hasAnnotation(t, "Repository") {
		if t.Kind == KindInterface {
			return RoleRepositoryPort
		}
		return RoleRepository
	}

	// (b) supertype signals
	if hasSupertype(t, "AggregateRoot") {
		return RoleAggregateRoot
	}
	if hasSupertype(t, "DomainEvent") || strings.HasSuffix(t.Name, "Event") {
		return RoleDomainEvent
	}

	// (c) suffix signals
	for _, s := range roleSuffixes {
		if !strings.HasSuffix(t.Name, s.Suffix) {
			continue
		}
		if s.Role == RoleRepository && t.Kind == KindInterface {
			return RoleRepositoryPort
		}
		return s.Role
	}

	// (d) structural shape
	if isImmutableData(t) {
		switch layer {
		case LayerDomain:
			return RoleValueObject
		case LayerApplication:
			if IsQueryVerb(t.Name) {
				return RoleQuery
			}
			return RoleCommand
		}
	}

	return RoleOther
}

func hasAnnotation(t TypeDecl, name string) bool {
	for _, a := range t.Annotations {
		if a.Name == name {
			return true
		}
	}
	return false
}

func hasSupertype(t TypeDecl, name string) bool {
	for _, s := range t.Extends {
		if simpleName(unwrapGeneric(s)) == name {
			return true
		}
	}
	for _, s := range t.Implements {
		if simpleName(unwrapGeneric(s)) == name {
			return true
		}
	}
	return false
}

// isImmutableData reports whether a type is a pure immutable data carrier:
// records and enums by construction, classes when every field is final and
// every method is an accessor or a standard identity method.
func isImmutableData(t TypeDecl) bool {
	switch t.Kind {
	case KindRecord, KindEnum:
		return true
	case KindInterface:
		return false
	}
	if len(t.Fields) == 0 {
		return false
	}
	for _, f := range t.Fields {
		if !f.Final {
			return false
		}
	}
	for _, m := range t.Methods {
		if m.Constructor {
			continue
		}
		if isMutatorName(m.Name) {
			return false
		}
		if !m.Public {
			continue
		}
		if isAccessor(t, m) {
			continue
		}
		switch m.Name {
		case "equals", "hashCode", "toString":
			continue
		}
		return false
	}
	return true
}

func isMutatorName(name string) bool {
	for _, p := range []string{"set", "add", "remove", "clear", "put"} {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func isAccessor(t TypeDecl, m MethodDecl) bool {
	if len(m.ParamTypes) != 0 {
		return false
	}
	if strings.HasPrefix(m.Name, "get") || strings.HasPrefix(m.Name, "is") {
		return true
	}
	// Record-style accessor named after the field.
	for _, f := range t.Fields {
		if f.Name == m.Name {
			return true
		}
	}
	return false
}

// BuildModel classifies every parsed file and assembles the project model.
// Each file contributes one module built from its first top-level type;
// files without a type declaration are skipped.
func BuildModel(scan ScanResult, layers []LayerRule) *ProjectModel {
	if len(layers) == 0 {
		layers = DefaultLayerRules()
	}
	modules := make([]*Module, 0, len(scan.Files))
	for _, f := range scan.Files {
		if len(f.Types) == 0 {
			continue
		}
		modules = append(modules, buildModule(f, layers))
	}
	return NewProjectModel(scan.RootPath, modules)
}

func buildModule(f SourceFile, layers []LayerRule) *Module {
	t := f.Types[0]
	layer := LayerFor(f.Path, layers)
	m := &Module{
		Path:    f.Path,
		Package: f.Package,
		Name:    t.Name,
		Kind:    t.Kind,
		Layer:   layer,
		Role:    inferRole(t, layer),
		Imports: f.Imports,
	}
	m.Markers = collectMarkers(t, f.Imports)
	m.Operations = collectOperations(t)
	m.Refs = collectRefs(t)
	return m
}

func collectMarkers(t TypeDecl, imports []string) []Marker {
	var out []Marker
	add := func(a AnnotationUse, member string) {
		q := qualifierFor(a.Name, imports)
		out = append(out, Marker{
			Name:      a.Name,
			Qualifier: q,
			Member:    member,
			Line:      a.Line,
			Class:     classifyMarker(a.Name, q),
		})
	}
	for _, a := range t.Annotations {
		add(a, "")
	}
	for _, fd := range t.Fields {
		for _, a := range fd.Annotations {
			add(a, fd.Name)
		}
	}
	for _, md := range t.Methods {
		for _, a := range md.Annotations {
			add(a, md.Name)
		}
	}
	return out
}

func qualifierFor(name string, imports []string) string {
	for _, imp := range imports {
		if strings.HasSuffix(imp, "."+name) {
			return imp
		}
	}
	return ""
}

func collectOperations(t TypeDecl) []Operation {
	var out []Operation
	for _, m := range t.Methods {
		if m.Constructor || !m.Public {
			continue
		}
		out = append(out, Operation{
			Name:       m.Name,
			Params:     len(m.ParamTypes),
			ReturnType: unwrapReturn(m.ReturnType),
			Returns:    initialReturnCategory(m.ReturnType),
			Line:       m.Line,
		})
	}
	return out
}

var valueReturnTypes = map[string]bool{
	"boolean": true, "byte": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "char": true,
	"Boolean": true, "Byte": true, "Short": true, "Integer": true,
	"Long": true, "Float": true, "Double": true, "Character": true,
	"String": true, "BigDecimal": true, "BigInteger": true, "UUID": true,
	"Instant": true, "LocalDate": true, "LocalDateTime": true,
}

var containerTypes = map[string]bool{
	"Optional": true, "List": true, "Set": true, "Collection": true,
	"Iterable": true, "Stream": true, "Mono": true, "Flux": true,
	"CompletableFuture": true, "Page": true,
}

// unwrapReturn peels container generics so that "Optional<Order>"
// categorizes as Order.
func unwrapReturn(rt string) string {
	rt = strings.TrimSpace(rt)
	for {
		open := strings.Index(rt, "<")
		if open <= 0 || !strings.HasSuffix(rt, ">") {
			return simpleName(rt)
		}
		outer := simpleName(rt[:open])
		if !containerTypes[outer] {
			return outer
		}
		rt = strings.TrimSpace(rt[open+1 : len(rt)-1])
		if i := strings.Index(rt, ","); i >= 0 {
			rt = strings.TrimSpace(rt[:i])
		}
	}
}

func initialReturnCategory(rt string) ReturnCategory {
	switch rt {
	case "", "void", "Void":
		return ReturnVoid
	}
	inner := unwrapReturn(rt)
	if inner == "" || inner == "void" || inner == "Void" {
		return ReturnVoid
	}
	if valueReturnTypes[inner] || strings.HasSuffix(inner, "Id") {
		return ReturnValue
	}
	return ReturnUnknown
}

// IsIdentifierLike reports whether a return category and declared type
// qualify as a creation acknowledgement rather than exposed state.
func IsIdentifierLike(rt string) bool {
	inner := unwrapReturn(rt)
	return valueReturnTypes[inner] || strings.HasSuffix(inner, "Id")
}

func collectRefs(t TypeDecl) []Reference {
	var out []Reference
	addTypes := func(raw string, kind RefKind, member string, line int) {
		for _, sym := range typeNames(raw) {
			out = append(out, Reference{Symbol: sym, Kind: kind, Member: member, Line: line})
		}
	}

	for _, a := range t.Annotations {
		out = append(out, Reference{Symbol: a.Name, Kind: RefAnnotation, Line: a.Line})
	}
	for _, s := range t.Extends {
		out = append(out, Reference{Symbol: s, Kind: RefExtends, Line: t.Line})
	}
	for _, s := range t.Implements {
		out = append(out, Reference{Symbol: s, Kind: RefImplements, Line: t.Line})
	}

	fieldTypes := make(map[string]string, len(t.Fields))
	for _, fd := range t.Fields {
		for _, a := range fd.Annotations {
			out = append(out, Reference{Symbol: a.Name, Kind: RefAnnotation, Member: fd.Name, Line: a.Line})
		}
		addTypes(fd.Type, RefFieldType, fd.Name, fd.Line)
		fieldTypes[fd.Name] = simpleName(unwrapGeneric(fd.Type))
	}

	for _, md := range t.Methods {
		for _, a := range md.Annotations {
			out = append(out, Reference{Symbol: a.Name, Kind: RefAnnotation, Member: md.Name, Line: a.Line})
		}
		for _, pt := range md.ParamTypes {
			addTypes(pt, RefParameterType, md.Name, md.Line)
		}
		for _, c := range md.Calls {
			sym := callTarget(c, fieldTypes)
			if sym == "" {
				continue
			}
			out = append(out, Reference{
				Symbol: sym,
				Kind:   RefCallSite,
				Member: md.Name,
				Call:   c.Name,
				Line:   c.Line,
			})
		}
	}
	return out
}

// callTarget resolves a call receiver to a type symbol: fields map to their
// declared type, capitalized receivers are static calls on the named type,
// anything else (locals, chained results) is unresolvable and dropped.
func callTarget(c CallExpr, fieldTypes map[string]string) string {
	if c.Receiver == "" || c.Receiver == "this" {
		return ""
	}
	if ft, ok := fieldTypes[c.Receiver]; ok {
		return ft
	}
	if r := rune(c.Receiver[0]); r >= 'A' && r <= 'Z' {
		return c.Receiver
	}
	return ""
}

// --- type name extraction ---

var javaPrimitives = map[string]bool{
	"void": true, "boolean": true, "byte": true, "short": true, "int": true,
	"long": true, "float": true, "double": true, "char": true, "var": true,
}

// typeNames extracts the referenceable type names from a raw declared type,
// splitting generics: "Map<String, Order>" yields Map, String, Order.
// Qualified names are kept whole.
func typeNames(raw string) []string {
	var out []string
	for _, tok := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == '<' || r == '>' || r == ',' || r == '[' || r == ']' ||
			r == ' ' || r == '?' || r == '&'
	}) {
		tok = strings.TrimSpace(tok)
		if tok == "" || tok == "extends" || tok == "super" || javaPrimitives[tok] {
			continue
		}
		if !strings.Contains(tok, ".") {
			if r := rune(tok[0]); r < 'A' || r > 'Z' {
				continue
			}
		}
		out = append(out, tok)
	}
	return out
}

func unwrapGeneric(raw string) string {
	if i := strings.Index(raw, "<"); i > 0 {
		return strings.TrimSpace(raw[:i])
	}
	return strings.TrimSpace(raw)
}

func simpleName(qualified string) string {
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}
