package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/archlint/archlint/internal/domain"
)

// JavaParser implements domain.LanguageParser for Java sources using
// tree-sitter. It extracts structure only (declarations, annotations,
// member types, invocations) and performs no type checking.
type JavaParser struct{}

func New() *JavaParser {
	return &JavaParser{}
}

// Extensions returns the file extensions this parser recognizes.
func (p *JavaParser) Extensions() []string {
	return []string{".java"}
}

// Parse builds the structural form of one Java source file. A tree with
// syntax errors is rejected wholesale; the caller records the failure and
// moves on.
func (p *JavaParser) Parse(ctx context.Context, path string, src []byte) (*domain.SourceFile, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("parsing %s: source contains syntax errors", path)
	}

	file := &domain.SourceFile{Path: path}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		switch node.Type() {
		case "package_declaration":
			file.Package = packageName(node, src)
		case "import_declaration":
			if imp := importPath(node, src); imp != "" {
				file.Imports = append(file.Imports, imp)
			}
		case "class_declaration", "interface_declaration",
			"record_declaration", "enum_declaration",
			"annotation_type_declaration":
			file.Types = append(file.Types, p.extractType(node, src))
		}
	}
	return file, nil
}

func packageName(node *sitter.Node, src []byte) string {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "scoped_identifier", "identifier":
			return child.Content(src)
		}
	}
	return ""
}

// importPath returns the imported qualifier, "a.b.*" for wildcard imports
// and "" for static imports, which bring in members rather than types.
func importPath(node *sitter.Node, src []byte) string {
	var path string
	wildcard := false
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "static":
			return ""
		case "scoped_identifier", "identifier":
			path = child.Content(src)
		case "asterisk":
			wildcard = true
		}
	}
	if path == "" {
		return ""
	}
	if wildcard {
		return path + ".*"
	}
	return path
}

func (p *JavaParser) extractType(node *sitter.Node, src []byte) domain.TypeDecl {
	decl := domain.TypeDecl{
		Kind:        typeKind(node.Type()),
		Line:        int(node.StartPoint().Row + 1),
		Annotations: modifierAnnotations(node, src),
	}
	if name := node.ChildByFieldName("name"); name != nil {
		decl.Name = name.Content(src)
	}

	if sc := node.ChildByFieldName("superclass"); sc != nil {
		for i := 0; i < int(sc.NamedChildCount()); i++ {
			decl.Extends = append(decl.Extends, typeText(sc.NamedChild(i), src))
		}
	}
	if ifs := node.ChildByFieldName("interfaces"); ifs != nil {
		decl.Implements = append(decl.Implements, typeList(ifs, src)...)
	}
	// Interfaces keep their supertypes under an extends_interfaces child
	// rather than a field.
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == "extends_interfaces" {
			decl.Extends = append(decl.Extends, typeList(child, src)...)
		}
	}

	// Record components are implicitly final fields.
	if params := node.ChildByFieldName("parameters"); params != nil && node.Type() == "record_declaration" {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			comp := params.NamedChild(i)
			if comp.Type() != "formal_parameter" {
				continue
			}
			fd := domain.FieldDecl{
				Final: true,
				Line:  int(comp.StartPoint().Row + 1),
			}
			if tn := comp.ChildByFieldName("type"); tn != nil {
				fd.Type = tn.Content(src)
			}
			if nn := comp.ChildByFieldName("name"); nn != nil {
				fd.Name = nn.Content(src)
			}
			decl.Fields = append(decl.Fields, fd)
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		inInterface := decl.Kind == domain.KindInterface
		p.collectMembers(body, src, inInterface, &decl)
	}
	return decl
}

func typeKind(nodeType string) domain.TypeKind {
	switch nodeType {
	case "interface_declaration", "annotation_type_declaration":
		return domain.KindInterface
	case "record_declaration":
		return domain.KindRecord
	case "enum_declaration":
		return domain.KindEnum
	default:
		return domain.KindClass
	}
}

func (p *JavaParser) collectMembers(body *sitter.Node, src []byte, inInterface bool, decl *domain.TypeDecl) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "field_declaration", "constant_declaration":
			decl.Fields = append(decl.Fields, extractFields(member, src, inInterface)...)
		case "method_declaration":
			decl.Methods = append(decl.Methods, extractMethod(member, src, inInterface, false))
		case "constructor_declaration":
			decl.Methods = append(decl.Methods, extractMethod(member, src, inInterface, true))
		case "enum_body_declarations":
			p.collectMembers(member, src, inInterface, decl)
		}
	}
}

func extractFields(node *sitter.Node, src []byte, inInterface bool) []domain.FieldDecl {
	var fieldType string
	if tn := node.ChildByFieldName("type"); tn != nil {
		fieldType = tn.Content(src)
	}
	// Interface constants are implicitly final.
	final := inInterface || node.Type() == "constant_declaration" ||
		hasModifier(node, "final", src)
	annotations := modifierAnnotations(node, src)

	var out []domain.FieldDecl
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "variable_declarator" {
			continue
		}
		fd := domain.FieldDecl{
			Type:        fieldType,
			Final:       final,
			Line:        int(child.StartPoint().Row + 1),
			Annotations: annotations,
		}
		if nn := child.ChildByFieldName("name"); nn != nil {
			fd.Name = nn.Content(src)
		}
		out = append(out, fd)
	}
	return out
}

func extractMethod(node *sitter.Node, src []byte, inInterface, constructor bool) domain.MethodDecl {
	md := domain.MethodDecl{
		Constructor: constructor,
		Public:      inInterface || hasModifier(node, "public", src),
		Line:        int(node.StartPoint().Row + 1),
		Annotations: modifierAnnotations(node, src),
	}
	if nn := node.ChildByFieldName("name"); nn != nil {
		md.Name = nn.Content(src)
	}
	if !constructor {
		if tn := node.ChildByFieldName("type"); tn != nil {
			md.ReturnType = tn.Content(src)
		}
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			param := params.NamedChild(i)
			switch param.Type() {
			case "formal_parameter", "spread_parameter":
				if tn := param.ChildByFieldName("type"); tn != nil {
					md.ParamTypes = append(md.ParamTypes, tn.Content(src))
				} else if named := param.NamedChild(0); named != nil {
					md.ParamTypes = append(md.ParamTypes, named.Content(src))
				}
			}
		}
	}
	if body := node.ChildByFieldName("body"); body != nil {
		md.Calls = collectCalls(body, src)
	}
	return md
}

// collectCalls walks a method body for invocations, keeping the leftmost
// receiver identifier so the classifier can map it to a field type.
func collectCalls(node *sitter.Node, src []byte) []domain.CallExpr {
	var out []domain.CallExpr
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "method_invocation" {
			call := domain.CallExpr{Line: int(n.StartPoint().Row + 1)}
			if nn := n.ChildByFieldName("name"); nn != nil {
				call.Name = nn.Content(src)
			}
			call.Receiver = receiverOf(n.ChildByFieldName("object"), src)
			if call.Name != "" {
				out = append(out, call)
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(node)
	return out
}

func receiverOf(object *sitter.Node, src []byte) string {
	if object == nil {
		return ""
	}
	switch object.Type() {
	case "identifier":
		return object.Content(src)
	case "this":
		return "this"
	case "field_access":
		// this.repo.save(...) resolves to the field name.
		obj := object.ChildByFieldName("object")
		if obj != nil && obj.Type() == "this" {
			if fn := object.ChildByFieldName("field"); fn != nil {
				return fn.Content(src)
			}
		}
		return ""
	default:
		// Chained or computed receivers are unresolvable statically.
		return ""
	}
}

// hasModifier reports whether a declaration's modifiers contain the given
// keyword. Keywords are anonymous nodes, so all children are scanned.
func hasModifier(node *sitter.Node, keyword string, src []byte) bool {
	mods := modifiersNode(node)
	if mods == nil {
		return false
	}
	for i := 0; i < int(mods.ChildCount()); i++ {
		if mods.Child(i).Type() == keyword {
			return true
		}
	}
	return false
}

func modifierAnnotations(node *sitter.Node, src []byte) []domain.AnnotationUse {
	mods := modifiersNode(node)
	if mods == nil {
		return nil
	}
	var out []domain.AnnotationUse
	for i := 0; i < int(mods.NamedChildCount()); i++ {
		child := mods.NamedChild(i)
		switch child.Type() {
		case "marker_annotation", "annotation":
			if nn := child.ChildByFieldName("name"); nn != nil {
				out = append(out, domain.AnnotationUse{
					Name: simpleName(nn.Content(src)),
					Line: int(child.StartPoint().Row + 1),
				})
			}
		}
	}
	return out
}

func modifiersNode(node *sitter.Node) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child.Type() == "modifiers" {
			return child
		}
	}
	return nil
}

func typeList(node *sitter.Node, src []byte) []string {
	var out []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "type_list" {
			out = append(out, typeList(child, src)...)
			continue
		}
		out = append(out, typeText(child, src))
	}
	return out
}

// typeText renders a supertype reference without its generic arguments:
// "AggregateRoot<Order>" contributes AggregateRoot.
func typeText(node *sitter.Node, src []byte) string {
	text := node.Content(src)
	if i := strings.Index(text, "<"); i > 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

func simpleName(qualified string) string {
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}
