package parser

import (
	"iter"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// UnknownName is used for functions whose identifier cannot be resolved
// from the declarator, e.g. macro-obscured signatures.
const UnknownName = "unknown"

// Shape classifies the type of a parameter or return value.
type Shape int

const (
	ShapePrimitive Shape = iota
	ShapeVoid
	ShapeEnum
	ShapePointer
	ShapeArray
	ShapeStruct
	ShapeVoidPointer
	ShapeFunctionPointer
	ShapeVariadic
)

var shapeNames = [...]string{
	ShapePrimitive:       "primitive",
	ShapeVoid:            "void",
	ShapeEnum:            "enum",
	ShapePointer:         "pointer",
	ShapeArray:           "array",
	ShapeStruct:          "struct",
	ShapeVoidPointer:     "void_pointer",
	ShapeFunctionPointer: "function_pointer",
	ShapeVariadic:        "variadic",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "unknown"
}

// Param describes one declared parameter.
type Param struct {
	Name  string
	Type  string
	Shape Shape
	Const bool
}

// IsOutput reports whether the parameter can carry results back to the caller.
func (p Param) IsOutput() bool {
	switch p.Shape {
	case ShapePointer, ShapeArray, ShapeVoidPointer:
		return !p.Const
	}
	return false
}

// FunctionRecord is one function definition found in a translation unit.
// Records are read-only once produced.
type FunctionRecord struct {
	Name      string
	File      string
	StartLine uint32
	EndLine   uint32
	StartByte uint32
	EndByte   uint32

	Node   *sitter.Node
	Body   *sitter.Node
	Params []Param
	Return Shape
	Doc    string

	// Source is the complete translation unit the record points into.
	Source []byte
}

// Functions returns a lazy sequence of function definitions at any depth.
// A nil or tree-less result yields nothing.
func Functions(result *ParseResult) iter.Seq[FunctionRecord] {
	return func(yield func(FunctionRecord) bool) {
		if result == nil || result.Tree == nil {
			return
		}
		stopped := false
		WalkTyped(result.Tree.RootNode(), result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
			if stopped {
				return false
			}
			if nodeType == "function_definition" {
				if !yield(newFunctionRecord(node, source, result.Path)) {
					stopped = true
					return false
				}
			}
			return true
		})
	}
}

// CollectFunctions returns every function definition in document order.
func CollectFunctions(result *ParseResult) []FunctionRecord {
	return slices.Collect(Functions(result))
}

func newFunctionRecord(node *sitter.Node, source []byte, path string) FunctionRecord {
	fn := FunctionRecord{
		File:      path,
		StartLine: node.StartPoint().Row + 1,
		EndLine:   node.EndPoint().Row + 1,
		StartByte: node.StartByte(),
		EndByte:   node.EndByte(),
		Node:      node,
		Body:      node.ChildByFieldName("body"),
		Return:    ShapePrimitive,
		Source:    source,
	}

	decl := node.ChildByFieldName("declarator")
	fn.Name = functionName(decl, source)

	pointerReturn := false
	fnDecl := decl
	for fnDecl != nil && fnDecl.Type() != "function_declarator" {
		if fnDecl.Type() == "pointer_declarator" {
			pointerReturn = true
		}
		fnDecl = innerDeclarator(fnDecl)
	}
	if fnDecl != nil {
		fn.Params = extractParams(fnDecl.ChildByFieldName("parameters"), source)
	}
	fn.Return = returnShape(node.ChildByFieldName("type"), source, pointerReturn)
	fn.Doc = precedingComments(node, source)

	return fn
}

// functionName is DeclaratorName with UnknownName standing in for a
// declarator that hides its identifier, e.g. behind a macro.
func functionName(decl *sitter.Node, source []byte) string {
	if name := DeclaratorName(decl, source); name != "" {
		return name
	}
	return UnknownName
}

// DeclaratorName resolves the identifier inside a (possibly nested) declarator.
// Returns "" when none is found.
func DeclaratorName(node *sitter.Node, source []byte) string {
	for node != nil {
		switch node.Type() {
		case "identifier", "field_identifier":
			return GetNodeText(node, source)
		}
		node = innerDeclarator(node)
	}
	return ""
}

func innerDeclarator(node *sitter.Node) *sitter.Node {
	if inner := node.ChildByFieldName("declarator"); inner != nil {
		return inner
	}
	// parenthesized_declarator has no field name for its content
	for i := range int(node.NamedChildCount()) {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier", "function_declarator", "pointer_declarator",
			"parenthesized_declarator", "array_declarator":
			return child
		}
	}
	return nil
}

func extractParams(list *sitter.Node, source []byte) []Param {
	if list == nil {
		return nil
	}
	var params []Param
	for i := range int(list.ChildCount()) {
		child := list.Child(i)
		switch child.Type() {
		case "variadic_parameter", "...":
			params = append(params, Param{Name: "...", Type: "...", Shape: ShapeVariadic})
		case "parameter_declaration":
			p, ok := paramFromDeclaration(child, source)
			if ok {
				params = append(params, p)
			}
		}
	}
	return params
}

func paramFromDeclaration(node *sitter.Node, source []byte) (Param, bool) {
	typeNode := node.ChildByFieldName("type")
	decl := node.ChildByFieldName("declarator")
	p := Param{
		Name: DeclaratorName(decl, source),
		Type: strings.TrimSpace(GetNodeText(typeNode, source)),
	}

	for i := range int(node.NamedChildCount()) {
		child := node.NamedChild(i)
		if child.Type() == "type_qualifier" && GetNodeText(child, source) == "const" {
			p.Const = true
		}
	}

	pointer, array, function := declaratorShape(decl)
	base := baseShape(typeNode, source)

	switch {
	case function:
		p.Shape = ShapeFunctionPointer
	case pointer && base == ShapeVoid:
		p.Shape = ShapeVoidPointer
	case pointer:
		p.Shape = ShapePointer
	case array:
		p.Shape = ShapeArray
	case base == ShapeVoid:
		// f(void) declares an empty parameter list
		return Param{}, false
	default:
		p.Shape = base
	}
	return p, true
}

func declaratorShape(decl *sitter.Node) (pointer, array, function bool) {
	for node := decl; node != nil; {
		switch node.Type() {
		case "pointer_declarator", "abstract_pointer_declarator":
			pointer = true
		case "array_declarator", "abstract_array_declarator":
			array = true
		case "function_declarator", "abstract_function_declarator":
			function = true
		}
		next := node.ChildByFieldName("declarator")
		if next == nil && node.NamedChildCount() > 0 {
			first := node.NamedChild(0)
			if strings.HasSuffix(first.Type(), "declarator") {
				next = first
			}
		}
		node = next
	}
	return pointer, array, function
}

func baseShape(typeNode *sitter.Node, source []byte) Shape {
	if typeNode == nil {
		return ShapePrimitive
	}
	switch typeNode.Type() {
	case "struct_specifier", "union_specifier":
		return ShapeStruct
	case "enum_specifier":
		return ShapeEnum
	case "primitive_type":
		if GetNodeText(typeNode, source) == "void" {
			return ShapeVoid
		}
	}
	return ShapePrimitive
}

func returnShape(typeNode *sitter.Node, source []byte, pointer bool) Shape {
	if pointer {
		return ShapePointer
	}
	return baseShape(typeNode, source)
}

// precedingComments joins the run of comment siblings that sit directly above
// node, allowing at most one blank line between them.
func precedingComments(node *sitter.Node, source []byte) string {
	var parts []string
	next := node
	for prev := node.PrevSibling(); prev != nil && prev.Type() == "comment"; prev = prev.PrevSibling() {
		if next.StartPoint().Row-prev.EndPoint().Row > 2 {
			break
		}
		parts = append(parts, GetNodeText(prev, source))
		next = prev
	}
	slices.Reverse(parts)
	return strings.Join(parts, "\n")
}

// Globals returns the names declared at file scope, excluding prototypes.
func Globals(result *ParseResult) map[string]struct{} {
	globals := make(map[string]struct{})
	if result == nil || result.Tree == nil {
		return globals
	}
	root := result.Tree.RootNode()
	for i := range int(root.NamedChildCount()) {
		child := root.NamedChild(i)
		if child.Type() != "declaration" {
			continue
		}
		for _, name := range DeclaredNames(child, result.Source) {
			globals[name] = struct{}{}
		}
	}
	return globals
}

// DeclaredNames lists the variable names introduced by a declaration node.
// Function prototypes contribute nothing.
func DeclaredNames(decl *sitter.Node, source []byte) []string {
	var names []string
	for i := range int(decl.NamedChildCount()) {
		child := decl.NamedChild(i)
		switch child.Type() {
		case "identifier", "init_declarator", "pointer_declarator",
			"array_declarator", "parenthesized_declarator":
		default:
			continue
		}
		if isPrototype(child) {
			continue
		}
		if name := DeclaratorName(child, source); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func isPrototype(node *sitter.Node) bool {
	for n := node; n != nil; n = innerDeclarator(n) {
		switch n.Type() {
		case "function_declarator":
			return true
		case "identifier", "init_declarator":
			return false
		}
	}
	return false
}
