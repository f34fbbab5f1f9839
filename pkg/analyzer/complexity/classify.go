package complexity

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Variant is the closed set of node categories the metric walk cares about.
type Variant uint8

const (
	VariantOther Variant = iota
	VariantControl
	VariantJump
	VariantBoolean
	VariantAssignment
	VariantCall
	VariantReturn
)

// Construct identifies a control-flow construct.
type Construct uint8

const (
	ConstructNone Construct = iota
	ConstructIf
	ConstructWhile
	ConstructFor
	ConstructDoWhile
	ConstructSwitch
	ConstructTernary
)

// Jump identifies an unconditional jump statement.
type Jump uint8

const (
	JumpNone Jump = iota
	JumpBreak
	JumpContinue
	JumpGoto
)

// NodeKind is the classification of a single syntax node.
type NodeKind struct {
	Variant   Variant
	Construct Construct
	Jump      Jump
	// Operator is "&&" or "||" for VariantBoolean.
	Operator string
}

var constructs = map[string]Construct{
	"if_statement":           ConstructIf,
	"while_statement":        ConstructWhile,
	"for_statement":          ConstructFor,
	"do_statement":           ConstructDoWhile,
	"switch_statement":       ConstructSwitch,
	"conditional_expression": ConstructTernary,
}

var jumps = map[string]Jump{
	"break_statement":    JumpBreak,
	"continue_statement": JumpContinue,
	"goto_statement":     JumpGoto,
}

// Classify maps a tree-sitter C node onto its NodeKind.
func Classify(node *sitter.Node) NodeKind {
	if node == nil {
		return NodeKind{}
	}
	nodeType := node.Type()

	if c, ok := constructs[nodeType]; ok {
		return NodeKind{Variant: VariantControl, Construct: c}
	}
	if j, ok := jumps[nodeType]; ok {
		return NodeKind{Variant: VariantJump, Jump: j}
	}

	switch nodeType {
	case "binary_expression":
		if op := node.ChildByFieldName("operator"); op != nil {
			if t := op.Type(); t == "&&" || t == "||" {
				return NodeKind{Variant: VariantBoolean, Operator: t}
			}
		}
	case "assignment_expression", "update_expression":
		return NodeKind{Variant: VariantAssignment}
	case "init_declarator":
		if node.ChildByFieldName("value") != nil {
			return NodeKind{Variant: VariantAssignment}
		}
	case "call_expression":
		return NodeKind{Variant: VariantCall}
	case "return_statement":
		return NodeKind{Variant: VariantReturn}
	}

	return NodeKind{}
}
