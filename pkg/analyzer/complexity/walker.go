package complexity

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// BooleanRunMode decides what counts as one run of logical operators for
// cognitive complexity.
type BooleanRunMode string

const (
	// RunsPerOperator starts a new run whenever the operator changes,
	// so `a && b || c` scores 2.
	RunsPerOperator BooleanRunMode = "operator"
	// RunsPerExpression counts a whole boolean expression once,
	// so `a && b || c` scores 1.
	RunsPerExpression BooleanRunMode = "expression"
)

// ParseBooleanRunMode parses a configuration value. Empty selects RunsPerOperator.
func ParseBooleanRunMode(s string) (BooleanRunMode, error) {
	switch BooleanRunMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", RunsPerOperator:
		return RunsPerOperator, nil
	case RunsPerExpression:
		return RunsPerExpression, nil
	default:
		return "", fmt.Errorf("invalid boolean run mode %q (want %q or %q)", s, RunsPerOperator, RunsPerExpression)
	}
}

// tally holds the AST-driven counts for one subtree.
type tally struct {
	decisions int
	cognitive int
	nesting   int

	assignments int
	branches    int
	conditions  int
	returns     int
}

func (t *tally) add(o tally) {
	t.decisions += o.decisions
	t.cognitive += o.cognitive
	t.nesting = max(t.nesting, o.nesting)
	t.assignments += o.assignments
	t.branches += o.branches
	t.conditions += o.conditions
	t.returns += o.returns
}

// walker performs the recursive descent. It holds configuration only;
// every count travels back up through return values.
type walker struct {
	runs BooleanRunMode
}

// visit tallies node and its subtree. level is the cognitive nesting level
// and op the logical operator of the enclosing boolean run, if any.
func (w walker) visit(node *sitter.Node, level int, op string) tally {
	var t tally
	if node == nil {
		return t
	}

	kind := Classify(node)
	switch kind.Variant {
	case VariantControl:
		t.decisions++
		t.conditions++
		t.cognitive += 1 + level
		t.nesting = level + 1
		if kind.Construct == ConstructIf {
			t.add(w.ifBody(node, level+1))
		} else {
			t.add(w.children(node, level+1, ""))
		}
		return t
	case VariantJump:
		t.cognitive++
		if kind.Jump == JumpGoto {
			t.decisions++
		}
	case VariantBoolean:
		t.decisions++
		t.conditions++
		if w.startsRun(kind.Operator, op) {
			t.cognitive++
		}
		t.add(w.children(node, level, kind.Operator))
		return t
	case VariantAssignment:
		t.assignments++
	case VariantCall:
		t.branches++
	case VariantReturn:
		t.returns++
	}

	t.add(w.children(node, level, op))
	return t
}

func (w walker) startsRun(operator, parent string) bool {
	if w.runs == RunsPerExpression {
		return parent == ""
	}
	return operator != parent
}

func (w walker) children(node *sitter.Node, level int, op string) tally {
	var t tally
	for i := range int(node.ChildCount()) {
		t.add(w.visit(node.Child(i), level, op))
	}
	return t
}

// ifBody walks the children of an if statement. The else branch is charged
// a flat +1; a chained `else if` keeps its body at the level of the first
// if body instead of nesting one deeper.
func (w walker) ifBody(node *sitter.Node, level int) tally {
	var t tally
	pendingElse := false
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		switch {
		case child.Type() == "else_clause":
			t.add(w.elseBranch(elseTarget(child), child, level))
		case child.Type() == "else":
			// grammars without else_clause put the alternative directly on the if
			pendingElse = true
		case pendingElse && child.IsNamed():
			t.add(w.elseBranch(child, nil, level))
			pendingElse = false
		default:
			t.add(w.visit(child, level, ""))
		}
	}
	return t
}

func (w walker) elseBranch(target, clause *sitter.Node, level int) tally {
	t := tally{cognitive: 1}
	if target != nil && target.Type() == "if_statement" {
		t.decisions++
		t.conditions++
		t.add(w.ifBody(target, level))
		return t
	}
	if clause != nil {
		t.add(w.children(clause, level, ""))
	} else {
		t.add(w.visit(target, level, ""))
	}
	return t
}

func elseTarget(clause *sitter.Node) *sitter.Node {
	for i := range int(clause.NamedChildCount()) {
		if child := clause.NamedChild(i); child.Type() != "comment" {
			return child
		}
	}
	return nil
}
