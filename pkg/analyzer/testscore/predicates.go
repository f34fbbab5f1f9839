package testscore

import (
	"github.com/knots-cli/knots/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

var ioCalls = makeSet(
	"fopen", "fclose", "fread", "fwrite", "fprintf", "fscanf", "fgets", "fputs",
	"fseek", "ftell", "rewind", "printf", "scanf", "puts", "getc", "putc",
)

var allocationCalls = makeSet("malloc", "calloc", "realloc", "free", "aligned_alloc")

var systemCalls = makeSet(
	"time", "clock", "rand", "srand", "getpid", "fork", "exec", "system",
	"signal", "kill", "wait", "pipe",
)

var randomCalls = makeSet("rand", "srand", "random")

var timeCalls = makeSet("time", "clock", "gettimeofday")

func makeSet(items ...string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

// IsIOCall reports whether name is a known stdio call.
func IsIOCall(name string) bool { return ioCalls[name] }

// IsAllocationCall reports whether name is a heap allocation call.
func IsAllocationCall(name string) bool { return allocationCalls[name] }

// IsSystemCall reports whether name reaches into the OS or process state.
func IsSystemCall(name string) bool { return systemCalls[name] }

// IsRandomCall reports whether name produces pseudo-random values.
func IsRandomCall(name string) bool { return randomCalls[name] }

// IsTimeCall reports whether name reads a clock.
func IsTimeCall(name string) bool { return timeCalls[name] }

// Signals are the syntactic facts about a function body the scorers use.
type Signals struct {
	Calls        []string
	GlobalReads  int
	GlobalWrites int
	StaticLocals int
}

// AnyCall reports whether any call in the body satisfies pred.
func (s Signals) AnyCall(pred func(string) bool) bool {
	for _, name := range s.Calls {
		if pred(name) {
			return true
		}
	}
	return false
}

// CollectSignals scans fn's body once. Names declared as parameters or
// locals shadow file-scope globals of the same name.
func CollectSignals(fn *parser.FunctionRecord, globals map[string]struct{}) Signals {
	var s Signals
	if fn == nil || fn.Body == nil {
		return s
	}

	locals := make(map[string]bool, len(fn.Params))
	for _, p := range fn.Params {
		locals[p.Name] = true
	}
	parser.WalkTyped(fn.Body, fn.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		if nodeType == "declaration" {
			for _, name := range parser.DeclaredNames(node, source) {
				locals[name] = true
			}
			if isStatic(node, source) {
				s.StaticLocals++
			}
		}
		return true
	})

	writes := make(map[uint32]bool)
	parser.WalkTyped(fn.Body, fn.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		switch nodeType {
		case "call_expression":
			if callee := node.ChildByFieldName("function"); callee != nil {
				s.Calls = append(s.Calls, parser.GetNodeText(callee, source))
			}
		case "assignment_expression":
			if left := node.ChildByFieldName("left"); left != nil {
				writes[left.StartByte()] = true
			}
		case "update_expression":
			if arg := node.ChildByFieldName("argument"); arg != nil {
				writes[arg.StartByte()] = true
			}
		case "identifier":
			name := parser.GetNodeText(node, source)
			if _, global := globals[name]; !global || locals[name] {
				return true
			}
			if writes[node.StartByte()] {
				s.GlobalWrites++
			} else {
				s.GlobalReads++
			}
		}
		return true
	})

	return s
}

func isStatic(decl *sitter.Node, source []byte) bool {
	for i := range int(decl.NamedChildCount()) {
		child := decl.NamedChild(i)
		if child.Type() == "storage_class_specifier" && parser.GetNodeText(child, source) == "static" {
			return true
		}
	}
	return false
}
