// Package testscore estimates how hard a C function is to cover with
// generated tests.
//
// The estimate has five independent dimensions. Each is computed by its own
// scorer over the function record, a one-pass scan of its body, and its
// McCabe complexity. The sum is the test score; lower is easier.
package testscore

import (
	"strings"

	"github.com/knots-cli/knots/pkg/parser"
)

// Breakdown holds the five sub-scores and their sum.
type Breakdown struct {
	Signature      int `json:"signature"`
	Dependency     int `json:"dependency"`
	Observable     int `json:"observable"`
	Implementation int `json:"implementation"`
	Documentation  int `json:"documentation"`
	Total          int `json:"total"`
}

// Composer wires one scorer per dimension. Any field can be swapped.
type Composer struct {
	Signature      func(fn *parser.FunctionRecord) int
	Dependency     func(s Signals) int
	Observable     func(fn *parser.FunctionRecord, s Signals) int
	Implementation func(mccabe int) int
	Documentation  func(doc string) int
}

// DefaultComposer returns the standard scorers.
func DefaultComposer() Composer {
	return Composer{
		Signature:      SignatureScore,
		Dependency:     DependencyScore,
		Observable:     ObservableScore,
		Implementation: ImplementationScore,
		Documentation:  DocumentationScore,
	}
}

// Compose scores fn with the default scorers.
func Compose(fn *parser.FunctionRecord, mccabe int, globals map[string]struct{}) Breakdown {
	return DefaultComposer().Compose(fn, mccabe, globals)
}

// Compose scores fn. globals are the file-scope variable names of fn's file.
func (c Composer) Compose(fn *parser.FunctionRecord, mccabe int, globals map[string]struct{}) Breakdown {
	signals := CollectSignals(fn, globals)

	b := Breakdown{
		Signature:      clamp(c.Signature(fn), 0, 10),
		Dependency:     clamp(c.Dependency(signals), 0, 10),
		Observable:     clamp(c.Observable(fn, signals), 0, 10),
		Implementation: clamp(c.Implementation(mccabe), 0, 10),
	}
	if fn != nil {
		b.Documentation = clamp(c.Documentation(fn.Doc), -10, 0)
	}
	b.Total = b.Signature + b.Dependency + b.Observable + b.Implementation + b.Documentation
	return b
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

var paramWeights = map[parser.Shape]int{
	parser.ShapePrimitive:       0,
	parser.ShapeEnum:            1,
	parser.ShapePointer:         2,
	parser.ShapeArray:           2,
	parser.ShapeStruct:          3,
	parser.ShapeVoidPointer:     4,
	parser.ShapeFunctionPointer: 5,
	parser.ShapeVariadic:        5,
}

var returnWeights = map[parser.Shape]int{
	parser.ShapeVoid:      0,
	parser.ShapePrimitive: 0,
	parser.ShapeEnum:      1,
	parser.ShapePointer:   2,
	parser.ShapeStruct:    3,
}

// SignatureScore charges for parameter and return shapes. Scalars are free,
// indirection and aggregates cost more, and every parameter past the third
// adds one.
func SignatureScore(fn *parser.FunctionRecord) int {
	if fn == nil {
		return 0
	}
	score := returnWeights[fn.Return]
	for _, p := range fn.Params {
		score += paramWeights[p.Shape]
	}
	if n := len(fn.Params); n > 3 {
		score += n - 3
	}
	return score
}

// DependencyScore charges for side effects reachable from the body.
// A pure body scores 0.
func DependencyScore(s Signals) int {
	score := 0
	if s.AnyCall(IsIOCall) {
		score += 2
	}
	if s.AnyCall(IsAllocationCall) {
		score += 3
	}
	if s.AnyCall(IsSystemCall) {
		score += 2
	}
	if s.GlobalWrites > 0 {
		score += 4
	}
	if s.GlobalReads > 0 {
		score += 2
	}
	if s.StaticLocals > 0 {
		score += 2
	}
	return score
}

// ObservableScore charges for results that cannot be checked from the return value.
func ObservableScore(fn *parser.FunctionRecord, s Signals) int {
	score := 0
	if fn != nil {
		if fn.Return == parser.ShapeVoid {
			score += 4
		}
		for _, p := range fn.Params {
			if p.IsOutput() {
				score += 2
				break
			}
		}
	}
	if s.GlobalWrites > 0 {
		score += 2
	}
	if s.AnyCall(IsIOCall) {
		score += 2
	}
	if s.AnyCall(IsRandomCall) {
		score += 3
	}
	if s.AnyCall(IsTimeCall) {
		score += 2
	}
	return score
}

// ImplementationScore maps McCabe complexity onto 0-10 in fixed bands:
// 1-5 to 0-2, 6-10 to 3-5, 11-20 to 6-8, 21-30 to 9 and above to 10.
func ImplementationScore(mccabe int) int {
	switch {
	case mccabe <= 1:
		return 0
	case mccabe <= 5:
		return (mccabe - 1) / 2
	case mccabe <= 10:
		return 3 + (mccabe-6)/2
	case mccabe <= 20:
		return 6 + (mccabe-11)*3/10
	case mccabe <= 30:
		return 9
	default:
		return 10
	}
}

// DocCategory is one kind of structured documentation tag.
type DocCategory string

const (
	DocIntent        DocCategory = "intent"
	DocParam         DocCategory = "param"
	DocReturn        DocCategory = "return"
	DocPrecondition  DocCategory = "precondition"
	DocPostcondition DocCategory = "postcondition"
	DocExample       DocCategory = "example"
	DocSideEffects   DocCategory = "side_effects"
	DocEdgeCases     DocCategory = "edge_cases"
)

var docTags = map[string]DocCategory{
	"intent":       DocIntent,
	"brief":        DocIntent,
	"param":        DocParam,
	"return":       DocReturn,
	"returns":      DocReturn,
	"retval":       DocReturn,
	"requires":     DocPrecondition,
	"pre":          DocPrecondition,
	"ensures":      DocPostcondition,
	"post":         DocPostcondition,
	"example":      DocExample,
	"side_effects": DocSideEffects,
	"edge_cases":   DocEdgeCases,
}

var docWeights = map[DocCategory]int{
	DocIntent:        3,
	DocParam:         2,
	DocReturn:        2,
	DocPrecondition:  2,
	DocPostcondition: 2,
	DocExample:       2,
	DocSideEffects:   1,
	DocEdgeCases:     1,
}

// DocCategories returns the distinct tag categories present in doc.
// Tags may use either the @tag or \tag form.
func DocCategories(doc string) map[DocCategory]bool {
	found := make(map[DocCategory]bool)
	for i := 0; i < len(doc); i++ {
		if doc[i] != '@' && doc[i] != '\\' {
			continue
		}
		if i > 0 && !isTagBoundary(doc[i-1]) {
			continue
		}
		j := i + 1
		for j < len(doc) && isTagChar(doc[j]) {
			j++
		}
		if cat, ok := docTags[strings.ToLower(doc[i+1:j])]; ok {
			found[cat] = true
		}
		i = j - 1
	}
	return found
}

func isTagBoundary(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '*' || c == '/' || c == '!'
}

func isTagChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// DocumentationScore credits each distinct tag category once.
// The result is zero or negative; no tags means 0.
func DocumentationScore(doc string) int {
	score := 0
	for cat := range DocCategories(doc) {
		score -= docWeights[cat]
	}
	return score
}
