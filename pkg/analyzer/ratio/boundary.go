package ratio

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Boundary is a value range whose edges a test file should exercise.
type Boundary struct {
	Variable string `json:"variable"`
	Kind     string `json:"kind"`
	Min      int64  `json:"min"`
	Max      int64  `json:"max"`
}

// Values returns min, min-1, max and max+1, saturating at the int64 limits.
func (b Boundary) Values() []int64 {
	return []int64{b.Min, satSub(b.Min), b.Max, satAdd(b.Max)}
}

func satSub(v int64) int64 {
	if v == math.MinInt64 {
		return v
	}
	return v - 1
}

func satAdd(v int64) int64 {
	if v == math.MaxInt64 {
		return v
	}
	return v + 1
}

type integerType struct {
	name     string
	min, max int64
	re       *regexp.Regexp
}

func newIntegerType(name string, lo, hi int64) integerType {
	return integerType{
		name: name,
		min:  lo,
		max:  hi,
		re:   regexp.MustCompile(`\b` + name + `\s+(\w+)\s*[;=,]`),
	}
}

var integerTypes = []integerType{
	newIntegerType("uint8_t", 0, math.MaxUint8),
	newIntegerType("uint16_t", 0, math.MaxUint16),
	newIntegerType("uint32_t", 0, math.MaxUint32),
	newIntegerType("int8_t", math.MinInt8, math.MaxInt8),
	newIntegerType("int16_t", math.MinInt16, math.MaxInt16),
	newIntegerType("int32_t", math.MinInt32, math.MaxInt32),
}

const (
	kindUpper = "range_check_upper"
	kindLower = "range_check_lower"
	kindMax   = "constant_max"
	kindMin   = "constant_min"
)

var rangeChecks = []struct {
	re   *regexp.Regexp
	kind string
}{
	{regexp.MustCompile(`if\s*\(\s*\w+\s*>=?\s*(\d+)`), kindUpper},
	{regexp.MustCompile(`if\s*\(\s*\w+\s*<=?\s*(\d+)`), kindLower},
	{regexp.MustCompile(`if\s*\(\s*(\d+)\s*<=?\s*\w+`), kindLower},
	{regexp.MustCompile(`if\s*\(\s*(\d+)\s*>=?\s*\w+`), kindUpper},
	{regexp.MustCompile(`#define\s+\w*MAX\w*\s+(\d+)`), kindMax},
	{regexp.MustCompile(`#define\s+\w*MIN\w*\s+(\d+)`), kindMin},
}

var (
	decimalLiteral = regexp.MustCompile(`(-?\d+)\b`)
	hexLiteral     = regexp.MustCompile(`\b(0[xX][0-9a-fA-F]+)\b`)
)

// DetectBoundaries scans C source text for fixed-width integer declarations,
// comparisons against integer constants and MAX/MIN defines. Boundaries are
// returned in detection order: declarations by type, then range checks.
func DetectBoundaries(source []byte) []Boundary {
	var out []Boundary
	text := string(source)

	for _, it := range integerTypes {
		for _, m := range it.re.FindAllStringSubmatch(text, -1) {
			name := m[1]
			if strings.HasPrefix(name, "MAX_") || strings.HasPrefix(name, "MIN_") {
				continue
			}
			out = append(out, Boundary{Variable: name, Kind: it.name, Min: it.min, Max: it.max})
		}
	}

	for _, rc := range rangeChecks {
		for _, m := range rc.re.FindAllStringSubmatch(text, -1) {
			value, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				continue
			}
			b := Boundary{Variable: fmt.Sprintf("constant_%d", value), Kind: rc.kind}
			if rc.kind == kindUpper || rc.kind == kindMax {
				b.Min, b.Max = satSub(value), value
			} else {
				b.Min, b.Max = value, satAdd(value)
			}
			out = append(out, b)
		}
	}

	return out
}

// LiteralValues collects every decimal (optionally negative) and hex integer
// literal in a test file.
func LiteralValues(source []byte) map[int64]struct{} {
	values := make(map[int64]struct{})
	text := string(source)

	for _, m := range decimalLiteral.FindAllStringSubmatch(text, -1) {
		if v, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			values[v] = struct{}{}
		}
	}
	for _, m := range hexLiteral.FindAllStringSubmatch(text, -1) {
		if v, err := strconv.ParseInt(m[1][2:], 16, 64); err == nil {
			values[v] = struct{}{}
		}
	}

	return values
}

// Coverage is how many required boundary values a test file mentions.
type Coverage struct {
	Required []Boundary `json:"required"`
	// FoundValues is the number of distinct integer literals in the test file.
	FoundValues int      `json:"found_values"`
	Percent     float64  `json:"percent"`
	Missing     []string `json:"missing,omitempty"`
}

// BoundaryCoverage checks every boundary's edge values against the literals
// in testSource. With no boundaries the coverage is 100%.
func BoundaryCoverage(boundaries []Boundary, testSource []byte) *Coverage {
	found := LiteralValues(testSource)
	c := &Coverage{Required: boundaries, FoundValues: len(found), Percent: 100}

	required, hit := 0, 0
	for _, b := range boundaries {
		var missing []string
		for _, v := range b.Values() {
			required++
			if _, ok := found[v]; ok {
				hit++
			} else {
				missing = append(missing, strconv.FormatInt(v, 10))
			}
		}
		if len(missing) > 0 {
			c.Missing = append(c.Missing, fmt.Sprintf("%s (%s): missing values [%s]",
				b.Variable, b.Kind, strings.Join(missing, ", ")))
		}
	}

	if required > 0 {
		c.Percent = float64(hit) / float64(required) * 100
	}
	return c
}
