package testscore

import (
	"testing"

	"github.com/knots-cli/knots/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseFunctions returns every function in code and the file's globals.
func parseFunctions(t *testing.T, code string) ([]parser.FunctionRecord, map[string]struct{}) {
	t.Helper()
	psr := parser.New()
	t.Cleanup(psr.Close)

	result, err := psr.Parse([]byte(code), "test.c")
	require.NoError(t, err)
	return parser.CollectFunctions(result), parser.Globals(result)
}

func findFunction(t *testing.T, fns []parser.FunctionRecord, name string) *parser.FunctionRecord {
	t.Helper()
	for i := range fns {
		if fns[i].Name == name {
			return &fns[i]
		}
	}
	require.Failf(t, "function not found", "%s", name)
	return nil
}

func TestSignatureScore(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"primitives", "int f(int a, char b) { return a; }", 0},
		{"void no params", "void f(void) {}", 0},
		{"enum param", "enum color { RED }; int f(enum color c) { return 0; }", 1},
		{"pointer param", "int f(int *p) { return *p; }", 2},
		{"array param", "int f(int xs[]) { return xs[0]; }", 2},
		{"struct param", "struct pt { int x; }; int f(struct pt p) { return p.x; }", 3},
		{"void pointer", "int f(void *ctx) { return 0; }", 4},
		{"function pointer", "int f(int (*cb)(int)) { return cb(1); }", 5},
		{"variadic", "int f(const char *fmt, ...) { return 0; }", 2 + 5},
		{"pointer return", "int *f(int a) { return 0; }", 2},
		{"struct return", "struct pt { int x; }; struct pt f(int a) { struct pt p = {a}; return p; }", 3},
		{"five params", "int f(int a, int b, int c, int d, int e) { return a; }", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fns, _ := parseFunctions(t, tt.code)
			require.Len(t, fns, 1)
			assert.Equal(t, tt.want, SignatureScore(&fns[0]))
		})
	}
}

func TestCollectSignals(t *testing.T) {
	code := `
int total;
static int calls;
int limit = 10;

void record(int value) {
    total += value;
    calls++;
}

int over(void) {
    return total > limit;
}

int shadowed(int total) {
    int limit = 3;
    return total + limit;
}

int memo(int n) {
    static int last;
    last = n;
    return last;
}

char *dup(const char *s) {
    char *out = malloc(16);
    printf("%s\n", s);
    return out;
}
`
	fns, globals := parseFunctions(t, code)
	assert.Contains(t, globals, "total")
	assert.Contains(t, globals, "calls")
	assert.Contains(t, globals, "limit")

	record := CollectSignals(findFunction(t, fns, "record"), globals)
	assert.Equal(t, 2, record.GlobalWrites)
	assert.Equal(t, 0, record.GlobalReads)

	over := CollectSignals(findFunction(t, fns, "over"), globals)
	assert.Equal(t, 0, over.GlobalWrites)
	assert.Equal(t, 2, over.GlobalReads)

	shadowed := CollectSignals(findFunction(t, fns, "shadowed"), globals)
	assert.Equal(t, 0, shadowed.GlobalWrites)
	assert.Equal(t, 0, shadowed.GlobalReads)

	memo := CollectSignals(findFunction(t, fns, "memo"), globals)
	assert.Equal(t, 1, memo.StaticLocals)
	assert.Equal(t, 0, memo.GlobalWrites)

	dup := CollectSignals(findFunction(t, fns, "dup"), globals)
	assert.ElementsMatch(t, []string{"malloc", "printf"}, dup.Calls)
	assert.True(t, dup.AnyCall(IsAllocationCall))
	assert.True(t, dup.AnyCall(IsIOCall))
	assert.False(t, dup.AnyCall(IsRandomCall))
}

func TestCollectSignals_Nil(t *testing.T) {
	assert.Equal(t, Signals{}, CollectSignals(nil, nil))
	assert.Equal(t, Signals{}, CollectSignals(&parser.FunctionRecord{}, nil))
}

func TestDependencyScore(t *testing.T) {
	tests := []struct {
		name string
		s    Signals
		want int
	}{
		{"pure", Signals{}, 0},
		{"io", Signals{Calls: []string{"printf"}}, 2},
		{"alloc", Signals{Calls: []string{"malloc", "free"}}, 3},
		{"syscall", Signals{Calls: []string{"fork"}}, 2},
		{"global write", Signals{GlobalWrites: 3}, 4},
		{"global read", Signals{GlobalReads: 1}, 2},
		{"static local", Signals{StaticLocals: 2}, 2},
		{"everything", Signals{Calls: []string{"fopen", "calloc", "system"}, GlobalWrites: 1, GlobalReads: 1, StaticLocals: 1}, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DependencyScore(tt.s))
		})
	}
}

func TestObservableScore(t *testing.T) {
	fns, _ := parseFunctions(t, `
void fill(int *out, const int *in) { *out = *in; }
int pure(int x) { return x; }
int roll(void) { return rand(); }
long now(void) { return time(0); }
`)

	fill := findFunction(t, fns, "fill")
	assert.Equal(t, 4+2, ObservableScore(fill, Signals{}))

	pure := findFunction(t, fns, "pure")
	assert.Equal(t, 0, ObservableScore(pure, Signals{}))
	assert.Equal(t, 2+2, ObservableScore(pure, Signals{GlobalWrites: 1, Calls: []string{"puts"}}))

	roll := findFunction(t, fns, "roll")
	assert.Equal(t, 3, ObservableScore(roll, CollectSignals(roll, nil)))

	now := findFunction(t, fns, "now")
	assert.Equal(t, 2, ObservableScore(now, CollectSignals(now, nil)))
}

func TestImplementationScore(t *testing.T) {
	tests := []struct {
		mccabe int
		want   int
	}{
		{1, 0}, {2, 0}, {3, 1}, {5, 2},
		{6, 3}, {8, 4}, {10, 5},
		{11, 6}, {15, 7}, {20, 8},
		{21, 9}, {30, 9},
		{31, 10}, {100, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ImplementationScore(tt.mccabe), "mccabe %d", tt.mccabe)
	}
}

func TestDocCategories(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []DocCategory
	}{
		{"none", "// plain comment", nil},
		{"at form", "/** @brief x\n * @param a y */", []DocCategory{DocIntent, DocParam}},
		{"backslash form", "/*! \\returns sum \\pre ok */", []DocCategory{DocReturn, DocPrecondition}},
		{"repeated tag once", "/** @param a\n * @param b\n * @param c */", []DocCategory{DocParam}},
		{"aliases", "/** @intent x @retval 0 @ensures y @post z */", []DocCategory{DocIntent, DocReturn, DocPostcondition}},
		{"case insensitive", "/** @Brief x */", []DocCategory{DocIntent}},
		{"email is not a tag", "// contact me@example.com", nil},
		{"unknown tag", "/** @todo later */", nil},
		{"extended tags", "/** @example f(1)\n @side_effects none\n @edge_cases zero */", []DocCategory{DocExample, DocSideEffects, DocEdgeCases}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DocCategories(tt.doc)
			assert.Len(t, got, len(tt.want))
			for _, cat := range tt.want {
				assert.True(t, got[cat], "missing %s", cat)
			}
		})
	}
}

func TestDocumentationScore(t *testing.T) {
	assert.Equal(t, 0, DocumentationScore(""))
	assert.Equal(t, -3, DocumentationScore("/** @brief x */"))
	assert.Equal(t, -5, DocumentationScore("/** @brief x @param a */"))
	assert.Equal(t, -15, DocumentationScore("/** @brief @param @return @pre @post @example @side_effects @edge_cases */"))
}

func TestCompose(t *testing.T) {
	fns, globals := parseFunctions(t, `
int counter;

/** @brief bump */
void bump(int *out) {
    counter++;
    *out = counter;
    printf("%d\n", counter);
}
`)
	fn := findFunction(t, fns, "bump")
	b := Compose(fn, 1, globals)

	assert.Equal(t, 2, b.Signature)
	// io 2 + global write 4 + global read 2
	assert.Equal(t, 8, b.Dependency)
	// void 4 + output param 2 + global write 2 + io 2
	assert.Equal(t, 10, b.Observable)
	assert.Equal(t, 0, b.Implementation)
	assert.Equal(t, -3, b.Documentation)
	assert.Equal(t, 17, b.Total)
	assert.Equal(t, DifficultySimple, b.Difficulty())
}

func TestCompose_Clamps(t *testing.T) {
	c := Composer{
		Signature:      func(*parser.FunctionRecord) int { return 40 },
		Dependency:     func(Signals) int { return -4 },
		Observable:     func(*parser.FunctionRecord, Signals) int { return 11 },
		Implementation: func(int) int { return 5 },
		Documentation:  func(string) int { return -30 },
	}

	b := c.Compose(&parser.FunctionRecord{}, 1, nil)
	assert.Equal(t, 10, b.Signature)
	assert.Equal(t, 0, b.Dependency)
	assert.Equal(t, 10, b.Observable)
	assert.Equal(t, 5, b.Implementation)
	assert.Equal(t, -10, b.Documentation)
	assert.Equal(t, 15, b.Total)
}

func TestDifficultyFor(t *testing.T) {
	tests := []struct {
		total int
		want  Difficulty
	}{
		{-10, DifficultyTrivial},
		{10, DifficultyTrivial},
		{11, DifficultySimple},
		{20, DifficultySimple},
		{21, DifficultyModerate},
		{31, DifficultyComplex},
		{41, DifficultyDifficult},
		{50, DifficultyDifficult},
		{51, DifficultyVeryHard},
	}
	for _, tt := range tests {
		got := DifficultyFor(tt.total)
		assert.Equal(t, tt.want, got, "total %d", tt.total)
		assert.NotEmpty(t, got.Automation())
	}
}
