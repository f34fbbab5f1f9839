package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseC(t *testing.T, code string) *ParseResult {
	t.Helper()
	p := New()
	t.Cleanup(p.Close)
	result, err := p.Parse([]byte(code), "test.c")
	require.NoError(t, err)
	return result
}

func TestNew(t *testing.T) {
	p := New()
	require.NotNil(t, p)
	assert.NotNil(t, p.parser)
	p.Close()
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"main.c", LangC},
		{"include/header.h", LangC},
		{"UPPER.C", LangC},
		{"main.cpp", LangUnknown},
		{"main.go", LangUnknown},
		{"Makefile", LangUnknown},
		{"notes.txt", LangUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.path))
		})
	}
}

func TestParse_InvalidUTF8(t *testing.T) {
	p := New()
	defer p.Close()

	_, err := p.Parse([]byte{'i', 'n', 't', ' ', 0xff, 0xfe, ';'}, "bad.c")
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.c")
	require.NoError(t, os.WriteFile(path, []byte("int one(void) { return 1; }\n"), 0644))

	p := New()
	defer p.Close()

	result, err := p.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, LangC, result.Language)
	assert.Equal(t, path, result.Path)
	assert.False(t, result.HasErrors())

	_, err = p.ParseFile(filepath.Join(dir, "sample.py"))
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)

	_, err = p.ParseFile(filepath.Join(dir, "missing.c"))
	assert.Error(t, err)
}

func TestGetNodeText_OutOfBounds(t *testing.T) {
	result := parseC(t, "int x;")
	assert.Equal(t, "", GetNodeText(nil, result.Source))
	assert.Equal(t, "", GetNodeText(result.Tree.RootNode(), []byte("i")))
}

func TestFunctions_Names(t *testing.T) {
	code := `
static int plain(int a) { return a; }

char *returns_pointer(const char *s) { return (char *)s; }

int (*pick(int which))(int) { return 0; }

void nothing(void) {}
`
	fns := CollectFunctions(parseC(t, code))
	require.Len(t, fns, 4)

	names := make([]string, len(fns))
	for i, fn := range fns {
		names[i] = fn.Name
	}
	assert.Equal(t, []string{"plain", "returns_pointer", "pick", "nothing"}, names)

	assert.Equal(t, uint32(2), fns[0].StartLine)
	assert.Equal(t, uint32(2), fns[0].EndLine)
	assert.NotNil(t, fns[0].Body)
	assert.Equal(t, "test.c", fns[0].File)
}

func TestFunctions_SkipsPrototypes(t *testing.T) {
	code := `
int declared(int a);
int defined(int a) { return declared(a); }
`
	fns := CollectFunctions(parseC(t, code))
	require.Len(t, fns, 1)
	assert.Equal(t, "defined", fns[0].Name)
}

func TestFunctionName_Unresolved(t *testing.T) {
	result := parseC(t, "int f(void) { return 0; }")
	fns := CollectFunctions(result)
	require.Len(t, fns, 1)
	def := fns[0].Node

	assert.Equal(t, "f", functionName(def.ChildByFieldName("declarator"), result.Source))

	// declarators with no identifier inside still name the record
	assert.Equal(t, UnknownName, functionName(nil, result.Source))
	assert.Equal(t, UnknownName, functionName(def.ChildByFieldName("type"), result.Source))
	assert.Equal(t, UnknownName, functionName(def.ChildByFieldName("body"), result.Source))
	assert.Equal(t, "", DeclaratorName(def.ChildByFieldName("type"), result.Source))
}

func TestFunctions_NilResult(t *testing.T) {
	assert.Empty(t, CollectFunctions(nil))
	assert.Empty(t, CollectFunctions(&ParseResult{}))
}

func TestFunctions_StopsEarly(t *testing.T) {
	code := "int a(void){return 1;}\nint b(void){return 2;}\nint c(void){return 3;}\n"
	var seen []string
	for fn := range Functions(parseC(t, code)) {
		seen = append(seen, fn.Name)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestFunctions_ParamShapes(t *testing.T) {
	code := `
struct point { int x; int y; };
enum color { RED, GREEN };

int shapes(int n, enum color c, int *out, const char *name, int arr[],
           struct point p, void *ctx, int (*cb)(int), ...) { return 0; }
`
	fns := CollectFunctions(parseC(t, code))
	require.Len(t, fns, 1)

	got := make([]Shape, len(fns[0].Params))
	for i, p := range fns[0].Params {
		got[i] = p.Shape
	}
	assert.Equal(t, []Shape{
		ShapePrimitive,
		ShapeEnum,
		ShapePointer,
		ShapePointer,
		ShapeArray,
		ShapeStruct,
		ShapeVoidPointer,
		ShapeFunctionPointer,
		ShapeVariadic,
	}, got)

	params := fns[0].Params
	assert.Equal(t, "out", params[2].Name)
	assert.True(t, params[2].IsOutput())
	assert.True(t, params[3].Const)
	assert.False(t, params[3].IsOutput())
	assert.Equal(t, "cb", params[7].Name)
}

func TestFunctions_VoidParameterList(t *testing.T) {
	fns := CollectFunctions(parseC(t, "int none(void) { return 0; }"))
	require.Len(t, fns, 1)
	assert.Empty(t, fns[0].Params)
}

func TestFunctions_ReturnShapes(t *testing.T) {
	code := `
struct pair { int a; int b; };
enum mode { ON, OFF };
void v(void) {}
int i(void) { return 0; }
char *p(void) { return 0; }
struct pair s(void) { struct pair r = {0, 0}; return r; }
enum mode e(void) { return ON; }
`
	fns := CollectFunctions(parseC(t, code))
	require.Len(t, fns, 5)
	assert.Equal(t, ShapeVoid, fns[0].Return)
	assert.Equal(t, ShapePrimitive, fns[1].Return)
	assert.Equal(t, ShapePointer, fns[2].Return)
	assert.Equal(t, ShapeStruct, fns[3].Return)
	assert.Equal(t, ShapeEnum, fns[4].Return)
}

func TestFunctions_Doc(t *testing.T) {
	code := `
int unrelated;

/**
 * @brief Adds two numbers.
 * @param a first
 */
// trailing line comment
int add(int a, int b) { return a + b; }

/* far away */


int undocumented(void) { return 0; }
`
	fns := CollectFunctions(parseC(t, code))
	require.Len(t, fns, 2)

	assert.Contains(t, fns[0].Doc, "@brief Adds two numbers.")
	assert.Contains(t, fns[0].Doc, "trailing line comment")
	assert.Empty(t, fns[1].Doc)
}

func TestGlobals(t *testing.T) {
	code := `
#include <stdio.h>
static int counter = 0;
int table[16], *cursor;
extern int shared;
int prototype(int a);

int use(int a) { int local = a; return local + counter; }
`
	globals := Globals(parseC(t, code))
	assert.Contains(t, globals, "counter")
	assert.Contains(t, globals, "table")
	assert.Contains(t, globals, "cursor")
	assert.Contains(t, globals, "shared")
	assert.NotContains(t, globals, "prototype")
	assert.NotContains(t, globals, "local")
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "function_pointer", ShapeFunctionPointer.String())
	assert.Equal(t, "unknown", Shape(99).String())
}
