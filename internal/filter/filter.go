// Package filter selects which analyzed functions are reported.
//
// A function passes when its path matches an include glob (if any) and no
// exclude glob, its name matches an include regex (if any) and no exclude
// regex, and max(mccabe, cognitive) lies in the configured range.
package filter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/knots-cli/knots/pkg/analyzer/complexity"
	"github.com/knots-cli/knots/pkg/config"
)

// View is the stable, filterable projection of a function result.
type View struct {
	Path          string
	Name          string
	MaxComplexity int
}

// ViewOf projects fn.
func ViewOf(fn *complexity.FunctionResult) View {
	return View{Path: fn.File, Name: fn.Name, MaxComplexity: fn.MaxComplexity()}
}

// Filter is a compiled FilterConfig.
type Filter struct {
	root         string
	includePaths []gitignore.Pattern
	excludePaths []gitignore.Pattern
	includeNames []*regexp.Regexp
	excludeNames []*regexp.Regexp
	min, max     int
}

// New compiles cfg. Paths are matched relative to root; "" means the
// working directory.
func New(cfg config.FilterConfig, root string) (*Filter, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	f := &Filter{
		root:         abs,
		includePaths: globs(cfg.IncludePaths),
		excludePaths: globs(cfg.ExcludePaths),
		min:          cfg.MinComplexity,
		max:          cfg.MaxComplexity,
	}
	if f.includeNames, err = regexes(cfg.IncludeNames); err != nil {
		return nil, err
	}
	if f.excludeNames, err = regexes(cfg.ExcludeNames); err != nil {
		return nil, err
	}
	if f.max > 0 && f.min > f.max {
		return nil, fmt.Errorf("min complexity %d exceeds max complexity %d", f.min, f.max)
	}
	return f, nil
}

func globs(patterns []string) []gitignore.Pattern {
	out := make([]gitignore.Pattern, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, gitignore.ParsePattern(p, nil))
	}
	return out
}

func regexes(exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid name pattern %q: %w", expr, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// IsZero reports whether f lets everything through.
func (f *Filter) IsZero() bool {
	return f == nil || (len(f.includePaths) == 0 && len(f.excludePaths) == 0 &&
		len(f.includeNames) == 0 && len(f.excludeNames) == 0 && f.min <= 0 && f.max <= 0)
}

// Match reports whether v passes every predicate.
func (f *Filter) Match(v View) bool {
	if f.IsZero() {
		return true
	}
	if v.MaxComplexity < f.min || (f.max > 0 && v.MaxComplexity > f.max) {
		return false
	}

	parts := f.pathParts(v.Path)
	if len(f.includePaths) > 0 && !anyGlob(f.includePaths, parts) {
		return false
	}
	if anyGlob(f.excludePaths, parts) {
		return false
	}

	if len(f.includeNames) > 0 && !anyRegex(f.includeNames, v.Name) {
		return false
	}
	return !anyRegex(f.excludeNames, v.Name)
}

func (f *Filter) pathParts(path string) []string {
	if filepath.IsAbs(path) {
		if rel, err := filepath.Rel(f.root, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	path = strings.TrimPrefix(filepath.ToSlash(filepath.Clean(path)), "./")
	return strings.Split(path, "/")
}

func anyGlob(patterns []gitignore.Pattern, parts []string) bool {
	for _, p := range patterns {
		if p.Match(parts, false) == gitignore.Exclude {
			return true
		}
	}
	return false
}

func anyRegex(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// Apply returns a copy of an with only the matching functions. Files keep
// their place even when all of their functions are filtered out.
func (f *Filter) Apply(an *complexity.Analysis) *complexity.Analysis {
	if f.IsZero() || an == nil {
		return an
	}
	out := &complexity.Analysis{
		Files:   make([]complexity.FileResult, 0, len(an.Files)),
		Skipped: an.Skipped,
	}
	for _, file := range an.Files {
		kept := file
		kept.Functions = make([]complexity.FunctionResult, 0, len(file.Functions))
		for i := range file.Functions {
			if f.Match(ViewOf(&file.Functions[i])) {
				kept.Functions = append(kept.Functions, file.Functions[i])
			}
		}
		out.Files = append(out.Files, kept)
	}
	return out
}
