// Package remote clones git repositories named on the command line so they
// can be analyzed like local directories.
package remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/knots-cli/knots/pkg/parser"
)

// Source represents a remote repository to analyze.
type Source struct {
	URL      string // normalized git URL
	Ref      string // branch, tag, or SHA (empty = default branch)
	CloneDir string // temp directory after clone
}

// Parse detects if a path is a remote reference.
// Returns nil if path exists on filesystem (local path takes precedence).
func Parse(path string) (*Source, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, nil
	}
	// a missing .c or .h file is a local typo, not a repository
	if parser.DetectLanguage(path) != parser.LangUnknown {
		return nil, nil
	}

	// SSH URLs carry an @ before the host; only a trailing @ref counts.
	if strings.HasPrefix(path, "git@") {
		return &Source{URL: path}, nil
	}

	ref := ""
	if idx := strings.LastIndex(path, "@"); idx != -1 {
		ref = path[idx+1:]
		path = path[:idx]
	}

	switch {
	case strings.HasPrefix(path, "https://"), strings.HasPrefix(path, "http://"):
		return &Source{URL: path, Ref: ref}, nil
	case isHostPath(path):
		return &Source{URL: "https://" + path, Ref: ref}, nil
	case isGitHubShorthand(path):
		return &Source{URL: "https://github.com/" + path, Ref: ref}, nil
	}
	return nil, nil
}

// isGitHubShorthand returns true if path matches owner/repo pattern.
func isGitHubShorthand(path string) bool {
	slashIdx := strings.Index(path, "/")
	if slashIdx == -1 {
		return false
	}
	if strings.Count(path, "/") != 1 {
		return false
	}
	// a dot before the slash would indicate a domain
	if strings.Contains(path[:slashIdx], ".") {
		return false
	}
	return slashIdx > 0 && slashIdx < len(path)-1
}

// isHostPath matches host.tld/owner/repo without a scheme.
func isHostPath(path string) bool {
	parts := strings.Split(path, "/")
	return len(parts) >= 3 && strings.Contains(parts[0], ".") && parts[1] != "" && parts[2] != ""
}

var shaPattern = regexp.MustCompile(`^[0-9a-f]{7,40}$`)

// Clone clones the repository into a new temporary directory and checks out
// Ref. Progress messages go to progress. A shallow clone fetches only the
// tip commit and cannot check out a SHA.
func (s *Source) Clone(ctx context.Context, progress io.Writer, shallow bool) error {
	dir, err := os.MkdirTemp("", "knots-remote-*")
	if err != nil {
		return fmt.Errorf("creating clone directory: %w", err)
	}
	s.CloneDir = dir

	if err := s.clone(ctx, progress, shallow); err != nil {
		s.Cleanup()
		return fmt.Errorf("cloning %s: %w", s.URL, err)
	}
	return nil
}

func (s *Source) clone(ctx context.Context, progress io.Writer, shallow bool) error {
	opts := &git.CloneOptions{
		URL:      s.URL,
		Progress: progress,
	}
	if shallow {
		opts.Depth = 1
	}

	if s.Ref == "" || shaPattern.MatchString(s.Ref) {
		repo, err := git.PlainCloneContext(ctx, s.CloneDir, false, opts)
		if err != nil || s.Ref == "" {
			return err
		}
		return checkoutHash(repo, s.Ref)
	}

	opts.SingleBranch = true
	opts.ReferenceName = plumbing.NewBranchReferenceName(s.Ref)
	if _, err := git.PlainCloneContext(ctx, s.CloneDir, false, opts); err == nil {
		return nil
	}

	// not a branch: start over and try it as a tag
	if err := resetDir(s.CloneDir); err != nil {
		return err
	}
	opts.ReferenceName = plumbing.NewTagReferenceName(s.Ref)
	_, err := git.PlainCloneContext(ctx, s.CloneDir, false, opts)
	return err
}

func checkoutHash(repo *git.Repository, ref string) error {
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return fmt.Errorf("resolving %s: %w", ref, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	return wt.Checkout(&git.CheckoutOptions{Hash: *hash})
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// Cleanup removes the clone directory.
func (s *Source) Cleanup() {
	if s.CloneDir != "" {
		_ = os.RemoveAll(s.CloneDir)
		s.CloneDir = ""
	}
}
