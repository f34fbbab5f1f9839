package vcs

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/knots-cli/knots/pkg/parser"
)

// GitOpener opens git repositories using go-git.
type GitOpener struct{}

// NewGitOpener creates a new GitOpener.
func NewGitOpener() *GitOpener {
	return &GitOpener{}
}

// PlainOpen opens an existing git repository.
func (o *GitOpener) PlainOpen(path string) (Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, err
	}
	return newGitRepository(repo)
}

// PlainOpenWithDetect opens a git repository, detecting .git in parent directories.
func (o *GitOpener) PlainOpenWithDetect(path string) (Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, err
	}
	return newGitRepository(repo)
}

// gitRepository wraps go-git Repository.
type gitRepository struct {
	repo *git.Repository
	root string
}

func newGitRepository(repo *git.Repository) (*gitRepository, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree: %w", err)
	}
	return &gitRepository{repo: repo, root: wt.Filesystem.Root()}, nil
}

func (r *gitRepository) RepoPath() string {
	return r.root
}

func (r *gitRepository) StagedFiles() ([]string, error) {
	return r.collect(func(s *git.FileStatus) bool {
		return present(s.Staging)
	})
}

func (r *gitRepository) ChangedFiles() ([]string, error) {
	return r.collect(func(s *git.FileStatus) bool {
		return present(s.Staging) || present(s.Worktree) || s.Worktree == git.Untracked
	})
}

func (r *gitRepository) collect(keep func(*git.FileStatus) bool) ([]string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, err
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("reading git status: %w", err)
	}

	var files []string
	for path, s := range status {
		// deleted files cannot be analyzed
		if s.Staging == git.Deleted || s.Worktree == git.Deleted || !keep(s) {
			continue
		}
		files = append(files, filepath.Join(r.root, filepath.FromSlash(path)))
	}
	sort.Strings(files)
	return files, nil
}

func present(code git.StatusCode) bool {
	switch code {
	case git.Added, git.Modified, git.Renamed, git.Copied:
		return true
	}
	return false
}

// OnlyC keeps the files knots can analyze.
func OnlyC(files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if parser.DetectLanguage(f) == parser.LangC {
			out = append(out, f)
		}
	}
	return out
}

// Default opener singleton
var defaultOpener Opener = NewGitOpener()

// DefaultOpener returns the default git opener.
func DefaultOpener() Opener {
	return defaultOpener
}

// SetDefaultOpener sets the default git opener (useful for testing).
func SetDefaultOpener(opener Opener) {
	defaultOpener = opener
}
