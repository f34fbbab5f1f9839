// Package vcs provides version control system abstractions.
package vcs

// Repository provides access to the git state knots gates on.
type Repository interface {
	// RepoPath returns the root path of the worktree.
	RepoPath() string
	// StagedFiles returns added, modified, renamed or copied files in the
	// index, as absolute paths.
	StagedFiles() ([]string, error)
	// ChangedFiles returns StagedFiles plus files modified or untracked in
	// the worktree, as absolute paths.
	ChangedFiles() ([]string, error)
}

// Opener opens git repositories.
type Opener interface {
	// PlainOpen opens an existing git repository.
	PlainOpen(path string) (Repository, error)
	// PlainOpenWithDetect opens a git repository, detecting .git in parent directories.
	PlainOpenWithDetect(path string) (Repository, error)
}
