package vcs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func TestNewGitOpener(t *testing.T) {
	opener := NewGitOpener()
	if opener == nil {
		t.Fatal("NewGitOpener() returned nil")
	}
}

func TestGitOpener_PlainOpen(t *testing.T) {
	repoPath := initTestRepo(t)

	repo, err := NewGitOpener().PlainOpen(repoPath)
	if err != nil {
		t.Fatalf("PlainOpen() error = %v", err)
	}
	if repo.RepoPath() != repoPath {
		t.Errorf("RepoPath() = %q, want %q", repo.RepoPath(), repoPath)
	}
}

func TestGitOpener_PlainOpen_NonExistent(t *testing.T) {
	if _, err := NewGitOpener().PlainOpen("/nonexistent/path"); err == nil {
		t.Error("PlainOpen() should return error for non-existent path")
	}
}

func TestGitOpener_PlainOpenWithDetect(t *testing.T) {
	repoPath := initTestRepo(t)

	subDir := filepath.Join(repoPath, "subdir")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatal(err)
	}

	repo, err := NewGitOpener().PlainOpenWithDetect(subDir)
	if err != nil {
		t.Fatalf("PlainOpenWithDetect() error = %v", err)
	}
	if repo.RepoPath() != repoPath {
		t.Errorf("RepoPath() = %q, want %q", repo.RepoPath(), repoPath)
	}
}

func TestStagedAndChangedFiles(t *testing.T) {
	repoPath := initTestRepoWithCommit(t)
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		t.Fatal(err)
	}
	w, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}

	// staged new file
	writeFile(t, repoPath, "src/new.c", "int fresh(void) { return 1; }\n")
	if _, err := w.Add("src/new.c"); err != nil {
		t.Fatal(err)
	}
	// staged modification
	writeFile(t, repoPath, "core.c", "int core(void) { return 2; }\n")
	if _, err := w.Add("core.c"); err != nil {
		t.Fatal(err)
	}
	// unstaged modification
	writeFile(t, repoPath, "notes.txt", "changed\n")
	// untracked
	writeFile(t, repoPath, "scratch.c", "int scratch;\n")
	// deleted
	if err := os.Remove(filepath.Join(repoPath, "old.c")); err != nil {
		t.Fatal(err)
	}

	r, err := NewGitOpener().PlainOpen(repoPath)
	if err != nil {
		t.Fatal(err)
	}

	staged, err := r.StagedFiles()
	if err != nil {
		t.Fatalf("StagedFiles() error = %v", err)
	}
	wantStaged := []string{
		filepath.Join(repoPath, "core.c"),
		filepath.Join(repoPath, "src", "new.c"),
	}
	assertPaths(t, "StagedFiles()", staged, wantStaged)

	changed, err := r.ChangedFiles()
	if err != nil {
		t.Fatalf("ChangedFiles() error = %v", err)
	}
	wantChanged := []string{
		filepath.Join(repoPath, "core.c"),
		filepath.Join(repoPath, "notes.txt"),
		filepath.Join(repoPath, "scratch.c"),
		filepath.Join(repoPath, "src", "new.c"),
	}
	assertPaths(t, "ChangedFiles()", changed, wantChanged)

	assertPaths(t, "OnlyC()", OnlyC(changed), []string{
		filepath.Join(repoPath, "core.c"),
		filepath.Join(repoPath, "scratch.c"),
		filepath.Join(repoPath, "src", "new.c"),
	})
}

func TestStagedFilesCleanRepo(t *testing.T) {
	repoPath := initTestRepoWithCommit(t)
	r, err := NewGitOpener().PlainOpen(repoPath)
	if err != nil {
		t.Fatal(err)
	}
	staged, err := r.StagedFiles()
	if err != nil {
		t.Fatalf("StagedFiles() error = %v", err)
	}
	if len(staged) != 0 {
		t.Errorf("StagedFiles() on clean repo = %v, want none", staged)
	}
}

func TestDefaultOpener(t *testing.T) {
	original := DefaultOpener()
	defer SetDefaultOpener(original)

	custom := NewGitOpener()
	SetDefaultOpener(custom)
	if DefaultOpener() != custom {
		t.Error("SetDefaultOpener() did not replace the default opener")
	}
}

func assertPaths(t *testing.T, what string, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", what, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s[%d] = %s, want %s", what, i, got[i], want[i])
		}
	}
}

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func initTestRepo(t *testing.T) string {
	t.Helper()
	repoPath := t.TempDir()
	if _, err := git.PlainInit(repoPath, false); err != nil {
		t.Fatalf("Failed to init repo: %v", err)
	}
	return repoPath
}

func initTestRepoWithCommit(t *testing.T) string {
	t.Helper()
	repoPath := t.TempDir()
	repo, err := git.PlainInit(repoPath, false)
	if err != nil {
		t.Fatalf("Failed to init repo: %v", err)
	}

	writeFile(t, repoPath, "core.c", "int core(void) { return 1; }\n")
	writeFile(t, repoPath, "old.c", "int old(void) { return 0; }\n")
	writeFile(t, repoPath, "notes.txt", "initial content\n")

	w, _ := repo.Worktree()
	for _, name := range []string{"core.c", "old.c", "notes.txt"} {
		if _, err := w.Add(name); err != nil {
			t.Fatal(err)
		}
	}
	_, err = w.Commit("Initial commit", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return repoPath
}
