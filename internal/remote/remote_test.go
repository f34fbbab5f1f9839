package remote

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func TestParse_LocalPath(t *testing.T) {
	// Create a temp directory that exists
	dir := t.TempDir()

	src, err := Parse(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src != nil {
		t.Errorf("expected nil for local path, got %+v", src)
	}
}

func TestParse_GitHubShorthand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantURL string
		wantRef string
	}{
		{
			name:    "simple owner/repo",
			input:   "facebook/react",
			wantURL: "https://github.com/facebook/react",
			wantRef: "",
		},
		{
			name:    "with ref suffix",
			input:   "facebook/react@v18.2.0",
			wantURL: "https://github.com/facebook/react",
			wantRef: "v18.2.0",
		},
		{
			name:    "with branch ref",
			input:   "owner/repo@feature-branch",
			wantURL: "https://github.com/owner/repo",
			wantRef: "feature-branch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if src == nil {
				t.Fatal("expected Source, got nil")
			}
			if src.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", src.URL, tt.wantURL)
			}
			if src.Ref != tt.wantRef {
				t.Errorf("Ref = %q, want %q", src.Ref, tt.wantRef)
			}
		})
	}
}

func TestParse_FullURLs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantURL string
		wantRef string
	}{
		{
			name:    "github.com without scheme",
			input:   "github.com/golang/go",
			wantURL: "https://github.com/golang/go",
			wantRef: "",
		},
		{
			name:    "https URL",
			input:   "https://github.com/kubernetes/kubernetes",
			wantURL: "https://github.com/kubernetes/kubernetes",
			wantRef: "",
		},
		{
			name:    "gitlab URL",
			input:   "https://gitlab.com/group/project",
			wantURL: "https://gitlab.com/group/project",
			wantRef: "",
		},
		{
			name:    "SSH URL",
			input:   "git@github.com:owner/repo.git",
			wantURL: "git@github.com:owner/repo.git",
			wantRef: "",
		},
		{
			name:    "URL with ref",
			input:   "github.com/golang/go@go1.21.0",
			wantURL: "https://github.com/golang/go",
			wantRef: "go1.21.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if src == nil {
				t.Fatal("expected Source, got nil")
			}
			if src.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", src.URL, tt.wantURL)
			}
			if src.Ref != tt.wantRef {
				t.Errorf("Ref = %q, want %q", src.Ref, tt.wantRef)
			}
		})
	}
}

func TestParse_NotRemote(t *testing.T) {
	for _, input := range []string{"src/missing.c", "include/missing.h", "plain", "a/b/c"} {
		t.Run(input, func(t *testing.T) {
			src, err := Parse(input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if src != nil {
				t.Errorf("Parse(%q) = %+v, want nil", input, src)
			}
		})
	}
}

// initRepo creates a repository with one committed C file on branch main
// and a tag v1, and returns its path and the commit hash.
func initRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "lib.c"), []byte("int one(void) { return 1; }\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add("lib.c"); err != nil {
		t.Fatal(err)
	}
	hash, err := wt.Commit("add lib", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := repo.CreateTag("v1", hash, nil); err != nil {
		t.Fatalf("tag: %v", err)
	}
	return dir, hash.String()
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git-upload-pack"); err != nil {
		if _, err := exec.LookPath("git"); err != nil {
			t.Skip("git not installed")
		}
	}
}

func TestSource_CloneLocal(t *testing.T) {
	requireGit(t)
	dir, hash := initRepo(t)

	for _, ref := range []string{"", "v1", hash} {
		t.Run("ref="+ref, func(t *testing.T) {
			src := &Source{URL: dir, Ref: ref}
			if err := src.Clone(context.Background(), io.Discard, false); err != nil {
				t.Fatalf("Clone failed: %v", err)
			}
			defer src.Cleanup()

			if _, err := os.Stat(filepath.Join(src.CloneDir, "lib.c")); err != nil {
				t.Errorf("lib.c not checked out: %v", err)
			}
		})
	}
}

func TestSource_CloneUnknownRef(t *testing.T) {
	requireGit(t)
	dir, _ := initRepo(t)

	src := &Source{URL: dir, Ref: "no-such-branch"}
	if err := src.Clone(context.Background(), io.Discard, false); err == nil {
		src.Cleanup()
		t.Fatal("expected error for unknown ref")
	}
	if src.CloneDir != "" {
		t.Errorf("CloneDir = %q after failed clone, want cleaned up", src.CloneDir)
	}
}

func TestSource_Cleanup(t *testing.T) {
	dir := t.TempDir()
	clone := filepath.Join(dir, "clone")
	if err := os.MkdirAll(clone, 0o755); err != nil {
		t.Fatal(err)
	}
	src := &Source{CloneDir: clone}
	src.Cleanup()
	if _, err := os.Stat(clone); !os.IsNotExist(err) {
		t.Errorf("clone dir still exists: %v", err)
	}
	src.Cleanup()
}

func TestSource_CloneShallow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	src := &Source{URL: "https://github.com/octocat/Hello-World"}
	if err := src.Clone(context.Background(), io.Discard, true); err != nil {
		t.Skipf("network clone unavailable: %v", err)
	}
	defer src.Cleanup()

	repo, err := git.PlainOpen(src.CloneDir)
	if err != nil {
		t.Fatalf("open cloned repo: %v", err)
	}
	iter, err := repo.Log(&git.LogOptions{})
	if err != nil {
		t.Fatalf("get log: %v", err)
	}
	count := 0
	_ = iter.ForEach(func(c *object.Commit) error {
		count++
		return nil
	})
	if count > 5 {
		t.Errorf("expected shallow clone with few commits, got %d", count)
	}
}
