package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/caf-vcs/caf/pkg/object"
	"github.com/spf13/cobra"
)

func chdirForTest(t *testing.T, dir string) func() {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir(%s): %v", dir, err)
	}
	return func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore cwd %s: %v", wd, err)
		}
	}
}

func runCmd(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%s %v: %v\noutput: %s", cmd.Use, args, err, out.String())
	}
	return out.String()
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	out := runCmd(t, newInitCmd(), dir)
	if !strings.Contains(out, "initialized empty caf repository") {
		t.Errorf("init output: %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, ".caf", "objects")); err != nil {
		t.Errorf("objects dir missing: %v", err)
	}
}

func TestHashObjectCommand(t *testing.T) {
	dir := t.TempDir()
	restore := chdirForTest(t, dir)
	defer restore()

	runCmd(t, newInitCmd())
	if err := os.WriteFile("a.txt", []byte("alpha"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	want := string(object.HashBytes([]byte("alpha")))

	out := runCmd(t, newHashObjectCmd(), "a.txt")
	if strings.TrimSpace(out) != want {
		t.Errorf("hash-object: got %q, want %q", strings.TrimSpace(out), want)
	}

	out = runCmd(t, newHashObjectCmd(), "-w", "a.txt")
	if strings.TrimSpace(out) != want {
		t.Errorf("hash-object -w: got %q, want %q", strings.TrimSpace(out), want)
	}

	// -w must have stored the content.
	blob := runCmd(t, newCatFileCmd(), "blob", want)
	if blob != "alpha" {
		t.Errorf("cat-file blob: got %q, want %q", blob, "alpha")
	}
}

func TestSnapshotAndCommitTreeCommands(t *testing.T) {
	dir := t.TempDir()
	restore := chdirForTest(t, dir)
	defer restore()

	runCmd(t, newInitCmd())
	if err := os.MkdirAll("sub", 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile("a.txt", []byte("alpha"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join("sub", "b.txt"), []byte("beta"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	out := runCmd(t, newSnapshotCmd())
	fields := strings.Fields(out)
	if len(fields) != 2 || fields[0] != "tree" {
		t.Fatalf("snapshot output: %q", out)
	}
	treeHash := fields[1]

	treeOut := runCmd(t, newCatFileCmd(), "tree", treeHash)
	if !strings.Contains(treeOut, "a.txt") || !strings.Contains(treeOut, "sub") {
		t.Errorf("cat-file tree output: %q", treeOut)
	}

	out = runCmd(t, newCommitTreeCmd(), treeHash, "-m", "initial", "--author", "Ada")
	commitHash := strings.TrimSpace(out)
	if len(commitHash) != object.HashLength() {
		t.Fatalf("commit-tree output: %q", out)
	}

	commitOut := runCmd(t, newCatFileCmd(), "commit", commitHash)
	if !strings.Contains(commitOut, "tree "+treeHash) ||
		!strings.Contains(commitOut, "author Ada") ||
		!strings.Contains(commitOut, "initial") {
		t.Errorf("cat-file commit output: %q", commitOut)
	}
}

func TestSnapshotWithMessageCommits(t *testing.T) {
	dir := t.TempDir()
	restore := chdirForTest(t, dir)
	defer restore()

	runCmd(t, newInitCmd())
	if err := os.WriteFile("a.txt", []byte("alpha"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	out := runCmd(t, newSnapshotCmd(), "-m", "first snapshot", "--author", "Ada")
	if !strings.Contains(out, "tree ") || !strings.Contains(out, "commit ") {
		t.Errorf("snapshot -m output: %q", out)
	}
}

func TestCommitTreeMissingTree(t *testing.T) {
	dir := t.TempDir()
	restore := chdirForTest(t, dir)
	defer restore()

	runCmd(t, newInitCmd())

	cmd := newCommitTreeCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{string(object.HashBytes([]byte("nope"))), "-m", "msg", "--author", "Ada"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("commit-tree on a missing tree should fail")
	}
}
