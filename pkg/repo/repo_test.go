package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func initTestRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r
}

func TestInitCreatesLayout(t *testing.T) {
	r := initTestRepo(t)

	if _, err := os.Stat(filepath.Join(r.CafDir, "objects")); err != nil {
		t.Errorf("objects dir missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(r.CafDir, "config.toml")); err != nil {
		t.Errorf("config missing: %v", err)
	}
	if !Exists(r.WorkDir) {
		t.Error("Exists should report true after Init")
	}
}

func TestInitTwiceFails(t *testing.T) {
	r := initTestRepo(t)
	_, err := Init(r.WorkDir)
	if !errors.Is(err, ErrRepoExists) {
		t.Errorf("want ErrRepoExists, got %v", err)
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(t.TempDir())
	if !errors.Is(err, ErrRepoNotFound) {
		t.Errorf("want ErrRepoNotFound, got %v", err)
	}
}

func TestOpenExisting(t *testing.T) {
	r := initTestRepo(t)
	opened, err := Open(r.WorkDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened.CafDir != r.CafDir {
		t.Errorf("CafDir: got %q, want %q", opened.CafDir, r.CafDir)
	}
}

func TestDeleteRepo(t *testing.T) {
	r := initTestRepo(t)
	if err := r.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if Exists(r.WorkDir) {
		t.Error("repository still present after Delete")
	}
	if err := r.Delete(); !errors.Is(err, ErrRepoNotFound) {
		t.Errorf("second Delete: want ErrRepoNotFound, got %v", err)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	r := initTestRepo(t)

	want := &Config{Author: "Ada <ada@example.com>", LockWait: 2 * time.Second}
	if err := r.WriteConfig(want); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	got, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if got.Author != want.Author {
		t.Errorf("Author: got %q, want %q", got.Author, want.Author)
	}
	if got.LockWait != want.LockWait {
		t.Errorf("LockWait: got %v, want %v", got.LockWait, want.LockWait)
	}
}

func TestConfigMissingReturnsDefaults(t *testing.T) {
	r := initTestRepo(t)
	if err := os.Remove(filepath.Join(r.CafDir, "config.toml")); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	cfg, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.Author != "" || cfg.LockWait != 0 {
		t.Errorf("defaults: got %+v", cfg)
	}
}
