package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caf-vcs/caf/pkg/object"
)

// DefaultRepoDir is the repository directory name inside a working
// directory.
const DefaultRepoDir = ".caf"

const objectsSubdir = "objects"

var ErrRepoExists = errors.New("repository already exists")
var ErrRepoNotFound = errors.New("repository not found")

// Repo is an opened caf repository: a working directory with a .caf/
// directory holding the object store and config.
type Repo struct {
	WorkDir string        // working directory root
	CafDir  string        // .caf/ directory
	Store   *object.Store // content-addressed object store
}

func open(workDir string) (*Repo, error) {
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", workDir, err)
	}
	cafDir := filepath.Join(abs, DefaultRepoDir)
	r := &Repo{
		WorkDir: abs,
		CafDir:  cafDir,
		Store:   object.NewStore(filepath.Join(cafDir, objectsSubdir)),
	}
	return r, nil
}

// Init creates a new repository at workDir: the .caf/ directory, the
// objects store beneath it, and a default config. Fails with ErrRepoExists
// if a repository is already present.
func Init(workDir string) (*Repo, error) {
	r, err := open(workDir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(r.CafDir); err == nil {
		return nil, fmt.Errorf("init %s: %w", r.CafDir, ErrRepoExists)
	}
	if err := os.MkdirAll(filepath.Join(r.CafDir, objectsSubdir), 0o755); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	if err := r.WriteConfig(DefaultConfig()); err != nil {
		return nil, err
	}
	return r, nil
}

// Open opens an existing repository at workDir. Fails with ErrRepoNotFound
// if no .caf/ directory exists there.
func Open(workDir string) (*Repo, error) {
	r, err := open(workDir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(r.CafDir); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("open %s: %w", workDir, ErrRepoNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", workDir, err)
	}

	cfg, err := r.ReadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.LockWait > 0 {
		r.Store = object.NewStore(
			filepath.Join(r.CafDir, objectsSubdir),
			object.WithLockWait(cfg.LockWait),
		)
	}
	return r, nil
}

// Exists reports whether a repository is present at workDir.
func Exists(workDir string) bool {
	_, err := os.Stat(filepath.Join(workDir, DefaultRepoDir))
	return err == nil
}

// Delete removes the entire repository directory, objects included. The
// working directory's own files are untouched.
func (r *Repo) Delete() error {
	if _, err := os.Stat(r.CafDir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete %s: %w", r.CafDir, ErrRepoNotFound)
		}
		return fmt.Errorf("delete %s: %w", r.CafDir, err)
	}
	if err := os.RemoveAll(r.CafDir); err != nil {
		return fmt.Errorf("delete %s: %w", r.CafDir, err)
	}
	return nil
}
