package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caf-vcs/caf/pkg/object"
)

// SaveFile ingests one file's content into the object store and returns
// the resulting Blob.
func (r *Repo) SaveFile(path string) (object.Blob, error) {
	h, err := r.Store.StoreFile(path)
	if err != nil {
		return object.Blob{}, err
	}
	return object.Blob{Hash: h}, nil
}

// SaveDir snapshots a directory into the object store: a blob per regular
// file, a tree per directory, built bottom-up. The repository directory
// itself is skipped. Returns the root tree's hash.
//
// Identical directory content always produces the same root hash, so
// re-snapshotting an unchanged directory stores nothing new.
func (r *Repo) SaveDir(dir string) (object.Hash, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("snapshot %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("snapshot %s: not a directory", dir)
	}
	return r.saveDirTree(dir)
}

func (r *Repo) saveDirTree(dir string) (object.Hash, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("snapshot %s: %w", dir, err)
	}

	tree := object.NewTree()
	for _, e := range entries {
		if e.Name() == DefaultRepoDir {
			continue
		}
		full := filepath.Join(dir, e.Name())
		switch {
		case e.IsDir():
			sub, err := r.saveDirTree(full)
			if err != nil {
				return "", err
			}
			tree.Records[e.Name()] = object.TreeRecord{
				Kind: object.KindTree,
				Hash: sub,
				Name: e.Name(),
			}
		case e.Type().IsRegular():
			blob, err := r.SaveFile(full)
			if err != nil {
				return "", err
			}
			tree.Records[e.Name()] = object.TreeRecord{
				Kind: object.KindBlob,
				Hash: blob.Hash,
				Name: e.Name(),
			}
		default:
			// Sockets, devices, symlinks: not part of a snapshot.
		}
	}
	return r.Store.SaveTree(tree)
}

// Snapshot stores the working directory as a tree and returns the root
// tree hash.
func (r *Repo) Snapshot() (object.Hash, error) {
	return r.SaveDir(r.WorkDir)
}

// CreateCommit builds a commit of the given tree, stamped now, persists
// it, and returns its hash. Parents are recorded in the given order; the
// first one, if any, is the primary parent.
func (r *Repo) CreateCommit(tree object.Hash, author, message string, parents []object.Hash) (object.Hash, error) {
	if author == "" {
		return "", fmt.Errorf("create commit: author required")
	}
	c := &object.Commit{
		TreeHash:  tree,
		Author:    author,
		Message:   message,
		Timestamp: time.Now().Unix(),
		Parents:   parents,
	}
	return r.Store.SaveCommit(c)
}
