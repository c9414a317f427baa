package object

import "sort"

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// RecordKind identifies what kind of object a tree record points at.
// The numeric values are the on-disk kind tags.
type RecordKind uint8

const (
	KindTree   RecordKind = 0
	KindBlob   RecordKind = 1
	KindCommit RecordKind = 2
)

func (k RecordKind) String() string {
	switch k {
	case KindTree:
		return "tree"
	case KindBlob:
		return "blob"
	case KindCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// Blob identifies raw content already held by the store. The hash is
// assigned when the content is ingested; the bytes themselves live on
// disk under that hash.
type Blob struct {
	Hash Hash
}

// TreeRecord is a named reference from a tree to a child object.
type TreeRecord struct {
	Kind RecordKind
	Hash Hash
	Name string
}

// Tree is a directory snapshot: records keyed by name, one per name.
// Identity is independent of insertion order; hashing and serialization
// always visit records in lexicographic name order.
type Tree struct {
	Records map[string]TreeRecord
}

// NewTree builds a Tree from records, keyed by record name.
func NewTree(records ...TreeRecord) *Tree {
	t := &Tree{Records: make(map[string]TreeRecord, len(records))}
	for _, r := range records {
		t.Records[r.Name] = r
	}
	return t
}

// Record looks up a record by name.
func (t *Tree) Record(name string) (TreeRecord, bool) {
	r, ok := t.Records[name]
	return r, ok
}

// sortedRecords returns the records in canonical (name-sorted) order.
func (t *Tree) sortedRecords() []TreeRecord {
	names := make([]string, 0, len(t.Records))
	for name := range t.Records {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]TreeRecord, 0, len(names))
	for _, name := range names {
		out = append(out, t.Records[name])
	}
	return out
}

// Commit points at a tree with authorship metadata and an ordered list of
// parent hashes: empty for a root commit, one entry for linear history,
// two or more for a merge. Parent order is part of the commit's identity.
type Commit struct {
	TreeHash  Hash
	Author    string
	Message   string
	Timestamp int64
	Parents   []Hash
}

// PrimaryParent returns the first parent, or "" for a root commit.
func (c *Commit) PrimaryParent() Hash {
	if len(c.Parents) == 0 {
		return ""
	}
	return c.Parents[0]
}

// IsRoot reports whether the commit has no parents.
func (c *Commit) IsRoot() bool {
	return len(c.Parents) == 0
}
