package object

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxStringLen caps every length-prefixed string on disk. A declared
// length over the cap is rejected as corrupt before any allocation or
// read, bounding resource use on malformed input.
const MaxStringLen = 1 << 20

// All multi-byte integers on disk are little-endian: u32 lengths and
// counts, u64 commit timestamp, u8 record kind tag.

// writeString writes a u32 length prefix followed by the raw bytes.
func writeString(w io.Writer, v string) error {
	if len(v) > MaxStringLen {
		return fmt.Errorf("%w: string length %d exceeds %d", ErrCorrupt, len(v), MaxStringLen)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(v))); err != nil {
		return fmt.Errorf("write length: %w", err)
	}
	if _, err := io.WriteString(w, v); err != nil {
		return fmt.Errorf("write string: %w", err)
	}
	return nil
}

// readString reads a u32 length prefix and that many bytes.
func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", corruptIfTruncated(err)
	}
	if n > MaxStringLen {
		return "", fmt.Errorf("%w: declared length %d exceeds %d", ErrCorrupt, n, MaxStringLen)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", corruptIfTruncated(err)
	}
	return string(buf), nil
}

// corruptIfTruncated converts end-of-file during a structured read into
// ErrCorrupt: the object declared more content than it holds.
func corruptIfTruncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated object", ErrCorrupt)
	}
	return err
}

// SaveTree persists a tree under its identity hash and returns the hash.
// The write is transactional: any failure mid-encode deletes the partial
// file before the error is surfaced, so the store never retains a
// half-written object.
func (s *Store) SaveTree(t *Tree) (Hash, error) {
	h := HashTree(t)
	if s.Has(h) {
		return h, nil
	}
	w, err := s.OpenForWriting(h)
	if err != nil {
		return "", err
	}
	if err := encodeTree(w, t); err != nil {
		w.Close()
		s.Delete(h)
		return "", fmt.Errorf("save tree %s: %w", h, err)
	}
	if err := w.Close(); err != nil {
		s.Delete(h)
		return "", fmt.Errorf("save tree %s: %w", h, err)
	}
	return h, nil
}

func encodeTree(w io.Writer, t *Tree) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(t.Records))); err != nil {
		return fmt.Errorf("write record count: %w", err)
	}
	for _, r := range t.sortedRecords() {
		if err := bw.WriteByte(byte(r.Kind)); err != nil {
			return fmt.Errorf("record %q: write kind: %w", r.Name, err)
		}
		if err := writeString(bw, string(r.Hash)); err != nil {
			return fmt.Errorf("record %q: hash: %w", r.Name, err)
		}
		if err := writeString(bw, r.Name); err != nil {
			return fmt.Errorf("record %q: name: %w", r.Name, err)
		}
	}
	return bw.Flush()
}

// LoadTree reads the tree stored under hash. Returns ErrNotFound when no
// object exists for the hash and ErrCorrupt when the record count cannot
// be satisfied by the remaining bytes.
func (s *Store) LoadTree(h Hash) (*Tree, error) {
	r, err := s.OpenForReading(h)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	t, err := decodeTree(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("load tree %s: %w", h, err)
	}
	return t, nil
}

func decodeTree(r io.Reader) (*Tree, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, corruptIfTruncated(err)
	}
	// The count is untrusted until the records behind it decode; cap the
	// allocation hint so a corrupt count cannot force a huge allocation.
	hint := count
	if hint > 1024 {
		hint = 1024
	}
	t := &Tree{Records: make(map[string]TreeRecord, hint)}
	for i := uint32(0); i < count; i++ {
		var kind [1]byte
		if _, err := io.ReadFull(r, kind[:]); err != nil {
			return nil, corruptIfTruncated(err)
		}
		hash, err := readString(r)
		if err != nil {
			return nil, err
		}
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		t.Records[name] = TreeRecord{Kind: RecordKind(kind[0]), Hash: Hash(hash), Name: name}
	}
	return t, nil
}

// SaveCommit persists a commit under its identity hash and returns the
// hash, with the same transactional rollback as SaveTree.
func (s *Store) SaveCommit(c *Commit) (Hash, error) {
	h := HashCommit(c)
	if s.Has(h) {
		return h, nil
	}
	w, err := s.OpenForWriting(h)
	if err != nil {
		return "", err
	}
	if err := encodeCommit(w, c); err != nil {
		w.Close()
		s.Delete(h)
		return "", fmt.Errorf("save commit %s: %w", h, err)
	}
	if err := w.Close(); err != nil {
		s.Delete(h)
		return "", fmt.Errorf("save commit %s: %w", h, err)
	}
	return h, nil
}

func encodeCommit(w io.Writer, c *Commit) error {
	bw := bufio.NewWriter(w)
	if err := writeString(bw, string(c.TreeHash)); err != nil {
		return fmt.Errorf("tree hash: %w", err)
	}
	if err := writeString(bw, c.Author); err != nil {
		return fmt.Errorf("author: %w", err)
	}
	if err := writeString(bw, c.Message); err != nil {
		return fmt.Errorf("message: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(c.Timestamp)); err != nil {
		return fmt.Errorf("write timestamp: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(c.Parents))); err != nil {
		return fmt.Errorf("write parent count: %w", err)
	}
	for i, p := range c.Parents {
		if err := writeString(bw, string(p)); err != nil {
			return fmt.Errorf("parent %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// LoadCommit reads the commit stored under hash. Parents come back in the
// exact order written, whether there are 0, 1, or many.
func (s *Store) LoadCommit(h Hash) (*Commit, error) {
	r, err := s.OpenForReading(h)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	c, err := decodeCommit(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w", h, err)
	}
	return c, nil
}

func decodeCommit(r io.Reader) (*Commit, error) {
	treeHash, err := readString(r)
	if err != nil {
		return nil, err
	}
	author, err := readString(r)
	if err != nil {
		return nil, err
	}
	message, err := readString(r)
	if err != nil {
		return nil, err
	}
	var ts uint64
	if err := binary.Read(r, binary.LittleEndian, &ts); err != nil {
		return nil, corruptIfTruncated(err)
	}
	var parentCount uint32
	if err := binary.Read(r, binary.LittleEndian, &parentCount); err != nil {
		return nil, corruptIfTruncated(err)
	}
	c := &Commit{
		TreeHash:  Hash(treeHash),
		Author:    author,
		Message:   message,
		Timestamp: int64(ts),
	}
	for i := uint32(0); i < parentCount; i++ {
		p, err := readString(r)
		if err != nil {
			return nil, err
		}
		c.Parents = append(c.Parents, Hash(p))
	}
	return c, nil
}
