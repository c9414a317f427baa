package object

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
)

// HashLength returns the length in characters of a hex-encoded hash.
func HashLength() int {
	return sha256.Size * 2
}

// HashBytes computes the SHA-256 hash of data as a lowercase hex Hash.
func HashBytes(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashFile computes the SHA-256 hash of a file's contents, streamed.
func HashFile(path string) (Hash, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hash file %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file %s: %w", path, err)
	}
	return Hash(hex.EncodeToString(h.Sum(nil))), nil
}

// HashBlob returns the blob's identity: the hash assigned when its content
// was ingested. Blob content is never re-read to compute identity.
func HashBlob(b *Blob) Hash {
	return b.Hash
}

// HashTree computes a tree's identity from its record set. Records are
// visited in canonical (name-sorted) order so that trees with the same
// records hash identically regardless of how they were built. The preimage
// per record is name, decimal kind tag, hash.
func HashTree(t *Tree) Hash {
	h := sha256.New()
	for _, r := range t.sortedRecords() {
		io.WriteString(h, r.Name)
		io.WriteString(h, strconv.Itoa(int(r.Kind)))
		io.WriteString(h, string(r.Hash))
	}
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// HashCommit computes a commit's identity from tree hash, author, message,
// decimal timestamp, and every parent hash in order. Reordering parents
// changes the identity.
func HashCommit(c *Commit) Hash {
	h := sha256.New()
	io.WriteString(h, string(c.TreeHash))
	io.WriteString(h, c.Author)
	io.WriteString(h, c.Message)
	io.WriteString(h, strconv.FormatInt(c.Timestamp, 10))
	for _, p := range c.Parents {
		io.WriteString(h, string(p))
	}
	return Hash(hex.EncodeToString(h.Sum(nil)))
}
