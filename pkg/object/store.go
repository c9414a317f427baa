package object

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultLockWait bounds how long handle acquisition waits on a held file
// lock before giving up with ErrWriteInProgress.
const DefaultLockWait = 10 * time.Second

const lockPollInterval = 10 * time.Millisecond

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: <root>/ab/cdef0123...
//
// Every object file is written exactly once, under an exclusive lock, and
// is read-only forever after. Concurrent writers of the same content
// converge on the same hash and the same bytes; the lock only keeps
// readers from observing a half-written file.
type Store struct {
	root     string
	lockWait time.Duration
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLockWait bounds the wait for a contended file lock.
func WithLockWait(d time.Duration) StoreOption {
	return func(s *Store) { s.lockWait = d }
}

// NewStore creates a Store rooted at the given directory. Fan-out
// subdirectories are created lazily on first write.
func NewStore(root string, opts ...StoreOption) *Store {
	s := &Store{root: root, lockWait: DefaultLockWait}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

func validateHash(h Hash) error {
	if len(h) != HashLength() {
		return fmt.Errorf("invalid hash %q: length %d, want %d", h, len(h), HashLength())
	}
	for _, c := range h {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("invalid hash %q: non-hex character %q", h, c)
		}
	}
	return nil
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.root, string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if validateHash(h) != nil {
		return false
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Handle is an open, locked object file. It must be closed on every exit
// path; Close releases the lock before closing the descriptor.
type Handle struct {
	f      *os.File
	hash   Hash
	closed bool
}

// Hash returns the hash the handle was opened for.
func (h *Handle) Hash() Hash {
	return h.hash
}

func (h *Handle) Read(p []byte) (int, error) {
	return h.f.Read(p)
}

func (h *Handle) Write(p []byte) (int, error) {
	return h.f.Write(p)
}

// Close unlocks and closes the backing file. Safe to call twice.
func (h *Handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	unix.Flock(int(h.f.Fd()), unix.LOCK_UN)
	return h.f.Close()
}

// flockWait acquires a flock with a bounded nonblocking-retry loop. A wait
// that exhausts the deadline reports ErrWriteInProgress so callers can
// tell contention apart from I/O failure.
func (s *Store) flockWait(f *os.File, how int) error {
	deadline := time.Now().Add(s.lockWait)
	for {
		err := unix.Flock(int(f.Fd()), how|unix.LOCK_NB)
		if err == nil {
			return nil
		}
		if err != unix.EWOULDBLOCK && err != unix.EAGAIN {
			return fmt.Errorf("flock: %w", err)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s", ErrWriteInProgress, f.Name())
		}
		time.Sleep(lockPollInterval)
	}
}

// OpenForWriting creates the backing file for hash and returns an
// exclusively locked write handle. Returns ErrWriteInProgress when another
// writer already holds the lock past the configured wait.
func (s *Store) OpenForWriting(h Hash) (*Handle, error) {
	if err := validateHash(h); err != nil {
		return nil, err
	}
	path := s.objectPath(h)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("open %s for writing: %w", h, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s for writing: %w", h, err)
	}
	if err := s.flockWait(f, unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s for writing: %w", h, err)
	}
	// Truncate only after the lock is held: a leftover partial file from a
	// crashed writer is rewritten, never appended to.
	if err := f.Truncate(0); err != nil {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
		return nil, fmt.Errorf("open %s for writing: %w", h, err)
	}
	return &Handle{f: f, hash: h}, nil
}

// OpenForReading opens the backing file for hash with a shared lock.
// Returns ErrNotFound when no file exists for the hash.
func (s *Store) OpenForReading(h Hash) (*Handle, error) {
	if err := validateHash(h); err != nil {
		return nil, err
	}
	f, err := os.Open(s.objectPath(h))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("open %s for reading: %w", h, ErrNotFound)
		}
		return nil, fmt.Errorf("open %s for reading: %w", h, err)
	}
	if err := s.flockWait(f, unix.LOCK_SH); err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s for reading: %w", h, err)
	}
	return &Handle{f: f, hash: h}, nil
}

// Delete removes the backing file for hash. It exists for write rollback;
// callers on an error path treat its result as best-effort.
func (s *Store) Delete(h Hash) error {
	if err := validateHash(h); err != nil {
		return err
	}
	if err := os.Remove(s.objectPath(h)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete %s: %w", h, ErrNotFound)
		}
		return fmt.Errorf("delete %s: %w", h, err)
	}
	return nil
}

// StoreBytes writes data under its own content hash and returns the hash.
// Storing identical content twice is a no-op returning the same hash.
func (s *Store) StoreBytes(data []byte) (Hash, error) {
	h := HashBytes(data)

	// Fast path: already stored. Identical content means identical bytes,
	// so there is nothing to write.
	if s.Has(h) {
		return h, nil
	}

	w, err := s.OpenForWriting(h)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		s.Delete(h)
		return "", fmt.Errorf("store %s: %w", h, err)
	}
	if err := w.Close(); err != nil {
		s.Delete(h)
		return "", fmt.Errorf("store %s: %w", h, err)
	}
	return h, nil
}

// StoreFile writes a file's content under its own hash, streamed, and
// returns the hash. Idempotent like StoreBytes.
func (s *Store) StoreFile(path string) (Hash, error) {
	h, err := HashFile(path)
	if err != nil {
		return "", err
	}
	if s.Has(h) {
		return h, nil
	}

	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("store file %s: %w", path, err)
	}
	defer src.Close()

	w, err := s.OpenForWriting(h)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(w, src); err != nil {
		w.Close()
		s.Delete(h)
		return "", fmt.Errorf("store file %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		s.Delete(h)
		return "", fmt.Errorf("store file %s: %w", path, err)
	}
	return h, nil
}
