package app

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/gitquickmerge/quickmerge/internal/orchestrator"
)

// FileLocker guards a repository across processes with an advisory lock on a
// per-repository file. The kernel drops the lock when its owner exits, so a
// leftover file never blocks a later run.
type FileLocker struct {
	Dir string
}

// NewFileLocker stores lock files in dir.
func NewFileLocker(dir string) *FileLocker {
	return &FileLocker{Dir: dir}
}

// DefaultLockDir is the per-user temporary directory for lock files.
func DefaultLockDir() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("quickmerge-%d", os.Getuid()))
}

func (l *FileLocker) TryLock(path string) (func(), error) {
	if err := os.MkdirAll(l.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	name := l.lockFile(path)
	lock := flock.New(name)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", name, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s (lock file %s)", orchestrator.ErrBusy, path, name)
	}

	// Only the kernel lock is released; the file is left in place.
	return func() { _ = lock.Unlock() }, nil
}

func (l *FileLocker) lockFile(path string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(path)))
	return filepath.Join(l.Dir, hex.EncodeToString(sum[:8])+".lock")
}
