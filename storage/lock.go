package storage

import (
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// LockedFile is an open file holding a best-effort exclusive advisory lock.
// Close releases the lock (when held) and closes the file; callers must
// invoke it on every exit path.
type LockedFile struct {
	File   *os.File
	locked bool
}

// OpenLocked opens path with the given flags, creating parent directories as
// needed, and acquires an exclusive flock on it. Lock acquisition failure is
// not an error: the file is returned unlocked and the caller proceeds with
// weaker durability guarantees.
func OpenLocked(path string, flag int) (*LockedFile, error) {
	if path == "" {
		return nil, ErrPathRequired
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, err
	}

	lf := &LockedFile{File: f}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		slog.Warn("file lock unavailable, proceeding unlocked", "path", path, "err", err)
	} else {
		lf.locked = true
	}
	return lf, nil
}

// Locked reports whether the exclusive lock was actually acquired.
func (l *LockedFile) Locked() bool {
	return l.locked
}

// Close releases the lock if held and closes the underlying file.
func (l *LockedFile) Close() error {
	if l == nil || l.File == nil {
		return nil
	}
	if l.locked {
		if err := unix.Flock(int(l.File.Fd()), unix.LOCK_UN); err != nil {
			slog.Debug("file unlock failed", "err", err)
		}
		l.locked = false
	}
	return l.File.Close()
}
