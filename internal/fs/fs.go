// Package fs provides the filesystem discipline shared by the
// persisted artifacts, behind a small abstraction so tests can inject
// write failures.
package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File is an open file as seen by the atomic writer.
type File interface {
	io.WriteCloser
	Sync() error
	Name() string
}

// FileSystem abstracts the operations WriteFileAtomic performs.
type FileSystem interface {
	MkdirAll(path string, perm os.FileMode) error
	CreateTemp(dir, pattern string) (File, error)
	Chmod(name string, mode os.FileMode) error
	Rename(oldpath, newpath string) error
	Remove(name string) error
}

// LocalFS implements FileSystem using the local os package.
type LocalFS struct{}

func (LocalFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }
func (LocalFS) CreateTemp(dir, pattern string) (File, error) { return os.CreateTemp(dir, pattern) }
func (LocalFS) Chmod(name string, mode os.FileMode) error    { return os.Chmod(name, mode) }
func (LocalFS) Rename(oldpath, newpath string) error         { return os.Rename(oldpath, newpath) }
func (LocalFS) Remove(name string) error                     { return os.Remove(name) }

// Default is the default local file system.
var Default FileSystem = LocalFS{}

// WriteFileAtomic writes data to path by writing a temporary sibling
// file, syncing it, and renaming it over the target. A crash mid-write
// can therefore never leave a half-written artifact at path. A nil
// fsys falls back to Default.
func WriteFileAtomic(fsys FileSystem, path string, data []byte, perm os.FileMode) error {
	if fsys == nil {
		fsys = Default
	}

	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := fsys.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any failure path.
	fail := func(err error) error {
		tmp.Close()
		fsys.Remove(tmpName)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(fmt.Errorf("write %s: %w", tmpName, err))
	}

	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("sync %s: %w", tmpName, err))
	}

	if err := tmp.Close(); err != nil {
		fsys.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}

	if err := fsys.Chmod(tmpName, perm); err != nil {
		fsys.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}

	if err := fsys.Rename(tmpName, path); err != nil {
		fsys.Remove(tmpName)
		return fmt.Errorf("rename to %s: %w", path, err)
	}

	return nil
}
