package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// Fault defines injected failure behavior for matching files.
type Fault struct {
	FailOnCreate bool
	FailOnWrite  bool
	FailOnSync   bool
	Err          error
}

// FaultyFS is a FileSystem wrapper that can inject errors into writes
// of files whose name contains a configured pattern.
type FaultyFS struct {
	FS FileSystem

	mu    sync.Mutex
	rules map[string]Fault
}

// NewFaultyFS creates a FaultyFS wrapping the provided FS, or Default
// when nil.
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}

	return &FaultyFS{
		FS:    fsys,
		rules: make(map[string]Fault),
	}
}

// AddRule adds a fault injection rule for files whose name contains
// pattern.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if fault.Err == nil {
		fault.Err = errors.New("injected fault error")
	}

	f.rules[pattern] = fault
}

func (f *FaultyFS) fault(name string) (Fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for pattern, rule := range f.rules {
		if strings.Contains(name, pattern) {
			return rule, true
		}
	}

	return Fault{}, false
}

func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error { return f.FS.MkdirAll(path, perm) }
func (f *FaultyFS) Chmod(name string, mode os.FileMode) error    { return f.FS.Chmod(name, mode) }
func (f *FaultyFS) Rename(oldpath, newpath string) error         { return f.FS.Rename(oldpath, newpath) }
func (f *FaultyFS) Remove(name string) error                     { return f.FS.Remove(name) }

func (f *FaultyFS) CreateTemp(dir, pattern string) (File, error) {
	if fault, ok := f.fault(pattern); ok && fault.FailOnCreate {
		return nil, fault.Err
	}

	file, err := f.FS.CreateTemp(dir, pattern)
	if err != nil {
		return nil, err
	}

	if fault, ok := f.fault(file.Name()); ok {
		return &faultyFile{File: file, fault: fault}, nil
	}

	return file, nil
}

type faultyFile struct {
	File
	fault Fault
}

func (f *faultyFile) Write(p []byte) (int, error) {
	if f.fault.FailOnWrite {
		return 0, f.fault.Err
	}

	return f.File.Write(p)
}

func (f *faultyFile) Sync() error {
	if f.fault.FailOnSync {
		return f.fault.Err
	}

	return f.File.Sync()
}
