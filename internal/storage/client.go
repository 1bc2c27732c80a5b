// Package storage reads the input files and writes the generated ones.
//
// Every write goes to a temporary file in the destination directory that is
// renamed over the target once fully written, so an interrupted run leaves
// either the previous file or the complete new one.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	filePerm = 0o644
	dirPerm  = 0o755
)

// IOError wraps a filesystem failure with the operation and path involved.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ReadFile reads a whole input file.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// WriteFile atomically replaces path with data, creating parent directories.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return &IOError{Op: "mkdir", Path: dir, Err: err}
	}

	// Create temp file in same directory for atomic write
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmpFile.Sync(); err != nil {
		return &IOError{Op: "sync", Path: path, Err: err}
	}
	if err := tmpFile.Chmod(filePerm); err != nil {
		return &IOError{Op: "chmod", Path: path, Err: err}
	}
	if err := tmpFile.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// Backup copies an existing file at path to backupPath. It reports false
// when there was nothing to back up.
func Backup(path, backupPath string) (bool, error) {
	src, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &IOError{Op: "open", Path: path, Err: err}
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return false, &IOError{Op: "read", Path: path, Err: err}
	}
	if err := WriteFile(backupPath, data); err != nil {
		return false, err
	}
	return true, nil
}
