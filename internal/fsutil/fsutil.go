// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package fsutil holds the small filesystem capability the session and machine
// identity stores are built on: existence checks, writability probes, lazy
// directory creation and whole-file replacement.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirPerm is used for every directory created on the write path.
	DirPerm os.FileMode = 0o700
	// FilePerm is used for every persisted file.
	FilePerm os.FileMode = 0o600
)

// Exists reports whether path exists. Stat errors other than "not exist" count as existing
// so callers go on to surface the real error on read.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// EnsureDir creates dir and any missing parents with private permissions.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// IsWritable reports whether path can be written. Directories are probed by creating and
// removing a temporary file; regular files are opened for writing without truncation.
func IsWritable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		f, err := os.CreateTemp(path, ".probe-*")
		if err != nil {
			return false
		}
		name := f.Name()
		_ = f.Close()
		_ = os.Remove(name)
		return true
	}
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// EnsureWritableDir creates dir when missing and verifies that files can be written into it.
func EnsureWritableDir(dir string) error {
	if err := EnsureDir(dir); err != nil {
		return err
	}
	if !IsWritable(dir) {
		return fmt.Errorf("directory %s is not writable", dir)
	}
	return nil
}

// WriteFileAtomic replaces path with data in one step. The content is written to a temporary
// sibling and renamed over the destination, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(FilePerm); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
