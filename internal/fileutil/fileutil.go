// Package fileutil provides file and path utility functions.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// Permissions for files and directories created by the tool.
const (
	DirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	FilePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// WriteTempFile writes content to a fresh temporary file in dir, named after
// pattern as in os.CreateTemp. An empty dir means the system temp directory.
// Returns the file path and a cleanup function to remove the file.
func WriteTempFile(dir, pattern string, content []byte) (path string, cleanup func(), err error) {
	tmpFile, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}

	path = tmpFile.Name()
	cleanup = func() { _ = os.Remove(path) }

	if _, writeErr := tmpFile.Write(content); writeErr != nil {
		_ = tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", writeErr)
	}

	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", closeErr)
	}

	return path, cleanup, nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// AtomicWriteFile writes data to path through a temporary sibling file and
// renames it into place. The destination never holds partial content: on any
// failure the temporary file is removed and a previous artifact, if present,
// is left untouched.
func AtomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, FilePermissions); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}

// CopyTree recursively copies src into dst, skipping files whose destination
// is at least as new as the source. Missing src is not an error so projects
// without an assets directory build cleanly.
func CopyTree(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !srcInfo.IsDir() {
		return fmt.Errorf("copy source %s is not a directory", src)
	}

	if err := os.MkdirAll(dst, DirPermissions); err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := CopyTree(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}

		if !needsCopy(srcPath, dstPath) {
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

// needsCopy reports whether src is newer than dst or dst is missing.
func needsCopy(src, dst string) bool {
	dstInfo, err := os.Stat(dst)
	if err != nil {
		return true
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false
	}
	return srcInfo.ModTime().After(dstInfo.ModTime())
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src) // #nosec G304 -- paths come from directory walk
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, FilePermissions); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}
