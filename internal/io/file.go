package ioutils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/renameio/v2"
)

// FS implements existence checks, atomic writes and directory creation on
// the local disk.
type FS struct {
	// FileMode is the permission of written files. Default: 0644
	FileMode os.FileMode

	// DirMode is the permission of created directories. Default: 0755
	DirMode os.FileMode
}

// NewFS creates an FS with default permissions.
func NewFS() *FS {
	return &FS{FileMode: 0644, DirMode: 0755}
}

// Exists reports whether a regular file is present at path.
//
// Directories and other non-regular entries do not count, so a stray
// directory named like a product file is not mistaken for a download.
func (f *FS) Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// WriteAtomic writes data to path so that readers see either the previous
// state or the complete new file, never a partial one.
//
// The temporary file lives in the same directory as path and is removed if
// anything fails before the final rename.
func (f *FS) WriteAtomic(path string, data []byte) error {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(f.fileMode()))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer pending.Cleanup()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write pending file: %w", err)
	}

	// fsync + rename
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", path, err)
	}
	return nil
}

// EnsureDir creates a directory and all parent directories if they don't
// exist. It fails if path exists and is not a directory.
func (f *FS) EnsureDir(path string) error {
	if err := os.MkdirAll(path, f.dirMode()); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "mkdir", Path: path, Err: errors.New("not a directory")}
	}
	return nil
}

func (f *FS) fileMode() os.FileMode {
	if f.FileMode == 0 {
		return 0644
	}
	return f.FileMode
}

func (f *FS) dirMode() os.FileMode {
	if f.DirMode == 0 {
		return 0755
	}
	return f.DirMode
}
