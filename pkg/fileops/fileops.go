// Package fileops provides file operation utilities for copying files
// through a filesystem abstraction.
package fileops

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ren/shuttle/pkg/filesystem"
)

// Exported constants.
const (
	// BufferSize is the size of the buffer used for file copy operations (32KB)
	BufferSize = 32 * 1024
	// DefaultDirPermissions is the default permission mode for created directories
	DefaultDirPermissions = 0o750
)

// ProgressCallback is called during file operations to report progress
type ProgressCallback func(bytesTransferred int64, totalBytes int64, currentFile string)

// FileOps performs file operations against an injected filesystem.
type FileOps struct {
	fs filesystem.FileSystem
}

// NewFileOps creates a FileOps backed by the given filesystem.
func NewFileOps(fs filesystem.FileSystem) *FileOps {
	return &FileOps{fs: fs}
}

// NewRealFileOps creates a FileOps backed by the real filesystem.
func NewRealFileOps() *FileOps {
	return NewFileOps(filesystem.NewRealFileSystem())
}

// CopyFile copies a file from src to dst with progress reporting,
// creating the destination directory as needed and preserving the
// modification time. A failed copy removes the partial destination file.
func (o *FileOps) CopyFile(src, dst string, progress ProgressCallback) (int64, error) {
	sourceFile, err := o.fs.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file %s: %w", src, err)
	}

	defer func() {
		_ = sourceFile.Close()
	}()

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat source file %s: %w", src, err)
	}

	dstDir := filepath.Dir(dst)

	err = o.fs.MkdirAll(dstDir, DefaultDirPermissions)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination directory %s: %w", dstDir, err)
	}

	destFile, err := o.fs.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file %s: %w", dst, err)
	}

	copyCompleted := false

	defer func() {
		_ = destFile.Close()
		// If the copy failed partway, delete the partial file
		if !copyCompleted {
			_ = o.fs.Remove(dst)
		}
	}()

	written, err := copyLoop(sourceFile, destFile, sourceInfo.Size(), src, progress)
	if err != nil {
		return written, fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	// Close before setting the modification time; some filesystems
	// (notably SMB mounts) reset it on close otherwise.
	err = destFile.Close()
	if err != nil {
		return written, fmt.Errorf("failed to close destination file %s: %w", dst, err)
	}

	err = o.fs.Chtimes(dst, sourceInfo.ModTime(), sourceInfo.ModTime())
	if err != nil {
		return written, fmt.Errorf("failed to preserve modification time for %s: %w", dst, err)
	}

	copyCompleted = true

	return written, nil
}

// MkdirAll creates a directory and parents with the default permissions.
func (o *FileOps) MkdirAll(path string) error {
	err := o.fs.MkdirAll(path, DefaultDirPermissions)
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}

	return nil
}

// copyLoop performs the buffered copy with progress reporting.
func copyLoop(sourceFile, destFile filesystem.File, sourceSize int64, srcPath string, progress ProgressCallback) (int64, error) {
	var written int64

	buf := make([]byte, BufferSize)

	for {
		nr, err := sourceFile.Read(buf) //nolint:varnamelen // nr is idiomatic for bytes read
		if nr > 0 {
			nw, werr := destFile.Write(buf[0:nr]) //nolint:varnamelen // nw is idiomatic for bytes written
			if werr != nil {
				return written, fmt.Errorf("failed to write to destination: %w", werr)
			}

			if nr != nw {
				return written, fmt.Errorf("short write: %w", io.ErrShortWrite)
			}

			written += int64(nw)

			if progress != nil {
				progress(written, sourceSize, srcPath)
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return written, fmt.Errorf("failed to read from source: %w", err)
		}
	}

	return written, nil
}
