// Package storage implements the on-disk side of the vault: reading and writing
// prompt.toml definitions, scanning the vault, and classifying and mutating the output
// files in each template's outputs directory.
//
// Every function re-reads the filesystem; nothing is cached between calls. Failures are
// returned as *errors.AppError and nothing here logs or prints.
package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dpshade/prompt-vault/internal/errors"
)

const (
	dirPerm  = 0755
	filePerm = 0644
)

// nowFunc is replaced in tests.
var nowFunc = time.Now

// Timestamp formats t as ISO-8601 in UTC without fractional seconds.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// fileError maps an error on an existing output file to the taxonomy.
func fileError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return errors.FileNotFound(path, err)
	case errors.Is(err, fs.ErrPermission):
		return errors.PermissionDenied(path, err)
	default:
		return writeError(filepath.Dir(path), err)
	}
}

// writeError maps a failure while creating or scanning outputs.
func writeError(dir string, err error) error {
	appErr := errors.OutputWriteError(dir, err)
	switch {
	case errors.Is(err, fs.ErrPermission):
		appErr.WithHint("Permission denied. Please check file permissions")
	case errors.Is(err, syscall.ENOSPC):
		appErr.WithHint("No space left on device. Please free up disk space")
	}
	return appErr
}

// writeFile creates dir if needed and writes data to dir/name.
func writeFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", writeError(dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return "", writeError(dir, err)
	}
	return path, nil
}
