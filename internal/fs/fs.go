package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"senda/relay/internal/relay/relayutil"

	"github.com/pkg/errors"
)

var uploadDir string

func SetUploadDir(path string) {
	uploadDir = path
}

// PathOf joins storage key with upload dir.
// Storage keys are server generated, filepath.Base strips anything that
// could walk out of the dir anyway.
func PathOf(storageKey string) string {
	return filepath.Join(uploadDir, filepath.Base(storageKey))
}

// EnsureDir creates upload dir if it does not exist
func EnsureDir() error {
	if uploadDir == "" {
		return fmt.Errorf("upload dir is not set")
	}

	err := os.MkdirAll(uploadDir, 0750)
	if err != nil {
		return relayutil.WrapInternal(err, "fs.EnsureDir.os.MkdirAll")
	}

	return nil
}

// TryDelete removes file at path. Missing file is not an error
func TryDelete(path string) error {
	err := os.Remove(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		err = fmt.Errorf("could not remove file at: %s: %w", path, err)
		return relayutil.WrapInternal(err, "fs.TryDelete.os.Remove")
	}

	return nil
}

func IsExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteFile streams src into a new file at path and returns number of bytes written.
// Fails if file already exists. Partially written file is removed on failure.
func WriteFile(path string, src io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0640)
	if err != nil {
		return 0, relayutil.WrapInternal(err, "fs.WriteFile.os.OpenFile")
	}

	n, err := io.Copy(f, src)
	if err != nil {
		f.Close()
		os.Remove(path)
		return 0, relayutil.WrapInternal(err, "fs.WriteFile.io.Copy")
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return 0, relayutil.WrapInternal(err, "fs.WriteFile.f.Close")
	}

	return n, nil
}

// Open opens file for reading. Missing file yields an error wrapping os.ErrNotExist
func Open(path string) (*os.File, os.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, relayutil.WrapInternal(err, "fs.Open.os.Open")
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, relayutil.WrapInternal(err, "fs.Open.f.Stat")
	}

	return f, info, nil
}
