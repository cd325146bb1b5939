// Package localfs serves structure files from one local directory.
package localfs

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/turtacn/cyclome/pkg/errors"
)

// Source lists and opens the regular files of a single directory.
// Subdirectories are not descended into.
type Source struct {
	dir string
}

// NewSource returns a Source rooted at dir.  The directory is not checked
// here; a missing directory surfaces as an error from List.
func NewSource(dir string) *Source {
	return &Source{dir: dir}
}

// Describe returns the absolute directory path when it can be resolved.
func (s *Source) Describe() string {
	if abs, err := filepath.Abs(s.dir); err == nil {
		return abs
	}
	return s.dir
}

// List returns the names of the regular files in the directory.
func (s *Source) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "structure directory unreadable").
			WithDetail(s.dir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Open opens one file by the name List returned.  Names with a path
// separator are refused.
func (s *Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return nil, errors.New(errors.ErrCodeStructureFileMissing, "file missing on server").WithDetail(name)
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(err, errors.ErrCodeStructureFileMissing, "file missing on server").WithDetail(name)
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to open structure file").WithDetail(name)
	}
	return f, nil
}

//Personal.AI order the ending
