package buffer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// Suffix marks scratch files so they are recognisable in the temp directory.
const Suffix = ".hotedit"

var (
	// ErrIO wraps every filesystem failure of a scratch buffer.
	ErrIO = errors.New("scratch buffer i/o error")
	// ErrEncoding reports edited content that is not valid UTF-8.
	ErrEncoding = errors.New("scratch buffer is not valid UTF-8")
)

// Buffer is a uniquely named temporary file owned by a single edit.
type Buffer struct {
	path     string
	released bool
}

// Seed creates a new scratch file in dir (the platform temp directory when
// dir is empty) and writes initial into it.
func Seed(dir, initial string) (*Buffer, error) {
	f, err := os.CreateTemp(dir, "*"+Suffix)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create scratch file: %v", ErrIO, err)
	}

	path, err := filepath.Abs(f.Name())
	if err != nil {
		path = f.Name()
	}
	b := &Buffer{path: path}

	if _, err := f.WriteString(initial); err != nil {
		f.Close()
		b.Release(false)
		return nil, fmt.Errorf("%w: failed to seed '%s': %v", ErrIO, path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		b.Release(false)
		return nil, fmt.Errorf("%w: failed to sync '%s': %v", ErrIO, path, err)
	}
	// The editor reopens the file by path; keeping this handle would pin the
	// old inode for editors that replace the file.
	if err := f.Close(); err != nil {
		b.Release(false)
		return nil, fmt.Errorf("%w: failed to close '%s': %v", ErrIO, path, err)
	}

	return b, nil
}

// Path returns the absolute path of the scratch file.
func (b *Buffer) Path() string {
	return b.path
}

// Harvest re-reads the file by path, so both in-place writes and atomic
// replacements are observed, then releases it.
func (b *Buffer) Harvest(persist bool) (string, error) {
	content, err := os.ReadFile(b.path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read '%s': %v", ErrIO, b.path, err)
	}
	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: '%s'", ErrEncoding, b.path)
	}

	if err := b.Release(persist); err != nil {
		return "", err
	}
	return string(content), nil
}

// Release deletes the scratch file, or keeps it on disk when persist is set.
// Only the first call has an effect.
func (b *Buffer) Release(persist bool) error {
	if b.released {
		return nil
	}
	b.released = true

	if persist {
		if _, err := os.Stat(b.path); err != nil {
			return fmt.Errorf("%w: failed to keep '%s': %v", ErrIO, b.path, err)
		}
		return nil
	}

	if err := os.Remove(b.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: failed to remove '%s': %v", ErrIO, b.path, err)
	}
	return nil
}
