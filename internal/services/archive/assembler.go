package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/flate"
)

const ContentType = "application/zip"

var (
	ErrArchiveWrite   = errors.New("failed to write archive")
	ErrSealed         = errors.New("archive already sealed")
	ErrDuplicateEntry = errors.New("duplicate archive entry")
)

type ArchiveWriteError struct {
	Entry string
	Err   error
}

func (e *ArchiveWriteError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("failed to finalize archive: %v", e.Err)
	}
	return fmt.Sprintf("failed to write archive entry %q: %v", e.Entry, e.Err)
}

func (e *ArchiveWriteError) Unwrap() []error {
	return []error{ErrArchiveWrite, e.Err}
}

// Assembler builds a zip archive from entries produced by concurrent
// workers. zip.Writer is not safe for parallel use, so every write holds mu.
type Assembler struct {
	mu       sync.Mutex
	writer   *zip.Writer
	modified time.Time
	names    map[string]struct{}
	sealed   bool
}

// NewAssembler writes the archive to w. Every entry is stamped with modified
// so identical inputs give identical entries.
func NewAssembler(w io.Writer, modified time.Time) *Assembler {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	return &Assembler{
		writer:   zw,
		modified: modified,
		names:    make(map[string]struct{}),
	}
}

// Add compresses data into a new entry. Names are compared case-insensitively.
func (a *Assembler) Add(name string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sealed {
		return ErrSealed
	}

	key := strings.ToLower(name)
	if _, exists := a.names[key]; exists {
		return &ArchiveWriteError{Entry: name, Err: ErrDuplicateEntry}
	}

	w, err := a.writer.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: a.modified,
	})
	if err != nil {
		return &ArchiveWriteError{Entry: name, Err: err}
	}

	if _, err := w.Write(data); err != nil {
		return &ArchiveWriteError{Entry: name, Err: err}
	}

	a.names[key] = struct{}{}
	return nil
}

// Close writes the central directory. The archive is immutable afterwards.
func (a *Assembler) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sealed {
		return ErrSealed
	}
	a.sealed = true

	if err := a.writer.Close(); err != nil {
		return &ArchiveWriteError{Err: err}
	}
	return nil
}

func (a *Assembler) Entries() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.names)
}
