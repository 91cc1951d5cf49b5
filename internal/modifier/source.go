package modifier

import (
	"bytes"
	"context"
	"io"
	"os"
)

// Source is a random-access byte store. Each Open returns an independent
// handle, so concurrent reads never share a file position.
type Source interface {
	Open(ctx context.Context) (io.ReadSeekCloser, error)
}

// FileSource opens a file on every read.
type FileSource struct {
	Path string
}

// Open implements Source.
func (s FileSource) Open(context.Context) (io.ReadSeekCloser, error) {
	return os.Open(s.Path)
}

// String returns the file path.
func (s FileSource) String() string {
	return s.Path
}

// MemorySource serves records from a byte slice.
type MemorySource struct {
	data []byte
}

// NewMemorySource creates a source over data. The slice must not be
// modified afterwards.
func NewMemorySource(data []byte) *MemorySource {
	return &MemorySource{data: data}
}

// Open implements Source.
func (s *MemorySource) Open(context.Context) (io.ReadSeekCloser, error) {
	return nopCloser{bytes.NewReader(s.data)}, nil
}

type nopCloser struct {
	io.ReadSeeker
}

func (nopCloser) Close() error { return nil }
