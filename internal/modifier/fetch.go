package modifier

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// RecordSize is the byte width of one record.
const RecordSize = 4

// Stage identifies where a fetch failed.
type Stage string

const (
	StageOpen Stage = "open"
	StageSeek Stage = "seek"
	StageRead Stage = "read"
)

// IOError is returned by FetchRaw. It is never retried here; retry policy
// belongs to the caller.
type IOError struct {
	Stage Stage
	Index int64
	Err   error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("modifier %s failed at index %d: %v", e.Stage, e.Index, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

var errIndexRange = errors.New("record index out of range")

// FetchRaw reads the record at index: open, seek to index*RecordSize,
// read exactly RecordSize bytes, decode little-endian float32. The handle
// is closed on every path.
func FetchRaw(ctx context.Context, src Source, index int64) (float32, error) {
	if err := ctx.Err(); err != nil {
		return 0, &IOError{Stage: StageOpen, Index: index, Err: err}
	}
	if index < 0 || index > math.MaxInt64/RecordSize {
		return 0, &IOError{Stage: StageSeek, Index: index, Err: errIndexRange}
	}

	f, err := src.Open(ctx)
	if err != nil {
		return 0, &IOError{Stage: StageOpen, Index: index, Err: err}
	}
	defer f.Close()

	if _, err := f.Seek(index*RecordSize, io.SeekStart); err != nil {
		return 0, &IOError{Stage: StageSeek, Index: index, Err: err}
	}

	var buf [RecordSize]byte
	if _, err := io.ReadFull(f, buf[:]); err != nil {
		return 0, &IOError{Stage: StageRead, Index: index, Err: err}
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[:])), nil
}
