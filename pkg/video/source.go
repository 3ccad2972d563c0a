// Package video turns a video file into an ordered stream of JPEG frames.
package video

import (
	"context"
	"errors"
)

var ErrCannotOpen = errors.New("cannot open video source")

// Source yields frames in decode order. Next returns io.EOF once the stream
// is exhausted. Close releases the decoder and is safe to call more than once.
type Source interface {
	Next() ([]byte, error)
	Close() error
}

type Opener interface {
	Open(ctx context.Context, path string) (Source, error)
}
