package imagegen

import (
	"context"
	"errors"
)

// Failure sentinels. Handlers classify orchestrator errors with errors.Is and
// map each kind to its HTTP status; no raw upstream error crosses the HTTP
// boundary.
var (
	// ErrInvalidImage marks corrupt or undecodable input bytes. It is a client
	// error and is never retried.
	ErrInvalidImage = errors.New("imagegen: invalid image")

	// ErrModelFailure marks an upstream generation failure after the whole
	// model fallback sequence has been tried. Retryable on the streaming path.
	ErrModelFailure = errors.New("imagegen: model failure")
)

// EditRequest carries one image-editing request through the orchestrator. The
// raw bytes are decoded for validation but forwarded to the model unmodified.
type EditRequest struct {
	ImageData []byte
	MIMEType  string
	Prompt    string
}

// Editor is the contract the HTTP layer depends on: single-shot editing plus
// construction of a per-request attempt stream.
type Editor interface {
	Edit(ctx context.Context, req EditRequest) ([]byte, error)
	NewStream(req EditRequest, count int, policy RetryPolicy) (Stream, error)
}

// Stream yields attempt outcomes one at a time, in index order. Next returns
// false once the stream is exhausted or terminally failed; abandoning a stream
// early is always safe.
type Stream interface {
	Next(ctx context.Context) (Attempt, bool)
}

// Attempt is one terminal outcome within a streaming request. Exactly one of
// Image or Err is set.
type Attempt struct {
	Index int
	Image []byte
	Err   error
}
