package imagegen

import (
	"context"
	"fmt"
)

// AttemptStream yields the terminal outcome of each generation attempt of one
// streaming request, in strictly increasing index order. It is pull-based: the
// transport asks for the next record when it is ready to write it, attempt i+1
// never starts before attempt i has finished, and abandoning the stream simply
// stops pulling. The stream is finite and non-restartable.
type AttemptStream struct {
	orchestrator *Orchestrator
	req          EditRequest
	policy       RetryPolicy
	count        int
	next         int
	done         bool
}

// NewStream validates the image once and, on success, returns a stream of up
// to count attempts that all reuse the same validated bytes. A validation
// failure is reported here, before any attempt record exists, so the transport
// can still answer with a plain 400.
func (o *Orchestrator) NewStream(req EditRequest, count int, policy RetryPolicy) (Stream, error) {
	if count < 1 {
		return nil, fmt.Errorf("attempt count must be at least 1, got %d", count)
	}
	if err := ValidateImage(req.ImageData); err != nil {
		return nil, err
	}
	return &AttemptStream{
		orchestrator: o,
		req:          req,
		policy:       policy,
		count:        count,
	}, nil
}

// Next produces the outcome for the next index, applying the retry policy
// around the whole generation. It returns false once the stream is exhausted,
// either because all indices completed or because an attempt failed terminally:
// a failed attempt is emitted as the final record and ends the stream. Context
// cancellation (client disconnect) ends the stream without a further record.
func (s *AttemptStream) Next(ctx context.Context) (Attempt, bool) {
	if s.done || s.next >= s.count {
		return Attempt{}, false
	}
	if err := ctx.Err(); err != nil {
		s.done = true
		return Attempt{}, false
	}

	index := s.next
	s.next++

	var image []byte
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		out, genErr := s.orchestrator.generate(ctx, s.req)
		if genErr != nil {
			return genErr
		}
		image = out
		return nil
	})
	if err != nil {
		s.done = true
		return Attempt{Index: index, Err: err}, true
	}
	return Attempt{Index: index, Image: image}, true
}
