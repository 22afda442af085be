package llm

import (
	"context"
	"io"
)

// Stream is an ordered sequence of reply fragments. Recv returns io.EOF when
// the stream is exhausted; concatenating the received fragments in order
// reconstructs the full reply.
type Stream interface {
	Recv() (string, error)
	Close() error
}

type fragmentStream struct {
	ctx       context.Context
	cancel    context.CancelFunc
	fragments <-chan string
}

// newFragmentStream runs the adapter body in a goroutine that feeds an ordered
// fragment channel. An error returned by run is encoded as one trailing
// in-band error fragment rather than surfaced to the caller.
func newFragmentStream(ctx context.Context, run func(context.Context, chan<- string) error) Stream {
	streamCtx, cancel := context.WithCancel(ctx)
	ch := make(chan string, 16)
	go func() {
		defer close(ch)
		if err := run(streamCtx, ch); err != nil {
			select {
			case ch <- ErrorFragment(err):
			case <-streamCtx.Done():
			}
		}
	}()
	return &fragmentStream{ctx: streamCtx, cancel: cancel, fragments: ch}
}

func (s *fragmentStream) Recv() (string, error) {
	// Non-blocking drain: consume any buffered fragment before checking
	// ctx.Done() so a finished stream is never truncated by cancellation.
	select {
	case frag, ok := <-s.fragments:
		if !ok {
			return "", io.EOF
		}
		return frag, nil
	default:
	}

	select {
	case <-s.ctx.Done():
		return "", s.ctx.Err()
	case frag, ok := <-s.fragments:
		if !ok {
			return "", io.EOF
		}
		return frag, nil
	}
}

func (s *fragmentStream) Close() error {
	s.cancel()
	return nil
}

// emit sends one fragment, honoring cancellation.
func emit(ctx context.Context, fragments chan<- string, frag string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case fragments <- frag:
		return nil
	}
}
