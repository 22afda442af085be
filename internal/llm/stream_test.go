package llm

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

// drainStream collects fragments until EOF or another error.
func drainStream(t *testing.T, s Stream) []string {
	t.Helper()
	var fragments []string
	for {
		frag, err := s.Recv()
		if err == io.EOF {
			return fragments
		}
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
		fragments = append(fragments, frag)
	}
}

func TestFragmentStreamOrdering(t *testing.T) {
	s := newFragmentStream(context.Background(), func(ctx context.Context, fragments chan<- string) error {
		for _, frag := range []string{"one", "two", "three"} {
			if err := emit(ctx, fragments, frag); err != nil {
				return err
			}
		}
		return nil
	})
	defer s.Close()

	got := drainStream(t, s)
	want := []string{"one", "two", "three"}
	if len(got) != len(want) {
		t.Fatalf("expected %d fragments, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fragment %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestFragmentStreamInBandError(t *testing.T) {
	s := newFragmentStream(context.Background(), func(ctx context.Context, fragments chan<- string) error {
		if err := emit(ctx, fragments, "partial"); err != nil {
			return err
		}
		return errors.New("connection reset")
	})
	defer s.Close()

	got := drainStream(t, s)
	if len(got) != 2 {
		t.Fatalf("expected 2 fragments, got %v", got)
	}
	if got[0] != "partial" {
		t.Errorf("expected partial output first, got %q", got[0])
	}
	if got[1] != "Error: connection reset" {
		t.Errorf("expected trailing error fragment, got %q", got[1])
	}
	if !IsErrorFragment(got[1]) {
		t.Error("expected last fragment to be detected as an error")
	}
	if IsErrorFragment(got[0]) {
		t.Error("did not expect first fragment to be an error")
	}
}

func TestFragmentStreamCloseUnblocksRecv(t *testing.T) {
	s := newFragmentStream(context.Background(), func(ctx context.Context, fragments chan<- string) error {
		<-ctx.Done()
		return ctx.Err()
	})
	s.Close()

	if _, err := s.Recv(); err == nil {
		t.Fatal("expected Recv to fail after Close")
	}
}

func TestFragmentConcatenationReconstructsReply(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog, twice in a row."
	mock := NewMockProvider("mock").AddTextResponse(text)

	s := mock.Send(context.Background(), nil, true)
	defer s.Close()

	got := drainStream(t, s)
	if len(got) < 2 {
		t.Fatalf("expected the reply to arrive in multiple fragments, got %d", len(got))
	}
	if joined := strings.Join(got, ""); joined != text {
		t.Errorf("concatenated fragments mismatch:\n%q\n%q", joined, text)
	}
}

func TestMockProviderNonStreaming(t *testing.T) {
	text := "a complete reply in one piece"
	mock := NewMockProvider("mock").AddTextResponse(text)

	s := mock.Send(context.Background(), nil, false)
	defer s.Close()

	got := drainStream(t, s)
	if len(got) != 1 || got[0] != text {
		t.Errorf("expected one full fragment, got %v", got)
	}
}

func TestMockProviderError(t *testing.T) {
	mock := NewMockProvider("mock").AddError(errors.New("scripted failure"))

	s := mock.Send(context.Background(), nil, true)
	defer s.Close()

	got := drainStream(t, s)
	if len(got) != 1 || got[0] != "Error: scripted failure" {
		t.Errorf("expected a single error fragment, got %v", got)
	}
}
