package llm

import (
	"errors"
	"testing"
)

func TestRegistryResolveBuiltins(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"openai", "deepseek", "anthropic"} {
		p, err := r.Resolve(name, "sk-test", "some-model")
		if err != nil {
			t.Errorf("resolve %q failed: %v", name, err)
			continue
		}
		if p == nil {
			t.Errorf("resolve %q returned nil provider", name)
		}
	}
}

func TestRegistryResolveUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("nope", "sk-test", "some-model")
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}

	var unknownErr *UnknownProviderError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected UnknownProviderError, got %T", err)
	}
	if unknownErr.Provider != "nope" {
		t.Errorf("expected provider 'nope' in error, got %q", unknownErr.Provider)
	}
	if err.Error() != "unknown provider: nope" {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestRegistryRegisterOverrides(t *testing.T) {
	r := NewRegistry()
	mock := NewMockProvider("stub")
	r.Register("openai", func(apiKey, model string) Provider {
		return mock
	})

	p, err := r.Resolve("openai", "ignored", "ignored")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if p != Provider(mock) {
		t.Error("expected registered factory to win over the built-in")
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	names := NewRegistry().Names()
	want := []string{"anthropic", "deepseek", "openai"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestErrorFragmentRoundTrip(t *testing.T) {
	frag := ErrorFragment(errors.New("HTTP 401"))
	if frag != "Error: HTTP 401" {
		t.Errorf("unexpected fragment: %q", frag)
	}
	if !IsErrorFragment(frag) {
		t.Error("expected fragment to be recognized as an error")
	}
	if IsErrorFragment("plain text") {
		t.Error("plain text misidentified as error fragment")
	}
}
