package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type stubProvider struct {
	name     string
	response string
	err      error
	calls    int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Generate(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestChainRequiresProviders(t *testing.T) {
	if _, err := NewChain(nil, 0, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty provider list")
	}
}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	primary := &stubProvider{name: "gemini", response: `{"selected":[1]}`}
	secondary := &stubProvider{name: "groq", response: "should not be used"}

	chain, err := NewChain([]Provider{primary, secondary}, 0, zap.NewNop())
	if err != nil {
		t.Fatalf("building chain: %v", err)
	}

	text, err := chain.Select(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != `{"selected":[1]}` {
		t.Fatalf("unexpected text: %q", text)
	}
	if secondary.calls != 0 {
		t.Fatalf("secondary provider should not be consulted, got %d calls", secondary.calls)
	}
}

func TestChainFallsBackOnError(t *testing.T) {
	primary := &stubProvider{name: "gemini", err: errors.New("rate limited")}
	secondary := &stubProvider{name: "groq", response: "fallback answer"}

	chain, err := NewChain([]Provider{primary, secondary}, 0, zap.NewNop())
	if err != nil {
		t.Fatalf("building chain: %v", err)
	}

	text, err := chain.Select(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "fallback answer" {
		t.Fatalf("unexpected text: %q", text)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Fatalf("unexpected call counts: %d, %d", primary.calls, secondary.calls)
	}
}

func TestChainTreatsEmptyTextAsFailure(t *testing.T) {
	primary := &stubProvider{name: "gemini", response: "   \n"}
	secondary := &stubProvider{name: "groq", response: "real answer"}

	chain, err := NewChain([]Provider{primary, secondary}, 0, zap.NewNop())
	if err != nil {
		t.Fatalf("building chain: %v", err)
	}

	text, err := chain.Select(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "real answer" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestChainReturnsEmptyWhenAllFail(t *testing.T) {
	primary := &stubProvider{name: "gemini", err: errors.New("down")}
	secondary := &stubProvider{name: "groq", err: errors.New("also down")}

	chain, err := NewChain([]Provider{primary, secondary}, 0, zap.NewNop())
	if err != nil {
		t.Fatalf("building chain: %v", err)
	}

	text, err := chain.Select(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("exhaustion must not surface as an error, got %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
}

func TestChainSurfacesRequestDeadline(t *testing.T) {
	primary := &stubProvider{name: "gemini", err: errors.New("slow")}
	secondary := &stubProvider{name: "groq", response: "too late"}

	chain, err := NewChain([]Provider{primary, secondary}, 0, zap.NewNop())
	if err != nil {
		t.Fatalf("building chain: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	if _, err := chain.Select(ctx, "prompt"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if secondary.calls != 0 {
		t.Fatalf("expired request must not reach later providers, got %d calls", secondary.calls)
	}
}
