package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/GoRAG/internal/domain/faults"
	"google.golang.org/genai"
)

func TestNewClientRejectsMissingConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no api key", Config{Model: "gemini-2.5-flash"}},
		{"no model", Config{APIKey: "key"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewClient(context.Background(), tc.cfg)
			if !errors.Is(err, faults.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantTransient bool
		wantPermanent bool
	}{
		{"rate limited", genai.APIError{Code: 429}, true, false},
		{"request timeout", genai.APIError{Code: 408}, true, false},
		{"server error", genai.APIError{Code: 503}, true, false},
		{"bad request", genai.APIError{Code: 400}, false, true},
		{"unauthorized", genai.APIError{Code: 401}, false, true},
		{"deadline", context.DeadlineExceeded, true, false},
		{"unknown network failure", errors.New("connection reset"), true, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classify("generate content", tc.err)
			if faults.IsTransient(got) != tc.wantTransient {
				t.Errorf("IsTransient = %v, want %v", faults.IsTransient(got), tc.wantTransient)
			}
			if faults.IsPermanent(got) != tc.wantPermanent {
				t.Errorf("IsPermanent = %v, want %v", faults.IsPermanent(got), tc.wantPermanent)
			}
		})
	}
}

func TestClassifyPassesThroughCancellation(t *testing.T) {
	got := classify("generate content", context.Canceled)
	if !errors.Is(got, context.Canceled) {
		t.Fatalf("expected context.Canceled passed through, got %v", got)
	}
	if faults.IsTransient(got) || faults.IsPermanent(got) {
		t.Fatalf("cancellation must not be classified: %v", got)
	}
}
