package domain

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestResponseSent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unsupported", ErrUnsupportedAlgorithm, true},
		{"wrapped unsupported", fmt.Errorf("negotiate: %w", ErrUnsupportedAlgorithm), true},
		{"bad frame", ErrBadAlgorithmFrame, false},
		{"bad count", fmt.Errorf("%w: %w", ErrBadFileCount, io.EOF), false},
		{"file receive", ErrFileReceive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResponseSent(tt.err); got != tt.want {
				t.Errorf("ResponseSent(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSessionSummaryComplete(t *testing.T) {
	s := SessionSummary{FilesDeclared: 2, FilesProcessed: 2}
	if !s.Complete() {
		t.Error("Complete() = false for fully processed session")
	}

	s.FilesProcessed = 1
	if s.Complete() {
		t.Error("Complete() = true with files missing")
	}

	s = SessionSummary{Err: errors.New("boom")}
	if s.Complete() {
		t.Error("Complete() = true for failed session")
	}
}
