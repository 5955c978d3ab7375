package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAnalysisError_Error(t *testing.T) {
	tests := []struct {
		name      string
		err       *AnalysisError
		wantParts []string
	}{
		{
			name:      "invalid input",
			err:       Invalid("/nope", "path does not exist"),
			wantParts: []string{"INVALID_INPUT", "path does not exist", "/nope"},
		},
		{
			name:      "parse with cause",
			err:       Parse("src/a.ts", errors.New("permission denied")),
			wantParts: []string{"FILE_PARSE_ERROR", "src/a.ts", "permission denied"},
		},
		{
			name:      "internal without path",
			err:       New(InternalError, "boom", nil),
			wantParts: []string{"INTERNAL_ERROR", "boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, missing %q", got, part)
				}
			}
		})
	}
}

func TestAnalysisError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := Parse("a.py", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("scan: %w", Invalid("x", "bad"))
	if CodeOf(wrapped) != InvalidInput {
		t.Errorf("CodeOf(wrapped) = %s, want INVALID_INPUT", CodeOf(wrapped))
	}
	if !IsInvalidInput(wrapped) {
		t.Error("IsInvalidInput(wrapped) = false")
	}
	if IsFileParse(wrapped) {
		t.Error("IsFileParse(wrapped) = true")
	}
	if CodeOf(errors.New("plain")) != InternalError {
		t.Error("plain errors should map to INTERNAL_ERROR")
	}
	if IsInvalidInput(nil) {
		t.Error("nil is not an input error")
	}
}
