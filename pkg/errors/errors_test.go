package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"New", New(ErrCodeMissingNode, "node %q not found", "G9"), `MISSING_NODE: node "G9" not found`},
		{"Wrap", Wrap(ErrCodeInvalidConfig, errors.New("bad toml"), "parse %s", "netview.toml"), "INVALID_CONFIG: parse netview.toml: bad toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeInternal, cause, "load mongo:pathways")

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestCodes(t *testing.T) {
	missing := New(ErrCodeMissingNode, "node %q not found", "G9")
	tests := []struct {
		name     string
		err      error
		code     Code
		wantIs   bool
		wantCode Code
		wantMsg  string
	}{
		{"Direct", missing, ErrCodeMissingNode, true, ErrCodeMissingNode, `node "G9" not found`},
		{"OtherCode", missing, ErrCodeMissingEdge, false, ErrCodeMissingNode, `node "G9" not found`},
		{"FmtWrapped", fmt.Errorf("zoomToNode: %w", missing), ErrCodeMissingNode, true, ErrCodeMissingNode, `node "G9" not found`},
		{"OuterCodeWins", Wrap(ErrCodeInvalidArgument, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeInvalidArgument, true, ErrCodeInvalidArgument, "outer"},
		{"Plain", errors.New("disk full"), ErrCodeInternal, false, "", "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.wantIs {
				t.Errorf("Is(%s) = %v, want %v", tt.code, got, tt.wantIs)
			}
			if got := GetCode(tt.err); got != tt.wantCode {
				t.Errorf("GetCode() = %q, want %q", got, tt.wantCode)
			}
			if got := UserMessage(tt.err); got != tt.wantMsg {
				t.Errorf("UserMessage() = %q, want %q", got, tt.wantMsg)
			}
		})
	}

	if Is(nil, ErrCodeInternal) || GetCode(nil) != "" {
		t.Error("nil error should carry no code")
	}
}

func TestIsNoop(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"unknown command", New(ErrCodeUnknownCommand, "zoomSideways"), true},
		{"missing node", New(ErrCodeMissingNode, "x"), true},
		{"missing edge", New(ErrCodeMissingEdge, "x"), true},
		{"empty path", Wrap(ErrCodeEmptyPath, errors.New("no route"), "a -> b"), true},
		{"invalid argument", New(ErrCodeInvalidArgument, "factor"), false},
		{"plain error", errors.New("plain"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNoop(tt.err); got != tt.expected {
				t.Errorf("IsNoop() = %v, want %v", got, tt.expected)
			}
		})
	}
}
