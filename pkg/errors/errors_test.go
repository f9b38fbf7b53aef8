package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestErrorString(t *testing.T) {
	if got := New(ErrCodeInvalidKind, "unknown kind %q", "pie").Error(); got != `INVALID_KIND: unknown kind "pie"` {
		t.Errorf("Error() = %s", got)
	}
	err := Wrap(ErrCodeDataUnavailable, fs.ErrNotExist, "read %s", "data.csv")
	if got := err.Error(); got != "DATA_UNAVAILABLE: read data.csv: file does not exist" {
		t.Errorf("Error() = %s", got)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("wrapped cause lost")
	}
}

func TestCodeChain(t *testing.T) {
	style := New(ErrCodeInvalidStyle, "scale ratio 1.5 outside (0, 1]")
	render := Wrap(ErrCodeRenderFailure, style, "encode")
	viaFmt := fmt.Errorf("render: %w", render)

	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"own code", style, ErrCodeInvalidStyle, true},
		{"other code", style, ErrCodeInvalidKind, false},
		{"outer code", render, ErrCodeRenderFailure, true},
		{"inner code", render, ErrCodeInvalidStyle, true},
		{"through fmt wrap", viaFmt, ErrCodeInvalidStyle, true},
		{"plain error", errors.New("boom"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.want)
			}
		})
	}

	if got := GetCode(viaFmt); got != ErrCodeRenderFailure {
		t.Errorf("GetCode = %s, want outermost RENDER_FAILURE", got)
	}
	if got := GetCode(errors.New("boom")); got != "" {
		t.Errorf("GetCode(plain) = %q", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{New(ErrCodeNotFound, "no gallery figure %q", "pie"), `no gallery figure "pie"`},
		{fmt.Errorf("load: %w", New(ErrCodeInvalidInput, "bad column")), "bad column"},
		{errors.New("disk full"), "disk full"},
	}
	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestFatal(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{New(ErrCodeDataUnavailable, "missing"), false},
		{New(ErrCodeRenderFailure, "write"), true},
		{New(ErrCodeNumericDegeneracy, "too few points"), true},
		{errors.New("unexpected"), true},
	}
	for _, tt := range tests {
		if got := Fatal(tt.err); got != tt.want {
			t.Errorf("Fatal(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
