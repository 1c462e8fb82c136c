package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"
)

func TestIsTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("syntax error"), false},
		{"canceled", fmt.Errorf("write: %w", context.Canceled), false},
		{"refused errno", &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, true},
		{"reset errno", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"unexpected eof", fmt.Errorf("fetch: %w", io.ErrUnexpectedEOF), true},
		{"flattened text", errors.New("Dial TCP 10.0.0.1:9092: connection refused"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransportError(tt.err); got != tt.want {
				t.Errorf("IsTransportError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestMessageContains(t *testing.T) {
	err := errors.New("Database Is Locked")
	if !MessageContains(err, "timeout", "database is locked") {
		t.Error("expected case-insensitive match")
	}
	if MessageContains(nil, "x") || MessageContains(err) {
		t.Error("expected no match")
	}
}
