package resilience

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
)

// transportMessages catch drivers that flatten socket errors into text.
var transportMessages = []string{
	"connection refused",
	"connection reset",
	"connection closed",
	"broken pipe",
	"i/o timeout",
	"no route to host",
	"network is unreachable",
	"dial tcp",
}

// IsTransportError reports whether err is a socket-level failure that a new
// connection may not hit: a refused or reset connection, an unexpected EOF,
// or a network timeout. Context cancellation never counts.
func IsTransportError(err error) bool {
	if err == nil || IsCanceled(err) {
		return false
	}
	var netErr net.Error
	switch {
	case errors.As(err, &netErr),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE):
		return true
	}
	return MessageContains(err, transportMessages...)
}

// IsCanceled reports context cancellation or deadline expiry.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// MessageContains reports whether err's text contains any of substrs,
// ignoring case. substrs must be lower case.
func MessageContains(err error, substrs ...string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range substrs {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
