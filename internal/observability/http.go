package observability

import (
	"net"
	"net/http"
	"strings"
)

// DeviceIDFromRequest returns the client-supplied device id, if any.
func DeviceIDFromRequest(r *http.Request) string {
	return r.Header.Get("X-Device-Id")
}

// RequestIDFromRequest returns the upstream request id, if any.
func RequestIDFromRequest(r *http.Request) string {
	return r.Header.Get("X-Request-Id")
}

// IPFromRequest resolves the client address, trusting proxy headers first.
func IPFromRequest(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return real
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
