package clientip

import (
	"net"
	"net/http"
	"strings"
	"sync/atomic"
)

var trustForwarded atomic.Bool

// TrustForwardedFor makes RealClientIP honour the first X-Forwarded-For hop.
// Enable it only when the app sits behind a proxy that overwrites the header.
func TrustForwardedFor(on bool) {
	trustForwarded.Store(on)
}

// RealClientIP returns the client IP used for rate limiting and logging.
// By default it is taken from r.RemoteAddr only.
func RealClientIP(r *http.Request) string {
	if trustForwarded.Load() {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip.String()
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}
