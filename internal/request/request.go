package request

import (
	"net/http"
	"strings"
)

// ClientIP returns the originating client address for rate limiting and
// request logs. Proxy headers win over the socket address, and only the
// first X-Forwarded-For hop counts.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
