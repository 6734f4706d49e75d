package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Unknown is the client identity used when the request carries no usable address.
// Every such request shares it, so they also share rate limit buckets.
const Unknown = "unknown"

// GetIP returns the client address for the request: the first entry of
// X-Forwarded-For when it parses as an IP, otherwise Unknown.
//
// Only the forwarded header is consulted. The service is expected to run behind a proxy
// that sets it; RemoteAddr would be the proxy itself.
func GetIP(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		return Unknown
	}

	first, _, _ := strings.Cut(forwarded, ",")
	if ip := parseIP(first); ip != "" {
		return ip
	}
	return Unknown
}

// parseIP validates and normalizes an IP address string.
// Returns empty string if the IP is invalid.
func parseIP(ipStr string) string {
	ipStr = strings.TrimSpace(ipStr)
	if ipStr == "" {
		return ""
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return ""
	}

	return ip.String()
}
