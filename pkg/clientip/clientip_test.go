package clientip_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/authgate/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		forwarded string
		expected  string
	}{
		{name: "single address", forwarded: "198.51.100.178", expected: "198.51.100.178"},
		{name: "first of many", forwarded: "198.51.100.178, 203.0.113.195, 10.0.0.1", expected: "198.51.100.178"},
		{name: "surrounding spaces", forwarded: "  203.0.113.9  ,10.0.0.1", expected: "203.0.113.9"},
		{name: "ipv6 normalized", forwarded: "2001:DB8::1", expected: "2001:db8::1"},
		{name: "missing header", forwarded: "", expected: clientip.Unknown},
		{name: "garbage first entry", forwarded: "not-an-ip, 198.51.100.1", expected: clientip.Unknown},
		{name: "empty first entry", forwarded: ", 198.51.100.1", expected: clientip.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.1.1.1:4444"
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}

			assert.Equal(t, tt.expected, clientip.GetIP(req))
		})
	}
}

func TestContext(t *testing.T) {
	t.Parallel()

	assert.Equal(t, clientip.Unknown, clientip.GetIPFromContext(context.Background()))

	ctx := clientip.SetIPToContext(context.Background(), "192.0.2.10")
	assert.Equal(t, "192.0.2.10", clientip.GetIPFromContext(ctx))

	ctx = clientip.SetIPToContext(context.Background(), "")
	assert.Equal(t, clientip.Unknown, clientip.GetIPFromContext(ctx))
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var got string
	h := clientip.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = clientip.GetIPFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.50, 10.0.0.2")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "203.0.113.50", got)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, clientip.Unknown, got)
}
