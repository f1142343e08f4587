package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/blogadmin/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestNewClientIPResolver(t *testing.T) {
	_, err := httpx.NewClientIPResolver([]string{"10.0.0.0/8", " 192.168.1.10 ", "::1", ""})
	require.NoError(t, err)

	_, err = httpx.NewClientIPResolver([]string{"10.0.0.0/33"})
	require.ErrorContains(t, err, "invalid trusted proxy")

	_, err = httpx.NewClientIPResolver([]string{"proxy.internal"})
	require.ErrorContains(t, err, "invalid trusted proxy")
}

func TestClientIPResolver_ClientIP(t *testing.T) {
	proxies, err := httpx.NewClientIPResolver([]string{"10.0.0.0/8", "192.168.1.10"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		remoteAddr string
		xff        []string
		realIP     string
		want       string
	}{
		{"no headers", "198.51.100.9:1234", nil, "", "198.51.100.9"},
		{"untrusted peer with xff", "203.0.113.7:1234", []string{"10.0.0.1"}, "", "203.0.113.7"},
		{"untrusted peer with x-real-ip", "203.0.113.7:1234", nil, "10.0.0.1", "203.0.113.7"},
		{"trusted peer", "192.168.1.10:1234", []string{"198.51.100.1"}, "", "198.51.100.1"},
		{"trusted chain", "10.0.0.2:1234", []string{"198.51.100.1, 10.0.0.9"}, "", "198.51.100.1"},
		{"spoofed left entry", "10.0.0.2:1234", []string{"1.2.3.4, 198.51.100.1"}, "", "198.51.100.1"},
		{"split headers", "10.0.0.2:1234", []string{"198.51.100.1", "10.0.0.9"}, "", "198.51.100.1"},
		{"all hops trusted", "10.0.0.2:1234", []string{"10.0.0.8, 10.0.0.9"}, "", "10.0.0.8"},
		{"malformed hop", "10.0.0.2:1234", []string{"garbage"}, "", "10.0.0.2"},
		{"trusted peer x-real-ip", "10.0.0.2:1234", nil, "198.51.100.4", "198.51.100.4"},
		{"ipv4-mapped peer", "[::ffff:10.0.0.2]:1234", []string{"198.51.100.1"}, "", "198.51.100.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for _, v := range tt.xff {
				req.Header.Add("X-Forwarded-For", v)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			require.Equal(t, tt.want, proxies.ClientIP(req))
		})
	}
}

func TestClientIPResolver_Nil(t *testing.T) {
	var proxies *httpx.ClientIPResolver

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	require.Equal(t, "10.0.0.2", proxies.ClientIP(req))
	require.Equal(t, "10.0.0.2", httpx.ClientIP(req))
}
