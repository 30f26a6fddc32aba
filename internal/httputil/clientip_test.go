package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trust      bool
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{name: "remote addr v4", remoteAddr: "192.168.1.1:12345", want: "192.168.1.1"},
		{name: "remote addr v6", remoteAddr: "[::1]:12345", want: "::1"},
		{name: "remote addr without port", remoteAddr: "192.168.1.1", want: "192.168.1.1"},
		{name: "headers ignored when untrusted", xff: "1.2.3.4", xri: "5.6.7.8", remoteAddr: "10.0.0.1:1234", want: "10.0.0.1"},
		{name: "xff single", trust: true, xff: "1.2.3.4", remoteAddr: "10.0.0.1:1234", want: "1.2.3.4"},
		{name: "xff takes first", trust: true, xff: "1.2.3.4, 10.0.0.1, 10.0.0.2", remoteAddr: "10.0.0.3:1234", want: "1.2.3.4"},
		{name: "x-real-ip fallback", trust: true, xri: "5.6.7.8", remoteAddr: "10.0.0.1:1234", want: "5.6.7.8"},
		{name: "xff wins over x-real-ip", trust: true, xff: "1.2.3.4", xri: "5.6.7.8", remoteAddr: "10.0.0.1:1234", want: "1.2.3.4"},
		{name: "garbage xff skipped", trust: true, xff: "not-an-ip", xri: "5.6.7.8", remoteAddr: "10.0.0.1:1234", want: "5.6.7.8"},
		{name: "garbage headers fall back", trust: true, xff: "<script>", xri: "x", remoteAddr: "10.0.0.1:1234", want: "10.0.0.1"},
		{name: "no headers", trust: true, remoteAddr: "10.0.0.1:1234", want: "10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &http.Request{RemoteAddr: tt.remoteAddr, Header: http.Header{}}
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r, tt.trust); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRemoteIPMiddleware(t *testing.T) {
	var seen string
	h := RemoteIP(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.RemoteAddr
	}))

	req := httptest.NewRequest(http.MethodGet, "/schema", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "203.0.113.7" {
		t.Errorf("RemoteAddr = %q, want 203.0.113.7", seen)
	}
}
