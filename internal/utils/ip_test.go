package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestGetRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		realIP     string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"real ip header wins", nil, "203.0.113.7", "198.51.100.1", "10.0.0.1:5000", "203.0.113.7"},
		{"first forwarded hop", nil, "", "198.51.100.1, 10.0.0.2, 10.0.0.3", "10.0.0.1:5000", "198.51.100.1"},
		{"forwarded with spaces", nil, "", "  198.51.100.1 ", "10.0.0.1:5000", "198.51.100.1"},
		{"garbage header ignored", nil, "not-an-ip", "", "192.0.2.10:43210", "192.0.2.10"},
		{"remote addr host", nil, "", "", "192.0.2.10:43210", "192.0.2.10"},
		{"remote addr ipv6", nil, "", "", "[2001:db8::1]:443", "2001:db8::1"},
		{"nothing known", nil, "", "", "", UnknownClient},
		{"untrusted peer headers ignored", []string{"10.0.0.0/8"}, "203.0.113.7", "198.51.100.1", "192.0.2.10:43210", "192.0.2.10"},
		{"trusted peer headers used", []string{"10.0.0.0/8"}, "", "198.51.100.1", "10.0.0.1:5000", "198.51.100.1"},
		{"spoofed hop before proxy", []string{"10.0.0.0/8"}, "", "203.0.113.99, 198.51.100.1, 10.0.0.2", "10.0.0.1:5000", "198.51.100.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trusted := tt.trusted
			if trusted == nil {
				trusted = []string{"0.0.0.0/0", "::/0"}
			}

			engine := gin.New()
			if err := ConfigureClientIP(engine, trusted); err != nil {
				t.Fatalf("ConfigureClientIP() error = %v", err)
			}

			r := httptest.NewRequest(http.MethodPost, "/api/send-email", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}

			c := gin.CreateTestContextOnly(httptest.NewRecorder(), engine)
			c.Request = r

			if got := GetRealIP(c); got != tt.want {
				t.Errorf("GetRealIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigureClientIPRejectsBadProxy(t *testing.T) {
	if err := ConfigureClientIP(gin.New(), []string{"10.0.0.0/33"}); err == nil {
		t.Error("ConfigureClientIP() accepted an invalid CIDR")
	}
}
