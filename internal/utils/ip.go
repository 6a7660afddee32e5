package utils

import (
	"github.com/gin-gonic/gin"
)

// UnknownClient identifies requests whose origin cannot be determined. They
// share one rate limit bucket.
const UnknownClient = "unknown"

// ConfigureClientIP makes the engine read the client address from X-Real-IP,
// then X-Forwarded-For, but only when the peer is one of trustedProxies.
// Forwarded chains are walked right to left and stop at the first untrusted
// hop, so with every peer trusted the leftmost entry is the client.
func ConfigureClientIP(engine *gin.Engine, trustedProxies []string) error {
	engine.ForwardedByClientIP = true
	engine.RemoteIPHeaders = []string{"X-Real-IP", "X-Forwarded-For"}
	return engine.SetTrustedProxies(trustedProxies)
}

// GetRealIP extracts the client IP, respecting the reverse proxies configured
// with ConfigureClientIP. It is the rate limit key for every submission.
func GetRealIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return UnknownClient
}
