package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
)

// Security sets common HTTP security headers on every response. HSTS is only
// sent in production, where TLS terminates in front of the gateway.
func Security(production bool) gin.HandlerFunc {
	s := secure.New(secure.Options{
		FrameDeny:            true,
		ContentTypeNosniff:   true,
		ReferrerPolicy:       "strict-origin-when-cross-origin",
		PermissionsPolicy:    "camera=(), microphone=(), geolocation=()",
		STSSeconds:           63072000,
		STSIncludeSubdomains: true,
		SSLProxyHeaders:      map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:        !production,
	})

	return func(c *gin.Context) {
		if err := s.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		c.Next()
	}
}
