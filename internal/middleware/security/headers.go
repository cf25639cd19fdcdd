package security

import (
	"fmt"
	"net/http"
	"strings"
)

// HeadersConfig controls the security headers stamped on every response.
type HeadersConfig struct {
	// CSP must allow the htmx script origin and the inline styles the
	// overview bars use, or the dashboard goes blank.
	CSP string

	FrameOptions      string
	ReferrerPolicy    string
	PermissionsPolicy string
	CrossOriginPolicy string // opener and resource policy share this value
	EmbedderPolicy    string

	// HSTS is emitted on TLS requests only. Zero disables it.
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
}

// DefaultHeadersConfig locks the app to itself plus the htmx CDN.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP: strings.Join([]string{
			"default-src 'self'",
			"script-src 'self' https://unpkg.com",
			"style-src 'self' 'unsafe-inline'",
			"img-src 'self' data:",
			"connect-src 'self'",
			"font-src 'self'",
			"object-src 'none'",
			"media-src 'self'",
			"frame-ancestors 'none'",
			"base-uri 'self'",
			"form-action 'self'",
		}, "; "),
		FrameOptions:          "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		PermissionsPolicy:     "geolocation=(), microphone=(), camera=(), payment=()",
		CrossOriginPolicy:     "same-origin",
		EmbedderPolicy:        "require-corp",
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		HSTSPreload:           true,
	}
}

// HeadersMiddleware stamps a fixed header set. The set is assembled once
// at construction; per request it is a plain copy loop.
type HeadersMiddleware struct {
	static [][2]string
	hsts   string
}

// NewHeadersMiddleware precomputes the header set from the config.
func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	m := &HeadersMiddleware{}

	add := func(name, value string) {
		if value != "" {
			m.static = append(m.static, [2]string{name, value})
		}
	}
	add("X-Content-Type-Options", "nosniff")
	add("X-Frame-Options", config.FrameOptions)
	add("Content-Security-Policy", config.CSP)
	add("Referrer-Policy", config.ReferrerPolicy)
	add("Permissions-Policy", config.PermissionsPolicy)
	add("Cross-Origin-Opener-Policy", config.CrossOriginPolicy)
	add("Cross-Origin-Embedder-Policy", config.EmbedderPolicy)
	add("Cross-Origin-Resource-Policy", config.CrossOriginPolicy)

	if config.HSTSMaxAge > 0 {
		m.hsts = fmt.Sprintf("max-age=%d", config.HSTSMaxAge)
		if config.HSTSIncludeSubdomains {
			m.hsts += "; includeSubDomains"
		}
		if config.HSTSPreload {
			m.hsts += "; preload"
		}
	}
	return m
}

// Middleware returns the wrapping handler.
func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		for _, kv := range h.static {
			headers.Set(kv[0], kv[1])
		}
		if h.hsts != "" && r.TLS != nil {
			headers.Set("Strict-Transport-Security", h.hsts)
		}
		next.ServeHTTP(w, r)
	})
}

// StaticAssetMiddleware marks embedded assets as long-lived cacheable;
// they only change on deploy.
func StaticAssetMiddleware(maxAge int) func(http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d, immutable", maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxAge > 0 {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
