package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type header struct{ key, value string }

// securityHeaders are sent on every response, pages and API alike.
var securityHeaders = []header{
	{"X-Frame-Options", "SAMEORIGIN"},
	{"X-Content-Type-Options", "nosniff"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"X-DNS-Prefetch-Control", "on"},
	{"Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload"},
	{"X-XSS-Protection", "1; mode=block"},
}

// SecurityHeaders chains one chimw.SetHeader per header.
func SecurityHeaders(next http.Handler) http.Handler {
	for i := len(securityHeaders) - 1; i >= 0; i-- {
		h := securityHeaders[i]
		next = chimw.SetHeader(h.key, h.value)(next)
	}
	return next
}
