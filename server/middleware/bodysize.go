package middleware

import (
	"net/http"

	"github.com/kbukum/scribe/util"
)

const defaultMaxBodySize = 26 * 1024 * 1024 // 26MB

// BodySizeLimit returns middleware that restricts the request body to the given
// size string (e.g. "26MB", "512KB"). Handlers see *http.MaxBytesError from
// reads past the limit. An unparseable size falls back to 26MB.
func BodySizeLimit(maxSize string) Middleware {
	size, err := util.ParseSize(maxSize)
	if err != nil {
		size = defaultMaxBodySize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, size)
			}
			next.ServeHTTP(w, r)
		})
	}
}
