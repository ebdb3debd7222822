// Package api implements the ChronicleLens REST and event-stream API using chi.
package api

import "net/http"

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// LimitBody returns middleware that caps request bodies at n bytes.
func LimitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}
