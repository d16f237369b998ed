package middleware

import "net/http"

// RequestRecorder counts served requests
type RequestRecorder interface {
	RequestServed(method string, status int)
}

// Metrics reports every request's method and final status
func Metrics(recorder RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)
			recorder.RequestServed(r.Method, wrapped.status)
		})
	}
}
