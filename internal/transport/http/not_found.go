package http

import "net/http"

// NotFoundHandler answers routes outside the payments API with the standard
// JSON error envelope, naming the path that missed.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "no such endpoint: "+r.URL.Path)
	})
}
