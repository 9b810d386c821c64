package http

import (
	"encoding/json"
	stdhttp "net/http"
)

// HealthHandler reports liveness in the same JSON shape the rest of the
// payments API speaks.
func HealthHandler(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(stdhttp.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
