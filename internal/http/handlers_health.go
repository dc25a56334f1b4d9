package httpx

import (
	"io"
	"net/http"
)

const healthResponse = `{"status":"ok","service":"studiodesk"}`

// healthHandler serves readiness/liveness probes. It reports process health
// only; directory and store availability surface through their own checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}
