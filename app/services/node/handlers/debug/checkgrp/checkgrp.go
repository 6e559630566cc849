// Package checkgrp provides readiness and liveness endpoints for the
// debug mux.
package checkgrp

import (
	"encoding/json"
	"net/http"
	"os"

	"go.uber.org/zap"
)

// Handlers holds the state needed to answer health checks.
type Handlers struct {
	Build string
	Log   *zap.SugaredLogger
}

// Liveness reports whether this node's process is running. Kubernetes
// uses this to decide whether to restart the container; it never
// touches the chain engine, so it never blocks on a lock.
func (h Handlers) Liveness(w http.ResponseWriter, r *http.Request) {
	info := struct {
		Status    string `json:"status"`
		Build     string `json:"build"`
		Host      string `json:"host"`
		Pod       string `json:"pod,omitempty"`
		PodIP     string `json:"podIP,omitempty"`
		Namespace string `json:"namespace,omitempty"`
	}{
		Status: "up",
		Build:  h.Build,
	}

	if host, err := os.Hostname(); err == nil {
		info.Host = host
	}
	info.Pod = os.Getenv("KUBERNETES_PODNAME")
	info.PodIP = os.Getenv("KUBERNETES_NAMESPACE_POD_IP")
	info.Namespace = os.Getenv("KUBERNETES_NAMESPACE")

	h.writeJSON(w, http.StatusOK, info)
}

// Readiness reports whether this node is ready to serve RPC traffic.
func (h Handlers) Readiness(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{Status: "ok"})
}

func (h Handlers) writeJSON(w http.ResponseWriter, statusCode int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.Log.Errorw("checkgrp marshal failure", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(payload)
}
