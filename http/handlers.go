package http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"rejectlearn/ml"
)

type accuracyResponse struct {
	Overall   float64               `json:"overall"`
	Endpoints []ml.EndpointSnapshot `json:"endpoints"`
}

type handlers struct {
	classifier *ml.Classifier
	logger     *zap.SugaredLogger
}

// NewMux registers the status routes for classifier.
func NewMux(classifier *ml.Classifier, logger *zap.SugaredLogger) *http.ServeMux {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	h := &handlers{classifier: classifier, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/accuracy", h.handleAccuracy)
	mux.HandleFunc("GET /api/accuracy/endpoint", h.handleEndpointAccuracy)
	return mux
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) handleAccuracy(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, accuracyResponse{
		Overall:   h.classifier.EstimateOverallAccuracy(),
		Endpoints: h.classifier.Snapshot(),
	})
}

func (h *handlers) handleEndpointAccuracy(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("method")
	path := r.URL.Query().Get("path")
	if method == "" || path == "" {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "method and path are required"})
		return
	}
	snap, ok := h.classifier.Describe(ml.Endpoint{Method: method, Path: path})
	if !ok {
		h.respondJSON(w, http.StatusNotFound, map[string]string{"error": "endpoint not seen"})
		return
	}
	h.respondJSON(w, http.StatusOK, snap)
}

func (h *handlers) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Errorw("failed to encode JSON", "status", status, "error", err)
	}
}
