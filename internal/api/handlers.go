package api

import (
	"errors"
	"net/http"

	"github.com/telvora/telvora/internal/store"
	"github.com/telvora/telvora/pkg/models"
)

// AnalyticRequest is the body of POST /infer/analytic.
type AnalyticRequest struct {
	CustomerID string `json:"customer_id"`
	TopN       int    `json:"top_n"`
}

// SimulateProductRequest is the body of POST /infer/simulate-product.
type SimulateProductRequest struct {
	ProductName  string          `json:"product_name"`
	Category     models.Category `json:"category"`
	Price        models.Numeric  `json:"price"`
	DurationDays int             `json:"duration_days"`
}

func (g *Gateway) handleInferAnalytic(w http.ResponseWriter, r *http.Request) {
	var req AnalyticRequest
	if err := g.parseBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request body", err.Error())
		return
	}
	if req.CustomerID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "customer_id is required", "")
		return
	}

	result, err := g.service.Analyze(r.Context(), req.CustomerID, req.TopN)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Customer not found", req.CustomerID)
			return
		}
		writeError(w, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Failed to run analytic", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (g *Gateway) handleSimulateProduct(w http.ResponseWriter, r *http.Request) {
	var req SimulateProductRequest
	if err := g.parseBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request body", err.Error())
		return
	}
	if req.ProductName == "" || req.Category == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "product_name and category are required", "")
		return
	}
	if req.Price.Float() <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "price must be positive", "")
		return
	}

	duration := req.DurationDays
	if duration <= 0 {
		duration = 30
	}

	product := models.Product{
		ProductName:  req.ProductName,
		Category:     req.Category,
		Price:        req.Price.Float(),
		DurationDays: duration,
	}

	result, err := g.service.SimulateProduct(r.Context(), product)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Failed to run simulation", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (g *Gateway) handleMetrics(w http.ResponseWriter, r *http.Request) {
	g.metrics.mu.Lock()
	snapshot := struct {
		RequestsTotal    int64            `json:"requests_total"`
		RequestsFailed   int64            `json:"requests_failed"`
		AverageLatency   string           `json:"average_latency"`
		RequestsByPath   map[string]int64 `json:"requests_by_path"`
		RequestsByStatus map[int]int64    `json:"requests_by_status"`
	}{
		RequestsTotal:    g.metrics.RequestsTotal,
		RequestsFailed:   g.metrics.RequestsFailed,
		AverageLatency:   g.metrics.AverageLatency.String(),
		RequestsByPath:   make(map[string]int64, len(g.metrics.RequestsByPath)),
		RequestsByStatus: make(map[int]int64, len(g.metrics.RequestsByStatus)),
	}
	for k, v := range g.metrics.RequestsByPath {
		snapshot.RequestsByPath[k] = v
	}
	for k, v := range g.metrics.RequestsByStatus {
		snapshot.RequestsByStatus[k] = v
	}
	g.metrics.mu.Unlock()

	writeJSON(w, http.StatusOK, snapshot)
}
