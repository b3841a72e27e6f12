package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/telvora/telvora/pkg/models"
)

// AnalyticsService is the engine surface the gateway exposes.
type AnalyticsService interface {
	Analyze(ctx context.Context, customerID string, topN int) (models.AnalyticResult, error)
	SimulateProduct(ctx context.Context, product models.Product) (models.SimulationResult, error)
}

// GatewayConfig represents gateway configuration.
type GatewayConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	EnableCORS     bool          `yaml:"enable_cors"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	MaxRequestSize int64         `yaml:"max_request_size"`
}

// DefaultGatewayConfig returns default gateway configuration.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		MaxRequestSize: 1 << 20, // 1MB
	}
}

// GatewayMetrics tracks request counts and latency.
type GatewayMetrics struct {
	mu               sync.Mutex
	RequestsTotal    int64            `json:"requests_total"`
	RequestsFailed   int64            `json:"requests_failed"`
	AverageLatency   time.Duration    `json:"average_latency"`
	RequestsByPath   map[string]int64 `json:"requests_by_path"`
	RequestsByStatus map[int]int64    `json:"requests_by_status"`
	LastRequest      time.Time        `json:"last_request"`
}

// Gateway is the HTTP surface of the inference service.
type Gateway struct {
	server  *http.Server
	router  *mux.Router
	service AnalyticsService
	hub     *Hub
	config  GatewayConfig
	metrics *GatewayMetrics
}

// NewGateway creates the gateway. hub may be nil to disable the live
// event feed.
func NewGateway(config GatewayConfig, service AnalyticsService, hub *Hub) *Gateway {
	router := mux.NewRouter()

	g := &Gateway{
		router:  router,
		service: service,
		hub:     hub,
		config:  config,
		metrics: &GatewayMetrics{
			RequestsByPath:   make(map[string]int64),
			RequestsByStatus: make(map[int]int64),
		},
	}

	g.setupRoutes()
	g.setupMiddleware()

	g.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      g.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return g
}

// setupRoutes configures all API routes.
func (g *Gateway) setupRoutes() {
	infer := g.router.PathPrefix("/infer").Subrouter()
	infer.HandleFunc("/analytic", g.handleInferAnalytic).Methods("POST")
	infer.HandleFunc("/simulate-product", g.handleSimulateProduct).Methods("POST")

	g.router.HandleFunc("/health", g.handleHealth).Methods("GET")
	g.router.HandleFunc("/metrics", g.handleMetrics).Methods("GET")

	if g.hub != nil {
		g.router.HandleFunc("/ws", g.hub.HandleConnection)
	}
}

// setupMiddleware configures HTTP middleware.
func (g *Gateway) setupMiddleware() {
	if g.config.EnableCORS {
		c := cors.New(cors.Options{
			AllowedOrigins:   g.config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		})
		g.router.Use(c.Handler)
	}

	g.router.Use(g.metricsMiddleware)
}

// Start starts the gateway and blocks until the server stops.
func (g *Gateway) Start() error {
	log.Printf("Starting API gateway on %s", g.server.Addr)
	return g.server.ListenAndServe()
}

// Stop shuts the gateway down gracefully.
func (g *Gateway) Stop(ctx context.Context) error {
	log.Printf("Stopping API gateway")
	return g.server.Shutdown(ctx)
}

// Router exposes the handler tree for tests.
func (g *Gateway) Router() http.Handler {
	return g.router
}

// Response helpers

// APIError is the error body returned for failed requests.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message, details string) {
	writeJSON(w, status, map[string]APIError{
		"error": {Code: code, Message: message, Details: details},
	})
}

func (g *Gateway) parseBody(r *http.Request, target any) error {
	defer r.Body.Close()
	limited := http.MaxBytesReader(nil, r.Body, g.config.MaxRequestSize)
	return json.NewDecoder(limited).Decode(target)
}

// Middleware

func (g *Gateway) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		g.updateMetrics(r, wrapped.statusCode, time.Since(start))
	})
}

func (g *Gateway) updateMetrics(r *http.Request, statusCode int, duration time.Duration) {
	g.metrics.mu.Lock()
	defer g.metrics.mu.Unlock()

	g.metrics.RequestsTotal++
	g.metrics.RequestsByPath[r.URL.Path]++
	g.metrics.RequestsByStatus[statusCode]++
	g.metrics.LastRequest = time.Now()
	if statusCode >= http.StatusInternalServerError {
		g.metrics.RequestsFailed++
	}

	if g.metrics.AverageLatency == 0 {
		g.metrics.AverageLatency = duration
	} else {
		g.metrics.AverageLatency = (g.metrics.AverageLatency + duration) / 2
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.statusCode = code
	sw.ResponseWriter.WriteHeader(code)
}
