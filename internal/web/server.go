package web

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/amphora-protocol/aam/internal/logger"
	"github.com/amphora-protocol/aam/internal/metrics"
	"github.com/amphora-protocol/aam/internal/state"
	"github.com/amphora-protocol/aam/internal/types"
)

var webLogger = logger.GetForComponent("web_server")

// StatusSource reports live manager state the database does not carry.
type StatusSource interface {
	Paused() bool
}

// WebServer handles HTTP requests for manager observability data. It reads
// from the state database only; capital never moves through this surface.
type WebServer struct {
	router *mux.Router
	port   string
	status StatusSource
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, status StatusSource) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		port:   port,
		status: status,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// Prometheus scrape endpoint
	ws.router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/status", ws.handleStatus).Methods("GET")
	api.HandleFunc("/parameters", ws.handleGetParameters).Methods("GET")
	api.HandleFunc("/operations", ws.handleGetOperations).Methods("GET")
	api.HandleFunc("/operations/summary", ws.handleGetOperationsSummary).Methods("GET")
	api.HandleFunc("/snapshots", ws.handleGetSnapshots).Methods("GET")
	api.HandleFunc("/snapshots/latest", ws.handleGetLatestSnapshot).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
	ws.router.Use(metrics.Middleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns comprehensive server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	// Get runtime memory stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	// Latest journal row gives the freshest sign of life
	var operationInfo map[string]interface{}
	var hasErrors bool

	recent, opErr := state.GetRecentOperations(1)
	if opErr == nil && len(recent) > 0 {
		last := recent[0]
		operationInfo = map[string]interface{}{
			"last_sequence":  last.Sequence,
			"last_kind":      string(last.Kind),
			"last_success":   last.Success,
			"last_timestamp": last.Timestamp,
		}
		hasErrors = !last.Success
	} else {
		operationInfo = map[string]interface{}{
			"last_sequence":  0,
			"last_kind":      "none",
			"last_success":   false,
			"last_timestamp": nil,
		}
		// An empty journal is normal right after deployment, not an error.
		hasErrors = opErr != nil
	}

	// Get database connection status
	dbHealthy := true
	if dbErr := state.TestDBConnection(); dbErr != nil {
		dbHealthy = false
		hasErrors = true
	}

	// Determine overall status
	overallStatus := "OK"
	if hasErrors {
		overallStatus = "DEGRADED"
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":            runtime.Version(),
			"goroutines_count":   runtime.NumGoroutine(),
			"total_alloc_bytes":  memStats.TotalAlloc,
			"heap_objects_count": memStats.HeapObjects,
			"alloc_bytes":        memStats.Alloc,
			"sys_bytes":          memStats.Sys,
			"gc_cycles":          memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "aam-asset-allocation-manager",
			"version": "1.0.0",
		},
		"manager_status": map[string]interface{}{
			"database_healthy":  dbHealthy,
			"has_recent_errors": hasErrors,
			"paused":            ws.paused(),
			"operation_info":    operationInfo,
		},
	}

	// Set appropriate HTTP status code
	statusCode := http.StatusOK
	if hasErrors {
		statusCode = http.StatusServiceUnavailable
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleStatus returns the current position picture and parameter set
func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	snapshot, err := state.GetLatestPositionSnapshot()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get latest snapshot")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve latest snapshot")
		return
	}

	params, err := state.LoadActiveManagerParameters()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get active parameters")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve active parameters")
		return
	}

	response := map[string]interface{}{
		"paused":     ws.paused(),
		"snapshot":   snapshot,
		"parameters": params,
		"timestamp":  time.Now().UTC(),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetParameters returns the active governed parameter set
func (ws *WebServer) handleGetParameters(w http.ResponseWriter, r *http.Request) {
	params, err := state.LoadActiveManagerParameters()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get manager parameters")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve manager parameters")
		return
	}

	paramsID, err := state.GetActiveParametersID()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get active parameters ID")
	}

	response := map[string]interface{}{
		"parameters": params,
		"params_id":  paramsID,
		"timestamp":  time.Now().UTC(),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetOperations returns recent journal rows, optionally filtered by kind
func (ws *WebServer) handleGetOperations(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	var events []types.OperationEvent
	var err error
	if kind := r.URL.Query().Get("kind"); kind != "" {
		events, err = state.GetOperationsByKind(types.OperationKind(kind), limit)
	} else {
		events, err = state.GetRecentOperations(limit)
	}
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent operations")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve operations")
		return
	}

	response := map[string]interface{}{
		"operations": events,
		"count":      len(events),
		"limit":      limit,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetOperationsSummary returns aggregated journal statistics
func (ws *WebServer) handleGetOperationsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := state.GetOperationsSummary()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get operations summary")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve operations summary")
		return
	}

	counts, err := state.GetOperationCountsByKind()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get operation counts by kind")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve operation counts")
		return
	}

	response := map[string]interface{}{
		"summary":   summary,
		"by_kind":   counts,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetSnapshots returns recent position snapshots
func (ws *WebServer) handleGetSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	snapshots, err := state.GetRecentPositionSnapshots(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get position snapshots")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve snapshots")
		return
	}

	response := map[string]interface{}{
		"snapshots": snapshots,
		"count":     len(snapshots),
		"limit":     limit,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetLatestSnapshot returns the most recent position snapshot
func (ws *WebServer) handleGetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := state.GetLatestPositionSnapshot()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get latest snapshot")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve latest snapshot")
		return
	}
	if snapshot == nil {
		ws.writeErrorResponse(w, http.StatusNotFound, "No snapshots found")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, snapshot)
}

func (ws *WebServer) paused() bool {
	if ws.status == nil {
		return false
	}
	return ws.status.Paused()
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
