package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"scorequorum/metrics"
	"scorequorum/srvreg"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WebServer handles HTTP requests for the scoring service
type WebServer struct {
	httpAddr        string
	server          *http.Server
	serviceRegistry *srvreg.ServiceRegistry
	startTime       time.Time
	nodeName        string
}

// NewWebServer creates a new web server
func NewWebServer(httpPort string, serviceRegistry *srvreg.ServiceRegistry, nodeName string) *WebServer {
	mux := http.NewServeMux()

	ws := &WebServer{
		httpAddr: ":" + httpPort,
		server: &http.Server{
			Addr:    ":" + httpPort,
			Handler: mux,
		},
		serviceRegistry: serviceRegistry,
		startTime:       time.Now(),
		nodeName:        nodeName,
	}

	// Register routes
	mux.HandleFunc("/", ws.handleRoot)
	mux.HandleFunc("/info", ws.handleService)
	mux.HandleFunc("/match/", ws.handleService)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	return ws
}

// Start starts the web server
func (ws *WebServer) Start() error {
	log.Printf("🚀 Starting scoring web server")
	log.Printf("   Node: %s", ws.nodeName)
	log.Printf("   Address: %s", ws.httpAddr)

	go func() {
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ Web server error: %v", err)
		}
	}()

	log.Println("✓ Web server started successfully")
	return nil
}

// Shutdown gracefully shuts down the web server
func (ws *WebServer) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	return ws.server.Shutdown(ctx)
}

// handleRoot shows service information
func (ws *WebServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(ws.startTime).Round(time.Second)

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <title>Scorequorum - %s</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; background: #f5f5f5; }
        .container { background: white; padding: 30px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #2c5aa0; margin-top: 0; }
        .info { margin: 20px 0; }
        .label { font-weight: bold; color: #555; }
        .value { color: #333; margin-left: 10px; }
        .endpoints { margin-top: 30px; }
        .endpoint { background: #f8f9fa; padding: 10px; margin: 8px 0; border-radius: 4px; font-family: monospace; }
        .method { font-weight: bold; color: #007bff; margin-right: 10px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>🏏 Ball Scoring Consensus Service</h1>

        <div class="info">
            <div><span class="label">Node:</span><span class="value">%s</span></div>
            <div><span class="label">Uptime:</span><span class="value">%s</span></div>
        </div>

        <div class="endpoints">
            <h3>Available Endpoints:</h3>
            <div class="endpoint"><span class="method">GET</span>/info - Service information</div>
            <div class="endpoint"><span class="method">POST</span>/match/:id/scorers - Assign scorers to a match</div>
            <div class="endpoint"><span class="method">POST</span>/match/:id/balls - Submit a ball entry</div>
            <div class="endpoint"><span class="method">POST</span>/match/:id/resolve - Resolve a disputed delivery</div>
            <div class="endpoint"><span class="method">GET</span>/match/:id/scoring - Scoring status</div>
            <div class="endpoint"><span class="method">GET</span>/metrics - Prometheus metrics</div>
        </div>
    </div>
</body>
</html>
	`, ws.nodeName, ws.nodeName, uptime)

	w.Write([]byte(html))
}

// handleService routes a request through the service registry
func (ws *WebServer) handleService(w http.ResponseWriter, r *http.Request) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req := &srvreg.Request{
		Method:    r.Method,
		Path:      r.URL.Path,
		Body:      string(bodyBytes),
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	}

	response, err := req.GenerateResponse(ws.serviceRegistry)
	if err != nil {
		log.Printf("Error generating response: %v", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	metrics.HTTPRequests.WithLabelValues(r.Method, strconv.Itoa(response.StatusCode)).Inc()

	writeResponse(w, response)
}

// clientIP extracts the client address, preferring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' || xff[i] == ' ' {
				return xff[:i]
			}
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	addr := r.RemoteAddr
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}

// writeResponse writes a Response to http.ResponseWriter
func writeResponse(w http.ResponseWriter, resp *srvreg.Response) {
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(resp.StatusCode)

	w.Write([]byte(resp.Body))
}

// jsonError writes a JSON error response
func jsonError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResp := map[string]string{
		"error": message,
	}
	json.NewEncoder(w).Encode(errorResp)
}
