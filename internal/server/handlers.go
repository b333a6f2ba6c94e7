package server

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/maximewewer/leontp-stats/internal/config"
	"github.com/maximewewer/leontp-stats/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers contains HTTP request handlers
type Handlers struct {
	config   *config.Config
	registry *prometheus.Registry
	health   *Health
	metrics  http.Handler
	now      func() time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(cfg *config.Config, registry *prometheus.Registry, health *Health) *Handlers {
	return &Handlers{
		config:   cfg,
		registry: registry,
		health:   health,
		metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{
			ErrorLog:      &loggerAdapter{},
			ErrorHandling: promhttp.ContinueOnError,
		}),
		now: time.Now,
	}
}

// MetricsHandler serves Prometheus metrics
func (h *Handlers) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

// HealthHandler returns 200 while status queries succeed, 503 otherwise
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ok, resp := h.health.Snapshot(h.now())

	w.Header().Set("Content-Type", "application/json")
	if ok {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("server", "Failed to encode health response", err)
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>LeoNTP Stats</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        h1 { color: #333; }
        ul { list-style-type: none; padding: 0; }
        li { margin: 10px 0; }
        a { color: #0066cc; text-decoration: none; }
        a:hover { text-decoration: underline; }
        .info { background-color: #f0f0f0; padding: 15px; border-radius: 5px; }
    </style>
</head>
<body>
    <h1>LeoNTP Stats</h1>
    <div class="info">
        <h2>Available Endpoints:</h2>
        <ul>
            <li><a href="/metrics">/metrics</a> - Prometheus metrics</li>
            <li><a href="/health">/health</a> - Health check</li>
        </ul>
        <h2>Configuration:</h2>
        <ul>
            <li>Device: {{.Target}}</li>
            <li>Query interval: {{.Interval}}</li>
            <li>Query timeout: {{.Timeout}}</li>
            <li>InfluxDB push: {{.Influx}}</li>
            <li>Offset probe: {{.Offset}}</li>
        </ul>
    </div>
</body>
</html>`))

type indexData struct {
	Target   string
	Interval time.Duration
	Timeout  time.Duration
	Influx   string
	Offset   string
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

// IndexHandler serves the index page
func (h *Handlers) IndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)

	data := indexData{
		Target:   h.config.Target(),
		Interval: h.config.Options.WatchInterval,
		Timeout:  h.config.LeoNTP.Timeout,
		Influx:   onOff(h.config.Options.SendToInfluxDB),
		Offset:   onOff(h.config.Options.CheckOffset),
	}
	if err := indexTemplate.Execute(w, data); err != nil {
		logger.Error("server", "Failed to render index", err)
	}
}

// loggerAdapter adapts pkg/logger to promhttp logger interface
type loggerAdapter struct{}

func (l *loggerAdapter) Println(v ...interface{}) {
	parts := make([]string, 0, len(v))
	for _, val := range v {
		switch x := val.(type) {
		case string:
			parts = append(parts, x)
		case error:
			parts = append(parts, x.Error())
		}
	}
	logger.Error("promhttp", strings.Join(parts, " "), nil)
}
