package server

import (
	"encoding/json"
	"github.com/ValentinKolb/rKV/lib/command"
	"github.com/ValentinKolb/rKV/lib/store"
	"github.com/VictoriaMetrics/metrics"
	"net/http"
	"time"
)

// --------------------------------------------------------------------------
// Server Metrics
// --------------------------------------------------------------------------

// serverMetrics holds the counters of one server instance. Every server has
// its own metrics.Set, so several servers can run in one process (tests).
type serverMetrics struct {
	set *metrics.Set

	connectionsTotal *metrics.Counter
	protocolErrors   *metrics.Counter
	rejectedCommands *metrics.Counter
	getCommands      *metrics.Counter
	setCommands      *metrics.Counter
	getMisses        *metrics.Counter
	commandDuration  *metrics.Histogram
}

// newServerMetrics creates the metrics set. activeConnections is polled when
// the metrics are scraped.
func newServerMetrics(activeConnections func() int) *serverMetrics {
	set := metrics.NewSet()

	set.NewGauge("rkv_connections_active", func() float64 {
		return float64(activeConnections())
	})

	return &serverMetrics{
		set:              set,
		connectionsTotal: set.NewCounter("rkv_connections_total"),
		protocolErrors:   set.NewCounter("rkv_protocol_errors_total"),
		rejectedCommands: set.NewCounter("rkv_rejected_commands_total"),
		getCommands:      set.NewCounter(`rkv_commands_total{command="get"}`),
		setCommands:      set.NewCounter(`rkv_commands_total{command="set"}`),
		getMisses:        set.NewCounter("rkv_get_misses_total"),
		commandDuration:  set.NewHistogram("rkv_command_duration_seconds"),
	}
}

// observeCommand records an executed command
func (m *serverMetrics) observeCommand(cmd *command.Command, miss bool, start time.Time) {
	switch cmd.Type {
	case command.CommandTGet:
		m.getCommands.Inc()
		if miss {
			m.getMisses.Inc()
		}
	case command.CommandTSet:
		m.setCommands.Inc()
	default:
		m.rejectedCommands.Inc()
	}
	m.commandDuration.UpdateDuration(start)
}

// --------------------------------------------------------------------------
// HTTP Endpoint
// --------------------------------------------------------------------------

// newMetricsHandler creates the HTTP handler of the metrics endpoint.
//
//	GET /metrics  metrics in Prometheus text format
//	GET /info     store.Info as JSON
func newMetricsHandler(m *serverMetrics, s store.IStore, debug bool) http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern string, h http.HandlerFunc) {
		if debug {
			h = loggerMiddleware(h)
		}
		mux.HandleFunc(pattern, h)
	}

	handle("GET /metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		m.set.WritePrometheus(w)
	})

	handle("GET /info", func(w http.ResponseWriter, r *http.Request) {
		info, err := s.GetInfo()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(info); err != nil {
			Logger.Errorf("Failed to write store info: %v", err)
		}
	})

	return mux
}

// --------------------------------------------------------------------------
// Middleware (logging)
// --------------------------------------------------------------------------

// responseWriter is a custom ResponseWriter that captures status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggerMiddleware is a middleware that logs HTTP requests
func loggerMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create custom response writer to capture status code
		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		// Process request
		next.ServeHTTP(rw, r)

		// Log the request
		duration := time.Since(start)
		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, duration)
	}
}
