package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"gnsslog/internal/metrics"
	"gnsslog/internal/parser"
	"gnsslog/internal/report"
	"gnsslog/internal/task"
)

const defaultMaxUpload = 256 << 20

// Deps are the services behind the HTTP API. Logs, Notices and Metrics may be
// nil; the matching endpoints are then not registered.
type Deps struct {
	Status         *Status
	Pool           *task.Pool
	Logs           *LogBuffer
	Notices        *Broadcaster
	Metrics        *metrics.Metrics
	MaxUploadBytes int64
}

// ParseResponse is returned by POST /api/parse.
type ParseResponse struct {
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
	DurationMs float64        `json:"duration_ms"`
	Report     report.Report  `json:"report"`
	Epochs     []parser.Epoch `json:"epochs,omitempty"`
	Messages   map[string]int `json:"messages"`
}

func newParseResponse(e task.Entry, withEpochs bool) ParseResponse {
	resp := ParseResponse{
		ID:         e.ID,
		Name:       e.Name,
		DurationMs: float64(e.Duration.Microseconds()) / 1000,
		Report:     e.Report,
		Messages:   e.Result.Messages,
	}
	if withEpochs {
		resp.Epochs = e.Result.Epochs
	}
	return resp
}

func Handler(d Deps) http.Handler {
	mux := http.NewServeMux()
	maxUpload := d.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}

	handle := func(pattern string, h http.Handler) {
		mux.Handle(pattern, instrument(d.Metrics, pattern, h))
	}

	handle("/api/status", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, d.Status.Snapshot(time.Now().UTC()))
	}))

	handle("/api/parse", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if d.Pool == nil {
			http.Error(w, "parser unavailable", http.StatusServiceUnavailable)
			return
		}
		name := strings.TrimSpace(r.URL.Query().Get("name"))
		body := http.MaxBytesReader(w, r.Body, maxUpload)
		e, err := d.Pool.Run(r.Context(), name, body)
		if err != nil {
			var tooBig *http.MaxBytesError
			switch {
			case errors.As(err, &tooBig):
				http.Error(w, "recording too large", http.StatusRequestEntityTooLarge)
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				http.Error(w, "request cancelled", http.StatusServiceUnavailable)
			default:
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			return
		}
		writeJSON(w, http.StatusOK, newParseResponse(e, r.URL.Query().Get("epochs") != "false"))
	}))

	handle("/api/results/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/results/"), "/")
		if id == "" || d.Pool == nil {
			http.NotFound(w, r)
			return
		}
		e, ok := d.Pool.Get(id)
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, newParseResponse(e, r.URL.Query().Get("epochs") != "false"))
	}))

	if d.Logs != nil {
		handle("/api/logs", d.Logs.Handler())
	}
	handle("/api/about", AboutHandler())
	if d.Notices != nil {
		// Not instrumented: the recorder would hide the Hijacker.
		mux.Handle("/api/ws", NoticesHandler(d.Notices))
	}
	if d.Metrics != nil {
		mux.Handle("/metrics", d.Metrics.Handler())
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	})

	return mux
}

const indexHTML = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>gnsslog</title></head>
<body>
<h1>gnsslog</h1>
<p>Upload a recording with <code>curl --data-binary @rec.ubx 'http://HOST/api/parse?name=rec.ubx'</code>.</p>
<ul>
<li><a href="/api/status">/api/status</a></li>
<li><a href="/api/logs?format=text">/api/logs</a></li>
<li><a href="/api/about">/api/about</a></li>
<li><a href="/metrics">/metrics</a></li>
</ul>
</body>
</html>
`

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

func instrument(m *metrics.Metrics, endpoint string, h http.Handler) http.Handler {
	if m == nil {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		h.ServeHTTP(rec, r)
		m.HTTPRequest(endpoint, rec.code)
	})
}

// Serve runs the API until ctx is cancelled.
func Serve(ctx context.Context, listenAddr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		// Uploads of large recordings take a while.
		ReadTimeout:    5 * time.Minute,
		WriteTimeout:   5 * time.Minute,
		IdleTimeout:    30 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MiB
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
