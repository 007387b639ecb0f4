package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hpungsan/tome/internal/browse"
	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/i18n"
	"github.com/hpungsan/tome/internal/metrics"
	"github.com/hpungsan/tome/internal/ops"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Options configures the web UI.
type Options struct {
	Env        *ops.Env
	Gate       *browse.Gate
	Config     *config.Config
	Catalog    *i18n.Catalog
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	Version    string
	SessionTTL time.Duration
}

// NewServer creates and configures the HTTP server for the Tome web UI.
func NewServer(opts Options) (*http.Server, error) {
	h, err := newHandlers(opts)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              opts.Config.Addr(),
		Handler:           h.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

func newHandlers(opts Options) (*Handlers, error) {
	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("template sub-FS: %w", err)
	}

	// Create sub-FS for static files (strip "static/" prefix)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static sub-FS: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cat := opts.Catalog
	if cat == nil {
		if cat, err = i18n.DefaultCatalog(); err != nil {
			return nil, err
		}
	}
	gate := opts.Gate
	if gate == nil {
		gate = &browse.Gate{}
	}

	return &Handlers{
		env:         opts.Env,
		cfg:         opts.Config,
		gate:        gate,
		metrics:     opts.Metrics,
		logger:      logger,
		renderer:    NewRenderer(templateSub, opts.Version, cat, logger),
		sessions:    NewSessions(opts.Env, gate, opts.Config.PageSize, opts.SessionTTL),
		static:      staticSub,
		defaultLang: i18n.ParseOr(opts.Config.DefaultLanguage, i18n.FR),
	}, nil
}

func (h *Handlers) routes() http.Handler {
	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/entries", http.StatusFound)
	})
	mux.HandleFunc("GET /entries", h.HandleEntries)
	mux.HandleFunc("GET /entries/more", h.HandleEntriesMore)
	mux.HandleFunc("GET /entries/new", h.HandleNewEntry)
	mux.HandleFunc("POST /entries", h.HandleCreateEntry)
	mux.HandleFunc("GET /entries/{id}", h.HandleEntry)
	mux.HandleFunc("GET /entries/{id}/edit", h.HandleEditEntry)
	mux.HandleFunc("POST /entries/{id}", h.HandleUpdateEntry)
	mux.HandleFunc("POST /entries/{id}/delete", h.HandleDeleteEntry)
	mux.HandleFunc("POST /entries/{id}/duplicate", h.HandleDuplicateEntry)

	mux.HandleFunc("GET /tags", h.HandleTags)
	mux.HandleFunc("GET /tags/more", h.HandleTagsMore)
	mux.HandleFunc("GET /tags/suggest", h.HandleSuggestTags)
	mux.HandleFunc("POST /tags", h.HandleCreateTag)
	mux.HandleFunc("POST /tags/{id}", h.HandleUpdateTag)
	mux.HandleFunc("POST /tags/{id}/delete", h.HandleDeleteTag)

	mux.HandleFunc("GET /export", h.HandleExport)
	mux.HandleFunc("GET /export.md", h.HandleExportMarkdown)

	mux.HandleFunc("POST /login", h.HandleLogin)
	mux.HandleFunc("POST /logout", h.HandleLogout)
	mux.HandleFunc("POST /hidden", h.HandleShowHidden)
	mux.HandleFunc("GET /lang", h.HandleLanguage)

	mux.Handle("GET /metrics", h.metrics.Handler())

	// Static file server
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(h.static)))

	return securityHeaders(instrument(h.metrics, mux))
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument counts responses by matched route pattern.
func instrument(m *metrics.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(route, rec.status)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("tome UI running", slog.String("url", "http://"+srv.Addr))

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
