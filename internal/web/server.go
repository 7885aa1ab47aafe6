package web

import (
	"context"
	"embed"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cusc/copywriter/internal/auth"
	"github.com/cusc/copywriter/internal/config"
	"github.com/cusc/copywriter/internal/snapshot"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Deps are the collaborators shared by all handlers.
type Deps struct {
	Store    *snapshot.Store
	Gate     *auth.Gate
	Sessions *auth.Sessions
	Config   *config.Config
	BaseDir  string
	Logger   *slog.Logger
	Version  string
}

// NewHandler builds the routed, middleware-wrapped handler for the web UI.
func NewHandler(deps Deps) (http.Handler, error) {
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("template sub-FS: %w", err)
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static sub-FS: %w", err)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Sessions == nil {
		deps.Sessions = auth.NewSessions()
	}

	renderer, err := NewRenderer(templateSub, deps.Version, deps.Logger)
	if err != nil {
		return nil, err
	}

	h := &Handlers{
		store:      deps.Store,
		gate:       deps.Gate,
		sessions:   deps.Sessions,
		cfg:        deps.Config,
		baseDir:    deps.BaseDir,
		logger:     deps.Logger,
		renderer:   renderer,
		selections: make(map[string]*snapshot.Selection),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /login", h.HandleLoginPage)
	mux.HandleFunc("POST /login", h.HandleLogin)
	mux.HandleFunc("POST /logout", h.HandleLogout)

	private := http.NewServeMux()
	private.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/courses", http.StatusFound)
	})
	private.HandleFunc("GET /courses", h.HandleCoursePage)
	private.HandleFunc("GET /events", h.HandleEventPage)
	private.HandleFunc("POST /courses/generate", h.HandleGenerateCourse)
	private.HandleFunc("POST /events/generate", h.HandleGenerateEvent)
	private.HandleFunc("POST /clipboard", h.HandleCopy)
	private.HandleFunc("GET /snapshots", h.HandleListSnapshots)
	private.HandleFunc("POST /snapshots", h.HandleSaveSnapshot)
	private.HandleFunc("GET /snapshots/export", h.HandleExport)
	private.HandleFunc("POST /snapshots/import", h.HandleImport)
	private.HandleFunc("POST /snapshots/{id}/rename", h.HandleRename)
	private.HandleFunc("DELETE /snapshots/{id}", h.HandleDelete)
	private.HandleFunc("POST /snapshots/{id}/delete", h.HandleDelete)
	private.HandleFunc("GET /api/catalog", h.HandleCatalog)
	mux.Handle("/", h.requireSession(private))

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	return securityHeaders(mux), nil
}

// NewServer creates the HTTP server for the web UI.
func NewServer(deps Deps, bind string, port int) (*http.Server, error) {
	handler, err := NewHandler(deps)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
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

// Run serves until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("web UI running", "url", "http://"+srv.Addr)
	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down web UI")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
