// Package server is the HTTP front end: one form controller per browser
// session, the page rendered server-side, and every user action applied as a
// form POST.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhaystar2004/dynamic-form/pkg/controller"
	"github.com/abhaystar2004/dynamic-form/pkg/events"
	"github.com/abhaystar2004/dynamic-form/pkg/notify"
	"github.com/abhaystar2004/dynamic-form/pkg/openapi"
	"github.com/abhaystar2004/dynamic-form/pkg/render"
	"github.com/abhaystar2004/dynamic-form/pkg/renderers/tui"
	"github.com/abhaystar2004/dynamic-form/pkg/renderers/vanilla"
	"github.com/abhaystar2004/dynamic-form/pkg/schema"
)

const defaultShutdownTimeout = 5 * time.Second

// HTTPConfig carries listener settings for Run.
type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server routes requests to per-session controllers.
type Server struct {
	registry        *schema.Registry
	logger          *slog.Logger
	renderers       *render.Registry
	pageRenderer    string
	theme           *theme.RendererConfig
	title           string
	notifyOptions   []notify.Option
	sessionTTL      time.Duration
	metricsRegistry *prometheus.Registry
	now             func() time.Time

	bus      *events.Bus
	sessions *sessionStore
	metrics  *metrics
	openapi  []byte
	router   *mux.Router
}

// New builds a server. Without options it serves the built-in forms through
// the vanilla HTML renderer.
func New(options ...Option) (*Server, error) {
	s := &Server{
		registry:     schema.Builtin(),
		logger:       slog.New(slog.DiscardHandler),
		pageRenderer: "vanilla",
		now:          time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}

	if s.renderers == nil {
		page, err := vanilla.New(vanilla.WithTheme(s.theme))
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.renderers = render.NewRegistry()
		s.renderers.MustRegister(page)
		s.renderers.MustRegister(tui.NewTextRenderer())
	}
	if !s.renderers.Has(s.pageRenderer) {
		return nil, fmt.Errorf("server: page renderer %q is not registered", s.pageRenderer)
	}
	if s.metricsRegistry == nil {
		s.metricsRegistry = prometheus.NewRegistry()
	}

	s.bus = events.NewBus(s.logger)
	s.sessions = newSessionStore(s.newController, s.logger, s.sessionTTL, s.now)

	m, err := newMetrics(s.metricsRegistry, func() float64 { return float64(s.sessions.len()) })
	if err != nil {
		return nil, fmt.Errorf("server: register metrics: %w", err)
	}
	s.metrics = m
	s.metrics.observe(s.bus)

	doc, err := openapi.Build(s.registry, openapi.WithTitle(s.title))
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	if s.openapi, err = doc.MarshalJSON(); err != nil {
		return nil, fmt.Errorf("server: encode openapi: %w", err)
	}

	s.routes()
	return s, nil
}

func (s *Server) newController(logger *slog.Logger) (*controller.Controller, error) {
	return controller.New(
		controller.WithRegistry(s.registry),
		controller.WithBus(s.bus),
		controller.WithLogger(logger),
		controller.WithNotifyOptions(s.notifyOptions...),
	)
}

// Bus returns the event bus shared by every session controller.
func (s *Server) Bus() *events.Bus {
	return s.bus
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close stops every session's command loop.
func (s *Server) Close() {
	s.sessions.closeAll()
}

// Run listens on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, cfg HTTPConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	defer s.Close()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()
	if s.sessionTTL > 0 {
		go s.sweep(ctx, s.sessionTTL)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.sessions.sweep(); removed > 0 {
				s.logger.Info("expired sessions removed", "count", removed)
			}
		}
	}
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/", s.handlePage).Methods(http.MethodGet)
	r.HandleFunc("/form-type", s.action(s.selectFormType)).Methods(http.MethodPost)
	r.HandleFunc("/fields", s.action(s.changeField)).Methods(http.MethodPost)
	r.HandleFunc("/submit", s.action(s.submit)).Methods(http.MethodPost)
	r.HandleFunc("/entries/{index}/edit", s.action(s.editEntry)).Methods(http.MethodPost)
	r.HandleFunc("/entries/{index}/delete", s.action(s.deleteEntry)).Methods(http.MethodPost)
	r.HandleFunc("/notification/dismiss", s.action(s.dismiss)).Methods(http.MethodPost)

	r.HandleFunc("/api/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/api/forms", s.handleForms).Methods(http.MethodGet)
	r.HandleFunc("/openapi.json", s.handleOpenAPI).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.metricsRegistry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", http.FileServerFS(vanilla.AssetsFS())))

	s.router = r
}
