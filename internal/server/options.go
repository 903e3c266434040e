package server

import (
	"log/slog"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/abhaystar2004/dynamic-form/pkg/notify"
	"github.com/abhaystar2004/dynamic-form/pkg/render"
	"github.com/abhaystar2004/dynamic-form/pkg/schema"
)

// Option configures a Server.
type Option func(*Server)

// WithRegistry sets the schema registry every session selects from.
func WithRegistry(registry *schema.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderers replaces the renderer registry. It must contain the HTML
// renderer named by WithPageRenderer.
func WithRenderers(renderers *render.Registry) Option {
	return func(s *Server) {
		if renderers != nil {
			s.renderers = renderers
		}
	}
}

// WithPageRenderer names the renderer used for the page. Defaults to
// "vanilla".
func WithPageRenderer(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.pageRenderer = name
		}
	}
}

// WithTheme sets the resolved theme passed to page renders.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(s *Server) {
		s.theme = cfg
	}
}

// WithTitle sets the page heading.
func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

// WithNotifyOptions configures every session's notifier.
func WithNotifyOptions(options ...notify.Option) Option {
	return func(s *Server) {
		s.notifyOptions = append(s.notifyOptions, options...)
	}
}

// WithSessionTTL drops sessions idle for longer than ttl. Zero disables
// expiry.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.sessionTTL = ttl
	}
}

// WithMetricsRegistry sets the prometheus registry metrics are registered on
// and served from.
func WithMetricsRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.metricsRegistry = registry
		}
	}
}

// WithNow overrides the clock used for session bookkeeping.
func WithNow(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}
