package openapi

// Options tunes the generated document.
type Options struct {
	Title       string
	Version     string
	Description string
	ServerURL   string
}

// Option mutates Options.
type Option func(*Options)

const (
	defaultTitle   = "Dynamic Form"
	defaultVersion = "1.0.0"
)

func defaultOptions() Options {
	return Options{
		Title:   defaultTitle,
		Version: defaultVersion,
	}
}

// WithTitle overrides info.title.
func WithTitle(title string) Option {
	return func(o *Options) {
		if title != "" {
			o.Title = title
		}
	}
}

// WithVersion overrides info.version.
func WithVersion(version string) Option {
	return func(o *Options) {
		if version != "" {
			o.Version = version
		}
	}
}

// WithDescription sets info.description.
func WithDescription(description string) Option {
	return func(o *Options) {
		o.Description = description
	}
}

// WithServerURL adds a servers entry.
func WithServerURL(url string) Option {
	return func(o *Options) {
		o.ServerURL = url
	}
}
