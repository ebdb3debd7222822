package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config     *Config
	configPath string
	version    string
	logOutput  io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithConfigPath enables hot reload of log_level and add_latency from the
// given file.
func WithConfigPath(path string) Option {
	return func(a *application) {
		a.configPath = path
	}
}

// WithVersion sets the version reported to MCP clients.
func WithVersion(version string) Option {
	return func(a *application) {
		a.version = version
	}
}

// WithLogOutput redirects the JSON log stream.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}
