package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config     *Config
	configPath string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithConfigPath enables the configuration file watcher: provider changes
// written to the file at path are picked up while the server runs.
func WithConfigPath(path string) Option {
	return func(a *application) {
		a.configPath = path
	}
}
