package server

import "time"

type Config struct {
	// ListenAddr is the HTTP listen address for the API and dashboard.
	ListenAddr string `koanf:"listen"`

	// StaticDir, when set, is served at / so the dashboard can be hosted by
	// the same process.
	StaticDir string `koanf:"static_dir"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// MaxBodyBytes caps analyze request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// DefaultConfig returns the settings used by `safeecho serve` with no config file.
func DefaultConfig() Config {
	return Config{
		ListenAddr:      ":5000",
		ShutdownTimeout: 10 * time.Second,
		MaxBodyBytes:    1 << 20,
	}
}
