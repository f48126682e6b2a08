package config

import (
	"fmt"
	"time"
)

const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// Config holds runtime settings of the sync client.
type Config struct {
	// ServerURL is the base URL of the HTTP sync API, without the version.
	ServerURL  string
	APIVersion string

	// Transport is TransportHTTP or TransportGRPC.
	Transport string
	GRPCAddr  string

	// RequestTimeout bounds the connect, read and write phases of a push.
	RequestTimeout time.Duration

	SyncInterval  time.Duration
	RetryDelay    time.Duration
	RetryAttempts int
	AutoSync      bool

	DBPath   string
	LogFile  string
	LogLevel string
}

// LoadDefaults populates c with the built-in defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.APIVersion = "v1"
	c.Transport = TransportHTTP
	c.GRPCAddr = "127.0.0.1:50051"
	c.RequestTimeout = 30 * time.Second
	c.SyncInterval = 15 * time.Minute
	c.RetryDelay = 5 * time.Second
	c.RetryAttempts = 3
	c.AutoSync = true
	c.DBPath = "data/reelsync.db"
	c.LogFile = ""
	c.LogLevel = "info"
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportHTTP, TransportGRPC:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync interval must be positive")
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry attempts must not be negative")
	}
	return nil
}

// LoadConfig applies defaults, then the JSON file named by -c/-config, then
// command-line flags. Later sources win.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
