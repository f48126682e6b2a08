package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/flagx"
	"github.com/dmitrijs2005/reelsync/internal/timex"
)

// JsonConfig is the on-disk shape of the client config. Durations accept
// "30s" style strings or integer nanoseconds. Absent fields keep their
// previous value.
type JsonConfig struct {
	ServerURL      *string         `json:"server_url"`
	APIVersion     *string         `json:"api_version"`
	Transport      *string         `json:"transport"`
	GRPCAddr       *string         `json:"grpc_addr"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	SyncInterval   *timex.Duration `json:"sync_interval"`
	RetryDelay     *timex.Duration `json:"retry_delay"`
	RetryAttempts  *int            `json:"retry_attempts"`
	AutoSync       *bool           `json:"auto_sync"`
	DBPath         *string         `json:"db_path"`
	LogFile        *string         `json:"log_file"`
	LogLevel       *string         `json:"log_level"`
}

func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.APIVersion, jc.APIVersion)
	setString(&cfg.Transport, jc.Transport)
	setString(&cfg.GRPCAddr, jc.GRPCAddr)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setDuration(&cfg.SyncInterval, jc.SyncInterval)
	setDuration(&cfg.RetryDelay, jc.RetryDelay)
	if jc.RetryAttempts != nil {
		cfg.RetryAttempts = *jc.RetryAttempts
	}
	if jc.AutoSync != nil {
		cfg.AutoSync = *jc.AutoSync
	}
	setString(&cfg.DBPath, jc.DBPath)
	setString(&cfg.LogFile, jc.LogFile)
	setString(&cfg.LogLevel, jc.LogLevel)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
