// Package config loads runtime configuration for the reelsync client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "api_version": "v1",
//	  "transport": "http",
//	  "grpc_addr": "127.0.0.1:50051",
//	  "request_timeout": "30s",
//	  "sync_interval": "15m",
//	  "retry_delay": "5s",
//	  "retry_attempts": 3,
//	  "auto_sync": true,
//	  "db_path": "data/reelsync.db",
//	  "log_file": "",
//	  "log_level": "info"
//	}
package config
