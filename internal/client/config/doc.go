// Package config loads runtime configuration for the ScanPilot CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, optionally seeded from an env file selected
//     with -e or -env (default ./.env when present). Real environment
//     variables win over the file.
//  3. Optional JSON file selected via flags: -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the ScanPilot API
//	-p int      status poll interval (seconds)
//	-t int      status poll timeout (seconds)
//	-d string   local database path
//
// Environment
//
//	SCANPILOT_API_URL, SCANPILOT_DB_PATH, SCANPILOT_LOG_LEVEL,
//	SCANPILOT_EXPORT_DIR, SCANPILOT_POLL_INTERVAL, SCANPILOT_POLL_TIMEOUT,
//	SCANPILOT_REQUEST_TIMEOUT, SCANPILOT_RATE_LIMIT,
//	SCANPILOT_S3_BUCKET, SCANPILOT_S3_PREFIX, SCANPILOT_S3_REGION,
//	SCANPILOT_S3_ENDPOINT, SCANPILOT_S3_ACCESS_KEY, SCANPILOT_S3_SECRET_KEY
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "2s"
// or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://scanpilot.example.com",
//	  "poll_interval": "2s",
//	  "poll_timeout": "2m",
//	  "request_timeout": "30s",
//	  "requests_per_second": 5,
//	  "db_path": "scanpilot.db",
//	  "log_level": "debug",
//	  "export_dir": "exports",
//	  "s3": {"bucket": "results", "region": "eu-central-1"}
//	}
package config
