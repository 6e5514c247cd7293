package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/scanpilot/internal/flagx"
)

const defaultEnvFile = ".env"

// parseEnv overlays Config with SCANPILOT_* variables.
//
// Values come from an env file (-e/-env, else ./.env when it exists) and the
// process environment; the process environment wins, as with
// godotenv.Load. A file named explicitly must exist.
func parseEnv(cfg *Config, args []string, lookup func(string) (string, bool)) {
	file := flagx.EnvFilePath(args)
	explicit := file != ""
	if !explicit {
		file = defaultEnvFile
	}

	fileVals, err := godotenv.Read(file)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			panic(fmt.Errorf("read env file %s: %w", file, err))
		}
		fileVals = map[string]string{}
	}

	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := fileVals[key]
		return v, ok
	}

	str := func(key string, dst *string) {
		if v, ok := get(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		v, ok := get(key)
		if !ok || v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", key, err))
		}
		*dst = d
	}

	str("SCANPILOT_API_URL", &cfg.APIBaseURL)
	str("SCANPILOT_DB_PATH", &cfg.DBPath)
	str("SCANPILOT_LOG_LEVEL", &cfg.LogLevel)
	str("SCANPILOT_EXPORT_DIR", &cfg.ExportDir)
	dur("SCANPILOT_POLL_INTERVAL", &cfg.PollInterval)
	dur("SCANPILOT_POLL_TIMEOUT", &cfg.PollTimeout)
	dur("SCANPILOT_REQUEST_TIMEOUT", &cfg.RequestTimeout)

	if v, ok := get("SCANPILOT_RATE_LIMIT"); ok && v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			panic(fmt.Errorf("SCANPILOT_RATE_LIMIT: %w", err))
		}
		cfg.RequestsPerSecond = rps
	}

	str("SCANPILOT_S3_BUCKET", &cfg.S3.Bucket)
	str("SCANPILOT_S3_PREFIX", &cfg.S3.Prefix)
	str("SCANPILOT_S3_REGION", &cfg.S3.Region)
	str("SCANPILOT_S3_ENDPOINT", &cfg.S3.Endpoint)
	str("SCANPILOT_S3_ACCESS_KEY", &cfg.S3.AccessKey)
	str("SCANPILOT_S3_SECRET_KEY", &cfg.S3.SecretKey)
}
