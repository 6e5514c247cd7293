package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/scanpilot/internal/flagx"
	"github.com/dmitrijs2005/scanpilot/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "2s" or as integer nanoseconds. Absent keys leave the
// current value untouched, hence the pointers.
type JsonConfig struct {
	APIBaseURL        *string         `json:"api_base_url"`
	PollInterval      *timex.Duration `json:"poll_interval"`
	PollTimeout       *timex.Duration `json:"poll_timeout"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	TokenSafetyMargin *timex.Duration `json:"token_safety_margin"`
	RequestsPerSecond *float64        `json:"requests_per_second"`
	DBPath            *string         `json:"db_path"`
	LogLevel          *string         `json:"log_level"`
	ExportDir         *string         `json:"export_dir"`
	S3                *jsonS3         `json:"s3"`
}

type jsonS3 struct {
	Bucket    string `json:"bucket"`
	Prefix    string `json:"prefix"`
	Region    string `json:"region"`
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without that flag nothing happens. Panics on read or
// unmarshal errors.
func parseJson(cfg *Config, args []string) {
	jsonConfigFile := flagx.JSONConfigPath(args)
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setIf(&cfg.APIBaseURL, jc.APIBaseURL)
	setIf(&cfg.DBPath, jc.DBPath)
	setIf(&cfg.LogLevel, jc.LogLevel)
	setIf(&cfg.ExportDir, jc.ExportDir)
	setIf(&cfg.RequestsPerSecond, jc.RequestsPerSecond)

	if jc.PollInterval != nil {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.PollTimeout != nil {
		cfg.PollTimeout = jc.PollTimeout.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.TokenSafetyMargin != nil {
		cfg.TokenSafetyMargin = jc.TokenSafetyMargin.Duration
	}

	if jc.S3 != nil {
		cfg.S3 = S3Config(*jc.S3)
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
