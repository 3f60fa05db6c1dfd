package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/evadocs/internal/flagx"
	"github.com/dmitrijs2005/evadocs/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer fields
// distinguish "absent" from zero values so a partial file only overrides
// what it mentions.
type JsonConfig struct {
	APIBaseURL           *string         `json:"api_url"`
	OnlineCheckInterval  *timex.Duration `json:"online_check_interval"`
	SessionCheckInterval *timex.Duration `json:"session_check_interval"`
	ConvertTimeout       *timex.Duration `json:"convert_timeout"`
	DataDir              *string         `json:"data_dir"`
	OutputDir            *string         `json:"output_dir"`
	HistoryLimit         *int            `json:"history_limit"`
	Simulation           *bool           `json:"simulation"`
	LogLevel             *string         `json:"log_level"`
	LogFormat            *string         `json:"log_format"`
	BlobStore            *string         `json:"blob_store"`
	S3                   *S3Config       `json:"s3"`
}

// parseJson overlays cfg with values loaded from the file named by -c or
// -config in args. Without either flag it does nothing.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	jc.apply(cfg)
	return nil
}

func (jc *JsonConfig) apply(cfg *Config) {
	setIf(&cfg.APIBaseURL, jc.APIBaseURL)
	setIf(&cfg.DataDir, jc.DataDir)
	setIf(&cfg.OutputDir, jc.OutputDir)
	setIf(&cfg.HistoryLimit, jc.HistoryLimit)
	setIf(&cfg.Simulation, jc.Simulation)
	setIf(&cfg.LogLevel, jc.LogLevel)
	setIf(&cfg.LogFormat, jc.LogFormat)
	setIf(&cfg.BlobStore, jc.BlobStore)
	setIf(&cfg.S3, jc.S3)

	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.SessionCheckInterval != nil {
		cfg.SessionCheckInterval = jc.SessionCheckInterval.Duration
	}
	if jc.ConvertTimeout != nil {
		cfg.ConvertTimeout = jc.ConvertTimeout.Duration
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
