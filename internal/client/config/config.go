package config

import (
	"fmt"
	"time"
)

// Blob store kinds accepted by Config.BlobStore.
const (
	BlobStoreFS = "fs"
	BlobStoreS3 = "s3"
)

// S3Config describes the bucket used when BlobStore is BlobStoreS3.
// Empty credentials fall back to the default AWS credential chain.
type S3Config struct {
	Bucket          string `json:"bucket" env:"EVA_S3_BUCKET"`
	Region          string `json:"region" env:"EVA_S3_REGION"`
	Endpoint        string `json:"endpoint" env:"EVA_S3_ENDPOINT"`
	AccessKeyID     string `json:"access_key_id" env:"EVA_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `json:"secret_access_key" env:"EVA_S3_SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `json:"use_path_style" env:"EVA_S3_PATH_STYLE"`
}

// Config holds runtime settings for the evadocs CLI.
//
// Fields:
//   - APIBaseURL: base URL of the EVA backend, without trailing slash.
//   - OnlineCheckInterval: how often the client probes backend reachability.
//   - SessionCheckInterval: how often the stored session is checked for expiry.
//   - ConvertTimeout: upper bound for a single conversion/upload request.
//   - DataDir: local database and blob directory.
//   - OutputDir: where converted and downloaded files are written.
//   - HistoryLimit: maximum number of local conversion records kept.
//   - Simulation: signing and validation run locally without the backend.
type Config struct {
	APIBaseURL           string        `env:"EVA_API_URL"`
	OnlineCheckInterval  time.Duration `env:"EVA_ONLINE_CHECK_INTERVAL"`
	SessionCheckInterval time.Duration `env:"EVA_SESSION_CHECK_INTERVAL"`
	ConvertTimeout       time.Duration `env:"EVA_CONVERT_TIMEOUT"`
	DataDir              string        `env:"EVA_DATA_DIR"`
	OutputDir            string        `env:"EVA_OUTPUT_DIR"`
	HistoryLimit         int           `env:"EVA_HISTORY_LIMIT"`
	Simulation           bool          `env:"EVA_SIMULATION"`
	LogLevel             string        `env:"EVA_LOG_LEVEL"`
	LogFormat            string        `env:"EVA_LOG_FORMAT"`
	BlobStore            string        `env:"EVA_BLOB_STORE"`
	S3                   S3Config
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000"
	c.OnlineCheckInterval = 5 * time.Second
	c.SessionCheckInterval = 30 * time.Second
	c.ConvertTimeout = 60 * time.Second
	c.DataDir = ".evadocs"
	c.OutputDir = "output"
	c.HistoryLimit = 30
	c.Simulation = false
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.BlobStore = BlobStoreFS
	c.S3 = S3Config{Region: "us-east-1"}
}

// Validate reports settings that would make the client unusable.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api url is empty")
	}
	if c.OnlineCheckInterval <= 0 || c.SessionCheckInterval <= 0 || c.ConvertTimeout <= 0 {
		return fmt.Errorf("intervals and timeouts must be positive")
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history limit must be positive, got %d", c.HistoryLimit)
	}
	switch c.BlobStore {
	case BlobStoreFS:
	case BlobStoreS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3 blob store requires a bucket")
		}
	default:
		return fmt.Errorf("unknown blob store %q", c.BlobStore)
	}
	return nil
}

// LoadConfig constructs a Config from args (os.Args[1:]): defaults first, then
// the JSON file named by -c/-config, then EVA_* environment variables, then
// flags. Later sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
