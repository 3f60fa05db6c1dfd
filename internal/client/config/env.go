package config

import "github.com/ilyakaznacheev/cleanenv"

// parseEnv overlays cfg with EVA_* environment variables. Unset variables
// leave the current value untouched.
func parseEnv(cfg *Config) error {
	return cleanenv.ReadEnv(cfg)
}
