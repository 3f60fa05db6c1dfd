// Package config loads runtime configuration for the evadocs CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. EVA_* environment variables, read with cleanenv.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the EVA backend
//	-i int      online status check interval (seconds)
//	-s int      session expiry check interval (seconds)
//	-t int      conversion timeout (seconds)
//	-d string   data directory
//	-o string   output directory
//	-sim        sign and validate locally
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be strings like "30s" or
// integer nanoseconds. Absent keys keep their previous value:
//
//	{
//	  "api_url": "https://eva.itb.edu.ec",
//	  "online_check_interval": "5s",
//	  "session_check_interval": "30s",
//	  "convert_timeout": "60s",
//	  "data_dir": ".evadocs",
//	  "output_dir": "output",
//	  "history_limit": 30,
//	  "simulation": false,
//	  "log_level": "info",
//	  "log_format": "text",
//	  "blob_store": "s3",
//	  "s3": {"bucket": "eva-pdfs", "region": "us-east-1", "endpoint": "http://localhost:9000"}
//	}
package config
