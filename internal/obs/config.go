// Package obs holds the ambient, non-domain concerns wired around the core
// db/repl packages: environment-driven configuration and the error/state
// dump helpers used when something goes internally wrong.
package obs

import "os"

// Config is the small set of knobs read from the environment at process
// start, mirroring the teacher's os.Getenv("ENV") dev/prod switch — there
// is no config-file parser here, same as upstream.
type Config struct {
	// LogLevel is one of "debug", "info", "warn", "error". Defaults to "info".
	LogLevel string
	// Prompt is printed before each input line. Defaults to "> ".
	Prompt string
}

// LoadConfig reads Config from the environment, applying defaults for
// anything unset.
func LoadConfig() Config {
	cfg := Config{
		LogLevel: "info",
		Prompt:   "> ",
	}
	if v := os.Getenv("YMIRDB_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("YMIRDB_PROMPT"); v != "" {
		cfg.Prompt = v
	}
	return cfg
}
