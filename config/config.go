package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is everything the server reads from the environment. A .env file
// in the working directory is honored when present.
type Config struct {
	Addr           string
	AllowedOrigins []string
	WordsFile      string
	Debug          bool
}

func Load() (Config, error) {
	// Missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	cfg := Config{
		Addr:      ":8080",
		WordsFile: "./words.json",
	}

	if addr, ok := os.LookupEnv("ADDR"); ok {
		cfg.Addr = addr
	}
	if path, ok := os.LookupEnv("WORDS_FILE"); ok {
		cfg.WordsFile = path
	}
	cfg.Debug = os.Getenv("DEBUG") == "true"

	origins, ok := os.LookupEnv("ALLOWED_ORIGINS")
	if !ok || origins == "" {
		return Config{}, fmt.Errorf("missing ALLOWED_ORIGINS")
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	if len(cfg.AllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("ALLOWED_ORIGINS has no usable entries")
	}

	return cfg, nil
}
