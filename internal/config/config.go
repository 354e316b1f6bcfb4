// Package config centralizes environment-driven settings. A .env file in the
// working directory is loaded once; explicit environment variables win.
package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var loadOnce sync.Once

// Load reads .env once. Missing files are fine.
func Load() {
	loadOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// Config carries the settings shared by all commands.
type Config struct {
	Provider  string // gemini | groq | fake
	Model     string
	APIKey    string
	WorkDir   string // clones and run artifacts live here
	Catalog   string // catalog file path (ignored with CATALOG_PG_DSN)
	MaxIter   int
	Parallel  int
	LLMRPS    float64
	LLMBurst  int
	RetryBase time.Duration
}

// FromEnv builds a Config from the environment with usable defaults.
func FromEnv() Config {
	Load()
	return Config{
		Provider:  firstNonEmpty(os.Getenv("MCPFORGE_PROVIDER"), "gemini"),
		Model:     firstNonEmpty(os.Getenv("MCPFORGE_MODEL"), "gemini-2.0-flash"),
		APIKey:    firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("GROQ_API_KEY")),
		WorkDir:   firstNonEmpty(os.Getenv("MCPFORGE_WORKDIR"), "work"),
		Catalog:   firstNonEmpty(os.Getenv("MCPFORGE_CATALOG"), "work/catalog.json"),
		MaxIter:   envInt("MCPFORGE_MAX_ITERATIONS", 5),
		Parallel:  envInt("MCPFORGE_PARALLELISM", 4),
		LLMRPS:    envFloat("LLM_RPS", 0),
		LLMBurst:  envInt("LLM_BURST", 1),
		RetryBase: 500 * time.Millisecond,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
