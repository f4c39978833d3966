package config

import (
	"os"

	"github.com/tatianab/lone-garrison/internal/models"
)

// Config holds the application configuration.
type Config struct {
	// GeminiAPIKey enables the generative narrator. Optional; the game
	// runs fully offline without it.
	GeminiAPIKey string
	// SaveDir is where save slots live.
	SaveDir string
	// Lang selects the command language, "en" or "zh".
	Lang models.Language
	// Addr is the listen address for the remote-play server.
	Addr string
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() *Config {
	cfg := &Config{
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		SaveDir:      os.Getenv("LONE_SAVE_DIR"),
		Lang:         models.Language(os.Getenv("LONE_LANG")),
		Addr:         os.Getenv("LONE_ADDR"),
	}
	if cfg.SaveDir == "" {
		cfg.SaveDir = ".saves"
	}
	if cfg.Lang != models.LangZH {
		cfg.Lang = models.LangEN
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	return cfg
}
