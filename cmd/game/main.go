package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/tatianab/lone-garrison/internal/config"
	"github.com/tatianab/lone-garrison/internal/engine"
	"github.com/tatianab/lone-garrison/internal/models"
	"github.com/tatianab/lone-garrison/internal/tui"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	logFile, err := os.OpenFile("lone-garrison.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Printf("Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := zerolog.New(logFile).With().Timestamp().Logger()

	eng, err := engine.New(ctx, engine.Options{
		APIKey: cfg.GeminiAPIKey,
		Lang:   cfg.Lang,
		Logger: logger,
	})
	if err != nil {
		fmt.Printf("Error creating engine: %v\n", err)
		os.Exit(1)
	}
	defer eng.Close()

	store := models.NewStore(cfg.SaveDir)

	if err := tui.Run(eng, store); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
