package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/tatianab/lone-garrison/internal/config"
	"github.com/tatianab/lone-garrison/internal/server"
)

func main() {
	cfg := config.LoadConfig()
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	srv := server.New(server.Options{
		APIKey: cfg.GeminiAPIKey,
		Lang:   cfg.Lang,
		Logger: logger,
	})
	if err := srv.ListenAndServe(cfg.Addr); err != nil {
		fmt.Printf("Error running server: %v\n", err)
		os.Exit(1)
	}
}
