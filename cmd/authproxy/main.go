package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"authproxy/internal/app"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Msg("no .env file loaded")
	}

	service, err := app.NewService(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize service")
	}

	if err := service.Run(); err != nil {
		log.Fatal().Err(err).Msg("service exited with error")
	}
}
