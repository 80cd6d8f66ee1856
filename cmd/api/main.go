package main

import (
	"os"

	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/logger"
	"github.com/Anandhu5Uthaman/College-mini/internal/server"
)

// @title College Blog API
// @version 1.0
// @description Accounts, profiles and blogs for the college community

// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// Missing DATABASE_URI or JWT_SECRET ends up here.
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
