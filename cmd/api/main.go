package main

import (
	"flag"
	"os"

	"github.com/yigit/unicampus/internal/bootstrap"
	"github.com/yigit/unicampus/internal/pkg/logger"
	"github.com/yigit/unicampus/internal/server"
)

func main() {
	configPath := flag.String("config", bootstrap.DefaultConfigPath, "path to the YAML config file")
	flag.Parse()

	srv, err := server.NewServer(*configPath)
	if err != nil {
		// Setup failures are logged where they happen
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
