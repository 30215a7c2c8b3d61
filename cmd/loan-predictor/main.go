package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mikey/loan-predictor/internal/di"
	"github.com/mikey/loan-predictor/internal/ports"
	"github.com/mikey/loan-predictor/internal/schema"
)

func main() {
	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Build the dependency injection container
	container, err := di.BuildContainer(*configFile)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	server ports.Server,
	store ports.ArtifactStore,
	registry *schema.Registry,
) error {
	defer logger.Sync()
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close artifact store", zap.Error(err))
		}
	}()

	// Fail fast on a broken schema instead of on the first request
	if _, err := registry.Get(); err != nil {
		logger.Error("Failed to load schema", zap.Error(err))
		return err
	}

	// Start the server
	if err := server.Start(); err != nil {
		logger.Error("Failed to start server", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if err := server.Stop(); err != nil {
		logger.Error("Failed to stop server", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return nil
}
