package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KevinKickass/OpenCameraCore/internal/auth"
	"github.com/KevinKickass/OpenCameraCore/internal/config"
	"github.com/KevinKickass/OpenCameraCore/internal/device/sim"
	"github.com/KevinKickass/OpenCameraCore/internal/system"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "camerad",
		Short:         "camerad: camera control daemon",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "path to the config file")

	cmd.AddCommand(&cobra.Command{
		Use:   "devices",
		Short: "List the devices of the configured backend and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listDevices(cmd, configPath)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "token",
		Short: "Generate an API token and the hash for server.api_token_hash",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, hash, err := auth.GenerateToken()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token: %s\napi_token_hash: %s\n", token, hash)
			return nil
		},
	})
	return cmd
}

func serve(configPath string) error {
	// Config laden
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Logger initialisieren
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("Config loaded successfully", zap.String("path", configPath))

	// Geräte-Backend
	lib, err := openLibrary(cfg, logger)
	if err != nil {
		return err
	}

	// Lifecycle Manager
	lifecycle := system.NewLifecycleManager(cfg, lib, logger)

	// System starten
	if err := lifecycle.Start(); err != nil {
		return fmt.Errorf("failed to start system: %w", err)
	}

	logger.Info("OpenCameraCore started successfully")

	// Graceful Shutdown auf Signal oder per API
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received")
	case <-lifecycle.Done():
		logger.Info("OpenCameraCore stopped via API")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := lifecycle.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
		return err
	}

	logger.Info("OpenCameraCore stopped successfully")
	return nil
}

func listDevices(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	lib, err := openLibrary(cfg, zap.NewNop())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Server.ShutdownTimeout)
	defer cancel()

	devices, err := lib.ListDevices(ctx)
	if err != nil {
		return err
	}
	for _, d := range devices {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", d.Name, d.Port)
	}
	return nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Log.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openLibrary loads the simulator fixture. Without a fixture file the
// built-in demo cameras are used.
func openLibrary(cfg *config.Config, logger *zap.Logger) (*sim.Library, error) {
	fixture, err := sim.Load(cfg.Device.Fixture)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Fixture not found, using demo devices", zap.String("path", cfg.Device.Fixture))
		fixture, err = sim.Demo()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load device fixture: %w", err)
	}
	return sim.NewLibrary(fixture, logger.Named("sim")), nil
}
