package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/simman/go-hasrequest/internal/config"
	"github.com/simman/go-hasrequest/internal/server"
	"github.com/simman/go-hasrequest/pkg/logger"
)

func newServeCmd() *cobra.Command {
	var configPath string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the capturing proxy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, addr)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides server.addr")
	return cmd
}

func runServe(ctx context.Context, configPath, addr string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(configPath); err != nil {
			return err
		}
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logCloser, err := logger.InitLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { logCloser.Close() }()

	log.Info().
		Str("version", appVersion).
		Str("config", configPath).
		Msg("starting hasrequest capture proxy")

	srv := server.NewServer(cfg)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	if configPath != "" {
		watcher, err := config.NewWatcher(configPath, func(newCfg *config.Config) error {
			if addr != "" {
				newCfg.Server.Addr = addr
			}
			if cfg.Logging != newCfg.Logging {
				closer, err := logger.InitLogger(newCfg.Logging.Level, newCfg.Logging.Format, newCfg.Logging.Output)
				if err != nil {
					return fmt.Errorf("failed to reinitialize logger: %w", err)
				}
				logCloser.Close()
				logCloser = closer
			}
			if err := srv.Reload(newCfg); err != nil {
				return fmt.Errorf("failed to reload server: %w", err)
			}
			cfg = newCfg
			return nil
		})
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	log.Info().Str("addr", srv.Addr()).Msg("hasrequest is ready")

	<-ctx.Done()
	log.Info().Msg("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
		return err
	}

	log.Info().Msg("hasrequest stopped gracefully")
	return nil
}
