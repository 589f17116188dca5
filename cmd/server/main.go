package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	router "github.com/vardhanngg/socket-v/internal/adapters/http"
	"github.com/vardhanngg/socket-v/internal/adapters/media"
	"github.com/vardhanngg/socket-v/internal/adapters/probe"
	wsignal "github.com/vardhanngg/socket-v/internal/adapters/signal"
	"github.com/vardhanngg/socket-v/internal/app"
	"github.com/vardhanngg/socket-v/internal/app/orch"
	"github.com/vardhanngg/socket-v/internal/config"
)

var cfgFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "socketv",
		Short:        "Watch-together relay server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config/config.$CONFIG_ENV.yaml)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the WebSocket relay and upload API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			setupLogger(cfg)
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return run(ctx, cfg)
		},
	}
	serve.Flags().Int("port", 0, "HTTP port (overrides config and PORT)")

	root.AddCommand(serve)
	// Running the binary bare starts the server.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	return root
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Mode == "debug" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func policyFor(name string) app.Policy {
	if name == "drop" {
		return app.TolerantPolicy{}
	}
	return app.SimplePolicy{}
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := media.New(cfg.Media)
	if err != nil {
		return fmt.Errorf("media store: %w", err)
	}

	o := orch.New(app.NewRegistry(), app.NewRoomManager(nil), policyFor(cfg.Backpressure))
	limiter := wsignal.NewRateLimiter(cfg.RateLimit.Events, cfg.RateLimit.Interval)
	go limiter.Run(ctx)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.Handler(ctx, cfg, router.Deps{Orch: o, Store: store, Limiter: limiter}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var hp *probe.Probe
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		hp = probe.New()
		go func() {
			if err := hp.Serve(lis); err != nil {
				log.Error().Err(err).Msg("grpc health server error")
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("socket-v server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	if hp != nil {
		hp.SetServing(true)
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("server error")
			if hp != nil {
				hp.Stop()
			}
			return err
		}
	}

	log.Info().Msg("Shutting down")
	if hp != nil {
		hp.Stop()
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}
	log.Info().Msg("Server exited gracefully")
	return nil
}
