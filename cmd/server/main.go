// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/ytlength/internal/api/connect"
	"github.com/osa030/ytlength/internal/api/rest"
	"github.com/osa030/ytlength/internal/app/report"
	"github.com/osa030/ytlength/internal/infra/config"
	"github.com/osa030/ytlength/internal/infra/logger"
	"github.com/osa030/ytlength/internal/infra/telemetry"
	"github.com/osa030/ytlength/internal/infra/youtube"
)

var version = "dev"

var (
	app        = kingpin.New("ytlength-server", "YouTube playlist duration server")
	configPath = app.Flag("config", "Path to config file (empty: environment only)").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// version command
	versionCmd = app.Command("version", "Print the version and exit")
)

func init() {
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == versionCmd.FullCommand() {
		fmt.Println(version)
		return
	}

	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %q", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx := context.Background()

	tracing, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceVersion: version,
		Exporter:       cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return errors.Wrap(err, "failed to set up telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			zlog.Error().Msgf("Failed to flush traces: %v", err)
		}
	}()

	youtubeClient, err := youtube.New(ctx, youtube.Config{
		APIKey:  cfg.YouTube.APIKey,
		BaseURL: cfg.YouTube.BaseURL,
		Timeout: cfg.UpstreamTimeout(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create YouTube client")
	}

	reports := report.NewService(youtubeClient, cfg.YouTube.PageSize)

	router := rest.NewRouter(rest.NewHandler(reports, cfg.RequestTimeout()))

	playlistPath, playlistHandler := apiconnect.NewPlaylistServiceHandler(
		apiconnect.NewPlaylistService(reports, cfg.RequestTimeout()),
		connect.WithInterceptors(apiconnect.NewLoggingInterceptor()),
	)
	router.Mount(playlistPath, playlistHandler)

	serverAddr := cfg.Server.Addr
	// h2c serves Connect's HTTP/2 clients without TLS
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	serverStartedCh := make(chan struct{})

	go func() {
		zlog.Info().Msgf("Starting server: addr=%s page_size=%d", serverAddr, cfg.YouTube.PageSize)
		close(serverStartedCh)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	<-serverStartedCh
	// Give the server a moment to fully initialize
	time.Sleep(100 * time.Millisecond)

	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return errors.Wrap(err, "server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")

	executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")

	return nil
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
