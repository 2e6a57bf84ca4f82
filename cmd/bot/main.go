package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/vnxcius/grumbot/internal/config"
	"github.com/vnxcius/grumbot/internal/http/router"
	"github.com/vnxcius/grumbot/internal/integrations/discord/bot"
	"github.com/vnxcius/grumbot/internal/integrations/discord/commands"
	"github.com/vnxcius/grumbot/internal/listing"
	"github.com/vnxcius/grumbot/internal/logging"
	"github.com/vnxcius/grumbot/internal/minecraft"
	"github.com/vnxcius/grumbot/internal/reporting"
	"github.com/vnxcius/grumbot/internal/servers"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, logFile, err := logging.SetupLogger(logging.Options{
		Level:    cfg.LogLevel,
		FilePath: cfg.LogsPath,
		Timezone: cfg.LogTimezone,
	})
	if err != nil {
		log.Fatalf("failed to set up logger: %v", err)
	}
	defer logFile.Close()
	logger.Info("Loaded environment", "environment", cfg.Environment, "version", version)

	reporter, err := reporting.New(reporting.Options{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     version,
	})
	if err != nil {
		fatal(logger, "Failed to set up error reporting", err)
	}
	defer reporter.Flush(5 * time.Second)

	registry, err := servers.Load(logger, cfg.ServersPath)
	if err != nil {
		fatal(logger, "Failed to load servers", err)
	}

	fetcher := minecraft.NewFetcher(
		logger,
		minecraft.JavaPinger{Timeout: cfg.StatusTimeout},
		minecraft.QueryClient{Timeout: cfg.QueryTimeout},
	)
	service := listing.NewService(logger, registry, fetcher, listing.Composer{Network: cfg.NetworkName}, reporter)

	invocationTimeout := time.Duration(minecraft.MaxStatusAttempts)*cfg.StatusTimeout + cfg.QueryTimeout + 5*time.Second
	handler := commands.NewHandler(logger, service, reporter, invocationTimeout)

	discord, err := bot.New(logger, bot.Options{
		Token:    cfg.BotToken,
		Activity: cfg.BotActivity,
		Commands: []*discordgo.ApplicationCommand{commands.ListCommand(registry.SelectableNames())},
	}, handler)
	if err != nil {
		fatal(logger, "Failed to create bot", err)
	}
	if err := discord.Open(); err != nil {
		fatal(logger, "Failed to connect to Discord", err)
	}
	defer discord.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var httpServer *http.Server
	if cfg.APIEnabled {
		httpServer, err = startAPI(ctx, logger, cfg, service)
		if err != nil {
			fatal(logger, "Failed to start API", err)
		}
	}

	<-ctx.Done()
	logger.Info("Shutting down...")

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown error", "error", err)
		}
	}
	logger.Info("Fin!")
}

func startAPI(ctx context.Context, logger *slog.Logger, cfg *config.Config, service *listing.Service) (*http.Server, error) {
	switch cfg.Environment {
	case "development":
		gin.SetMode(gin.DebugMode)
	case "production":
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := router.NewRouter(ctx, logger, service, router.Options{
		Token:          cfg.Token,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:         net.JoinHostPort("", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server on port " + cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
		}
	}()
	return httpServer, nil
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
