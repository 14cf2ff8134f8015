package app

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"cpperf/internal/alerting"
	"cpperf/internal/api"
	"cpperf/internal/config"
	"cpperf/internal/service"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Out    io.Writer
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger(), Out: os.Stdout}
}

func (a *App) newNotifier() alerting.Notifier {
	if !a.Config.Alerting.Enabled || !a.Config.Alerting.Telegram.Enabled {
		return nil
	}
	cfg := a.Config.Alerting.Telegram
	return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, a.Config.Alerting.Timeout, a.Logger)
}

func (a *App) newService(workers int, notifier alerting.Notifier) (*service.Service, error) {
	params, err := a.Config.Params()
	if err != nil {
		return nil, err
	}
	return service.New(params, service.Options{Workers: a.Config.ResolveWorkers(workers)}, notifier, a.Logger)
}

// Serve runs the HTTP API until interrupted.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, err := a.newService(0, nil)
	if err != nil {
		return err
	}

	server := api.New(svc, api.Options{
		ListenAddr:      a.Config.API.ListenAddr,
		ReadTimeout:     a.Config.API.ReadTimeout,
		ShutdownTimeout: a.Config.API.ShutdownTimeout,
		MaxUploadMB:     a.Config.API.MaxUploadMB,
	}, a.Logger)

	a.Logger.Info().Msg("starting api server")
	err = server.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("api server terminated with error")
		return err
	}

	a.Logger.Info().Msg("api server stopped")
	return nil
}

// CalculateOptions hold parameters for the calculate command.
type CalculateOptions struct {
	Paths      []string
	CSVPath    string
	XLSXPath   string
	JSONPath   string
	Workers    int
	ShowEvents bool
}

// StatsOptions configure the stats command.
type StatsOptions struct {
	Path string
}
