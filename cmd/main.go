package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KotFed0t/netbuy_report_bot/config"
	"github.com/KotFed0t/netbuy_report_bot/data"
	"github.com/KotFed0t/netbuy_report_bot/data/repository"
	"github.com/KotFed0t/netbuy_report_bot/data/tokenStore"
	"github.com/KotFed0t/netbuy_report_bot/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/netbuy_report_bot/internal/externalApi/contentApi"
	"github.com/KotFed0t/netbuy_report_bot/internal/externalApi/kisApi"
	"github.com/KotFed0t/netbuy_report_bot/internal/reportGenerator/htmlGenerator"
	"github.com/KotFed0t/netbuy_report_bot/internal/reportGenerator/rasterizer"
	"github.com/KotFed0t/netbuy_report_bot/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/netbuy_report_bot/internal/scheduler"
	"github.com/KotFed0t/netbuy_report_bot/internal/service/reportService"
	"github.com/KotFed0t/netbuy_report_bot/internal/tgbot"
	"github.com/KotFed0t/netbuy_report_bot/internal/transport/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("parse config error", slog.String("err", err.Error()))
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	setupLogger(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		slog.Error("netbuy report bot failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	deps := reportService.Deps{}

	var tokens kisApi.TokenStore
	switch cfg.Token.Store {
	case "redis":
		redisClient, err := data.NewRedisClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		tokens = tokenStore.NewRedisStore(redisClient, cfg.Token.RedisKey, cfg.Location())
	default:
		tokens = tokenStore.NewFileStore(cfg.Token.File, cfg.Location())
	}

	deps.Api = kisApi.New(cfg, kisApi.NewTokenProvider(cfg, tokens))

	if cfg.Postgres.Enabled {
		pgClient, err := data.NewPostgresClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer pgClient.Close()
		deps.Repository = repository.NewPostgres(pgClient)
	}

	style := htmlGenerator.DefaultStyle()
	style.Width = cfg.Renderer.Width
	style.Source = cfg.Report.Source
	deps.Renderer = htmlGenerator.New(newRasterizer(cfg), style, cfg.Report.OutputDir, cfg.Report.Name)

	if cfg.Report.XlsxEnabled {
		deps.XlsxGenerator = xslsxGenerator.New(string(style.PositiveColor), string(style.NegativeColor))
	}

	if cfg.ContentApi.Url != "" {
		deps.ContentPoster = contentApi.New(cfg)
	}

	var drive *googleDriveApi.GoogleDriveApi
	if cfg.GoogleDrive.CredentialsFile != "" {
		var err error
		drive, err = googleDriveApi.New(ctx, cfg)
		if err != nil {
			return err
		}
		deps.CloudStorage = drive
	}

	var bot *tgbot.TGBot
	if cfg.Telegram.Token != "" {
		var err error
		bot, err = tgbot.New(cfg)
		if err != nil {
			return err
		}
		deps.Sender = bot
	} else {
		slog.Warn("TELEGRAM_TOKEN is empty, reports are only logged")
		deps.Sender = tgbot.LogSender{}
	}

	reportSrv := reportService.New(cfg, deps)

	if cfg.RunOnce {
		return reportSrv.Run(ctx)
	}

	sched, err := scheduler.New(cfg.Location())
	if err != nil {
		return err
	}
	if err := sched.NewCrontabJob("netbuy report", reportSrv.Run, cfg.Jobs.ReportCrontab, cfg.Renderer.Timeout+5*cfg.API.Timeout); err != nil {
		return err
	}
	if drive != nil {
		if err := sched.NewCrontabJob("drive cleanup", drive.DeleteOldFiles, cfg.Jobs.DriveCleanupCrontab, 0); err != nil {
			return err
		}
	}
	sched.Start()
	defer sched.Stop()

	if next, ok := sched.NextRun("netbuy report"); ok {
		slog.Info("report scheduled", slog.Time("nextRun", next))
	}

	if bot != nil {
		bot.Start(telegram.NewController(reportSrv))
		defer bot.Stop()
	}

	<-ctx.Done()
	slog.Info("shutting down")

	return nil
}

func newRasterizer(cfg *config.Config) htmlGenerator.Rasterizer {
	switch cfg.Renderer.Backend {
	case "chrome":
		return rasterizer.NewChrome(cfg.Renderer.ChromePath, cfg.Renderer.Width)
	default:
		return rasterizer.NewWkhtmltoimage(cfg.Renderer.BinaryPath, cfg.Renderer.Width)
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
