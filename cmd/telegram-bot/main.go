package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/spf13/cobra"

	"taskboard/internal/client"
	"taskboard/internal/config"
	"taskboard/internal/logger"
)

func main() {
	var (
		envFile string
		debug   bool
	)

	cmd := &cobra.Command{
		Use:           "telegram-bot",
		Short:         "Telegram front end for the task API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadClient(envFile)
			if err != nil {
				return err
			}
			if cfg.TelegramToken == "" {
				return errors.New("TELEGRAM_TOKEN is not set")
			}
			if debug {
				logger.SetLevel(logger.LevelDebug)
			}
			return run(cmd.Context(), cfg, debug)
		},
	}
	cmd.Flags().StringVar(&envFile, "env", "", "path to a .env file (default ./.env)")
	cmd.Flags().BoolVar(&debug, "debug", false, "log Telegram API traffic")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Error(ctx, err, "telegram bot stopped")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Client, debug bool) error {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}
	api.Debug = debug
	logger.Info(ctx, "authorized", "bot", api.Self.UserName, "api", cfg.APIURL)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := api.GetUpdatesChan(u)
	if err != nil {
		return fmt.Errorf("get updates: %w", err)
	}
	defer api.StopReceivingUpdates()

	NewBot(api, client.New(cfg.APIURL)).Run(ctx, updates)
	logger.Info(ctx, "shutting down")
	return nil
}
