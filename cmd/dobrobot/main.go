package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mkuznetsova/dobrobot/internal/api"
	"github.com/mkuznetsova/dobrobot/internal/bot"
	"github.com/mkuznetsova/dobrobot/internal/card"
	"github.com/mkuznetsova/dobrobot/internal/config"
	"github.com/mkuznetsova/dobrobot/internal/db"
	"github.com/mkuznetsova/dobrobot/internal/dialog"
	"github.com/mkuznetsova/dobrobot/internal/gateway"
	"github.com/mkuznetsova/dobrobot/internal/generation"
	"github.com/mkuznetsova/dobrobot/internal/imagegen"
	"github.com/mkuznetsova/dobrobot/internal/llm"
	"github.com/mkuznetsova/dobrobot/internal/repository"
	"github.com/mkuznetsova/dobrobot/internal/scheduler"
	"github.com/mkuznetsova/dobrobot/internal/service"
	"github.com/mkuznetsova/dobrobot/internal/session"
)

const version = "0.3.0"

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd creates the top-level "dobrobot" command. Running it without a
// subcommand starts the bot.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dobrobot",
		Short: "Telegram bot that drafts posts and content plans for NGOs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
		SilenceUsage: true,
	}

	root.AddCommand(newMigrateCmd(), newVersionCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(_ *cobra.Command, _ []string) error {
			// Migrating does not need the bot token.
			dbPath := config.Default().DBPath
			if v := os.Getenv("DOBROBOT_DB_PATH"); v != "" {
				dbPath = v
			}
			database, err := db.OpenDB(dbPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer database.Close()
			return db.Migrate(database)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger()

	// Open database and apply migrations.
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()
	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	// Wire repositories and the unit of work.
	orgRepo := repository.NewSQLiteOrganizationRepo(database)
	planRepo := repository.NewSQLiteContentPlanRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	// Wire generation collaborators.
	llmCfg := llm.LoadConfig()
	var observer llm.Observer = llm.NoopObserver{}
	if llmCfg.LogCalls {
		observer = llm.NewLogObserver(os.Stderr)
	}
	completer := llm.NewClient(llmCfg, observer)
	images := imagegen.NewClient(imagegen.LoadConfig())
	cards := card.NewRenderer(card.LoadConfig())
	orchestrator := generation.NewOrchestrator(completer, images, cards, logger)

	// Wire services.
	orgSvc := service.NewOrganizationService(orgRepo)
	planSvc := service.NewPlanService(planRepo, uow)

	// Wire the Telegram gateway and the dialog machine.
	gw := gateway.NewTelegram(cfg.BotToken, logger)
	sessions := session.NewMemoryStore()
	machine := dialog.NewMachine(orchestrator, orgSvc, planSvc, logger)
	b := bot.New(gw, sessions, machine, logger)

	// Wire the publication reminder sweep.
	notifySvc := service.NewNotificationService(planRepo, gw, cfg.Lookahead, logger)
	notifier := scheduler.NewNotifier(notifySvc, cfg.CheckInterval, logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier.Start(ctx)
	defer notifier.Stop()

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewServer(notifier, version, logger).Router(),
	}
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("bot started", "version", version)
	b.Run(ctx)
	logger.Info("bot stopped")
	return nil
}

// newLogger picks text output on a terminal and JSON otherwise.
func newLogger() *slog.Logger {
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, nil)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	return slog.New(handler)
}
