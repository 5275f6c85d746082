package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/aliskhannn/bsl-quest/internal/config"
	"github.com/aliskhannn/bsl-quest/internal/delivery/telegram"
	"github.com/aliskhannn/bsl-quest/internal/logger"
	"github.com/aliskhannn/bsl-quest/internal/repository"
	"github.com/aliskhannn/bsl-quest/internal/service"
	"github.com/aliskhannn/bsl-quest/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		lg.Fatal("failed to create bot", zap.Error(err))
	}

	// Set commands.
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "learn", Description: "Learn signs with flashcards"},
		{Command: "quiz", Description: "Take a ten-question quiz"},
		{Command: "profile", Description: "Your XP, scores and badges"},
		{Command: "leaderboard", Description: "Top learners"},
		{Command: "reset", Description: "Clear your score history"},
		{Command: "help", Description: "Help"},
	}

	if _, err = bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	bot.Debug = cfg.Env == "local"
	lg.Info("authorized on account", zap.String("username", bot.Self.UserName))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStores, err := openStores(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closeStores()

	banks, err := repository.NewItemBankRepository(cfg.Content.Dir)
	if err != nil {
		lg.Fatal("failed to load item banks", zap.Error(err))
	}

	writes := service.NewWriteQueue(service.WriteQueueConfig{
		QueueSize:  cfg.Writer.QueueSize,
		Workers:    cfg.Writer.Workers,
		MaxRetries: cfg.Writer.MaxRetries,
		Timeout:    cfg.Writer.Timeout,
	}, lg)
	// Runs before the stores close so queued writes are flushed.
	defer writes.Close()

	reminderStorage := storage.NewReminderStorage()

	quizService := service.NewSessionService(
		banks,
		st.mastery,
		service.NewQuestionSelector(nil),
		service.NewScoreRecorder(st.scores, st.xp, lg),
		writes,
		storage.NewSessionStorage[*service.Tracker](),
		lg,
	)
	userService := service.NewUserService(st.users, lg)
	learningService := service.NewLearningService(banks, st.progress, lg)
	profileService := service.NewProfileService(st.scores, st.xp, st.progress, cfg.Leaderboard.Size)
	resetService := service.NewResetService(st.scores, lg)

	// Background jobs stop with ctx and are waited for before writes flush.
	var jobs conc.WaitGroup
	defer jobs.Wait()

	if cfg.Sessions.IdleTimeout > 0 {
		jobs.Go(func() {
			if err := quizService.RunExpiry(ctx, cfg.Sessions.SweepSchedule, cfg.Sessions.IdleTimeout); err != nil {
				lg.Error("session expiry stopped", zap.Error(err))
			}
		})
	}

	if cfg.Reminders.Enabled {
		reminderService := service.NewReminderService(st.reminders, cfg.Reminders.Schedule, lg)
		reminderService.SetNotifier(telegram.NewNotifier(bot, reminderStorage, lg))
		jobs.Go(func() {
			if err := reminderService.Start(ctx); err != nil {
				lg.Error("reminder service stopped", zap.Error(err))
			}
		})
	}

	handler := telegram.NewHandler(
		bot,
		lg,
		cfg.Content.MediaDir,
		reminderStorage,
		userService,
		quizService,
		learningService,
		profileService,
		resetService,
	)
	if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("handler stopped", zap.Error(err))
	}

	// Release background jobs even when the handler stopped on its own.
	stop()
	bot.StopReceivingUpdates()
	lg.Info("shutdown signal received")
}
