package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/skyblockz/sbz-giveaway/application"
	"github.com/skyblockz/sbz-giveaway/bot"
	"github.com/skyblockz/sbz-giveaway/config"
	"github.com/skyblockz/sbz-giveaway/database"
	"github.com/skyblockz/sbz-giveaway/domain/events"
	"github.com/skyblockz/sbz-giveaway/infrastructure"
	"github.com/skyblockz/sbz-giveaway/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()
	configureLogging(cfg)

	log.Info("Starting giveaway bot...")

	// Initialize metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize event publishing; without NATS servers events stay in-process
	var natsClient *infrastructure.NATSClient
	if cfg.NATSServers != "" {
		log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer func() {
			if err := natsClient.Close(); err != nil {
				log.WithError(err).Error("Error closing NATS client")
			}
		}()
	}

	publisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
	if err := publisher.EnsureEventStream(); err != nil {
		return fmt.Errorf("failed to ensure event stream: %w", err)
	}
	uowFactory := infrastructure.NewUnitOfWorkFactory(db, publisher)

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	session, err := bot.NewSession(cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}

	engine := application.NewEngineContext(uowFactory, bot.NewDiscordPlatform(session), application.NewNoticeCache())
	scheduler := application.NewScheduler(engine, application.SchedulerConfig{
		Tick:            cfg.SchedulerTick,
		GateLookahead:   cfg.GateLookahead,
		IndefiniteSweep: cfg.IndefiniteGateSweep,
		NoticeReset:     cfg.NoticeResetInterval,
	})
	router := application.NewEventRouter(engine, cfg.ParticipateEmoji)

	botConfig := bot.Config{
		Token:            cfg.DiscordToken,
		GuildID:          cfg.GuildID,
		ParticipateEmoji: cfg.ParticipateEmoji,
	}
	discordBot, err := bot.New(botConfig, session, engine, router, scheduler)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	announcements := application.NewAnnouncementHandler(discordBot.Announcer())
	uowFactory.RegisterLocalHandler(events.EventTypeDrawingResolved, announcements.HandleDrawingResolved)
	uowFactory.RegisterLocalHandler(events.EventTypeDrawingRerolled, announcements.HandleDrawingRerolled)
	uowFactory.RegisterLocalHandler(events.EventTypeDrawingCanceled, announcements.HandleDrawingCanceled)

	if err := scheduler.Start(ctx); err != nil {
		_ = discordBot.Close()
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	log.WithField("environment", cfg.Environment).Info("Bot is running")
	<-ctx.Done()

	log.Info("Shutting down...")
	scheduler.Stop()

	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down metrics")
	}

	log.Info("Shutdown completed")
	return nil
}

func configureLogging(cfg *config.Config) {
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
