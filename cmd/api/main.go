package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/brightpath/academy-backend/api/routes"
	"github.com/brightpath/academy-backend/internal/access"
	"github.com/brightpath/academy-backend/internal/auth"
	"github.com/brightpath/academy-backend/internal/bonuses"
	"github.com/brightpath/academy-backend/internal/challenges"
	"github.com/brightpath/academy-backend/internal/courses"
	"github.com/brightpath/academy-backend/internal/economy"
	"github.com/brightpath/academy-backend/internal/events"
	"github.com/brightpath/academy-backend/internal/levels"
	"github.com/brightpath/academy-backend/internal/mentoring"
	"github.com/brightpath/academy-backend/internal/notifications"
	"github.com/brightpath/academy-backend/internal/quizzes"
	"github.com/brightpath/academy-backend/internal/subscription"
	"github.com/brightpath/academy-backend/internal/users"
	"github.com/brightpath/academy-backend/pkg/config"
	"github.com/brightpath/academy-backend/pkg/db"
	"github.com/brightpath/academy-backend/pkg/logger"
	"github.com/brightpath/academy-backend/pkg/migrate"
	"github.com/brightpath/academy-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	deps, err := buildDeps(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(*deps),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		graceCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "error during shutdown", err)
		}
	}
}

func buildDeps(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (*routes.Deps, error) {
	userRepo := users.NewRepository(dbClient.DB())
	noteRepo := notifications.NewRepository(dbClient.DB())
	levelRepo := levels.NewRepository(dbClient.DB())
	artifactRepo := economy.NewArtifactRepository(dbClient.DB())
	inventoryRepo := economy.NewInventoryRepository(dbClient.DB())
	xpEventRepo := economy.NewXPEventRepository(dbClient.DB())

	granter, err := economy.NewGranter(economy.GranterParams{
		LevelRepo:        levelRepo,
		UserRepo:         userRepo,
		XPEventRepo:      xpEventRepo,
		NotificationRepo: noteRepo,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := auth.NewHasher(cfg.Password)
	if err != nil {
		return nil, err
	}
	authService, err := auth.NewService(auth.ServiceParams{
		Logger:   logg,
		UserRepo: userRepo,
		Hasher:   hasher,
		JWT:      cfg.JWT,
	})
	if err != nil {
		return nil, err
	}

	subscriptionService, err := subscription.NewService(subscription.ServiceParams{
		Logger:           logg,
		DB:               dbClient,
		UserRepo:         userRepo,
		NotificationRepo: noteRepo,
		WarnWindowDays:   cfg.Rewards.ExpiryWarnDays,
	})
	if err != nil {
		return nil, err
	}

	notificationService, err := notifications.NewService(noteRepo, nil)
	if err != nil {
		return nil, err
	}

	economyService, err := economy.NewService(economy.ServiceParams{
		Logger:           logg,
		DB:               dbClient,
		UserRepo:         userRepo,
		ArtifactRepo:     artifactRepo,
		InventoryRepo:    inventoryRepo,
		XPEventRepo:      xpEventRepo,
		NotificationRepo: noteRepo,
		Granter:          granter,
		DailyClaimXP:     cfg.Rewards.DailyClaimXP,
		LootBoxMinXP:     cfg.Rewards.LootBoxMinXP,
		LootBoxMaxXP:     cfg.Rewards.LootBoxMaxXP,
		BoostDuration:    cfg.Rewards.BoostDuration,
		Rand:             rand.New(rand.NewSource(time.Now().UnixNano())),
	})
	if err != nil {
		return nil, err
	}

	courseService, err := courses.NewService(courses.ServiceParams{
		Logger:           logg,
		DB:               dbClient,
		Repo:             courses.NewRepository(dbClient.DB()),
		UserRepo:         userRepo,
		NotificationRepo: noteRepo,
		Granter:          granter,
	})
	if err != nil {
		return nil, err
	}

	quizService, err := quizzes.NewService(quizzes.ServiceParams{
		Logger:           logg,
		DB:               dbClient,
		Repo:             quizzes.NewRepository(dbClient.DB()),
		UserRepo:         userRepo,
		NotificationRepo: noteRepo,
		Granter:          granter,
	})
	if err != nil {
		return nil, err
	}

	challengeService, err := challenges.NewService(challenges.ServiceParams{
		Logger:           logg,
		DB:               dbClient,
		Repo:             challenges.NewRepository(dbClient.DB()),
		UserRepo:         userRepo,
		NotificationRepo: noteRepo,
		Granter:          granter,
	})
	if err != nil {
		return nil, err
	}

	eventService, err := events.NewService(events.ServiceParams{
		Logger:           logg,
		DB:               dbClient,
		Repo:             events.NewRepository(dbClient.DB()),
		UserRepo:         userRepo,
		NotificationRepo: noteRepo,
		Granter:          granter,
	})
	if err != nil {
		return nil, err
	}

	bonusService, err := bonuses.NewService(bonuses.ServiceParams{
		Logger:           logg,
		DB:               dbClient,
		Repo:             bonuses.NewRepository(dbClient.DB()),
		UserRepo:         userRepo,
		NotificationRepo: noteRepo,
		Granter:          granter,
	})
	if err != nil {
		return nil, err
	}

	mentoringService, err := mentoring.NewService(mentoring.ServiceParams{
		Logger:   logg,
		Repo:     mentoring.NewRepository(dbClient.DB()),
		UserRepo: userRepo,
		Allowances: access.Allowances{
			Premium: cfg.Rewards.PremiumBookings,
			VIP:     cfg.Rewards.VIPBookings,
		},
	})
	if err != nil {
		return nil, err
	}

	return &routes.Deps{
		Config:              cfg,
		Logger:              logg,
		DBPing:              dbClient.Ping,
		RedisPing:           redisClient.Ping,
		Redis:               redisClient,
		AuthService:         authService,
		UserRepo:            userRepo,
		SubscriptionService: subscriptionService,
		NotificationService: notificationService,
		EconomyService:      economyService,
		CourseService:       courseService,
		QuizService:         quizService,
		ChallengeService:    challengeService,
		EventService:        eventService,
		BonusService:        bonusService,
		MentoringService:    mentoringService,
		LevelRepo:           levelRepo,
	}, nil
}
