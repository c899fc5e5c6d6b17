package migrate

import (
	"context"
	"fmt"

	"github.com/brightpath/academy-backend/pkg/config"
	"github.com/brightpath/academy-backend/pkg/db"
	"github.com/brightpath/academy-backend/pkg/db/models"
	"github.com/brightpath/academy-backend/pkg/logger"
)

// MaybeRunDev auto-migrates the schema in development when the flag is set.
// SQLite setups use GORM AutoMigrate since goose migrations target Postgres.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg == nil || client == nil {
		return fmt.Errorf("config and db client are required")
	}
	if !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if cfg.App.IsProd() {
		return fmt.Errorf("auto-migrate is disabled in prod")
	}

	if cfg.FeatureFlags.UseSQLite {
		if err := client.DB().WithContext(ctx).AutoMigrate(AllModels()...); err != nil {
			return fmt.Errorf("auto migrate sqlite schema: %w", err)
		}
		if logg != nil {
			logg.Info(ctx, "sqlite schema auto-migrated")
		}
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql db handle: %w", err)
	}
	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return err
	}
	if logg != nil {
		logg.Info(ctx, "dev migrations applied")
	}
	return nil
}

// AllModels lists every persisted model for AutoMigrate-based setups.
func AllModels() []any {
	return []any{
		&models.User{},
		&models.LevelThreshold{},
		&models.Artifact{},
		&models.InventoryItem{},
		&models.Notification{},
		&models.XPEvent{},
		&models.Course{},
		&models.Lesson{},
		&models.CourseProgress{},
		&models.LessonCompletion{},
		&models.Certificate{},
		&models.Quiz{},
		&models.QuizAttemptRecord{},
		&models.Challenge{},
		&models.ChallengeProgress{},
		&models.CalendarEvent{},
		&models.EventRegistration{},
		&models.BonusTask{},
		&models.BonusSubmission{},
		&models.Mentor{},
		&models.MentoringBooking{},
	}
}
