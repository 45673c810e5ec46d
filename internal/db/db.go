package db

import (
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/venora-platform/booking-engine/internal/config"
	"github.com/venora-platform/booking-engine/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	gdb, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get sql.DB")
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := gdb.AutoMigrate(
		&models.Store{},
		&models.User{},
		&models.Treatment{},
		&models.Resource{},
		&models.TreatmentResource{},
		&models.Timeslot{},
		&models.Booking{},
		&models.WebhookSubscription{},
		&models.AuditLog{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate")
	}

	gdb.Exec(`
		UPDATE stores
		SET timezone = 'UTC'
		WHERE timezone IS NULL OR timezone = ''
	`)

	return gdb
}
