package config

import (
	"fmt"
	"time"

	"foodgram-backend/internal/utils"
	"foodgram-backend/internal/utils/logging"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormWriter routes gorm's logger through zerolog.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...any) {
	logging.Info().Str("component", "gorm").Msgf(format, args...)
}

func gormLogger() logger.Interface {
	level := logger.Warn
	if utils.IsDevelopment() {
		level = logger.Info
	}
	return logger.New(gormWriter{}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func ConnectDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		utils.GetConfig("DB_HOST"),
		utils.GetConfig("DB_USER"),
		utils.GetConfig("DB_PASSWORD"),
		utils.GetConfig("DB_NAME"),
		utils.GetConfig("DB_PORT"),
		utils.GetConfig("DB_SSLMODE"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	logging.Info().
		Str("host", utils.GetConfig("DB_HOST")).
		Str("database", utils.GetConfig("DB_NAME")).
		Msg("database connected")
	return db, nil
}
