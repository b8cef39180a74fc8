package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"trackmystartup/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB initializes the database connection and brings the schema up to date.
func InitDB(s *Settings) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		s.DBHost,
		s.DBUser,
		s.DBPassword,
		s.DBName,
		s.DBPort,
		s.DBSSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:      logger.Error,
				SlowThreshold: time.Second,
			},
		),
	})
	if err != nil {
		logrus.Fatal("Failed to connect to database: ", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatal("Failed to get database instance: ", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db

	if !s.DBAutoMigrate {
		return
	}

	// Prefer the versioned SQL migrations; fall back to gorm's auto migration
	// when the migrations directory is not shipped next to the binary.
	if _, statErr := os.Stat(s.MigrationsDir); statErr == nil {
		if err := ExecuteMigrations(s.MigrationsDir); err != nil {
			logrus.Fatal("Failed to run migrations: ", err)
		}
		return
	}

	logrus.Warnf("Migrations directory %q not found, using auto migration", s.MigrationsDir)
	if err := DB.AutoMigrate(models.All()...); err != nil {
		logrus.Fatal("Failed to migrate database: ", err)
	}
}
