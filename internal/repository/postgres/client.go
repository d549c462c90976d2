package postgres

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wiederlebendig/lead-attribution-service/internal/config"
	"github.com/wiederlebendig/lead-attribution-service/internal/domain"
)

// Client wraps the gorm connection to the lead/spend store
type Client struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewClient connects to Postgres and migrates the tables this service owns.
func NewClient(cfg *config.Postgres, log *zap.Logger) (*Client, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)

	log.Info("Connecting to Postgres",
		zap.String("host", cfg.Host),
		zap.String("port", cfg.Port),
		zap.String("database", cfg.Database))

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := db.AutoMigrate(&domain.Lead{}, &domain.SpendRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	log.Info("Postgres connection established successfully")

	return &Client{db: db, log: log}, nil
}

// DB returns the underlying gorm handle
func (c *Client) DB() *gorm.DB {
	return c.db
}
