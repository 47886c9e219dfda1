package psql

import (
	"context"
	"fmt"
	"helpdesk/helpdesk/config"
	"helpdesk/helpdesk/sources/psql/models"
	"helpdesk/helpdesk/utils/logging"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

// DSN builds the postgres connection string. DATABASE_URL wins when set.
func DSN(cfg config.Config) string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBSSLMode,
	)
}

func NewDatabase(ctx context.Context, cfg config.Config) (*Database, error) {
	logLevel := logger.Error
	if !cfg.IsProduction() {
		logLevel = logger.Warn
	}
	db, err := Open(ctx, postgres.Open(DSN(cfg)), logLevel)
	if err != nil {
		return nil, err
	}

	var currentDB string
	_ = db.DB.WithContext(ctx).Raw("SELECT current_database()").Scan(&currentDB).Error
	logging.AppLogger.Info("Database connected", zap.String("database", currentDB))
	return db, nil
}

// Open connects through any gorm dialector, pings and migrates. Tests pass sqlite here.
func Open(ctx context.Context, dialector gorm.Dialector, logLevel logger.LogLevel) (*Database, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}
	d := &Database{DB: db}
	if err := d.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if err := d.Migrate(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// Migrate creates or updates the conversations and messages tables.
func (db *Database) Migrate(ctx context.Context) error {
	defer logging.LogDuration(ctx, "psql_migrate")()
	err := db.DB.WithContext(ctx).
		AutoMigrate(
			&models.Conversation{},
			&models.Message{},
		)
	if err != nil {
		logging.ErrorLogger.Error("auto-migrate failed", zap.Error(err))
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	return nil
}

func (db *Database) Ping(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (db *Database) Close() {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logging.ErrorLogger.Error("database close failed", zap.Error(err))
	}
}
