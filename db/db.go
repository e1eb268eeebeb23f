// db/db.go
package db

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tracebit-io/tracebit/config"
	"github.com/tracebit-io/tracebit/logging"
	"github.com/tracebit-io/tracebit/model"
)

var DB *gorm.DB

// InitDB opens the event store and migrates the two entities. The driver
// is selected by db.driver: postgres for deployments, sqlite for local
// development. TranslateError is on so unique-index violations surface
// as gorm.ErrDuplicatedKey.
func InitDB() error {
	gormConfig := &gorm.Config{TranslateError: true}

	var err error
	switch driver := config.GetString("db.driver"); driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			config.GetString("db.host"),
			config.GetString("db.port"),
			config.GetString("db.user"),
			config.GetString("db.password"),
			config.GetString("db.name"))
		DB, err = gorm.Open(postgres.Open(dsn), gormConfig)
	case "sqlite", "sqlite3":
		DB, err = gorm.Open(sqlite.Open(config.GetString("db.path")), gormConfig)
	default:
		return fmt.Errorf("unsupported db driver: %s", driver)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := DB.AutoMigrate(&model.AuditLog{}, &model.AlertRule{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	logging.Info("Connected to event store", zap.String("driver", config.GetString("db.driver")))
	return nil
}

func CloseDB() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
