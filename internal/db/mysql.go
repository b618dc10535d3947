package db

import (
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"clientdesk/internal/config"
	"clientdesk/internal/model"
)

// NewMySQL returns a connected GORM DB instance with the pool sized from cfg.
func NewMySQL(cfg config.MySQLConfig) (*gorm.DB, error) {
	dsn, err := withFoundRows(cfg.DSN)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("mysql pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// withFoundRows makes UPDATE report matched rather than changed rows, so a
// write that changes nothing is not mistaken for a missing row.
func withFoundRows(dsn string) (string, error) {
	parsed, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	parsed.ClientFoundRows = true
	return parsed.FormatDSN(), nil
}

// Models lists every table in dependency order: referenced tables first.
func Models() []interface{} {
	return []interface{}{&model.User{}, &model.Client{}}
}

// Migrate creates or updates the schema. With reset it drops the tables first.
func Migrate(db *gorm.DB, reset bool) error {
	if reset {
		models := Models()
		// drop dependents before the tables they reference
		for i := len(models) - 1; i >= 0; i-- {
			if err := db.Migrator().DropTable(models[i]); err != nil {
				return fmt.Errorf("drop table: %w", err)
			}
		}
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
