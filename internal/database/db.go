package database

import (
	"log/slog"
	"strings"
	"time"

	"tzu-threatmodel/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

const (
	maxConnectAttempts = 10
	connectRetryDelay  = 2 * time.Second

	// DSN с этим префиксом открывается через sqlite (локальный запуск, тесты)
	sqlitePrefix = "sqlite:"
)

func dialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, sqlitePrefix) {
		return sqlite.Open(strings.TrimPrefix(dsn, sqlitePrefix))
	}
	return postgres.Open(dsn)
}

// Open открывает соединение одной попыткой и применяет миграции.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(dialector(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open db")
	}
	if strings.HasPrefix(dsn, sqlitePrefix) {
		// одна запись за раз, иначе in-memory база теряет транзакции
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Init подключается к БД с повторами и сохраняет соединение в DB.
func Init(dsn string) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	for i := 1; i <= maxConnectAttempts; i++ {
		slog.Info("trying to connect to DB", "attempt", i, "max_attempts", maxConnectAttempts)

		db, err = Open(dsn)
		if err == nil {
			slog.Info("connected to DB successfully")
			break
		}

		slog.Warn("failed to connect to DB", "err", err)
		time.Sleep(connectRetryDelay)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to db after %d attempts", maxConnectAttempts)
	}

	DB = db
	return db, nil
}

// Migrate создаёт/обновляет таблицы всех моделей.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.InformationSystem{},
		&models.Risk{},
		&models.Remediation{},
		&models.Threat{},
		&models.AuditLog{},
	)
	return errors.Wrap(err, "failed to migrate")
}
