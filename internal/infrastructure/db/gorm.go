package db

import (
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"caisse-core/internal/domain/audit"
	"caisse-core/internal/domain/caisse"
	"caisse-core/internal/domain/contribution"
	"caisse-core/internal/domain/ledger"
	"caisse-core/internal/domain/loan"
	"caisse-core/internal/domain/member"
	"caisse-core/internal/domain/notification"
	"caisse-core/internal/domain/reserve"
	"caisse-core/internal/domain/transfer"
)

func OpenGorm(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
	db, err := gorm.Open(mysql.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	log.Info().Msg("gorm: connected")
	return db, nil
}

// Migrate creates or updates every table the engine persists.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&caisse.Caisse{},
		&member.Member{},
		&loan.Loan{},
		&loan.Installment{},
		&ledger.Movement{},
		&reserve.Account{},
		&reserve.Movement{},
		&transfer.Transfer{},
		&contribution.Contribution{},
		&notification.Notification{},
		&audit.Entry{},
	)
}
