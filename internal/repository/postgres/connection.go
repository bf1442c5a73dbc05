package postgres

import (
	"github.com/dom/gemrealm/internal/domain"
	"github.com/dom/gemrealm/internal/repository"
	"github.com/samber/oops"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	usernameConstraint = "idx_accounts_username"
	ownerConstraint    = "idx_accounts_single_owner"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	return db, nil
}

// Migrate creates the account and session tables with their unique indexes.
// The partial index on role allows at most one OWNER row.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.Account{}, &domain.Session{}); err != nil {
		return oops.Code("DB_MIGRATE_FAILED").With("operation", "auto migrate").Wrap(err)
	}
	err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ` + ownerConstraint +
		` ON accounts (role) WHERE role = 'OWNER'`).Error
	if err != nil {
		return oops.Code("DB_MIGRATE_FAILED").With("operation", "create owner index").Wrap(err)
	}
	return nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Account: NewAccountRepository(db),
		Session: NewSessionRepository(db),
	}
}
