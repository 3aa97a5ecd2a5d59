package mysql

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// withLock adds FOR UPDATE on engines that support it. SQLite, which backs
// the tests, serializes writers at the database level already and rejects
// the clause.
func withLock(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// asDomain maps gorm's not-found to the package-level sentinel of the domain
// the repository serves, so usecases never see driver errors.
func asDomain(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
