package persistence

import (
	"context"

	appaccess "github.com/compmath/schedule-bot/internal/application/access"
	"github.com/compmath/schedule-bot/internal/domain/access"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appaccess.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Users returns the authorization repository bound to the transaction
func (r *gormTransactionalRepositories) Users() access.AuthorizedUserRepository {
	return NewGormAuthorizedUserRepository(r.tx)
}

var (
	_ appaccess.TransactionScope          = (*GormTransactionScope)(nil)
	_ appaccess.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
