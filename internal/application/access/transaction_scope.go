package access

import (
	"context"

	"github.com/compmath/schedule-bot/internal/domain/access"
)

// TransactionScope runs a read-modify-write of authorization records in one
// database transaction. If fn returns an error the transaction is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories bound to the current transaction
type TransactionalRepositories interface {
	Users() access.AuthorizedUserRepository
}
