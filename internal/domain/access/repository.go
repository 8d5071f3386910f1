package access

import "context"

// AuthorizedUserRepository defines the persistence of authorization records
type AuthorizedUserRepository interface {
	// FindByUserID returns the record of a user or shared.ErrNotFound
	FindByUserID(ctx context.Context, userID int64) (*AuthorizedUser, error)

	// FindByUserIDForUpdate is FindByUserID with a row lock where the database supports one
	FindByUserIDForUpdate(ctx context.Context, userID int64) (*AuthorizedUser, error)

	// FindAuthorizedUserIDs returns the ids of all authorized users
	FindAuthorizedUserIDs(ctx context.Context) ([]int64, error)

	// Save creates or updates a record
	Save(ctx context.Context, user *AuthorizedUser) error
}
