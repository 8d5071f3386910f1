package access

import "github.com/compmath/schedule-bot/internal/domain/shared"

// MaxAttempts is the number of wrong codes after which a user is locked out
const MaxAttempts = 5

// Access domain errors
var (
	ErrUserNotFound = shared.NewDomainError("USER_NOT_FOUND", "User not found")
	ErrNotAdmin     = shared.NewDomainError("NOT_ADMIN", "Sender is not an administrator")
)

// AuthorizedUser is the authorization record of a Telegram user.
// Records are created lazily and never deleted.
type AuthorizedUser struct {
	ID           uint
	UserID       int64
	IsAuthorized bool
	Attempts     int
	IsSubscribed bool
}

// NewAuthorizedUser creates the initial record for a user: unauthorized, no attempts
func NewAuthorizedUser(userID int64) *AuthorizedUser {
	return &AuthorizedUser{UserID: userID}
}

// CanAttempt reports whether another code may be compared for the user
func (u *AuthorizedUser) CanAttempt(limit int) bool {
	return u.Attempts < limit
}

// Authorize marks the user authorized and clears the attempt counter
func (u *AuthorizedUser) Authorize() {
	u.IsAuthorized = true
	u.Attempts = 0
}

// RecordFailure counts a wrong code. Authorized users are never re-locked.
func (u *AuthorizedUser) RecordFailure() {
	if u.IsAuthorized {
		return
	}
	u.Attempts++
}

// ResetAttempts clears the attempt counter regardless of authorization state
func (u *AuthorizedUser) ResetAttempts() {
	u.Attempts = 0
}
