package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/compmath/schedule-bot/internal/domain/access"
	"github.com/compmath/schedule-bot/internal/domain/shared"
	"go.uber.org/zap"
)

// Outcome is the result of submitting a secret code
type Outcome int

const (
	// OutcomeAuthorized means the code matched and the user is now authorized
	OutcomeAuthorized Outcome = iota + 1
	// OutcomeRejected means the code did not match
	OutcomeRejected
	// OutcomeBlocked means the user used up every attempt and nothing was compared
	OutcomeBlocked
)

// String returns the outcome name used in logs and metrics
func (o Outcome) String() string {
	switch o {
	case OutcomeAuthorized:
		return "authorized"
	case OutcomeRejected:
		return "rejected"
	case OutcomeBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// SubmitResult describes a code submission after it has been committed
type SubmitResult struct {
	Outcome   Outcome
	Attempts  int
	Remaining int
}

// AuthorizationCache is the read-through cache consulted by IsAuthorized
type AuthorizationCache interface {
	Get(userID int64) (authorized, found bool)
	Set(userID int64, authorized bool)
	Replace(authorizedIDs []int64)
}

// ManagerConfig holds the secret-code gate settings
type ManagerConfig struct {
	SecretCode  string
	Admins      []int64
	MaxAttempts int
}

// AuthorizationManager owns the per-user authorization state machine:
// Unauthorized(attempts) -> Authorized, with a lockout after MaxAttempts
// wrong codes that only an administrator can lift.
//
// Every mutation of a user's record happens under that user's lock and inside
// one transaction; the cache is updated after commit, before the lock is released.
// Cache fills on a miss take the same lock.
type AuthorizationManager struct {
	users       access.AuthorizedUserRepository
	txScope     TransactionScope
	cache       AuthorizationCache
	locks       *userLocks
	secretCode  string
	admins      map[int64]struct{}
	maxAttempts int
	logger      *zap.Logger
}

// NewAuthorizationManager creates a new AuthorizationManager
func NewAuthorizationManager(
	users access.AuthorizedUserRepository,
	txScope TransactionScope,
	cache AuthorizationCache,
	cfg ManagerConfig,
	logger *zap.Logger,
) *AuthorizationManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = access.MaxAttempts
	}
	admins := make(map[int64]struct{}, len(cfg.Admins))
	for _, id := range cfg.Admins {
		admins[id] = struct{}{}
	}

	return &AuthorizationManager{
		users:       users,
		txScope:     txScope,
		cache:       cache,
		locks:       newUserLocks(),
		secretCode:  cfg.SecretCode,
		admins:      admins,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// MaxAttempts returns the configured lockout threshold
func (m *AuthorizationManager) MaxAttempts() int {
	return m.maxAttempts
}

// SubmitCode compares code with the secret for userID, creating the user's
// record on first contact. An already authorized user is not guarded here:
// a matching code re-confirms it and a wrong one changes nothing.
func (m *AuthorizationManager) SubmitCode(ctx context.Context, userID int64, code string) (SubmitResult, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	var (
		result     SubmitResult
		authorized bool
	)
	err := m.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		user, err := getOrCreate(ctx, repos.Users(), userID)
		if err != nil {
			return err
		}

		if !user.IsAuthorized && !user.CanAttempt(m.maxAttempts) {
			result = SubmitResult{Outcome: OutcomeBlocked, Attempts: user.Attempts}
			return nil
		}

		if code == m.secretCode {
			user.Authorize()
			result = SubmitResult{Outcome: OutcomeAuthorized}
		} else {
			user.RecordFailure()
			result = SubmitResult{
				Outcome:   OutcomeRejected,
				Attempts:  user.Attempts,
				Remaining: max(m.maxAttempts-user.Attempts, 0),
			}
		}
		authorized = user.IsAuthorized

		return repos.Users().Save(ctx, user)
	})
	if err != nil {
		m.logger.Error("Failed to submit secret code", zap.Int64("user_id", userID), zap.Error(err))
		return SubmitResult{}, fmt.Errorf("submit code for user %d: %w", userID, err)
	}

	m.cache.Set(userID, authorized)

	switch result.Outcome {
	case OutcomeAuthorized:
		m.logger.Info("User authorized", zap.Int64("user_id", userID))
	case OutcomeRejected:
		m.logger.Warn("Wrong secret code",
			zap.Int64("user_id", userID),
			zap.Int("attempts", result.Attempts),
			zap.Int("remaining", result.Remaining),
		)
	case OutcomeBlocked:
		m.logger.Warn("Code submitted by blocked user", zap.Int64("user_id", userID))
	}
	return result, nil
}

// ResetAttempts clears the attempt counter of target on behalf of adminID.
// It returns ErrNotAdmin for senders outside the allow-list and ErrUserNotFound
// when target has no record.
func (m *AuthorizationManager) ResetAttempts(ctx context.Context, adminID, target int64) error {
	if !m.IsAdmin(adminID) {
		m.logger.Warn("Attempt reset refused", zap.Int64("user_id", adminID), zap.Int64("target_id", target))
		return access.ErrNotAdmin
	}

	unlock := m.locks.Lock(target)
	defer unlock()

	err := m.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		user, err := repos.Users().FindByUserIDForUpdate(ctx, target)
		if errors.Is(err, shared.ErrNotFound) {
			return access.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		user.ResetAttempts()
		return repos.Users().Save(ctx, user)
	})
	if err != nil {
		if errors.Is(err, access.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("reset attempts for user %d: %w", target, err)
	}
	m.logger.Info("Attempts reset", zap.Int64("user_id", adminID), zap.Int64("target_id", target))
	return nil
}

// IsAuthorized reports whether userID passed the gate. A cache miss reads storage
// under the user's lock and caches the answer; users without a record are unauthorized.
func (m *AuthorizationManager) IsAuthorized(ctx context.Context, userID int64) (bool, error) {
	if authorized, found := m.cache.Get(userID); found {
		return authorized, nil
	}

	unlock := m.locks.Lock(userID)
	defer unlock()

	// a transition may have filled the entry while we waited
	if authorized, found := m.cache.Get(userID); found {
		return authorized, nil
	}

	user, err := m.users.FindByUserID(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		m.cache.Set(userID, false)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load user %d: %w", userID, err)
	}

	m.cache.Set(userID, user.IsAuthorized)
	return user.IsAuthorized, nil
}

// IsAdmin reports whether userID is in the admin allow-list
func (m *AuthorizationManager) IsAdmin(userID int64) bool {
	_, ok := m.admins[userID]
	return ok
}

// Warm loads every authorized user into the cache and returns how many there are
func (m *AuthorizationManager) Warm(ctx context.Context) (int, error) {
	ids, err := m.users.FindAuthorizedUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("load authorized users: %w", err)
	}
	m.cache.Replace(ids)
	m.logger.Info("Authorization cache warmed", zap.Int("authorized_users", len(ids)))
	return len(ids), nil
}

// getOrCreate loads the user's record for update, creating it on first contact.
// A concurrent insert of the same user is resolved by reading the winner's row.
func getOrCreate(ctx context.Context, users access.AuthorizedUserRepository, userID int64) (*access.AuthorizedUser, error) {
	user, err := users.FindByUserIDForUpdate(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	user = access.NewAuthorizedUser(userID)
	err = users.Save(ctx, user)
	if errors.Is(err, shared.ErrAlreadyExists) {
		return users.FindByUserIDForUpdate(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
