package telegram

import (
	"context"

	"github.com/compmath/schedule-bot/internal/infrastructure/telemetry"
)

// Authorizer answers whether a user passed the secret-code gate
type Authorizer interface {
	IsAuthorized(ctx context.Context, userID int64) (bool, error)
}

// AdminChecker answers whether a user is in the admin allow-list
type AdminChecker interface {
	IsAdmin(userID int64) bool
}

// Gate lets only authorized users through. Others get the fixed rejection text.
func Gate(auth Authorizer) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req Request) (Reply, error) {
			ok, err := auth.IsAuthorized(ctx, req.UserID)
			if err != nil {
				return Reply{}, err
			}
			if !ok {
				return Reply{Text: MsgAuthRequired, Status: telemetry.StatusDenied}, nil
			}
			return next(ctx, req)
		}
	}
}

// AdminOnly drops requests from users outside the allow-list without a reply
func AdminOnly(admins AdminChecker) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req Request) (Reply, error) {
			if !admins.IsAdmin(req.UserID) {
				return silent(telemetry.StatusDenied), nil
			}
			return next(ctx, req)
		}
	}
}
