package models

import "github.com/compmath/schedule-bot/internal/domain/access"

// AuthorizedUserModel is the persistence model for authorization records
type AuthorizedUserModel struct {
	ID           uint  `gorm:"primaryKey"`
	UserID       int64 `gorm:"not null;uniqueIndex"`
	IsAuthorized bool  `gorm:"not null;index"`
	Attempts     int   `gorm:"not null"`
	IsSubscribed bool  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AuthorizedUserModel) TableName() string {
	return "authorized_user"
}

// ToDomain converts the model to a domain AuthorizedUser
func (m *AuthorizedUserModel) ToDomain() *access.AuthorizedUser {
	return &access.AuthorizedUser{
		ID:           m.ID,
		UserID:       m.UserID,
		IsAuthorized: m.IsAuthorized,
		Attempts:     m.Attempts,
		IsSubscribed: m.IsSubscribed,
	}
}

// AuthorizedUserModelFromDomain converts a domain AuthorizedUser to its model
func AuthorizedUserModelFromDomain(u *access.AuthorizedUser) *AuthorizedUserModel {
	return &AuthorizedUserModel{
		ID:           u.ID,
		UserID:       u.UserID,
		IsAuthorized: u.IsAuthorized,
		Attempts:     u.Attempts,
		IsSubscribed: u.IsSubscribed,
	}
}
