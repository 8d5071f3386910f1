package persistence

import (
	"context"
	"errors"

	"github.com/compmath/schedule-bot/internal/domain/access"
	"github.com/compmath/schedule-bot/internal/domain/shared"
	"github.com/compmath/schedule-bot/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAuthorizedUserRepository implements AuthorizedUserRepository using GORM
type GormAuthorizedUserRepository struct {
	db *gorm.DB
}

// NewGormAuthorizedUserRepository creates a new GormAuthorizedUserRepository
func NewGormAuthorizedUserRepository(db *gorm.DB) *GormAuthorizedUserRepository {
	return &GormAuthorizedUserRepository{db: db}
}

// FindByUserID finds the record of a Telegram user
func (r *GormAuthorizedUserRepository) FindByUserID(ctx context.Context, userID int64) (*access.AuthorizedUser, error) {
	return r.findByUserID(r.db.WithContext(ctx), userID)
}

// FindByUserIDForUpdate finds the record and locks its row on PostgreSQL.
// SQLite has no row locks; its writers are serialized by the database itself.
func (r *GormAuthorizedUserRepository) FindByUserIDForUpdate(ctx context.Context, userID int64) (*access.AuthorizedUser, error) {
	query := r.db.WithContext(ctx)
	if isPostgres(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.findByUserID(query, userID)
}

func (r *GormAuthorizedUserRepository) findByUserID(query *gorm.DB, userID int64) (*access.AuthorizedUser, error) {
	var model models.AuthorizedUserModel
	if err := query.Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAuthorizedUserIDs returns the ids of all authorized users
func (r *GormAuthorizedUserRepository) FindAuthorizedUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&models.AuthorizedUserModel{}).
		Where("is_authorized = ?", true).
		Order("user_id").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Save creates the record when it has no ID yet and updates every column otherwise
func (r *GormAuthorizedUserRepository) Save(ctx context.Context, user *access.AuthorizedUser) error {
	model := models.AuthorizedUserModelFromDomain(user)
	db := r.db.WithContext(ctx)

	if model.ID == 0 {
		// ON CONFLICT keeps a PostgreSQL transaction usable when another process won the insert
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(model)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrAlreadyExists
		}
		user.ID = model.ID
		return nil
	}

	return db.Select("*").Updates(model).Error
}

var _ access.AuthorizedUserRepository = (*GormAuthorizedUserRepository)(nil)
