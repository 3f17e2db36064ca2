package repository

import (
	"context"
	"time"

	"github.com/velobay/velobay-backend/internal/model"
	"gorm.io/gorm"
)

type RefreshTokenRepository interface {
	Create(ctx context.Context, t *model.RefreshToken) error
	FindByHash(ctx context.Context, hash string) (*model.RefreshToken, error)
	RevokeAllActiveByUser(ctx context.Context, userID uint64) (int64, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.RefreshToken, error)
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	WithTx(tx *gorm.DB) RefreshTokenRepository
}

type refreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) WithTx(tx *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: tx}
}

func (r *refreshTokenRepository) Create(ctx context.Context, t *model.RefreshToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *refreshTokenRepository) FindByHash(ctx context.Context, hash string) (*model.RefreshToken, error) {
	var t model.RefreshToken
	if err := r.db.WithContext(ctx).
		Where("token_hash = ?", hash).
		First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *refreshTokenRepository) RevokeAllActiveByUser(ctx context.Context, userID uint64) (int64, error) {
	now := r.db.NowFunc()
	res := r.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, now).
		Update("revoked_at", now)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *refreshTokenRepository) ListByUser(ctx context.Context, userID uint64) ([]model.RefreshToken, error) {
	var list []model.RefreshToken
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteExpiredBefore hard-deletes never-revoked tokens whose expiry is older
// than the cutoff. Revoked rows are handled separately so each class keeps
// its own retention window.
func (r *refreshTokenRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("revoked_at IS NULL AND expires_at < ?", cutoff).
		Delete(&model.RefreshToken{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *refreshTokenRepository) DeleteRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("revoked_at IS NOT NULL AND revoked_at < ?", cutoff).
		Delete(&model.RefreshToken{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
