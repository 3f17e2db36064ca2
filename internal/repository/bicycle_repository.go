package repository

import (
	"context"

	"github.com/velobay/velobay-backend/internal/model"
	"gorm.io/gorm"
)

type BicycleFilter struct {
	Brand    string
	MaxPrice int64
	Status   model.BicycleStatus
}

type BicycleRepository interface {
	Create(ctx context.Context, b *model.Bicycle) error
	FindByID(ctx context.Context, id uint64) (*model.Bicycle, error)
	Update(ctx context.Context, b *model.Bicycle) error
	List(ctx context.Context, limit, offset int, f BicycleFilter) ([]model.Bicycle, int64, error)
	ListBySeller(ctx context.Context, sellerID uint64) ([]model.Bicycle, error)
	UpdateStatusIf(ctx context.Context, id uint64, from, to model.BicycleStatus) (int64, error)
	WithTx(tx *gorm.DB) BicycleRepository
}

type bicycleRepository struct {
	db *gorm.DB
}

func NewBicycleRepository(db *gorm.DB) BicycleRepository {
	return &bicycleRepository{db: db}
}

func (r *bicycleRepository) WithTx(tx *gorm.DB) BicycleRepository {
	return &bicycleRepository{db: tx}
}

func (r *bicycleRepository) Create(ctx context.Context, b *model.Bicycle) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *bicycleRepository) FindByID(ctx context.Context, id uint64) (*model.Bicycle, error) {
	var b model.Bicycle
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bicycleRepository) Update(ctx context.Context, b *model.Bicycle) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *bicycleRepository) List(ctx context.Context, limit, offset int, f BicycleFilter) ([]model.Bicycle, int64, error) {
	var (
		list  []model.Bicycle
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.Bicycle{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Brand != "" {
		q = q.Where("brand = ?", f.Brand)
	}
	if f.MaxPrice > 0 {
		q = q.Where("price <= ?", f.MaxPrice)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *bicycleRepository) ListBySeller(ctx context.Context, sellerID uint64) ([]model.Bicycle, error) {
	var list []model.Bicycle
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateStatusIf flips status only when the row is still in the expected
// state; the caller decides from RowsAffected whether it lost a race.
func (r *bicycleRepository) UpdateStatusIf(ctx context.Context, id uint64, from, to model.BicycleStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Bicycle{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
