package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/velobay/velobay-backend/internal/model"
	"github.com/velobay/velobay-backend/internal/repository"
	"gorm.io/gorm"
)

type BicycleInput struct {
	Brand       string
	Model       string
	Year        int
	Condition   string
	Description string
	Price       int64
}

type BicycleService interface {
	Create(ctx context.Context, sellerID uint64, in BicycleInput) (*model.Bicycle, error)
	Update(ctx context.Context, id, sellerID uint64, in BicycleInput) (*model.Bicycle, error)
	Publish(ctx context.Context, id, sellerID uint64) (*model.Bicycle, error)
	Archive(ctx context.Context, id, sellerID uint64) (*model.Bicycle, error)
	Get(ctx context.Context, id uint64) (*model.Bicycle, error)
	List(ctx context.Context, limit, offset int, f repository.BicycleFilter) ([]model.Bicycle, int64, error)
	ListBySeller(ctx context.Context, sellerID uint64) ([]model.Bicycle, error)

	IsAvailable(ctx context.Context, id uint64) (bool, error)
	MarkSold(ctx context.Context, id uint64) error
	RevertToAvailable(ctx context.Context, bicycleID, orderID uint64) error
}

type bicycleService struct {
	repo      repository.BicycleRepository
	orderRepo repository.OrderRepository
}

func NewBicycleService(repo repository.BicycleRepository, orderRepo repository.OrderRepository) BicycleService {
	return &bicycleService{repo: repo, orderRepo: orderRepo}
}

func validateBicycleInput(in BicycleInput) error {
	if strings.TrimSpace(in.Brand) == "" || len(in.Brand) > 120 {
		return fmt.Errorf("%w: invalid brand", ErrValidation)
	}
	if strings.TrimSpace(in.Model) == "" || len(in.Model) > 120 {
		return fmt.Errorf("%w: invalid model", ErrValidation)
	}
	if in.Year < 1900 || in.Year > time.Now().Year()+1 {
		return fmt.Errorf("%w: invalid year", ErrValidation)
	}
	if in.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	return nil
}

func (s *bicycleService) Create(ctx context.Context, sellerID uint64, in BicycleInput) (*model.Bicycle, error) {
	if sellerID == 0 {
		return nil, fmt.Errorf("%w: seller is required", ErrValidation)
	}
	if err := validateBicycleInput(in); err != nil {
		return nil, err
	}
	b := &model.Bicycle{
		SellerID:    sellerID,
		Brand:       strings.TrimSpace(in.Brand),
		Model:       strings.TrimSpace(in.Model),
		Year:        in.Year,
		Condition:   strings.TrimSpace(in.Condition),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Status:      model.BicycleStatusDraft,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *bicycleService) Update(ctx context.Context, id, sellerID uint64, in BicycleInput) (*model.Bicycle, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.SellerID != sellerID {
		return nil, fmt.Errorf("%w: not the listing owner", ErrForbidden)
	}
	if b.Status == model.BicycleStatusSold {
		return nil, fmt.Errorf("%w: listing already sold", ErrConflict)
	}
	if err := validateBicycleInput(in); err != nil {
		return nil, err
	}
	b.Brand = strings.TrimSpace(in.Brand)
	b.Model = strings.TrimSpace(in.Model)
	b.Year = in.Year
	b.Condition = strings.TrimSpace(in.Condition)
	b.Description = strings.TrimSpace(in.Description)
	b.Price = in.Price
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *bicycleService) Publish(ctx context.Context, id, sellerID uint64) (*model.Bicycle, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.SellerID != sellerID {
		return nil, fmt.Errorf("%w: not the listing owner", ErrForbidden)
	}
	if b.Status != model.BicycleStatusDraft && b.Status != model.BicycleStatusPending {
		return nil, fmt.Errorf("%w: only drafts can be published", ErrConflict)
	}
	b.Status = model.BicycleStatusAvailable
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *bicycleService) Archive(ctx context.Context, id, sellerID uint64) (*model.Bicycle, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.SellerID != sellerID {
		return nil, fmt.Errorf("%w: not the listing owner", ErrForbidden)
	}
	if b.Status == model.BicycleStatusSold {
		return nil, fmt.Errorf("%w: listing already sold", ErrConflict)
	}
	b.Status = model.BicycleStatusArchived
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *bicycleService) Get(ctx context.Context, id uint64) (*model.Bicycle, error) {
	return s.find(ctx, id)
}

func (s *bicycleService) List(ctx context.Context, limit, offset int, f repository.BicycleFilter) ([]model.Bicycle, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if f.Status == "" {
		f.Status = model.BicycleStatusAvailable
	}
	return s.repo.List(ctx, limit, offset, f)
}

func (s *bicycleService) ListBySeller(ctx context.Context, sellerID uint64) ([]model.Bicycle, error) {
	return s.repo.ListBySeller(ctx, sellerID)
}

func (s *bicycleService) IsAvailable(ctx context.Context, id uint64) (bool, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return false, err
	}
	return b.Status == model.BicycleStatusAvailable, nil
}

// MarkSold is an idempotent no-op when the bicycle is already sold, so a
// replayed call reports success instead of a conflict.
func (s *bicycleService) MarkSold(ctx context.Context, id uint64) error {
	rows, err := s.repo.UpdateStatusIf(ctx, id, model.BicycleStatusAvailable, model.BicycleStatusSold)
	if err != nil {
		return err
	}
	if rows == 1 {
		return nil
	}
	b, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if b.Status == model.BicycleStatusSold {
		return nil
	}
	return fmt.Errorf("%w: bicycle is not available", ErrConflict)
}

// RevertToAvailable flips sold back to available, but only when the
// triggering order is still the newest one for the bicycle.
func (s *bicycleService) RevertToAvailable(ctx context.Context, bicycleID, orderID uint64) error {
	newest, err := s.orderRepo.IsNewestForBicycle(ctx, bicycleID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return err
	}
	if !newest {
		return fmt.Errorf("%w: a newer order exists for this bicycle", ErrConflict)
	}
	rows, err := s.repo.UpdateStatusIf(ctx, bicycleID, model.BicycleStatusSold, model.BicycleStatusAvailable)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: bicycle is not sold", ErrConflict)
	}
	return nil
}

func (s *bicycleService) find(ctx context.Context, id uint64) (*model.Bicycle, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: bicycle not found", ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}
