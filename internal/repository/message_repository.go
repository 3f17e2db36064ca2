package repository

import (
	"context"
	"time"

	"github.com/velobay/velobay-backend/internal/model"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, m *model.Message) error
	FindByID(ctx context.Context, id uint64) (*model.Message, error)
	ListThread(ctx context.Context, bicycleID, buyerID uint64) ([]model.Message, error)
	ListByParticipant(ctx context.Context, userID uint64) ([]model.Message, error)
	MarkThreadRead(ctx context.Context, bicycleID, buyerID, readerID uint64) error

	FindPendingOffer(ctx context.Context, bicycleID, senderID uint64) (*model.Message, error)
	ListOffersByBicycle(ctx context.Context, bicycleID uint64) ([]model.Message, error)
	ListOffersBySender(ctx context.Context, senderID uint64) ([]model.Message, error)
	ListPendingSiblings(ctx context.Context, bicycleID, exceptID uint64) ([]model.Message, error)
	UpdateOfferStatusIfPending(ctx context.Context, id uint64, to model.OfferStatus) (int64, error)
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
	WithTx(tx *gorm.DB) MessageRepository
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) WithTx(tx *gorm.DB) MessageRepository {
	return &messageRepository{db: tx}
}

func (r *messageRepository) Create(ctx context.Context, m *model.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *messageRepository) FindByID(ctx context.Context, id uint64) (*model.Message, error) {
	var m model.Message
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *messageRepository) ListThread(ctx context.Context, bicycleID, buyerID uint64) ([]model.Message, error) {
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("bicycle_id = ? AND (sender_id = ? OR recipient_id = ?)", bicycleID, buyerID, buyerID).
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *messageRepository) ListByParticipant(ctx context.Context, userID uint64) ([]model.Message, error) {
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("id DESC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *messageRepository) MarkThreadRead(ctx context.Context, bicycleID, buyerID, readerID uint64) error {
	now := r.db.NowFunc()
	return r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("bicycle_id = ? AND (sender_id = ? OR recipient_id = ?) AND recipient_id = ? AND read_at IS NULL",
			bicycleID, buyerID, buyerID, readerID).
		Update("read_at", now).Error
}

func (r *messageRepository) FindPendingOffer(ctx context.Context, bicycleID, senderID uint64) (*model.Message, error) {
	var m model.Message
	if err := r.db.WithContext(ctx).
		Where("bicycle_id = ? AND sender_id = ? AND is_offer = ? AND offer_status = ?",
			bicycleID, senderID, true, model.OfferStatusPending).
		Order("id DESC").
		First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *messageRepository) ListOffersByBicycle(ctx context.Context, bicycleID uint64) ([]model.Message, error) {
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("bicycle_id = ? AND is_offer = ?", bicycleID, true).
		Order("id DESC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *messageRepository) ListOffersBySender(ctx context.Context, senderID uint64) ([]model.Message, error) {
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("sender_id = ? AND is_offer = ?", senderID, true).
		Order("id DESC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *messageRepository) ListPendingSiblings(ctx context.Context, bicycleID, exceptID uint64) ([]model.Message, error) {
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("bicycle_id = ? AND is_offer = ? AND offer_status = ? AND id <> ?",
			bicycleID, true, model.OfferStatusPending, exceptID).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// UpdateOfferStatusIfPending arbitrates accept/reject races: the guarded
// UPDATE succeeds for exactly one caller, everyone else sees zero rows.
func (r *messageRepository) UpdateOfferStatusIfPending(ctx context.Context, id uint64, to model.OfferStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("id = ? AND is_offer = ? AND offer_status = ?", id, true, model.OfferStatusPending).
		Update("offer_status", to)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// ExpireStale flips pending offers that are past the TTL cutoff or whose
// bicycle is no longer available.
func (r *messageRepository) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("is_offer = ? AND offer_status = ?", true, model.OfferStatusPending).
		Where("created_at < ? OR bicycle_id IN (?)",
			cutoff,
			r.db.Model(&model.Bicycle{}).Select("id").Where("status <> ?", model.BicycleStatusAvailable)).
		Update("offer_status", model.OfferStatusExpired)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
