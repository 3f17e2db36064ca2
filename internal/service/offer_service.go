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

// AcceptResult is what the accept endpoint renders: the resolved offer plus
// the order it materialized.
type AcceptResult struct {
	Offer *model.Message
	Order *model.Order
}

type OfferService interface {
	CreateOffer(ctx context.Context, bicycleID, senderID uint64, amount int64, content string) (*model.Message, error)
	AcceptOffer(ctx context.Context, offerID, actorID uint64) (*AcceptResult, error)
	RejectOffer(ctx context.Context, offerID, actorID uint64, reason string) (*model.Message, error)
	ExpireStaleOffers(ctx context.Context) (int64, error)
	Get(ctx context.Context, offerID, viewerID uint64) (*model.Message, error)
	ListForBicycle(ctx context.Context, bicycleID, viewerID uint64) ([]model.Message, error)
	ListBySender(ctx context.Context, senderID uint64) ([]model.Message, error)
}

type offerService struct {
	db           *gorm.DB
	messages     repository.MessageRepository
	bicycles     repository.BicycleRepository
	orders       repository.OrderRepository
	materializer *OrderMaterializer
	notify       NotificationService
	ttl          time.Duration
}

func NewOfferService(db *gorm.DB, messages repository.MessageRepository, bicycles repository.BicycleRepository,
	orders repository.OrderRepository, materializer *OrderMaterializer, notify NotificationService, ttl time.Duration) OfferService {
	return &offerService{
		db:           db,
		messages:     messages,
		bicycles:     bicycles,
		orders:       orders,
		materializer: materializer,
		notify:       notify,
		ttl:          ttl,
	}
}

// CreateOffer validates and stores a pending offer. A sender's earlier
// pending offer on the same bicycle is superseded in the same transaction, so
// at most one pending offer per (bicycle, sender) ever exists.
func (s *offerService) CreateOffer(ctx context.Context, bicycleID, senderID uint64, amount int64, content string) (*model.Message, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: offer amount must be positive", ErrValidation)
	}
	bicycle, err := s.findBicycle(ctx, bicycleID)
	if err != nil {
		return nil, err
	}
	if bicycle.SellerID == senderID {
		return nil, fmt.Errorf("%w: cannot offer on your own listing", ErrForbidden)
	}
	if bicycle.Status != model.BicycleStatusAvailable {
		return nil, fmt.Errorf("%w: bicycle is not available", ErrConflict)
	}

	offer := &model.Message{
		BicycleID:   bicycleID,
		SenderID:    senderID,
		RecipientID: bicycle.SellerID,
		Content:     strings.TrimSpace(content),
		IsOffer:     true,
		OfferAmount: &amount,
		OfferStatus: model.OfferStatusPending,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		msgs := s.messages.WithTx(tx)
		prior, err := msgs.FindPendingOffer(ctx, bicycleID, senderID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if prior != nil {
			if _, err := msgs.UpdateOfferStatusIfPending(ctx, prior.ID, model.OfferStatusExpired); err != nil {
				return err
			}
		}
		return msgs.Create(ctx, offer)
	})
	if err != nil {
		return nil, err
	}
	offerID := offer.ID
	s.notify.Notify(ctx, bicycle.SellerID, "offer_received", "New offer",
		fmt.Sprintf("You received an offer of %d on your %s %s.", amount, bicycle.Brand, bicycle.Model),
		&bicycleID, &offerID, nil)
	return offer, nil
}

// AcceptOffer runs the whole resolution in one transaction: flip the offer,
// flip the bicycle, materialize the order, expire sibling offers and write
// the chat trail. The guarded updates make exactly one of any concurrent
// accepts win; everyone else gets ErrConflict and the transaction rolls back.
func (s *offerService) AcceptOffer(ctx context.Context, offerID, actorID uint64) (*AcceptResult, error) {
	offer, err := s.findOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.RecipientID != actorID {
		return nil, fmt.Errorf("%w: only the seller may accept an offer", ErrForbidden)
	}
	bicycle, err := s.findBicycle(ctx, offer.BicycleID)
	if err != nil {
		return nil, err
	}
	if bicycle.SellerID != actorID {
		return nil, fmt.Errorf("%w: only the seller may accept an offer", ErrForbidden)
	}
	if !model.CanTransitionOffer(offer.OfferStatus, model.OfferStatusAccepted) {
		return nil, fmt.Errorf("%w: offer is already %s", ErrConflict, offer.OfferStatus)
	}

	var (
		order  *model.Order
		losers []model.Message
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		msgs := s.messages.WithTx(tx)
		bikes := s.bicycles.WithTx(tx)
		orders := s.orders.WithTx(tx)

		rows, err := msgs.UpdateOfferStatusIfPending(ctx, offerID, model.OfferStatusAccepted)
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: offer already resolved", ErrConflict)
		}

		rows, err = bikes.UpdateStatusIf(ctx, bicycle.ID, model.BicycleStatusAvailable, model.BicycleStatusSold)
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: bicycle is no longer available", ErrConflict)
		}

		order, err = s.materializer.Materialize(ctx, orders, offer, bicycle)
		if err != nil {
			return err
		}

		losers, err = msgs.ListPendingSiblings(ctx, bicycle.ID, offerID)
		if err != nil {
			return err
		}
		for _, sib := range losers {
			if _, err := msgs.UpdateOfferStatusIfPending(ctx, sib.ID, model.OfferStatusExpired); err != nil {
				return err
			}
			if err := msgs.Create(ctx, &model.Message{
				BicycleID:   bicycle.ID,
				SenderID:    actorID,
				RecipientID: sib.SenderID,
				Content:     "This bicycle has been sold to another buyer. Your offer is no longer active.",
			}); err != nil {
				return err
			}
		}

		return msgs.Create(ctx, &model.Message{
			BicycleID:   bicycle.ID,
			SenderID:    actorID,
			RecipientID: offer.SenderID,
			Content:     fmt.Sprintf("Offer accepted. Order %s has been created, awaiting payment.", order.OrderNumber),
		})
	})
	if err != nil {
		return nil, err
	}

	offer.OfferStatus = model.OfferStatusAccepted
	orderRef := order.ID
	bicycleRef := bicycle.ID
	s.notify.Notify(ctx, offer.SenderID, "offer_accepted", "Offer accepted",
		fmt.Sprintf("Your offer on the %s %s was accepted.", bicycle.Brand, bicycle.Model),
		&bicycleRef, nil, &orderRef)
	for _, sib := range losers {
		sibID := sib.ID
		s.notify.Notify(ctx, sib.SenderID, "offer_expired", "Offer expired",
			fmt.Sprintf("The %s %s was sold to another buyer.", bicycle.Brand, bicycle.Model),
			&bicycleRef, &sibID, nil)
	}
	return &AcceptResult{Offer: offer, Order: order}, nil
}

func (s *offerService) RejectOffer(ctx context.Context, offerID, actorID uint64, reason string) (*model.Message, error) {
	offer, err := s.findOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.RecipientID != actorID {
		return nil, fmt.Errorf("%w: only the recipient may reject an offer", ErrForbidden)
	}
	if !model.CanTransitionOffer(offer.OfferStatus, model.OfferStatusRejected) {
		return nil, fmt.Errorf("%w: offer is already %s", ErrConflict, offer.OfferStatus)
	}
	rows, err := s.messages.UpdateOfferStatusIfPending(ctx, offerID, model.OfferStatusRejected)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: offer already resolved", ErrConflict)
	}
	offer.OfferStatus = model.OfferStatusRejected

	reason = strings.TrimSpace(reason)
	if reason != "" {
		_ = s.messages.Create(ctx, &model.Message{
			BicycleID:   offer.BicycleID,
			SenderID:    actorID,
			RecipientID: offer.SenderID,
			Content:     fmt.Sprintf("Offer declined: %s", reason),
		})
	}
	bicycleRef := offer.BicycleID
	offerRef := offer.ID
	s.notify.Notify(ctx, offer.SenderID, "offer_rejected", "Offer declined",
		"The seller declined your offer.", &bicycleRef, &offerRef, nil)
	return offer, nil
}

// ExpireStaleOffers is the background sweep: pending offers past the TTL or
// sitting on an unavailable bicycle are flipped to expired.
func (s *offerService) ExpireStaleOffers(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.ttl)
	return s.messages.ExpireStale(ctx, cutoff)
}

func (s *offerService) Get(ctx context.Context, offerID, viewerID uint64) (*model.Message, error) {
	offer, err := s.findOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if viewerID != offer.SenderID && viewerID != offer.RecipientID {
		return nil, fmt.Errorf("%w: not a party to this offer", ErrForbidden)
	}
	return offer, nil
}

func (s *offerService) ListForBicycle(ctx context.Context, bicycleID, viewerID uint64) ([]model.Message, error) {
	bicycle, err := s.findBicycle(ctx, bicycleID)
	if err != nil {
		return nil, err
	}
	if bicycle.SellerID != viewerID {
		return nil, fmt.Errorf("%w: only the seller may list offers", ErrForbidden)
	}
	return s.messages.ListOffersByBicycle(ctx, bicycleID)
}

func (s *offerService) ListBySender(ctx context.Context, senderID uint64) ([]model.Message, error) {
	return s.messages.ListOffersBySender(ctx, senderID)
}

func (s *offerService) findOffer(ctx context.Context, id uint64) (*model.Message, error) {
	m, err := s.messages.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: offer not found", ErrNotFound)
		}
		return nil, err
	}
	if !m.IsOffer {
		return nil, fmt.Errorf("%w: offer not found", ErrNotFound)
	}
	return m, nil
}

func (s *offerService) findBicycle(ctx context.Context, id uint64) (*model.Bicycle, error) {
	b, err := s.bicycles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: bicycle not found", ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}
