package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/velobay/velobay-backend/internal/model"
	"github.com/velobay/velobay-backend/internal/repository"
	"gorm.io/gorm"
)

// ThreadSummary is one inbox row: the latest message exchanged with a
// counterpart about one bicycle, plus the unread tally for the viewer. For a
// seller the counterpart is the buyer side of the thread; for a buyer it is
// the seller.
type ThreadSummary struct {
	BicycleID     uint64
	CounterpartID uint64
	LastMessage   model.Message
	Unread        int
}

type MessageService interface {
	Send(ctx context.Context, bicycleID, senderID, recipientID uint64, content string) (*model.Message, error)
	ListThread(ctx context.Context, bicycleID, buyerID, viewerID uint64) ([]model.Message, error)
	ListInbox(ctx context.Context, userID uint64) ([]ThreadSummary, error)
	MarkThreadRead(ctx context.Context, bicycleID, buyerID, viewerID uint64) error
}

type messageService struct {
	messages repository.MessageRepository
	bicycles repository.BicycleRepository
}

func NewMessageService(messages repository.MessageRepository, bicycles repository.BicycleRepository) MessageService {
	return &messageService{messages: messages, bicycles: bicycles}
}

// Send posts a plain chat message in a bicycle thread. A buyer may leave
// recipientID zero and the listing's seller is used; a seller must name the
// buyer thread they are replying to.
func (s *messageService) Send(ctx context.Context, bicycleID, senderID, recipientID uint64, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	bicycle, err := s.bicycles.FindByID(ctx, bicycleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: bicycle not found", ErrNotFound)
		}
		return nil, err
	}
	if recipientID == 0 {
		if senderID == bicycle.SellerID {
			return nil, fmt.Errorf("%w: recipient is required when replying as the seller", ErrValidation)
		}
		recipientID = bicycle.SellerID
	}
	if senderID == recipientID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrValidation)
	}
	if senderID != bicycle.SellerID && recipientID != bicycle.SellerID {
		return nil, fmt.Errorf("%w: one side of the thread must be the seller", ErrForbidden)
	}
	m := &model.Message{
		BicycleID:   bicycleID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *messageService) ListThread(ctx context.Context, bicycleID, buyerID, viewerID uint64) ([]model.Message, error) {
	bicycle, err := s.bicycles.FindByID(ctx, bicycleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: bicycle not found", ErrNotFound)
		}
		return nil, err
	}
	if viewerID != buyerID && viewerID != bicycle.SellerID {
		return nil, fmt.Errorf("%w: not a participant in this thread", ErrForbidden)
	}
	return s.messages.ListThread(ctx, bicycleID, buyerID)
}

// ListInbox folds the viewer's messages into one row per (bicycle, buyer)
// thread, newest first.
func (s *messageService) ListInbox(ctx context.Context, userID uint64) ([]ThreadSummary, error) {
	msgs, err := s.messages.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}
	type key struct {
		bicycleID     uint64
		counterpartID uint64
	}
	index := make(map[key]int)
	summaries := make([]ThreadSummary, 0)
	for _, m := range msgs {
		counterpart := m.SenderID
		if m.RecipientID != userID {
			counterpart = m.RecipientID
		}
		k := key{bicycleID: m.BicycleID, counterpartID: counterpart}
		if idx, ok := index[k]; ok {
			if m.RecipientID == userID && m.ReadAt == nil {
				summaries[idx].Unread++
			}
			continue
		}
		sum := ThreadSummary{BicycleID: m.BicycleID, CounterpartID: counterpart, LastMessage: m}
		if m.RecipientID == userID && m.ReadAt == nil {
			sum.Unread = 1
		}
		index[k] = len(summaries)
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

func (s *messageService) MarkThreadRead(ctx context.Context, bicycleID, buyerID, viewerID uint64) error {
	bicycle, err := s.bicycles.FindByID(ctx, bicycleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: bicycle not found", ErrNotFound)
		}
		return err
	}
	if viewerID != buyerID && viewerID != bicycle.SellerID {
		return fmt.Errorf("%w: not a participant in this thread", ErrForbidden)
	}
	return s.messages.MarkThreadRead(ctx, bicycleID, buyerID, viewerID)
}
