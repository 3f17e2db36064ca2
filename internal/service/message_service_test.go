package service

import (
	"context"
	"errors"
	"testing"

	"github.com/velobay/velobay-backend/internal/model"
)

func TestSendMessageRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.createUser(t, "seller@example.com")
	buyer := env.createUser(t, "buyer@example.com")
	stranger := env.createUser(t, "stranger@example.com")
	bike := env.createBicycle(t, seller.ID, 150000, model.BicycleStatusAvailable)

	// a buyer can omit the recipient and reach the seller
	m, err := env.messages.Send(ctx, bike.ID, buyer.ID, 0, "Is it still for sale?")
	if err != nil {
		t.Fatalf("buyer send: %v", err)
	}
	if m.RecipientID != seller.ID {
		t.Fatalf("recipient=%d want seller %d", m.RecipientID, seller.ID)
	}

	// the seller must name the thread they reply to
	if _, err := env.messages.Send(ctx, bike.ID, seller.ID, 0, "Yes"); !errors.Is(err, ErrValidation) {
		t.Fatalf("seller send without recipient err=%v want validation", err)
	}
	if _, err := env.messages.Send(ctx, bike.ID, seller.ID, buyer.ID, "Yes"); err != nil {
		t.Fatalf("seller reply: %v", err)
	}

	tests := []struct {
		name        string
		senderID    uint64
		recipientID uint64
		content     string
		want        error
	}{
		{"empty content", buyer.ID, seller.ID, "   ", ErrValidation},
		{"self message", seller.ID, seller.ID, "hi", ErrValidation},
		{"no seller side", buyer.ID, stranger.ID, "hi", ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.messages.Send(ctx, bike.ID, tt.senderID, tt.recipientID, tt.content)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err=%v want %v", err, tt.want)
			}
		})
	}
}

func TestListThreadParticipantsOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.createUser(t, "seller@example.com")
	buyer := env.createUser(t, "buyer@example.com")
	stranger := env.createUser(t, "stranger@example.com")
	bike := env.createBicycle(t, seller.ID, 150000, model.BicycleStatusAvailable)

	if _, err := env.messages.Send(ctx, bike.ID, buyer.ID, 0, "Hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := env.messages.Send(ctx, bike.ID, seller.ID, buyer.ID, "Hi"); err != nil {
		t.Fatalf("reply: %v", err)
	}

	msgs, err := env.messages.ListThread(ctx, bike.ID, buyer.ID, seller.ID)
	if err != nil {
		t.Fatalf("seller view: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if _, err := env.messages.ListThread(ctx, bike.ID, buyer.ID, buyer.ID); err != nil {
		t.Fatalf("buyer view: %v", err)
	}
	if _, err := env.messages.ListThread(ctx, bike.ID, buyer.ID, stranger.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger view err=%v want forbidden", err)
	}
}

func TestInboxFoldsThreadsAndCountsUnread(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.createUser(t, "seller@example.com")
	buyer1 := env.createUser(t, "buyer1@example.com")
	buyer2 := env.createUser(t, "buyer2@example.com")
	bike := env.createBicycle(t, seller.ID, 150000, model.BicycleStatusAvailable)

	if _, err := env.messages.Send(ctx, bike.ID, buyer1.ID, 0, "First question"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := env.messages.Send(ctx, bike.ID, buyer1.ID, 0, "Second question"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := env.messages.Send(ctx, bike.ID, buyer2.ID, 0, "Other buyer"); err != nil {
		t.Fatalf("send: %v", err)
	}

	inbox, err := env.messages.ListInbox(ctx, seller.ID)
	if err != nil {
		t.Fatalf("inbox: %v", err)
	}
	if len(inbox) != 2 {
		t.Fatalf("got %d threads, want 2", len(inbox))
	}
	byBuyer := map[uint64]ThreadSummary{}
	for _, s := range inbox {
		byBuyer[s.CounterpartID] = s
	}
	if got := byBuyer[buyer1.ID].Unread; got != 2 {
		t.Fatalf("buyer1 unread=%d want 2", got)
	}
	if got := byBuyer[buyer1.ID].LastMessage.Content; got != "Second question" {
		t.Fatalf("buyer1 last message=%q want second question", got)
	}
	if got := byBuyer[buyer2.ID].Unread; got != 1 {
		t.Fatalf("buyer2 unread=%d want 1", got)
	}

	// from the buyer side the counterpart is the seller
	buyerInbox, err := env.messages.ListInbox(ctx, buyer1.ID)
	if err != nil {
		t.Fatalf("buyer inbox: %v", err)
	}
	if len(buyerInbox) != 1 || buyerInbox[0].CounterpartID != seller.ID {
		t.Fatalf("buyer inbox=%+v want one thread with seller", buyerInbox)
	}

	// reading the thread clears the tally
	if err := env.messages.MarkThreadRead(ctx, bike.ID, buyer1.ID, seller.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	inbox, err = env.messages.ListInbox(ctx, seller.ID)
	if err != nil {
		t.Fatalf("inbox after read: %v", err)
	}
	byBuyer = map[uint64]ThreadSummary{}
	for _, s := range inbox {
		byBuyer[s.CounterpartID] = s
	}
	if got := byBuyer[buyer1.ID].Unread; got != 0 {
		t.Fatalf("buyer1 unread after read=%d want 0", got)
	}
	if got := byBuyer[buyer2.ID].Unread; got != 1 {
		t.Fatalf("buyer2 unread after read=%d want 1", got)
	}
}
