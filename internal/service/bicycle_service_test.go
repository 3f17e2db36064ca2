package service

import (
	"context"
	"errors"
	"testing"

	"github.com/velobay/velobay-backend/internal/model"
)

func TestBicycleLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.createUser(t, "seller@example.com")
	other := env.createUser(t, "other@example.com")

	b, err := env.bikes.Create(ctx, seller.ID, BicycleInput{
		Brand: "Bianchi", Model: "Oltre", Year: 2021, Condition: "good", Price: 150000,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Status != model.BicycleStatusDraft {
		t.Fatalf("status=%s want draft", b.Status)
	}

	if _, err := env.bikes.Publish(ctx, b.ID, other.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign publish err=%v want forbidden", err)
	}
	b, err = env.bikes.Publish(ctx, b.ID, seller.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if b.Status != model.BicycleStatusAvailable {
		t.Fatalf("status=%s want available", b.Status)
	}

	ok, err := env.bikes.IsAvailable(ctx, b.ID)
	if err != nil || !ok {
		t.Fatalf("IsAvailable=%v err=%v want true", ok, err)
	}

	b, err = env.bikes.Archive(ctx, b.ID, seller.ID)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if b.Status != model.BicycleStatusArchived {
		t.Fatalf("status=%s want archived", b.Status)
	}
}

func TestCreateBicycleValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.createUser(t, "seller@example.com")

	tests := []struct {
		name string
		in   BicycleInput
	}{
		{"empty brand", BicycleInput{Model: "Oltre", Year: 2021, Price: 1000}},
		{"empty model", BicycleInput{Brand: "Bianchi", Year: 2021, Price: 1000}},
		{"year too old", BicycleInput{Brand: "Bianchi", Model: "Oltre", Year: 1800, Price: 1000}},
		{"zero price", BicycleInput{Brand: "Bianchi", Model: "Oltre", Year: 2021, Price: 0}},
		{"negative price", BicycleInput{Brand: "Bianchi", Model: "Oltre", Year: 2021, Price: -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.bikes.Create(ctx, seller.ID, tt.in); !errors.Is(err, ErrValidation) {
				t.Fatalf("err=%v want validation", err)
			}
		})
	}
}

func TestMarkSoldIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.createUser(t, "seller@example.com")
	bike := env.createBicycle(t, seller.ID, 150000, model.BicycleStatusAvailable)

	if err := env.bikes.MarkSold(ctx, bike.ID); err != nil {
		t.Fatalf("first MarkSold: %v", err)
	}
	if err := env.bikes.MarkSold(ctx, bike.ID); err != nil {
		t.Fatalf("replayed MarkSold: %v", err)
	}

	draft := env.createBicycle(t, seller.ID, 150000, model.BicycleStatusDraft)
	if err := env.bikes.MarkSold(ctx, draft.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("MarkSold on draft err=%v want conflict", err)
	}
}

func TestRevertToAvailableNewestOrderGuard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.createUser(t, "seller@example.com")
	buyer := env.createUser(t, "buyer@example.com")
	bike, first := env.acceptedOrder(t, seller.ID, buyer.ID, 12000)

	// cancelling the first order frees the bicycle again
	if _, err := env.orders.Cancel(ctx, first.ID, buyer.ID); err != nil {
		t.Fatalf("cancel first: %v", err)
	}

	// a second buyer accepts a fresh offer on the same bicycle
	buyer2 := env.createUser(t, "buyer2@example.com")
	offer, err := env.offers.CreateOffer(ctx, bike.ID, buyer2.ID, 13000, "")
	if err != nil {
		t.Fatalf("second offer: %v", err)
	}
	if _, err := env.offers.AcceptOffer(ctx, offer.ID, seller.ID); err != nil {
		t.Fatalf("second accept: %v", err)
	}

	// the stale first order must not flip the bicycle back to available
	if err := env.bikes.RevertToAvailable(ctx, bike.ID, first.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("stale revert err=%v want conflict", err)
	}
	b, err := env.bikeRepo.FindByID(ctx, bike.ID)
	if err != nil {
		t.Fatalf("reload bicycle: %v", err)
	}
	if b.Status != model.BicycleStatusSold {
		t.Fatalf("bicycle status=%s want sold", b.Status)
	}
}

func TestUpdateBicycleRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.createUser(t, "seller@example.com")
	other := env.createUser(t, "other@example.com")
	bike := env.createBicycle(t, seller.ID, 150000, model.BicycleStatusAvailable)

	in := BicycleInput{Brand: "Bianchi", Model: "Oltre XR4", Year: 2022, Condition: "good", Price: 140000}

	if _, err := env.bikes.Update(ctx, bike.ID, other.ID, in); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign update err=%v want forbidden", err)
	}
	b, err := env.bikes.Update(ctx, bike.ID, seller.ID, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if b.Model != "Oltre XR4" || b.Price != 140000 {
		t.Fatalf("update not applied: model=%s price=%d", b.Model, b.Price)
	}

	if err := env.bikes.MarkSold(ctx, bike.ID); err != nil {
		t.Fatalf("mark sold: %v", err)
	}
	if _, err := env.bikes.Update(ctx, bike.ID, seller.ID, in); !errors.Is(err, ErrConflict) {
		t.Fatalf("update after sale err=%v want conflict", err)
	}
}
