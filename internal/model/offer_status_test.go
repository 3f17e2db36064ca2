package model

import "testing"

func TestCanTransitionOffer(t *testing.T) {
	tests := []struct {
		name string
		from OfferStatus
		to   OfferStatus
		want bool
	}{
		{"pending to accepted", OfferStatusPending, OfferStatusAccepted, true},
		{"pending to rejected", OfferStatusPending, OfferStatusRejected, true},
		{"pending to expired", OfferStatusPending, OfferStatusExpired, true},
		{"accepted is terminal", OfferStatusAccepted, OfferStatusRejected, false},
		{"rejected is terminal", OfferStatusRejected, OfferStatusPending, false},
		{"expired is terminal", OfferStatusExpired, OfferStatusAccepted, false},
		{"pending to pending", OfferStatusPending, OfferStatusPending, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransitionOffer(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransitionOffer(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestCanTransitionOrder(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"pending to processing", OrderStatusPending, OrderStatusProcessing, true},
		{"pending to cancelled", OrderStatusPending, OrderStatusCancelled, true},
		{"processing to shipped", OrderStatusProcessing, OrderStatusShipped, true},
		{"processing to cancelled", OrderStatusProcessing, OrderStatusCancelled, true},
		{"shipped to delivered", OrderStatusShipped, OrderStatusDelivered, true},
		{"shipped to cancelled", OrderStatusShipped, OrderStatusCancelled, false},
		{"delivered to completed", OrderStatusDelivered, OrderStatusCompleted, true},
		{"completed to refunded", OrderStatusCompleted, OrderStatusRefunded, true},
		{"cancelled to refunded", OrderStatusCancelled, OrderStatusRefunded, true},
		{"pending to shipped skips payment", OrderStatusPending, OrderStatusShipped, false},
		{"refunded is terminal", OrderStatusRefunded, OrderStatusPending, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransitionOrder(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransitionOrder(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
