package model

type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
	OfferStatusExpired  OfferStatus = "expired"
)

// offerTransitions is the closed transition table for offers. Accepted,
// rejected and expired are terminal.
var offerTransitions = map[OfferStatus][]OfferStatus{
	OfferStatusPending: {OfferStatusAccepted, OfferStatusRejected, OfferStatusExpired},
}

func CanTransitionOffer(from, to OfferStatus) bool {
	for _, next := range offerTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
