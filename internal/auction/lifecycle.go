package auction

import (
	"time"

	"gem-auction/internal/models"
)

// Phase is the position of an auction within its bidding window
type Phase string

const (
	PhaseScheduled Phase = "scheduled"
	PhaseOpen      Phase = "open"
	PhaseClosed    Phase = "closed"
)

// Evaluation is the derived state of an auction at a given instant
type Evaluation struct {
	Phase             Phase
	CurrentHighestBid float64
}

// Evaluate derives the phase and current highest bid of item at now.
// Both window bounds are inclusive.
func Evaluate(item models.AuctionItem, now time.Time) Evaluation {
	return Evaluation{
		Phase:             PhaseAt(item, now),
		CurrentHighestBid: CurrentHighestBid(item),
	}
}

// PhaseAt returns only the phase part of Evaluate
func PhaseAt(item models.AuctionItem, now time.Time) Phase {
	now = NormalizeUTC(now)
	switch {
	case now.After(NormalizeUTC(item.BidEndTime)):
		return PhaseClosed
	case now.Before(NormalizeUTC(item.BidStartTime)):
		return PhaseScheduled
	default:
		return PhaseOpen
	}
}

// IsBiddingOpen reports whether item accepts bids at now
func IsBiddingOpen(item models.AuctionItem, now time.Time) bool {
	return PhaseAt(item, now) == PhaseOpen
}

// CurrentHighestBid returns the largest bid amount, or the starting price when
// there are no bids. It never reports less than the starting price.
func CurrentHighestBid(item models.AuctionItem) float64 {
	highest := item.StartingPrice
	for _, b := range item.Bids {
		if b.Amount > highest {
			highest = b.Amount
		}
	}
	return highest
}

// WinningBid returns the bid with the largest amount. Equal amounts are
// resolved in favour of the earliest bid. ok is false when there are no bids.
func WinningBid(bids []models.Bid) (winning models.Bid, ok bool) {
	if len(bids) == 0 {
		return models.Bid{}, false
	}
	winning = bids[0]
	for _, b := range bids[1:] {
		if b.Amount > winning.Amount || (b.Amount == winning.Amount && b.BidTime.Before(winning.BidTime)) {
			winning = b
		}
	}
	return winning, true
}
