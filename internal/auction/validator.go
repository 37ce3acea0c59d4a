package auction

import (
	"fmt"
	"time"

	"gem-auction/internal/auctionerrors"
	"gem-auction/internal/models"
	"gem-auction/utils"
)

// ValidateBid decides whether amount from bidderID may be placed on item at now.
// A nil item means the auction id did not resolve. On acceptance the returned
// Bid carries a fresh id and now as its bid time; the caller persists it.
func ValidateBid(item *models.AuctionItem, now time.Time, amount float64, bidderID string) (models.Bid, error) {
	if item == nil {
		return models.Bid{}, auctionerrors.ErrAuctionNotFound
	}

	eval := Evaluate(*item, now)
	if eval.Phase != PhaseOpen {
		return models.Bid{}, fmt.Errorf("%w - auction %s is %s", auctionerrors.ErrBiddingNotOpen, item.ItemID, eval.Phase)
	}
	if amount <= eval.CurrentHighestBid {
		return models.Bid{}, fmt.Errorf("%w - current highest bid is %.2f", auctionerrors.ErrInvalidAmount, eval.CurrentHighestBid)
	}

	return models.Bid{
		BidID:         utils.GenerateID(),
		AuctionItemID: item.ItemID,
		UserID:        bidderID,
		Amount:        amount,
		BidTime:       NormalizeUTC(now),
	}, nil
}
