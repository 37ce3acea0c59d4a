package auction

import (
	"time"

	"gem-auction/internal/auctionerrors"
	"gem-auction/internal/models"
)

// Close finalizes item at now and picks the winner.
// It does not mutate item; the caller records ClosedAt from the result.
func Close(item models.AuctionItem, now time.Time) (models.CloseResult, error) {
	now = NormalizeUTC(now)

	if now.Before(NormalizeUTC(item.BidStartTime)) {
		return models.CloseResult{}, auctionerrors.ErrNotYetStarted
	}
	if item.ClosedAt != nil && now.After(NormalizeUTC(item.BidEndTime)) {
		return models.CloseResult{}, auctionerrors.ErrAlreadyClosed
	}

	winning, ok := WinningBid(item.Bids)
	if !ok {
		return models.CloseResult{}, auctionerrors.ErrNoBids
	}

	return models.CloseResult{
		AuctionItemID: item.ItemID,
		WinnerUserID:  winning.UserID,
		WinningAmount: winning.Amount,
		WinningBidID:  winning.BidID,
		ClosedAt:      now,
	}, nil
}
