package auction

import (
	"time"

	"github.com/shopspring/decimal"

	"gem-auction/internal/models"
)

// HighValueThreshold is the summed bid amount from which a bidder counts as high value
const HighValueThreshold = 10000

// Summary aggregates the whole auction collection for the admin overview
type Summary struct {
	ActiveCount          int     `json:"active_auctions"`
	TotalSales           float64 `json:"total_sales"`
	HighValueBidderCount int     `json:"high_value_bidders"`
}

// Summarize folds over items at now. It is read-only.
func Summarize(items []models.AuctionItem, now time.Time) Summary {
	now = NormalizeUTC(now)

	var summary Summary
	sales := decimal.Zero
	perBidder := make(map[string]decimal.Decimal)

	for _, item := range items {
		if PhaseAt(item, now) == PhaseOpen {
			summary.ActiveCount++
		}

		if winning, ok := WinningBid(item.Bids); ok && NormalizeUTC(item.BidEndTime).Before(now) {
			sales = sales.Add(decimal.NewFromFloat(winning.Amount))
		}

		for _, b := range item.Bids {
			perBidder[b.UserID] = perBidder[b.UserID].Add(decimal.NewFromFloat(b.Amount))
		}
	}

	threshold := decimal.NewFromInt(HighValueThreshold)
	for _, sum := range perBidder {
		if sum.GreaterThanOrEqual(threshold) {
			summary.HighValueBidderCount++
		}
	}
	summary.TotalSales = sales.InexactFloat64()

	return summary
}
