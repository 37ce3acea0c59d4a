package perftests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	bidding "gem-auction/internal/biddingService"
	"gem-auction/internal/notify"
	"gem-auction/internal/repository"
)

// quietNotifier drops events so logging does not dominate the measurements
type quietNotifier struct{}

func (quietNotifier) Notify(context.Context, notify.Event) error { return nil }

// setupService creates a memory-backed service with numItems open auctions named item_<i>
func setupService(tb testing.TB, numItems int, startingPrice float64) (*bidding.BiddingService, []string) {
	tb.Helper()

	repo := repository.NewMemoryRepo()
	svc := bidding.NewBiddingService(repo, repo, bidding.WithNotifier(quietNotifier{}))

	now := time.Now().UTC()
	ids := make([]string, 0, numItems)
	for i := 0; i < numItems; i++ {
		v, err := svc.CreateAuction(context.Background(), "owner", bidding.NewAuction{
			Name:          fmt.Sprintf("item_%d", i),
			Description:   "Load test lot",
			StartingPrice: startingPrice,
			BidStartTime:  now.Add(-time.Minute),
			BidEndTime:    now.Add(time.Hour),
		})
		require.NoError(tb, err)
		ids = append(ids, v.Item.ItemID)
	}
	return svc, ids
}
