package bidding

import (
	"context"
	"fmt"
	"sort"

	"gem-auction/internal/auction"
)

// Overview is the admin dashboard summary
type Overview struct {
	auction.Summary
	RegisteredUsers int
}

// Overview computes the dashboard figures from the full auction collection
func (s *BiddingService) Overview(ctx context.Context) (Overview, error) {
	items, err := s.repo.ListAuctions(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	users, err := s.users.CountUsers(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("service: failed to count users: %w", err)
	}

	return Overview{
		Summary:         auction.Summarize(items, s.clock()),
		RegisteredUsers: users,
	}, nil
}

// UpcomingAuctions returns auctions whose window has not ended, soonest ending first
func (s *BiddingService) UpcomingAuctions(ctx context.Context) ([]AuctionView, error) {
	views, err := s.ListAuctions(ctx)
	if err != nil {
		return nil, err
	}

	out := views[:0]
	for _, v := range views {
		if v.Phase != auction.PhaseClosed {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Item.BidEndTime.Before(out[j].Item.BidEndTime)
	})
	return out, nil
}
