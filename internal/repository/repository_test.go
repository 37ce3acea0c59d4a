package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gem-auction/internal/auctionerrors"
	model "gem-auction/internal/models"
)

var baseTime = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

// Helper to create a new auction item open around baseTime
func newItem(itemID, name string, startingPrice float64) model.AuctionItem {
	return model.AuctionItem{
		ItemID:        itemID,
		Name:          name,
		Description:   fmt.Sprintf("%s description", name),
		StartingPrice: startingPrice,
		CreatedAt:     baseTime,
		BidStartTime:  baseTime,
		BidEndTime:    baseTime.Add(time.Hour),
		OwnerID:       "owner",
	}
}

// Helper to create a new Bid
func newBid(bidID, itemID, userID string, amount float64, bidTime time.Time) model.Bid {
	return model.Bid{
		BidID:         bidID,
		AuctionItemID: itemID,
		UserID:        userID,
		Amount:        amount,
		BidTime:       bidTime,
	}
}

// acceptHigher is a minimal decider: accept when amount beats every stored bid
func acceptHigher(bid model.Bid) BidDecider {
	return func(item *model.AuctionItem) (model.Bid, error) {
		if item == nil {
			return model.Bid{}, auctionerrors.ErrAuctionNotFound
		}
		highest := item.StartingPrice
		for _, b := range item.Bids {
			if b.Amount > highest {
				highest = b.Amount
			}
		}
		if bid.Amount <= highest {
			return model.Bid{}, auctionerrors.ErrInvalidAmount
		}
		return bid, nil
	}
}

// Test RecordBid
func TestMemoryRepo_RecordBid(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()
	require.NoError(t, repo.CreateAuction(ctx, newItem("item1", "Item 1", 50)))

	t.Run("accepted_bid_is_stored", func(t *testing.T) {
		bid := newBid("bid1", "item1", "user1", 100, baseTime)
		got, err := repo.RecordBid(ctx, "item1", acceptHigher(bid))
		require.NoError(t, err)
		require.Equal(t, bid, got)

		bids, err := repo.GetBidsByAuction(ctx, "item1")
		require.NoError(t, err)
		require.Contains(t, bids, bid)
	})

	t.Run("rejected_bid_leaves_no_trace", func(t *testing.T) {
		_, err := repo.RecordBid(ctx, "item1", acceptHigher(newBid("bid2", "item1", "user2", 90, baseTime)))
		require.ErrorIs(t, err, auctionerrors.ErrInvalidAmount)

		bids, err := repo.GetBidsByAuction(ctx, "item1")
		require.NoError(t, err)
		require.Len(t, bids, 1)

		items, err := repo.GetAuctionsByUser(ctx, "user2")
		require.NoError(t, err)
		require.Empty(t, items)
	})

	t.Run("unknown_auction_reaches_decider_as_nil", func(t *testing.T) {
		var sawNil bool
		_, err := repo.RecordBid(ctx, "itemX", func(item *model.AuctionItem) (model.Bid, error) {
			sawNil = item == nil
			return model.Bid{}, auctionerrors.ErrAuctionNotFound
		})
		require.True(t, sawNil)
		require.ErrorIs(t, err, auctionerrors.ErrNotFound)
	})

	t.Run("decider_cannot_mutate_stored_item", func(t *testing.T) {
		_, err := repo.RecordBid(ctx, "item1", func(item *model.AuctionItem) (model.Bid, error) {
			item.StartingPrice = 1e9
			item.Bids = nil
			return model.Bid{}, errors.New("refuse")
		})
		require.Error(t, err)

		stored, err := repo.GetAuction(ctx, "item1")
		require.NoError(t, err)
		require.Equal(t, 50.0, stored.StartingPrice)
		require.Len(t, stored.Bids, 1)
	})
}

// concurrency: validation and append must be atomic per auction
func TestMemoryRepo_RecordBid_SerializesPerAuction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()
	require.NoError(t, repo.CreateAuction(ctx, newItem("item1", "Item 1", 50)))

	var wg sync.WaitGroup
	concurrentCount := 200
	for i := 0; i < concurrentCount; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			b := newBid(fmt.Sprintf("bid-%d", i), "item1", fmt.Sprintf("user-%d", i), float64(100+i%50), baseTime)
			_, _ = repo.RecordBid(ctx, "item1", acceptHigher(b))
		}()
	}
	wg.Wait()

	bids, err := repo.GetBidsByAuction(ctx, "item1")
	require.NoError(t, err)
	require.NotEmpty(t, bids)
	for i := 1; i < len(bids); i++ {
		require.Greater(t, bids[i].Amount, bids[i-1].Amount, "accepted bids must be strictly increasing")
	}
	require.Equal(t, 149.0, bids[len(bids)-1].Amount)
}

func TestMemoryRepo_RecordBid_IndependentAuctions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()
	for i := 0; i < 10; i++ {
		require.NoError(t, repo.CreateAuction(ctx, newItem(fmt.Sprintf("item%d", i), "Item", 10)))
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			itemID := fmt.Sprintf("item%d", i)
			for j := 0; j < 20; j++ {
				b := newBid(fmt.Sprintf("bid-%d-%d", i, j), itemID, "user-shared", float64(11+j), baseTime)
				_, err := repo.RecordBid(ctx, itemID, acceptHigher(b))
				require.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	items, err := repo.GetAuctionsByUser(ctx, "user-shared")
	require.NoError(t, err)
	require.Len(t, items, 10)
	for _, item := range items {
		require.Len(t, item.Bids, 20)
	}
}

// Test GetAuction / ListAuctions
func TestMemoryRepo_Auctions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()

	older := newItem("b-item", "Older", 10)
	newer := newItem("a-item", "Newer", 10)
	newer.CreatedAt = baseTime.Add(time.Minute)
	require.NoError(t, repo.CreateAuction(ctx, newer))
	require.NoError(t, repo.CreateAuction(ctx, older))

	err := repo.CreateAuction(ctx, older)
	require.ErrorIs(t, err, auctionerrors.ErrConflict)

	items, err := repo.ListAuctions(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "b-item", items[0].ItemID)
	require.Equal(t, "a-item", items[1].ItemID)

	_, err = repo.GetAuction(ctx, "missing")
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)

	_, err = repo.GetBidsByAuction(ctx, "missing")
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
}

// Test UpdateSchedule
func TestMemoryRepo_UpdateSchedule(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()
	require.NoError(t, repo.CreateAuction(ctx, newItem("item1", "Item 1", 10)))

	start, end := baseTime.Add(24*time.Hour), baseTime.Add(48*time.Hour)
	updated, err := repo.UpdateSchedule(ctx, "item1", start, end)
	require.NoError(t, err)
	require.Equal(t, start, updated.BidStartTime)
	require.Equal(t, end, updated.BidEndTime)

	stored, err := repo.GetAuction(ctx, "item1")
	require.NoError(t, err)
	require.Equal(t, end, stored.BidEndTime)

	_, err = repo.UpdateSchedule(ctx, "missing", start, end)
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
}

// Test DeleteAuction
func TestMemoryRepo_DeleteAuction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()
	item := newItem("item1", "Item 1", 10)
	item.ImageURL = "/images/ruby.png"
	require.NoError(t, repo.CreateAuction(ctx, item))
	_, err := repo.RecordBid(ctx, "item1", acceptHigher(newBid("bid1", "item1", "user1", 20, baseTime)))
	require.NoError(t, err)

	deleted, err := repo.DeleteAuction(ctx, "item1")
	require.NoError(t, err)
	require.Equal(t, "/images/ruby.png", deleted.ImageURL)
	require.Len(t, deleted.Bids, 1)

	_, err = repo.GetAuction(ctx, "item1")
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)

	items, err := repo.GetAuctionsByUser(ctx, "user1")
	require.NoError(t, err)
	require.Empty(t, items, "bids cascade with their auction")

	_, err = repo.DeleteAuction(ctx, "item1")
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
}

func TestMemoryRepo_DeleteAuction_PrunesUserIndex(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()
	require.NoError(t, repo.CreateAuction(ctx, newItem("item1", "Item 1", 10)))
	require.NoError(t, repo.CreateAuction(ctx, newItem("item2", "Item 2", 10)))

	for _, b := range []model.Bid{
		newBid("bid1", "item1", "user1", 20, baseTime),
		newBid("bid2", "item2", "user1", 20, baseTime),
		newBid("bid3", "item1", "user2", 30, baseTime),
	} {
		_, err := repo.RecordBid(ctx, b.AuctionItemID, acceptHigher(b))
		require.NoError(t, err)
	}

	_, err := repo.DeleteAuction(ctx, "item1")
	require.NoError(t, err)

	repo.mu.RLock()
	defer repo.mu.RUnlock()
	require.Equal(t, map[string][]string{"user1": {"item2"}}, repo.userItems)
}

// Test CloseAuction
func TestMemoryRepo_CloseAuction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()
	require.NoError(t, repo.CreateAuction(ctx, newItem("item1", "Item 1", 10)))

	_, err := repo.CloseAuction(ctx, "item1", func(model.AuctionItem) (model.CloseResult, error) {
		return model.CloseResult{}, auctionerrors.ErrNoBids
	})
	require.ErrorIs(t, err, auctionerrors.ErrNoBids)

	stored, err := repo.GetAuction(ctx, "item1")
	require.NoError(t, err)
	require.Nil(t, stored.ClosedAt, "failed close must not mark the auction")

	closedAt := baseTime.Add(2 * time.Hour)
	result, err := repo.CloseAuction(ctx, "item1", func(item model.AuctionItem) (model.CloseResult, error) {
		return model.CloseResult{AuctionItemID: item.ItemID, WinnerUserID: "user1", ClosedAt: closedAt}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "user1", result.WinnerUserID)

	stored, err = repo.GetAuction(ctx, "item1")
	require.NoError(t, err)
	require.NotNil(t, stored.ClosedAt)
	require.Equal(t, closedAt, *stored.ClosedAt)

	_, err = repo.CloseAuction(ctx, "missing", func(model.AuctionItem) (model.CloseResult, error) {
		t.Fatal("decider must not run for a missing auction")
		return model.CloseResult{}, nil
	})
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
}

// Test users
func TestMemoryRepo_Users(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()

	require.NoError(t, repo.CreateUser(ctx, model.User{UserID: "u2", Email: "zoe@example.com", Role: model.RoleUser}))
	require.NoError(t, repo.CreateUser(ctx, model.User{UserID: "u1", Email: "Adam@Example.com", Role: model.RoleAdmin}))

	err := repo.CreateUser(ctx, model.User{UserID: "u3", Email: "adam@example.com"})
	require.ErrorIs(t, err, auctionerrors.ErrEmailTaken)

	user, err := repo.GetUserByEmail(ctx, "ADAM@example.com")
	require.NoError(t, err)
	require.Equal(t, "u1", user.UserID)

	_, err = repo.GetUser(ctx, "nobody")
	require.ErrorIs(t, err, auctionerrors.ErrUserNotFound)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Adam@Example.com", "zoe@example.com"}, []string{users[0].Email, users[1].Email})

	count, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
