package repository

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gem-auction/internal/auctionerrors"
	model "gem-auction/internal/models"
)

// BidDecider inspects a consistent snapshot of an auction and returns the bid to
// store, or an error to reject it. item is nil when the auction does not exist.
// It runs while the auction is locked against other writers.
type BidDecider func(item *model.AuctionItem) (model.Bid, error)

// CloseDecider computes the closing outcome from a locked snapshot of an auction
type CloseDecider func(item model.AuctionItem) (model.CloseResult, error)

// AuctionDB defines the auction and bid storage interface
type AuctionDB interface {
	CreateAuction(ctx context.Context, item model.AuctionItem) error
	GetAuction(ctx context.Context, itemID string) (model.AuctionItem, error)
	ListAuctions(ctx context.Context) ([]model.AuctionItem, error)
	UpdateSchedule(ctx context.Context, itemID string, start, end time.Time) (model.AuctionItem, error)
	DeleteAuction(ctx context.Context, itemID string) (model.AuctionItem, error)
	RecordBid(ctx context.Context, itemID string, decide BidDecider) (model.Bid, error)
	CloseAuction(ctx context.Context, itemID string, decide CloseDecider) (model.CloseResult, error)
	GetBidsByAuction(ctx context.Context, itemID string) ([]model.Bid, error)
	GetAuctionsByUser(ctx context.Context, userID string) ([]model.AuctionItem, error)
}

// UserDB defines the user storage interface
type UserDB interface {
	CreateUser(ctx context.Context, user model.User) error
	GetUser(ctx context.Context, userID string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	CountUsers(ctx context.Context) (int, error)
}

type auctionEntry struct {
	mu      sync.RWMutex // held for writing across decide + append
	item    model.AuctionItem
	deleted bool
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB and UserDB.
// Writers of one auction are serialized by that auction's lock; different
// auctions never contend beyond the short map lookup.
type MemoryRepo struct {
	mu        sync.RWMutex
	auctions  map[string]*auctionEntry // key: itemID
	userItems map[string][]string      // key: userID -> value: itemIDs the user has bid on
	users     map[string]model.User    // key: userID
	emails    map[string]string        // key: lower-cased email -> value: userID
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions:  make(map[string]*auctionEntry),
		userItems: make(map[string][]string),
		users:     make(map[string]model.User),
		emails:    make(map[string]string),
	}
}

func (r *MemoryRepo) entry(itemID string) (*auctionEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.auctions[itemID]
	return e, ok
}

// CreateAuction stores a new auction
func (r *MemoryRepo) CreateAuction(_ context.Context, item model.AuctionItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.auctions[item.ItemID]; exists {
		return fmt.Errorf("create auction %s: %w", item.ItemID, auctionerrors.ErrConflict)
	}
	r.auctions[item.ItemID] = &auctionEntry{item: copyItem(item)}
	return nil
}

// GetAuction returns an auction with its bids
func (r *MemoryRepo) GetAuction(_ context.Context, itemID string) (model.AuctionItem, error) {
	e, ok := r.entry(itemID)
	if !ok {
		return model.AuctionItem{}, fmt.Errorf("get auction %s: %w", itemID, auctionerrors.ErrAuctionNotFound)
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.deleted {
		return model.AuctionItem{}, fmt.Errorf("get auction %s: %w", itemID, auctionerrors.ErrAuctionNotFound)
	}
	return copyItem(e.item), nil
}

// ListAuctions returns every auction ordered by creation time
func (r *MemoryRepo) ListAuctions(_ context.Context) ([]model.AuctionItem, error) {
	r.mu.RLock()
	entries := make([]*auctionEntry, 0, len(r.auctions))
	for _, e := range r.auctions {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	items := make([]model.AuctionItem, 0, len(entries))
	for _, e := range entries {
		e.mu.RLock()
		if !e.deleted {
			items = append(items, copyItem(e.item))
		}
		e.mu.RUnlock()
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ItemID < items[j].ItemID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

// UpdateSchedule replaces the bidding window of an auction
func (r *MemoryRepo) UpdateSchedule(_ context.Context, itemID string, start, end time.Time) (model.AuctionItem, error) {
	e, ok := r.entry(itemID)
	if !ok {
		return model.AuctionItem{}, fmt.Errorf("update schedule %s: %w", itemID, auctionerrors.ErrAuctionNotFound)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return model.AuctionItem{}, fmt.Errorf("update schedule %s: %w", itemID, auctionerrors.ErrAuctionNotFound)
	}
	e.item.BidStartTime = start
	e.item.BidEndTime = end
	return copyItem(e.item), nil
}

// DeleteAuction removes an auction together with its bids and returns what was removed
func (r *MemoryRepo) DeleteAuction(_ context.Context, itemID string) (model.AuctionItem, error) {
	r.mu.Lock()
	e, ok := r.auctions[itemID]
	if ok {
		delete(r.auctions, itemID)
		r.unindexAuction(itemID)
	}
	r.mu.Unlock()
	if !ok {
		return model.AuctionItem{}, fmt.Errorf("delete auction %s: %w", itemID, auctionerrors.ErrAuctionNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.deleted = true
	return copyItem(e.item), nil
}

// RecordBid lets decide inspect the auction and appends the bid it returns.
// The snapshot, the decision and the append happen under the auction's write lock.
func (r *MemoryRepo) RecordBid(_ context.Context, itemID string, decide BidDecider) (model.Bid, error) {
	e, ok := r.entry(itemID)
	if !ok {
		return decide(nil)
	}

	e.mu.Lock()
	if e.deleted {
		e.mu.Unlock()
		return decide(nil)
	}
	snapshot := copyItem(e.item)
	bid, err := decide(&snapshot)
	if err != nil {
		e.mu.Unlock()
		return model.Bid{}, err
	}
	e.item.Bids = append(e.item.Bids, bid)
	e.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.auctions[itemID] != e {
		// deleted after the bid was appended; keep the index free of it
		return bid, nil
	}
	for _, id := range r.userItems[bid.UserID] {
		if id == itemID {
			return bid, nil
		}
	}
	r.userItems[bid.UserID] = append(r.userItems[bid.UserID], itemID)

	return bid, nil
}

// CloseAuction lets decide compute the outcome and marks the auction closed
func (r *MemoryRepo) CloseAuction(_ context.Context, itemID string, decide CloseDecider) (model.CloseResult, error) {
	e, ok := r.entry(itemID)
	if !ok {
		return model.CloseResult{}, fmt.Errorf("close auction %s: %w", itemID, auctionerrors.ErrAuctionNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return model.CloseResult{}, fmt.Errorf("close auction %s: %w", itemID, auctionerrors.ErrAuctionNotFound)
	}
	result, err := decide(copyItem(e.item))
	if err != nil {
		return model.CloseResult{}, err
	}
	closedAt := result.ClosedAt
	e.item.ClosedAt = &closedAt
	return result, nil
}

// GetBidsByAuction returns all bids of an auction in placement order
func (r *MemoryRepo) GetBidsByAuction(ctx context.Context, itemID string) ([]model.Bid, error) {
	item, err := r.GetAuction(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return item.Bids, nil
}

// GetAuctionsByUser returns all auctions a user has bid on
func (r *MemoryRepo) GetAuctionsByUser(ctx context.Context, userID string) ([]model.AuctionItem, error) {
	r.mu.RLock()
	itemIDs := append([]string(nil), r.userItems[userID]...)
	r.mu.RUnlock()

	items := make([]model.AuctionItem, 0, len(itemIDs))
	for _, id := range itemIDs {
		if item, err := r.GetAuction(ctx, id); err == nil {
			items = append(items, item)
		}
	}
	return items, nil
}

// CreateUser stores a new user; emails are unique regardless of case
func (r *MemoryRepo) CreateUser(_ context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, taken := r.emails[key]; taken {
		return fmt.Errorf("create user %s: %w", user.Email, auctionerrors.ErrEmailTaken)
	}
	r.users[user.UserID] = user
	r.emails[key] = user.UserID
	return nil
}

// GetUser returns a user by id
func (r *MemoryRepo) GetUser(_ context.Context, userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return user, nil
}

// GetUserByEmail returns a user by case-insensitive email
func (r *MemoryRepo) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emails[strings.ToLower(email)]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", email, auctionerrors.ErrUserNotFound)
	}
	return r.users[id], nil
}

// ListUsers returns all users ordered by email
func (r *MemoryRepo) ListUsers(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

// CountUsers returns the number of registered users
func (r *MemoryRepo) CountUsers(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

// unindexAuction drops itemID from every user's bid index. r.mu must be held.
func (r *MemoryRepo) unindexAuction(itemID string) {
	for userID, ids := range r.userItems {
		kept := ids[:0]
		for _, id := range ids {
			if id != itemID {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			delete(r.userItems, userID)
			continue
		}
		r.userItems[userID] = kept
	}
}

func copyItem(item model.AuctionItem) model.AuctionItem {
	out := item
	out.Bids = append([]model.Bid(nil), item.Bids...)
	if item.ClosedAt != nil {
		closedAt := *item.ClosedAt
		out.ClosedAt = &closedAt
	}
	return out
}
