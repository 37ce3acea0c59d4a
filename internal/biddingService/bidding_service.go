package bidding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gem-auction/internal/assets"
	"gem-auction/internal/auction"
	"gem-auction/internal/auctionerrors"
	"gem-auction/internal/models"
	"gem-auction/internal/notify"
	"gem-auction/internal/repository"
	"gem-auction/utils"
)

// Currency all prices are quoted in
const Currency = "LKR"

// BiddingService defines the business logic for auction bidding
type BiddingService struct {
	repo     repository.AuctionDB
	users    repository.UserDB
	notifier notify.Notifier
	assets   assets.Store
	now      func() time.Time
}

// Option customises a BiddingService
type Option func(*BiddingService)

// WithNotifier sets where bid and schedule events are broadcast
func WithNotifier(n notify.Notifier) Option {
	return func(s *BiddingService) { s.notifier = n }
}

// WithAssetStore sets the store used to remove images of deleted auctions
func WithAssetStore(store assets.Store) Option {
	return func(s *BiddingService) { s.assets = store }
}

// WithClock replaces the server clock
func WithClock(now func() time.Time) Option {
	return func(s *BiddingService) { s.now = now }
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB, users repository.UserDB, opts ...Option) *BiddingService {
	s := &BiddingService{
		repo:     repo,
		users:    users,
		notifier: notify.LogNotifier{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewAuction is the input for creating an auction
type NewAuction struct {
	Name          string
	Description   string
	StartingPrice float64
	BidStartTime  time.Time
	BidEndTime    time.Time
	ImageURL      string
}

// AuctionView is an auction together with its state at the time it was read
type AuctionView struct {
	Item              models.AuctionItem
	Phase             auction.Phase
	CurrentHighestBid float64
	WinningBid        *models.Bid
}

// CheckoutQuote is what the winning buyer owes, with the fields a payment provider needs
type CheckoutQuote struct {
	AuctionID   string
	AuctionName string
	BuyerID     string
	BuyerEmail  string
	Currency    string
	auction.Quote
}

func (s *BiddingService) clock() time.Time {
	return auction.NormalizeUTC(s.now())
}

func (s *BiddingService) view(item models.AuctionItem, now time.Time) AuctionView {
	eval := auction.Evaluate(item, now)
	v := AuctionView{Item: item, Phase: eval.Phase, CurrentHighestBid: eval.CurrentHighestBid}
	if winning, ok := auction.WinningBid(item.Bids); ok {
		v.WinningBid = &winning
	}
	return v
}

func (s *BiddingService) views(items []models.AuctionItem) []AuctionView {
	now := s.clock()
	views := make([]AuctionView, 0, len(items))
	for _, item := range items {
		views = append(views, s.view(item, now))
	}
	return views
}

func (s *BiddingService) publish(ctx context.Context, kind notify.Kind, auctionID, message string) {
	event := notify.Event{Kind: kind, AuctionID: auctionID, Message: message, At: s.clock()}
	if err := s.notifier.Notify(ctx, event); err != nil {
		utils.Warn("service: notification failed", map[string]any{
			"kind":       kind,
			"auction_id": auctionID,
			"error":      err.Error(),
		})
	}
}

// CreateAuction validates and stores a new auction owned by ownerID
func (s *BiddingService) CreateAuction(ctx context.Context, ownerID string, in NewAuction) (AuctionView, error) {
	if ownerID == "" {
		return AuctionView{}, fmt.Errorf("service: %w - missing owner", auctionerrors.ErrInvalidAuction)
	}
	if strings.TrimSpace(in.Name) == "" {
		return AuctionView{}, fmt.Errorf("service: %w - name is required", auctionerrors.ErrInvalidAuction)
	}
	if in.StartingPrice < 0 {
		return AuctionView{}, fmt.Errorf("service: %w - negative starting price", auctionerrors.ErrInvalidAuction)
	}
	start, end := auction.NormalizeUTC(in.BidStartTime), auction.NormalizeUTC(in.BidEndTime)
	if !end.After(start) {
		return AuctionView{}, fmt.Errorf("service: %w", auctionerrors.ErrInvalidSchedule)
	}

	item := models.AuctionItem{
		ItemID:        utils.GenerateID(),
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		StartingPrice: in.StartingPrice,
		CreatedAt:     s.clock(),
		BidStartTime:  start,
		BidEndTime:    end,
		ImageURL:      in.ImageURL,
		OwnerID:       ownerID,
	}
	if err := s.repo.CreateAuction(ctx, item); err != nil {
		return AuctionView{}, fmt.Errorf("service: failed to create auction %q: %w", item.Name, err)
	}
	return s.view(item, item.CreatedAt), nil
}

// ListAuctions returns every auction with its current phase and highest bid
func (s *BiddingService) ListAuctions(ctx context.Context) ([]AuctionView, error) {
	items, err := s.repo.ListAuctions(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	return s.views(items), nil
}

// GetAuction returns one auction with its phase, highest bid and winning bid
func (s *BiddingService) GetAuction(ctx context.Context, auctionID string) (AuctionView, error) {
	if auctionID == "" {
		return AuctionView{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrAuctionNotFound)
	}
	item, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return AuctionView{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return s.view(item, s.clock()), nil
}

// ScheduleBidding moves the bidding window of an auction and announces it
func (s *BiddingService) ScheduleBidding(ctx context.Context, auctionID string, start, end time.Time) (AuctionView, error) {
	start, end = auction.NormalizeUTC(start), auction.NormalizeUTC(end)
	if !end.After(start) {
		return AuctionView{}, fmt.Errorf("service: %w", auctionerrors.ErrInvalidSchedule)
	}

	item, err := s.repo.UpdateSchedule(ctx, auctionID, start, end)
	if err != nil {
		return AuctionView{}, fmt.Errorf("service: failed to schedule auction %s: %w", auctionID, err)
	}

	s.publish(ctx, notify.KindBiddingScheduled, item.ItemID,
		fmt.Sprintf("Bidding started for '%s'! Ends at %s", item.Name, item.BidEndTime.Format("15:04:05")))

	return s.view(item, s.clock()), nil
}

// DeleteAuction removes an auction, its bids and its stored image
func (s *BiddingService) DeleteAuction(ctx context.Context, auctionID string) error {
	item, err := s.repo.DeleteAuction(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("service: failed to delete auction %s: %w", auctionID, err)
	}

	if s.assets != nil && item.ImageURL != "" {
		if err := s.assets.Delete(item.ImageURL); err != nil {
			utils.Warn("service: failed to delete auction image", map[string]any{
				"auction_id": auctionID,
				"image_url":  item.ImageURL,
				"error":      err.Error(),
			})
		}
	}
	return nil
}

// PlaceBid validates and records a user's bid for an auction.
// The bid is checked against the highest bid while the auction is locked,
// so concurrent bids on one auction are decided one at a time. A missing
// auction is reported before a closed window, and both before a low amount.
func (s *BiddingService) PlaceBid(ctx context.Context, auctionID, userID string, amount float64) (models.Bid, error) {
	if auctionID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrAuctionNotFound)
	}
	if userID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - missing bidder", auctionerrors.ErrInvalidBid)
	}

	var name string
	bid, err := s.repo.RecordBid(ctx, auctionID, func(item *models.AuctionItem) (models.Bid, error) {
		if item != nil {
			name = item.Name
		}
		return auction.ValidateBid(item, s.clock(), amount, userID)
	})
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to record bid for auction %s by user %s: %w", auctionID, userID, err)
	}

	s.publish(ctx, notify.KindBidPlaced, auctionID,
		fmt.Sprintf("New bid of %.2f on '%s'", bid.Amount, name))

	return bid, nil
}

// GetBidsForAuction returns all bids for a specific auction
func (s *BiddingService) GetBidsForAuction(ctx context.Context, auctionID string) ([]models.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrAuctionNotFound)
	}

	bids, err := s.repo.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}

	return bids, nil
}

// GetWinningBid returns the highest bid for a specific auction
func (s *BiddingService) GetWinningBid(ctx context.Context, auctionID string) (models.Bid, error) {
	bids, err := s.GetBidsForAuction(ctx, auctionID)
	if err != nil {
		return models.Bid{}, err
	}

	winning, ok := auction.WinningBid(bids)
	if !ok {
		return models.Bid{}, fmt.Errorf("service: auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return winning, nil
}

// CloseAuction finalizes an auction and reports its winner
func (s *BiddingService) CloseAuction(ctx context.Context, auctionID string) (models.CloseResult, error) {
	var name string
	result, err := s.repo.CloseAuction(ctx, auctionID, func(item models.AuctionItem) (models.CloseResult, error) {
		name = item.Name
		return auction.Close(item, s.clock())
	})
	if err != nil {
		return models.CloseResult{}, fmt.Errorf("service: failed to close auction %s: %w", auctionID, err)
	}

	s.publish(ctx, notify.KindAuctionClosed, auctionID,
		fmt.Sprintf("Auction '%s' closed at %.2f", name, result.WinningAmount))

	return result, nil
}

// Checkout prices the lot for its winner. Only the winning bidder of an
// auction whose window has passed gets a quote.
func (s *BiddingService) Checkout(ctx context.Context, auctionID, userID string) (CheckoutQuote, error) {
	v, err := s.GetAuction(ctx, auctionID)
	if err != nil {
		return CheckoutQuote{}, err
	}
	if v.Phase != auction.PhaseClosed {
		return CheckoutQuote{}, fmt.Errorf("service: auction %s: %w", auctionID, auctionerrors.ErrAuctionNotClosed)
	}
	if v.WinningBid == nil {
		return CheckoutQuote{}, fmt.Errorf("service: auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	if v.WinningBid.UserID != userID {
		return CheckoutQuote{}, fmt.Errorf("service: auction %s: %w", auctionID, auctionerrors.ErrNotWinner)
	}

	buyer, err := s.users.GetUser(ctx, userID)
	if err != nil && !errors.Is(err, auctionerrors.ErrUserNotFound) {
		return CheckoutQuote{}, fmt.Errorf("service: failed to load buyer %s: %w", userID, err)
	}

	return CheckoutQuote{
		AuctionID:   v.Item.ItemID,
		AuctionName: v.Item.Name,
		BuyerID:     userID,
		BuyerEmail:  buyer.Email,
		Currency:    Currency,
		Quote:       auction.ComputeTotal(v.WinningBid.Amount),
	}, nil
}

// GetAuctionsByUser returns all auctions a user has placed bids on
func (s *BiddingService) GetAuctionsByUser(ctx context.Context, userID string) ([]AuctionView, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrInvalidInput)
	}

	items, err := s.repo.GetAuctionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get auctions for user %s: %w", userID, err)
	}

	return s.views(items), nil
}
