package helpers

import (
	"sort"
	"time"

	"gem-auction/internal/auction"
	bidding "gem-auction/internal/biddingService"
	"gem-auction/internal/models"
)

// Request/Response DTOs
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   string       `json:"expires_at"`
	User        UserResponse `json:"user"`
}

// CreateAuctionRequest carries timestamps as strings; values without an
// offset are read as UTC
type CreateAuctionRequest struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	StartingPrice float64 `json:"starting_price" binding:"gte=0"`
	BidStartTime  string  `json:"bid_start_time" binding:"required"`
	BidEndTime    string  `json:"bid_end_time" binding:"required"`
	ImageURL      string  `json:"image_url"`
}

type ScheduleRequest struct {
	BidStartTime string `json:"bid_start_time" binding:"required"`
	BidEndTime   string `json:"bid_end_time" binding:"required"`
}

type PlaceBidRequest struct {
	AuctionID string  `json:"auction_id" binding:"required"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
}

type BidResponse struct {
	BidID     string  `json:"bid_id"`
	AuctionID string  `json:"auction_id"`
	UserID    string  `json:"user_id"`
	Amount    float64 `json:"amount"`
	BidTime   string  `json:"bid_time"`
}

type AuctionResponse struct {
	ItemID            string  `json:"item_id"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	StartingPrice     float64 `json:"starting_price"`
	CurrentHighestBid float64 `json:"current_highest_bid"`
	Phase             string  `json:"phase"`
	BidStartTime      string  `json:"bid_start_time"`
	BidEndTime        string  `json:"bid_end_time"`
	ImageURL          string  `json:"image_url,omitempty"`
	OwnerID           string  `json:"owner_id"`
	TotalBids         int     `json:"total_bids"`
}

type AuctionDetailResponse struct {
	AuctionResponse
	ClosedAt   *string       `json:"closed_at,omitempty"`
	WinningBid *BidResponse  `json:"winning_bid"`
	Bids       []BidResponse `json:"bids"`
}

type CloseResponse struct {
	AuctionID     string  `json:"auction_id"`
	WinnerUserID  string  `json:"winner_user_id"`
	WinningBidID  string  `json:"winning_bid_id"`
	WinningAmount float64 `json:"winning_amount"`
	ClosedAt      string  `json:"closed_at"`
}

type CheckoutResponse struct {
	OrderID     string `json:"order_id"`
	AuctionName string `json:"auction_name"`
	BuyerID     string `json:"buyer_id"`
	BuyerEmail  string `json:"buyer_email"`
	Currency    string `json:"currency"`
	auction.Quote
}

type OverviewResponse struct {
	ActiveAuctions   int     `json:"active_auctions"`
	RegisteredUsers  int     `json:"registered_users"`
	TotalSales       float64 `json:"total_sales"`
	HighValueBidders int     `json:"high_value_bidders"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ToUserResponse projects a user without its password hash
func ToUserResponse(u models.User) UserResponse {
	return UserResponse{UserID: u.UserID, Email: u.Email, Role: string(u.Role), CreatedAt: formatTime(u.CreatedAt)}
}

func ToBidResponse(b models.Bid) BidResponse {
	return BidResponse{
		BidID:     b.BidID,
		AuctionID: b.AuctionItemID,
		UserID:    b.UserID,
		Amount:    b.Amount,
		BidTime:   formatTime(b.BidTime),
	}
}

// ToBidResponses keeps the order of bids
func ToBidResponses(bids []models.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, ToBidResponse(b))
	}
	return out
}

func ToAuctionResponse(v bidding.AuctionView) AuctionResponse {
	return AuctionResponse{
		ItemID:            v.Item.ItemID,
		Name:              v.Item.Name,
		Description:       v.Item.Description,
		StartingPrice:     v.Item.StartingPrice,
		CurrentHighestBid: v.CurrentHighestBid,
		Phase:             string(v.Phase),
		BidStartTime:      formatTime(v.Item.BidStartTime),
		BidEndTime:        formatTime(v.Item.BidEndTime),
		ImageURL:          v.Item.ImageURL,
		OwnerID:           v.Item.OwnerID,
		TotalBids:         len(v.Item.Bids),
	}
}

func ToAuctionResponses(views []bidding.AuctionView) []AuctionResponse {
	out := make([]AuctionResponse, 0, len(views))
	for _, v := range views {
		out = append(out, ToAuctionResponse(v))
	}
	return out
}

// ToAuctionDetailResponse lists bids newest first
func ToAuctionDetailResponse(v bidding.AuctionView) AuctionDetailResponse {
	bids := append([]models.Bid(nil), v.Item.Bids...)
	sort.SliceStable(bids, func(i, j int) bool { return bids[i].BidTime.After(bids[j].BidTime) })

	resp := AuctionDetailResponse{
		AuctionResponse: ToAuctionResponse(v),
		Bids:            ToBidResponses(bids),
	}
	if v.WinningBid != nil {
		winning := ToBidResponse(*v.WinningBid)
		resp.WinningBid = &winning
	}
	if v.Item.ClosedAt != nil {
		closedAt := formatTime(*v.Item.ClosedAt)
		resp.ClosedAt = &closedAt
	}
	return resp
}

func ToCloseResponse(r models.CloseResult) CloseResponse {
	return CloseResponse{
		AuctionID:     r.AuctionItemID,
		WinnerUserID:  r.WinnerUserID,
		WinningBidID:  r.WinningBidID,
		WinningAmount: r.WinningAmount,
		ClosedAt:      formatTime(r.ClosedAt),
	}
}

func ToCheckoutResponse(q bidding.CheckoutQuote) CheckoutResponse {
	return CheckoutResponse{
		OrderID:     q.AuctionID,
		AuctionName: q.AuctionName,
		BuyerID:     q.BuyerID,
		BuyerEmail:  q.BuyerEmail,
		Currency:    q.Currency,
		Quote:       q.Quote,
	}
}

func ToOverviewResponse(o bidding.Overview) OverviewResponse {
	return OverviewResponse{
		ActiveAuctions:   o.ActiveCount,
		RegisteredUsers:  o.RegisteredUsers,
		TotalSales:       o.TotalSales,
		HighValueBidders: o.HighValueBidderCount,
	}
}
