package models

import "time"

// Role is the authorization role carried by a user and their access token
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered participant of the auction house
type User struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuctionItem represents a single lot offered for auction.
// Bids are kept ordered by placement time.
type AuctionItem struct {
	ItemID        string     `json:"item_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	StartingPrice float64    `json:"starting_price"`
	CreatedAt     time.Time  `json:"created_at"`
	BidStartTime  time.Time  `json:"bid_start_time"`
	BidEndTime    time.Time  `json:"bid_end_time"`
	ImageURL      string     `json:"image_url,omitempty"`
	OwnerID       string     `json:"owner_id"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	Bids          []Bid      `json:"bids"`
}

// Bid represents a user's bid on an auction item
type Bid struct {
	BidID         string    `json:"bid_id"`
	AuctionItemID string    `json:"auction_item_id"`
	UserID        string    `json:"user_id"`
	Amount        float64   `json:"amount"`
	BidTime       time.Time `json:"bid_time"`
}

// CloseResult is the settlement-ready outcome of closing an auction
type CloseResult struct {
	AuctionItemID string    `json:"auction_item_id"`
	WinnerUserID  string    `json:"winner_user_id"`
	WinningAmount float64   `json:"winning_amount"`
	WinningBidID  string    `json:"winning_bid_id"`
	ClosedAt      time.Time `json:"closed_at"`
}
