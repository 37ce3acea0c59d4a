// Package notify broadcasts auction events to interested subscribers.
// Delivery is fire-and-forget: callers log a failed Notify and move on.
package notify

//go:generate mockgen -source=notify.go -destination=mock_notify.go -package=notify

import (
	"context"
	"encoding/json"
	"time"

	"gem-auction/utils"
)

// Kind names the event being broadcast
type Kind string

const (
	KindBidPlaced        Kind = "bid_placed"
	KindBiddingScheduled Kind = "bidding_scheduled"
	KindAuctionClosed    Kind = "auction_closed"
)

// Event is a human-readable notification about one auction
type Event struct {
	Kind      Kind      `json:"kind"`
	AuctionID string    `json:"auction_id"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

// Notifier delivers events to subscribers
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

func encode(event Event) ([]byte, error) {
	return json.Marshal(event)
}

// LogNotifier writes events to the application log only
type LogNotifier struct{}

// Notify logs the event at info level
func (LogNotifier) Notify(_ context.Context, event Event) error {
	utils.Info("auction event", map[string]any{
		"kind":       event.Kind,
		"auction_id": event.AuctionID,
		"message":    event.Message,
	})
	return nil
}
