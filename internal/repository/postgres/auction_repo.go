package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"gem-auction/internal/auctionerrors"
	model "gem-auction/internal/models"
	"gem-auction/internal/repository"
)

const auctionColumns = `id, name, description, starting_price, created_at, bid_start_time, bid_end_time, image_url, owner_id, closed_at`

const bidColumns = `id, auction_id, user_id, amount, bid_time`

// AuctionRepo implements repository.AuctionDB on PostgreSQL.
// Writers of one auction serialize on its row lock (SELECT ... FOR UPDATE).
type AuctionRepo struct{ db *DB }

var _ repository.AuctionDB = (*AuctionRepo)(nil)

// NewAuctionRepo constructs an auction repository.
func NewAuctionRepo(db *DB) *AuctionRepo { return &AuctionRepo{db: db} }

func scanAuction(row pgx.Row) (model.AuctionItem, error) {
	var (
		item     model.AuctionItem
		closedAt *time.Time
	)
	err := row.Scan(&item.ItemID, &item.Name, &item.Description, &item.StartingPrice, &item.CreatedAt,
		&item.BidStartTime, &item.BidEndTime, &item.ImageURL, &item.OwnerID, &closedAt)
	if err != nil {
		return model.AuctionItem{}, err
	}
	item.CreatedAt = item.CreatedAt.UTC()
	item.BidStartTime = item.BidStartTime.UTC()
	item.BidEndTime = item.BidEndTime.UTC()
	if closedAt != nil {
		t := closedAt.UTC()
		item.ClosedAt = &t
	}
	return item, nil
}

func collectBids(rows pgx.Rows) ([]model.Bid, error) {
	defer rows.Close()

	var out []model.Bid
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.BidID, &b.AuctionItemID, &b.UserID, &b.Amount, &b.BidTime); err != nil {
			return nil, err
		}
		b.BidTime = b.BidTime.UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}

func collectAuctions(rows pgx.Rows) ([]model.AuctionItem, error) {
	defer rows.Close()

	var out []model.AuctionItem
	for rows.Next() {
		item, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func loadBids(ctx context.Context, q querier, itemID string) ([]model.Bid, error) {
	const sel = `SELECT ` + bidColumns + ` FROM bids WHERE auction_id=$1 ORDER BY bid_time, id`
	rows, err := q.Query(ctx, sel, itemID)
	if err != nil {
		return nil, err
	}
	return collectBids(rows)
}

// attachBids fills Bids of items from a single query over their ids
func attachBids(ctx context.Context, q querier, items []model.AuctionItem) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, 0, len(items))
	index := make(map[string]int, len(items))
	for i, item := range items {
		ids = append(ids, item.ItemID)
		index[item.ItemID] = i
	}

	const sel = `SELECT ` + bidColumns + ` FROM bids WHERE auction_id = ANY($1) ORDER BY bid_time, id`
	rows, err := q.Query(ctx, sel, ids)
	if err != nil {
		return err
	}
	bids, err := collectBids(rows)
	if err != nil {
		return err
	}
	for _, b := range bids {
		if i, ok := index[b.AuctionItemID]; ok {
			items[i].Bids = append(items[i].Bids, b)
		}
	}
	return nil
}

// lockAuction reads an auction with its bids while holding its row lock
func lockAuction(ctx context.Context, tx pgx.Tx, itemID string) (model.AuctionItem, error) {
	const sel = `SELECT ` + auctionColumns + ` FROM auctions WHERE id=$1 FOR UPDATE`
	item, err := scanAuction(tx.QueryRow(ctx, sel, itemID))
	if err != nil {
		return model.AuctionItem{}, err
	}
	if item.Bids, err = loadBids(ctx, tx, itemID); err != nil {
		return model.AuctionItem{}, err
	}
	return item, nil
}

// CreateAuction stores a new auction
func (r *AuctionRepo) CreateAuction(ctx context.Context, item model.AuctionItem) error {
	const ins = `INSERT INTO auctions (` + auctionColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := r.db.Pool.Exec(ctx, ins, item.ItemID, item.Name, item.Description, item.StartingPrice,
		item.CreatedAt, item.BidStartTime, item.BidEndTime, item.ImageURL, item.OwnerID, item.ClosedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("create auction %s: %w", item.ItemID, auctionerrors.ErrConflict)
	}
	return err
}

// GetAuction returns an auction with its bids
func (r *AuctionRepo) GetAuction(ctx context.Context, itemID string) (model.AuctionItem, error) {
	const sel = `SELECT ` + auctionColumns + ` FROM auctions WHERE id=$1`
	item, err := scanAuction(r.db.Pool.QueryRow(ctx, sel, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.AuctionItem{}, fmt.Errorf("get auction %s: %w", itemID, auctionerrors.ErrAuctionNotFound)
		}
		return model.AuctionItem{}, err
	}
	if item.Bids, err = loadBids(ctx, r.db.Pool, itemID); err != nil {
		return model.AuctionItem{}, err
	}
	return item, nil
}

// ListAuctions returns every auction ordered by creation time
func (r *AuctionRepo) ListAuctions(ctx context.Context) ([]model.AuctionItem, error) {
	const sel = `SELECT ` + auctionColumns + ` FROM auctions ORDER BY created_at, id`
	rows, err := r.db.Pool.Query(ctx, sel)
	if err != nil {
		return nil, err
	}
	items, err := collectAuctions(rows)
	if err != nil {
		return nil, err
	}
	if err := attachBids(ctx, r.db.Pool, items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateSchedule replaces the bidding window of an auction
func (r *AuctionRepo) UpdateSchedule(ctx context.Context, itemID string, start, end time.Time) (model.AuctionItem, error) {
	const upd = `UPDATE auctions SET bid_start_time=$2, bid_end_time=$3 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, upd, itemID, start, end)
	if err != nil {
		return model.AuctionItem{}, err
	}
	if tag.RowsAffected() == 0 {
		return model.AuctionItem{}, fmt.Errorf("update schedule %s: %w", itemID, auctionerrors.ErrAuctionNotFound)
	}
	return r.GetAuction(ctx, itemID)
}

// DeleteAuction removes an auction; its bids go with it through ON DELETE CASCADE
func (r *AuctionRepo) DeleteAuction(ctx context.Context, itemID string) (deleted model.AuctionItem, err error) {
	err = r.db.inTx(ctx, func(tx pgx.Tx) error {
		item, err := lockAuction(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM auctions WHERE id=$1`, itemID); err != nil {
			return err
		}
		deleted = item
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return model.AuctionItem{}, fmt.Errorf("delete auction %s: %w", itemID, auctionerrors.ErrAuctionNotFound)
	}
	return deleted, err
}

// RecordBid lets decide inspect the locked auction and inserts the bid it returns
func (r *AuctionRepo) RecordBid(ctx context.Context, itemID string, decide repository.BidDecider) (bid model.Bid, err error) {
	err = r.db.inTx(ctx, func(tx pgx.Tx) error {
		item, err := lockAuction(ctx, tx, itemID)
		if errors.Is(err, pgx.ErrNoRows) {
			if _, derr := decide(nil); derr != nil {
				return derr
			}
			return fmt.Errorf("record bid %s: %w", itemID, auctionerrors.ErrAuctionNotFound)
		}
		if err != nil {
			return err
		}

		accepted, err := decide(&item)
		if err != nil {
			return err
		}

		const ins = `INSERT INTO bids (` + bidColumns + `) VALUES ($1,$2,$3,$4,$5)`
		if _, err := tx.Exec(ctx, ins, accepted.BidID, itemID, accepted.UserID, accepted.Amount, accepted.BidTime); err != nil {
			return err
		}
		bid = accepted
		return nil
	})
	if err != nil {
		return model.Bid{}, err
	}
	return bid, nil
}

// CloseAuction lets decide compute the outcome and stamps closed_at
func (r *AuctionRepo) CloseAuction(ctx context.Context, itemID string, decide repository.CloseDecider) (result model.CloseResult, err error) {
	err = r.db.inTx(ctx, func(tx pgx.Tx) error {
		item, err := lockAuction(ctx, tx, itemID)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("close auction %s: %w", itemID, auctionerrors.ErrAuctionNotFound)
		}
		if err != nil {
			return err
		}

		outcome, err := decide(item)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE auctions SET closed_at=$2 WHERE id=$1`, itemID, outcome.ClosedAt); err != nil {
			return err
		}
		result = outcome
		return nil
	})
	if err != nil {
		return model.CloseResult{}, err
	}
	return result, nil
}

// GetBidsByAuction returns all bids of an auction in placement order
func (r *AuctionRepo) GetBidsByAuction(ctx context.Context, itemID string) ([]model.Bid, error) {
	var exists bool
	if err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM auctions WHERE id=$1)`, itemID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("get bids %s: %w", itemID, auctionerrors.ErrAuctionNotFound)
	}
	bids, err := loadBids(ctx, r.db.Pool, itemID)
	if err != nil {
		return nil, err
	}
	if bids == nil {
		bids = []model.Bid{}
	}
	return bids, nil
}

// GetAuctionsByUser returns all auctions a user has bid on
func (r *AuctionRepo) GetAuctionsByUser(ctx context.Context, userID string) ([]model.AuctionItem, error) {
	const sel = `SELECT ` + auctionColumns + ` FROM auctions
WHERE id IN (SELECT auction_id FROM bids WHERE user_id=$1)
ORDER BY created_at, id`
	rows, err := r.db.Pool.Query(ctx, sel, userID)
	if err != nil {
		return nil, err
	}
	items, err := collectAuctions(rows)
	if err != nil {
		return nil, err
	}
	if err := attachBids(ctx, r.db.Pool, items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.AuctionItem{}
	}
	return items, nil
}
