package handler

//go:generate mockgen -source=bidding_handler.go -destination=mock_handler.go -package=handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gem-auction/internal/auction"
	"gem-auction/internal/auctionerrors"
	bidding "gem-auction/internal/biddingService"
	model "gem-auction/internal/models"
	"gem-auction/services/bidding/helpers"
	"gem-auction/utils"
)

type BiddingServiceInterface interface {
	CreateAuction(ctx context.Context, ownerID string, in bidding.NewAuction) (bidding.AuctionView, error)
	ListAuctions(ctx context.Context) ([]bidding.AuctionView, error)
	GetAuction(ctx context.Context, auctionID string) (bidding.AuctionView, error)
	ScheduleBidding(ctx context.Context, auctionID string, start, end time.Time) (bidding.AuctionView, error)
	DeleteAuction(ctx context.Context, auctionID string) error
	PlaceBid(ctx context.Context, auctionID, userID string, amount float64) (model.Bid, error)
	GetBidsForAuction(ctx context.Context, auctionID string) ([]model.Bid, error)
	GetWinningBid(ctx context.Context, auctionID string) (model.Bid, error)
	CloseAuction(ctx context.Context, auctionID string) (model.CloseResult, error)
	Checkout(ctx context.Context, auctionID, userID string) (bidding.CheckoutQuote, error)
	GetAuctionsByUser(ctx context.Context, userID string) ([]bidding.AuctionView, error)
	Overview(ctx context.Context) (bidding.Overview, error)
	UpcomingAuctions(ctx context.Context) ([]bidding.AuctionView, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// CreateAuctionHandler handles POST /auctions
func (h *BiddingHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}
	start, err := auction.ParseTimestamp(req.BidStartTime)
	if err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}
	end, err := auction.ParseTimestamp(req.BidEndTime)
	if err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	ownerID, _ := helpers.Caller(c)
	v, err := h.service.CreateAuction(c.Request.Context(), ownerID, bidding.NewAuction{
		Name:          req.Name,
		Description:   req.Description,
		StartingPrice: req.StartingPrice,
		BidStartTime:  start,
		BidEndTime:    end,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		helpers.RespondError(c, "CreateAuctionHandler", err, map[string]any{"owner_id": ownerID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToAuctionResponse(v), "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": v.Item.ItemID,
		"owner_id":   ownerID,
	})
}

// ListAuctionsHandler handles GET /auctions
func (h *BiddingHandler) ListAuctionsHandler(c *gin.Context) {
	views, err := h.service.ListAuctions(c.Request.Context())
	if err != nil {
		helpers.RespondError(c, "ListAuctionsHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToAuctionResponses(views), "auctions retrieved successfully")
	helpers.LogSuccess("ListAuctionsHandler", "auctions retrieved successfully", map[string]any{"count": len(views)})
}

// GetAuctionHandler handles GET /auctions/:id
func (h *BiddingHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("id")
	v, err := h.service.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToAuctionDetailResponse(v), "auction retrieved successfully")
}

// ScheduleBiddingHandler handles PUT /auctions/:id/schedule
func (h *BiddingHandler) ScheduleBiddingHandler(c *gin.Context) {
	auctionID := c.Param("id")
	var req helpers.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "ScheduleBiddingHandler", err)
		return
	}
	start, err := auction.ParseTimestamp(req.BidStartTime)
	if err != nil {
		helpers.HandleBindError(c, "ScheduleBiddingHandler", err)
		return
	}
	end, err := auction.ParseTimestamp(req.BidEndTime)
	if err != nil {
		helpers.HandleBindError(c, "ScheduleBiddingHandler", err)
		return
	}

	v, err := h.service.ScheduleBidding(c.Request.Context(), auctionID, start, end)
	if err != nil {
		helpers.RespondError(c, "ScheduleBiddingHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToAuctionResponse(v), "bidding scheduled successfully")
	helpers.LogSuccess("ScheduleBiddingHandler", "bidding scheduled successfully", map[string]any{
		"auction_id": auctionID,
		"start":      v.Item.BidStartTime,
		"end":        v.Item.BidEndTime,
	})
}

// DeleteAuctionHandler handles DELETE /auctions/:id
func (h *BiddingHandler) DeleteAuctionHandler(c *gin.Context) {
	auctionID := c.Param("id")
	if err := h.service.DeleteAuction(c.Request.Context(), auctionID); err != nil {
		helpers.RespondError(c, "DeleteAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"auction_id": auctionID}, "auction deleted successfully")
	helpers.LogSuccess("DeleteAuctionHandler", "auction deleted successfully", map[string]any{"auction_id": auctionID})
}

// CloseAuctionHandler handles PUT /auctions/:id/close
func (h *BiddingHandler) CloseAuctionHandler(c *gin.Context) {
	auctionID := c.Param("id")
	result, err := h.service.CloseAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "CloseAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToCloseResponse(result), "auction closed successfully")
	helpers.LogSuccess("CloseAuctionHandler", "auction closed successfully", map[string]any{
		"auction_id": auctionID,
		"winner":     result.WinnerUserID,
		"amount":     result.WinningAmount,
	})
}

// RecordBidHandler handles POST /bids
func (h *BiddingHandler) RecordBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RecordBidHandler", err)
		return
	}

	userID, _ := helpers.Caller(c)
	bid, err := h.service.PlaceBid(c.Request.Context(), req.AuctionID, userID, req.Amount)
	if err != nil {
		helpers.RespondError(c, "RecordBidHandler", err, map[string]any{
			"auction_id": req.AuctionID,
			"user_id":    userID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToBidResponse(bid), "bid recorded successfully")
	helpers.LogSuccess("RecordBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": bid.AuctionItemID,
		"user_id":    userID,
		"amount":     bid.Amount,
	})
}

// GetBidsByAuctionHandler handles GET /auctions/:id/bids
func (h *BiddingHandler) GetBidsByAuctionHandler(c *gin.Context) {
	auctionID := c.Param("id")
	bids, err := h.service.GetBidsForAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "GetBidsByAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponses(bids), "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByAuctionHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(bids),
	})
}

// GetWinningBidHandler handles GET /auctions/:id/winning
func (h *BiddingHandler) GetWinningBidHandler(c *gin.Context) {
	auctionID := c.Param("id")
	bid, err := h.service.GetWinningBid(c.Request.Context(), auctionID)
	if err != nil {
		// an auction without bids has no winner yet
		if errors.Is(err, auctionerrors.ErrNoBids) {
			utils.JSONError(c, http.StatusNotFound, err, "no winning bid found")
			utils.Info("GetWinningBidHandler: no winning bid found", map[string]any{"auction_id": auctionID})
			return
		}
		helpers.RespondError(c, "GetWinningBidHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponse(bid), "winning bid retrieved successfully")
	helpers.LogSuccess("GetWinningBidHandler", "winning bid retrieved successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": auctionID,
		"user_id":    bid.UserID,
		"amount":     bid.Amount,
	})
}

// CheckoutHandler handles GET /auctions/:id/checkout
func (h *BiddingHandler) CheckoutHandler(c *gin.Context) {
	auctionID := c.Param("id")
	userID, _ := helpers.Caller(c)
	quote, err := h.service.Checkout(c.Request.Context(), auctionID, userID)
	if err != nil {
		helpers.RespondError(c, "CheckoutHandler", err, map[string]any{"auction_id": auctionID, "user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToCheckoutResponse(quote), "checkout computed successfully")
	helpers.LogSuccess("CheckoutHandler", "checkout computed successfully", map[string]any{
		"auction_id": auctionID,
		"user_id":    userID,
		"total":      quote.Total,
	})
}

// GetAuctionsByUserHandler handles GET /users/:user_id/auctions
func (h *BiddingHandler) GetAuctionsByUserHandler(c *gin.Context) {
	userID := c.Param("user_id")
	views, err := h.service.GetAuctionsByUser(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "GetAuctionsByUserHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToAuctionResponses(views), "auctions retrieved successfully")
	helpers.LogSuccess("GetAuctionsByUserHandler", "auctions retrieved successfully", map[string]any{
		"user_id":        userID,
		"auctions_count": len(views),
	})
}
