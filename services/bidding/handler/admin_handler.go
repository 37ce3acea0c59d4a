package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gem-auction/services/bidding/helpers"
	"gem-auction/utils"
)

// AdminHandler serves the back-office dashboard
type AdminHandler struct {
	service BiddingServiceInterface
	users   AuthServiceInterface
}

func NewAdminHandler(service BiddingServiceInterface, users AuthServiceInterface) *AdminHandler {
	return &AdminHandler{service: service, users: users}
}

// OverviewHandler handles GET /admin/overview
func (h *AdminHandler) OverviewHandler(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context())
	if err != nil {
		helpers.RespondError(c, "OverviewHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToOverviewResponse(overview), "overview retrieved successfully")
}

// UpcomingAuctionsHandler handles GET /admin/auctions
func (h *AdminHandler) UpcomingAuctionsHandler(c *gin.Context) {
	views, err := h.service.UpcomingAuctions(c.Request.Context())
	if err != nil {
		helpers.RespondError(c, "UpcomingAuctionsHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToAuctionResponses(views), "auctions retrieved successfully")
}

// ListUsersHandler handles GET /admin/users
func (h *AdminHandler) ListUsersHandler(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		helpers.RespondError(c, "ListUsersHandler", err, nil)
		return
	}

	resp := make([]helpers.UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, helpers.ToUserResponse(u))
	}
	utils.JSONResponse(c, http.StatusOK, resp, "users retrieved successfully")
}
