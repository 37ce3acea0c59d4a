package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"gem-auction/internal/auction"
	"gem-auction/internal/auctionerrors"
	auth "gem-auction/internal/authService"
	bidding "gem-auction/internal/biddingService"
	model "gem-auction/internal/models"
	"gem-auction/services/bidding/helpers"
	"gem-auction/utils"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *MockAuthServiceInterface, *MockBiddingServiceInterface) {
	ctrl := gomock.NewController(t)
	authService := NewMockAuthServiceInterface(ctrl)
	biddingService := NewMockBiddingServiceInterface(ctrl)

	authHandler := NewAuthHandler(authService)
	adminHandler := NewAdminHandler(biddingService, authService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auth/register", authHandler.RegisterHandler)
	router.POST("/auth/login", authHandler.LoginHandler)
	router.GET("/admin/overview", adminHandler.OverviewHandler)
	router.GET("/admin/auctions", adminHandler.UpcomingAuctionsHandler)
	router.GET("/admin/users", adminHandler.ListUsersHandler)
	return router, authService, biddingService
}

func TestRegisterHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func(m *MockAuthServiceInterface)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:        "registered",
			requestBody: helpers.RegisterRequest{Email: "buyer@example.com", Password: "sapphire"},
			mockSetup: func(m *MockAuthServiceInterface) {
				m.EXPECT().Register(gomock.Any(), "buyer@example.com", "sapphire").
					Return(model.User{UserID: "u1", Email: "buyer@example.com", Role: model.RoleUser, PasswordHash: "secret-hash"}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "user registered successfully",
		},
		{
			name:           "bad_email",
			requestBody:    helpers.RegisterRequest{Email: "buyer", Password: "sapphire"},
			mockSetup:      func(*MockAuthServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "short_password",
			requestBody:    helpers.RegisterRequest{Email: "buyer@example.com", Password: "abc"},
			mockSetup:      func(*MockAuthServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:        "duplicate_email",
			requestBody: helpers.RegisterRequest{Email: "buyer@example.com", Password: "sapphire"},
			mockSetup: func(m *MockAuthServiceInterface) {
				m.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any()).Return(model.User{}, auctionerrors.ErrEmailTaken)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "email already registered",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, m, _ := newAuthRouter(t)
			tc.mockSetup(m)

			w, resp := doRequest(t, router, http.MethodPost, "/auth/register", tc.requestBody)
			require.Equal(t, tc.expectedStatus, w.Code)
			require.Equal(t, tc.expectedMsg, resp["message"])
			if w.Code == http.StatusCreated {
				data := resp["data"].(map[string]any)
				require.Equal(t, "User", data["role"])
				require.NotContains(t, data, "password_hash")
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	t.Parallel()

	t.Run("issues_token", func(t *testing.T) {
		t.Parallel()

		router, m, _ := newAuthRouter(t)
		exp := time.Date(2025, 5, 1, 14, 0, 0, 0, time.UTC)
		m.EXPECT().Login(gomock.Any(), "buyer@example.com", "sapphire").Return(auth.Session{
			User:  model.User{UserID: "u1", Email: "buyer@example.com", Role: model.RoleUser},
			Token: utils.AccessToken{Token: "signed.jwt.value", Exp: exp},
		}, nil)

		w, resp := doRequest(t, router, http.MethodPost, "/auth/login", helpers.LoginRequest{Email: "buyer@example.com", Password: "sapphire"})
		require.Equal(t, http.StatusOK, w.Code)
		data := resp["data"].(map[string]any)
		require.Equal(t, "signed.jwt.value", data["access_token"])
		require.Equal(t, "2025-05-01T14:00:00Z", data["expires_at"])
	})

	t.Run("wrong_password", func(t *testing.T) {
		t.Parallel()

		router, m, _ := newAuthRouter(t)
		m.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(auth.Session{}, auctionerrors.ErrInvalidCredentials)

		w, resp := doRequest(t, router, http.MethodPost, "/auth/login", helpers.LoginRequest{Email: "buyer@example.com", Password: "nope"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "invalid credentials", resp["message"])
	})
}

func TestAdminHandlers(t *testing.T) {
	t.Parallel()

	t.Run("overview", func(t *testing.T) {
		t.Parallel()

		router, _, b := newAuthRouter(t)
		b.EXPECT().Overview(gomock.Any()).Return(bidding.Overview{
			Summary:         auction.Summary{ActiveCount: 3, TotalSales: 42000.5, HighValueBidderCount: 2},
			RegisteredUsers: 11,
		}, nil)

		w, resp := doRequest(t, router, http.MethodGet, "/admin/overview", nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := resp["data"].(map[string]any)
		require.Equal(t, 3.0, data["active_auctions"])
		require.Equal(t, 11.0, data["registered_users"])
		require.Equal(t, 42000.5, data["total_sales"])
		require.Equal(t, 2.0, data["high_value_bidders"])
	})

	t.Run("upcoming_auctions", func(t *testing.T) {
		t.Parallel()

		router, _, b := newAuthRouter(t)
		b.EXPECT().UpcomingAuctions(gomock.Any()).Return([]bidding.AuctionView{
			{Item: model.AuctionItem{ItemID: "soon"}, Phase: auction.PhaseOpen},
			{Item: model.AuctionItem{ItemID: "later"}, Phase: auction.PhaseScheduled},
		}, nil)

		w, resp := doRequest(t, router, http.MethodGet, "/admin/auctions", nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := resp["data"].([]any)
		require.Equal(t, "soon", data[0].(map[string]any)["item_id"])
	})

	t.Run("users", func(t *testing.T) {
		t.Parallel()

		router, a, _ := newAuthRouter(t)
		a.EXPECT().ListUsers(gomock.Any()).Return([]model.User{
			{UserID: "u1", Email: "a@example.com", Role: model.RoleAdmin},
			{UserID: "u2", Email: "b@example.com", Role: model.RoleUser},
		}, nil)

		w, resp := doRequest(t, router, http.MethodGet, "/admin/users", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, resp["data"].([]any), 2)
	})

	t.Run("overview_failure", func(t *testing.T) {
		t.Parallel()

		router, _, b := newAuthRouter(t)
		b.EXPECT().Overview(gomock.Any()).Return(bidding.Overview{}, errors.New("db down"))

		w, _ := doRequest(t, router, http.MethodGet, "/admin/overview", nil)
		require.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
