package server

import (
	"github.com/gin-gonic/gin"

	"gem-auction/internal/models"
	handler "gem-auction/services/bidding/handler"
)

// AuthService is what the router needs from the auth layer
type AuthService interface {
	handler.AuthServiceInterface
	Authenticator
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(biddingService handler.BiddingServiceInterface, authService AuthService) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	biddingHandler := handler.NewBiddingHandler(biddingService)
	authHandler := handler.NewAuthHandler(authService)
	adminHandler := handler.NewAdminHandler(biddingService, authService)

	authenticated := AuthMiddleware(authService)
	anyRole := RequireRole(models.RoleUser, models.RoleAdmin)
	adminOnly := RequireRole(models.RoleAdmin)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.RegisterHandler)
		authGroup.POST("/login", authHandler.LoginHandler)
	}

	auctions := router.Group("/auctions")
	{
		auctions.GET("", biddingHandler.ListAuctionsHandler)
		auctions.GET("/:id", biddingHandler.GetAuctionHandler)
		auctions.GET("/:id/bids", biddingHandler.GetBidsByAuctionHandler)
		auctions.GET("/:id/winning", biddingHandler.GetWinningBidHandler)

		auctions.POST("", authenticated, anyRole, biddingHandler.CreateAuctionHandler)
		auctions.GET("/:id/checkout", authenticated, anyRole, biddingHandler.CheckoutHandler)

		auctions.PUT("/:id/schedule", authenticated, adminOnly, biddingHandler.ScheduleBiddingHandler)
		auctions.PUT("/:id/close", authenticated, adminOnly, biddingHandler.CloseAuctionHandler)
		auctions.DELETE("/:id", authenticated, adminOnly, biddingHandler.DeleteAuctionHandler)
	}

	bids := router.Group("/bids", authenticated, anyRole)
	{
		bids.POST("", biddingHandler.RecordBidHandler)
	}

	users := router.Group("/users")
	{
		users.GET("/:user_id/auctions", biddingHandler.GetAuctionsByUserHandler)
	}

	admin := router.Group("/admin", authenticated, adminOnly)
	{
		admin.GET("/overview", adminHandler.OverviewHandler)
		admin.GET("/auctions", adminHandler.UpcomingAuctionsHandler)
		admin.GET("/users", adminHandler.ListUsersHandler)
	}

	return router
}
