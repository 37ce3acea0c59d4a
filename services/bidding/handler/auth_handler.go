package handler

//go:generate mockgen -source=auth_handler.go -destination=mock_auth_handler.go -package=handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	auth "gem-auction/internal/authService"
	model "gem-auction/internal/models"
	"gem-auction/services/bidding/helpers"
	"gem-auction/utils"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, email, password string) (model.User, error)
	Login(ctx context.Context, email, password string) (auth.Session, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

type AuthHandler struct {
	service AuthServiceInterface
}

func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterHandler handles POST /auth/register
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req helpers.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterHandler", err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		helpers.RespondError(c, "RegisterHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToUserResponse(user), "user registered successfully")
	helpers.LogSuccess("RegisterHandler", "user registered successfully", map[string]any{"user_id": user.UserID})
}

// LoginHandler handles POST /auth/login
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		helpers.RespondError(c, "LoginHandler", err, nil)
		return
	}

	resp := helpers.LoginResponse{
		AccessToken: session.Token.Token,
		ExpiresAt:   session.Token.Exp.UTC().Format(time.RFC3339),
		User:        helpers.ToUserResponse(session.User),
	}
	utils.JSONResponse(c, http.StatusOK, resp, "login successful")
	helpers.LogSuccess("LoginHandler", "login successful", map[string]any{"user_id": session.User.UserID})
}
