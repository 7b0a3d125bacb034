package handler

import (
	"context"
	"net/http"

	"github.com/cathoderay/accountsvc/internal/cqrs"
	"github.com/cathoderay/accountsvc/internal/middleware"
	"github.com/cathoderay/accountsvc/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// AuthQuerier exchanges credentials for a session token.
type AuthQuerier interface {
	Login(context.Context, cqrs.LoginCommand) (string, error)
}

type AuthHandler struct {
	auth   AuthQuerier
	logger *zap.Logger
}

// LoginRequest is not format-validated. A malformed or empty credential is
// just another mismatch and fails like any other.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

func NewAuthHandler(auth AuthQuerier, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.auth.Login(c.Request.Context(), cqrs.LoginCommand{Email: req.Email, Password: req.Password})
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			middleware.RespondWithError(c, http.StatusNotFound, "Bad email or password")
			return
		}
		h.logger.Error("login failed", zap.String("requestId", middleware.GetRequestID(c)), zap.Error(err))
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{AccessToken: token})
}
