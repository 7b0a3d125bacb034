package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cathoderay/accountsvc/internal/cqrs"
	"github.com/cathoderay/accountsvc/internal/middleware"
	"github.com/cathoderay/accountsvc/internal/models"
	"github.com/cathoderay/accountsvc/internal/profile"
	"github.com/cathoderay/accountsvc/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// AccountCommander defines the write-side operations used by AccountHandler.
type AccountCommander interface {
	CreateAccount(context.Context, cqrs.CreateAccountCommand) (*models.AccountView, error)
	UpdateAccount(context.Context, cqrs.UpdateAccountCommand) (*models.AccountView, error)
	DeleteAccount(context.Context, cqrs.DeleteAccountCommand) error
}

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	GetSelf(context.Context, cqrs.GetSelfQuery) (*models.SelfView, error)
	ListAccounts(context.Context, cqrs.ListAccountsQuery) ([]models.AccountView, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
	logger   *zap.Logger
}

// CreateAccountRequest caps passwords at 72 characters; bcrypt hashes at most
// 72 bytes and longer multi-byte input is rejected by the service.
type CreateAccountRequest struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,max=72"`
	FBAccessToken string `json:"fb_access_token" validate:"required"`
}

// UpdateAccountRequest carries a sparse update; absent or null fields are left alone.
type UpdateAccountRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=1"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Password      *string `json:"password" validate:"omitempty,min=1,max=72"`
	FBAccessToken *string `json:"fb_access_token" validate:"omitempty,min=1"`
}

type ListAccountsRequest struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=100"`
}

func NewAccountHandler(commands AccountCommander, queries AccountQuerier, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries, logger: logger}
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	account, err := h.commands.CreateAccount(c.Request.Context(), cqrs.CreateAccountCommand{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		FBAccessToken: req.FBAccessToken,
	})
	if err != nil {
		h.respondWithServiceError(c, err, "Account not found", "Failed to create account")
		return
	}

	c.JSON(http.StatusCreated, account)
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	var req ListAccountsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	limit := req.Limit
	if limit == 0 {
		limit = repository.MaxListLimit
	}

	views, err := h.queries.ListAccounts(c.Request.Context(), cqrs.ListAccountsQuery{Limit: limit})
	if err != nil {
		h.respondWithServiceError(c, err, "Account not found", "Failed to list accounts")
		return
	}

	c.JSON(http.StatusOK, views)
}

func (h *AccountHandler) GetSelf(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	view, err := h.queries.GetSelf(c.Request.Context(), cqrs.GetSelfQuery{Email: email})
	if err != nil {
		h.respondWithServiceError(c, err, "User not found", "Failed to fetch account")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *AccountHandler) UpdateSelf(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.UpdateAccount(c.Request.Context(), cqrs.UpdateAccountCommand{
		RequestingEmail: email,
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		FBAccessToken:   req.FBAccessToken,
	})
	if err != nil {
		h.respondWithServiceError(c, err, fmt.Sprintf("Account %s not found", email), "Failed to update account")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *AccountHandler) DeleteSelf(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	err := h.commands.DeleteAccount(c.Request.Context(), cqrs.DeleteAccountCommand{RequestingEmail: email})
	if err != nil {
		h.respondWithServiceError(c, err, "Account not found", "Failed to delete account")
		return
	}

	c.Status(http.StatusNoContent)
}

// respondWithServiceError maps service sentinels to HTTP statuses. Anything
// unrecognised is logged and reported as a generic 500.
func (h *AccountHandler) respondWithServiceError(c *gin.Context, err error, notFoundMsg, internalMsg string) {
	switch {
	case errors.Is(err, models.ErrAccountNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, models.ErrPasswordTooLong):
		middleware.RespondWithError(c, http.StatusBadRequest, "Password must be at most 72 bytes")
	case errors.Is(err, models.ErrEmailTaken):
		middleware.RespondWithError(c, http.StatusConflict, "Email already registered")
	case errors.Is(err, models.ErrPermissionNotGranted):
		middleware.RespondWithError(c, http.StatusBadRequest, fmt.Sprintf("permission %q not granted", profile.PublicProfilePermission))
	case errors.Is(err, models.ErrProfileUpstream):
		h.logger.Warn("profile provider failed", zap.String("requestId", middleware.GetRequestID(c)), zap.Error(err))
		middleware.RespondWithError(c, http.StatusBadGateway, "Failed to fetch public profile")
	default:
		h.logger.Error(internalMsg, zap.String("requestId", middleware.GetRequestID(c)), zap.Error(err))
		middleware.RespondWithError(c, http.StatusInternalServerError, internalMsg)
	}
}
