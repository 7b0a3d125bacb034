package handler

import (
	"net/http"

	"github.com/cathoderay/accountsvc/internal/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig holds everything NewRouter wires into the engine.
type RouterConfig struct {
	Accounts *AccountHandler
	Auth     *AuthHandler
	// Authenticate guards the /accounts/me routes.
	Authenticate gin.HandlerFunc
	Logger       *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware(cfg.Logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/login", cfg.Auth.Login)

	accounts := router.Group("/accounts")
	{
		accounts.POST("", cfg.Accounts.CreateAccount)
		accounts.GET("", cfg.Accounts.ListAccounts)

		me := accounts.Group("/me", cfg.Authenticate)
		me.GET("", cfg.Accounts.GetSelf)
		me.PUT("", cfg.Accounts.UpdateSelf)
		me.DELETE("", cfg.Accounts.DeleteSelf)
	}

	return router
}
