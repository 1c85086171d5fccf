package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jgirmay/inquizzitive/internal/accounts/models"
	"github.com/jgirmay/inquizzitive/internal/accounts/services"
	"github.com/jgirmay/inquizzitive/internal/common/errors"
	"github.com/jgirmay/inquizzitive/internal/common/middleware"
)

type AccountHandler struct {
	service      *services.AccountService
	secureCookie bool
}

func NewAccountHandler(service *services.AccountService, secureCookie bool) *AccountHandler {
	return &AccountHandler{service: service, secureCookie: secureCookie}
}

// RegisterPublicRoutes mounts the endpoints that work without a session
func (h *AccountHandler) RegisterPublicRoutes(r gin.IRouter) {
	auth := r.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout)
}

// RegisterRoutes mounts account endpoints; r must already enforce authentication
func (h *AccountHandler) RegisterRoutes(r gin.IRouter) {
	account := r.Group("/account")
	account.GET("", h.GetAccount)
	account.PUT("", h.UpdateAccount)
	account.DELETE("", h.DeleteAccount)
	account.PUT("/password", h.ChangePassword)
}

// POST /api/v1/auth/register
func (h *AccountHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("invalid request body"))
		return
	}

	user, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login sets the session cookie and also returns the token for bearer use
// POST /api/v1/auth/login
func (h *AccountHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("invalid request body"))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	maxAge := int(time.Until(resp.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, resp.Token, maxAge, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, resp)
}

// POST /api/v1/auth/logout
func (h *AccountHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), middleware.TokenFromRequest(c)); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// GET /api/v1/account
func (h *AccountHandler) GetAccount(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// PUT /api/v1/account
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("invalid request body"))
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DELETE /api/v1/account
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.UserID(c)); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)
	c.Status(http.StatusNoContent)
}

// PUT /api/v1/account/password
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("invalid request body"))
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), middleware.UserID(c), &req); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
