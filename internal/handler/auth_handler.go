package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/egabank/ledger/internal/auth"
	"github.com/egabank/ledger/internal/clients"
	"github.com/egabank/ledger/internal/middleware"
)

type AuthHandler struct {
	registry clients.Registry
	tokens   *auth.TokenManager
	revoker  *auth.Revoker
}

func NewAuthHandler(registry clients.Registry, tokens *auth.TokenManager, revoker *auth.Revoker) *AuthHandler {
	return &AuthHandler{registry: registry, tokens: tokens, revoker: revoker}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	client, err := h.registry.CreateClient(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	client, err := h.registry.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	token, err := h.tokens.Issue(client.ID, client.Email)
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	c.JSON(http.StatusOK, LoginResponse{Token: token})
}

// Logout revokes the presented token until its natural expiry.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := middleware.GetToken(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Authorization header required")
		return
	}
	claims, err := h.tokens.Parse(token)
	if err != nil {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	h.revoker.Revoke(token, claims.ExpiresAt.Time)
	c.Status(http.StatusNoContent)
}
