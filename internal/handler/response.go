package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/egabank/ledger/internal/domain"
	"github.com/egabank/ledger/internal/middleware"
)

// respondDomainError maps a domain error onto an HTTP status. Typed errors
// keep their message so callers see the violated limit or the balance detail.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSelfTransfer),
		errors.Is(err, domain.ErrInvalidAccountKind):
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrClientNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrLimitExceeded),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrNonZeroBalance):
		middleware.RespondWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrDuplicateEmail):
		middleware.RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		middleware.RespondWithError(c, http.StatusUnauthorized, err.Error())
	default:
		middleware.RespondWithError(c, http.StatusInternalServerError, "operation failed")
	}
}
