// internal/handlers/common.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/agrichain/agrichain-backend/internal/i18n"
	"github.com/agrichain/agrichain-backend/internal/services"
	"github.com/agrichain/agrichain-backend/internal/utils"
)

// currentUserID pulls the authenticated user's id out of the gin context.
// Auth middleware guarantees it is present on protected routes.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	idStr, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	return id, true
}

// parseUUID parses an id already checked by the uuid binding tag.
func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

// handleServiceError maps domain errors onto HTTP responses so every
// handler reports preconditions the same way.
func handleServiceError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var insufficientFunds *services.InsufficientFundsError
	var insufficientQty *services.InsufficientQuantityError

	switch {
	case errors.Is(err, services.ErrBatchNotFound):
		utils.NotFoundResponse(c, "batch")
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, "product")
	case errors.Is(err, services.ErrOrderNotFound):
		utils.NotFoundResponse(c, "order")
	case errors.Is(err, services.ErrEventNotFound):
		utils.NotFoundResponse(c, "event")
	case errors.Is(err, services.ErrUserNotFound):
		utils.NotFoundResponse(c, "user")
	case errors.Is(err, services.ErrNotOwner):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyBatchNotOwned))
	case errors.Is(err, services.ErrNotParticipant):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyOrderForbidden))
	case errors.Is(err, services.ErrWrongStatus):
		utils.ErrorResponse(c, http.StatusConflict, "WRONG_STATUS",
			i18n.T(lang, i18n.KeyBatchWrongStatus), nil)
	case errors.Is(err, services.ErrQuantityExhausted):
		utils.ErrorResponse(c, http.StatusConflict, "QUANTITY_EXHAUSTED",
			i18n.T(lang, i18n.KeyBatchQuantityExhausted), nil)
	case errors.Is(err, services.ErrQuantityExceeded):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyBatchQuantityExceeded), nil)
	case errors.Is(err, services.ErrEmptySplitList),
		errors.Is(err, services.ErrEmptyOrder),
		errors.Is(err, services.ErrInvalidOrderItem),
		errors.Is(err, services.ErrMixedSellers),
		errors.Is(err, services.ErrNotShopkeeper),
		errors.Is(err, services.ErrEventNotLoggable),
		errors.Is(err, services.ErrFileTooLarge),
		errors.Is(err, services.ErrFileTypeNotAllowed):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, services.ErrTaxonomyMissing):
		utils.InternalErrorResponse(c, err.Error())
	case errors.As(err, &insufficientFunds):
		utils.ErrorResponse(c, http.StatusPaymentRequired, "INSUFFICIENT_FUNDS",
			i18n.T(lang, i18n.KeyWalletInsufficient, insufficientFunds.Need, insufficientFunds.Have), nil)
	case errors.As(err, &insufficientQty):
		utils.BadRequestResponse(c, err.Error(), gin.H{
			"batch_code": insufficientQty.BatchCode,
			"available":  insufficientQty.Available,
			"requested":  insufficientQty.Requested,
		})
	default:
		// Validation failures stay client errors; everything else
		// unrecognized is a server fault, not the caller's.
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"),
				utils.GetValidationErrors(validationErrs))
			return
		}
		utils.InternalErrorResponse(c, err.Error())
	}
}
