package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"burgerhub-backend/utils"
)

// respondServiceError maps the service error taxonomy onto HTTP codes:
// validation -> 400 (retryable with corrected input), already-processed
// conflicts -> 409, unknown records -> 404, gateway failures -> 502 with
// the raw bank diagnostic, anything else -> 500.
func respondServiceError(c *gin.Context, err error) {
	var gatewayErr *utils.GatewayError
	switch {
	case utils.IsValidation(err), errors.Is(err, utils.ErrInvalidAmount), errors.Is(err, utils.ErrPromoInvalid):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, utils.ErrOrderNotPayable):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, utils.ErrNotFound), errors.Is(err, utils.ErrCustomerNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.As(err, &gatewayErr):
		utils.RespondError(c, http.StatusBadGateway, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
