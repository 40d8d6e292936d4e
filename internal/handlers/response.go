package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/axleworks/weighbridge-backend/internal/domain/aggregates"
	"github.com/axleworks/weighbridge-backend/internal/pkg/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondEngineError maps engine error codes onto HTTP statuses. Anything
// without a recognized code is treated as internal.
func RespondEngineError(c *gin.Context, err error) {
	code := domainagg.CodeOf(err)
	RespondAPIError(c, apierr.New(statusForCode(code), string(code), err))
}

func RespondAPIError(c *gin.Context, ae *apierr.Error) {
	if ae == nil {
		RespondError(c, http.StatusInternalServerError, "internal", nil)
		return
	}
	RespondError(c, ae.Status, ae.Code, ae.Err)
}

func statusForCode(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusBadRequest
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeInvalidJob, domainagg.CodeNoWeightData:
		return http.StatusUnprocessableEntity
	case domainagg.CodeDuplicateDeck, domainagg.CodeSessionClosed,
		domainagg.CodeConfigConflict, domainagg.CodeConflict, domainagg.CodeAlreadyApplied:
		return http.StatusConflict
	case domainagg.CodeNumberingUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
