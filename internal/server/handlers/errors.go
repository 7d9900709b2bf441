package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quociou/pibao/internal/service/export"
	"github.com/quociou/pibao/internal/service/journal"
	"github.com/quociou/pibao/internal/service/reporting"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeInvalidDate       = "invalid_date"
	ErrCodeValidation        = "validation_failed"
	ErrCodeExportUnavailable = "export_unavailable"
	ErrCodeExportFailed      = "export_failed"
	ErrCodeSendFailed        = "send_failed"
)

// failWith maps service errors onto status codes.
func failWith(c *gin.Context, err error) {
	switch {
	case errors.Is(err, journal.ErrInvalidDate),
		errors.Is(err, reporting.ErrInvalidDate):
		fail(c, http.StatusBadRequest, ErrCodeInvalidDate, err.Error())
	case errors.Is(err, journal.ErrInvalidFood),
		errors.Is(err, journal.ErrInvalidRecord),
		errors.Is(err, journal.ErrInvalidSettings):
		fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
	case errors.Is(err, journal.ErrRecordNotFound),
		errors.Is(err, journal.ErrFoodNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, export.ErrNoSinks):
		fail(c, http.StatusServiceUnavailable, ErrCodeExportUnavailable, err.Error())
	case errors.Is(err, export.ErrSinkFailed):
		_ = c.Error(err)
		fail(c, http.StatusBadGateway, ErrCodeExportFailed, err.Error())
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}
