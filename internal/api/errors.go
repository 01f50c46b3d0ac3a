package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lora/domain/core"
	apperrors "lora/internal/errors"
)

// statusFor maps domain sentinels first, then application error codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case core.IsDataError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNormalizerUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrNormalizerFailed):
		return http.StatusBadGateway
	}

	switch apperrors.GetCode(err) {
	case apperrors.CodeValidationError, apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeExternalService:
		return http.StatusBadGateway
	case apperrors.CodeCacheError, apperrors.CodeDatabaseError:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func codeFor(err error, status int) string {
	if code := apperrors.GetCode(err); code != "UNKNOWN" {
		return code
	}
	switch status {
	case http.StatusBadRequest:
		return apperrors.CodeValidationError
	case http.StatusNotFound:
		return apperrors.CodeNotFound
	case http.StatusUnprocessableEntity:
		return apperrors.CodeInvalidInput
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return apperrors.CodeExternalService
	}
	return apperrors.CodeInternalError
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	} else {
		h.logger.Debug("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": codeFor(err, status)})
}
