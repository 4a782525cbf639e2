// Package respond renders handler results and application errors as JSON.
package respond

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/pkg/i18n"
	"github.com/gin-gonic/gin"
)

const bundleKey = "i18n.bundle"

// WithBundle makes the message bundle available to Error.
func WithBundle(b *i18n.Bundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(bundleKey, b)
		c.Next()
	}
}

func Status(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindTransport:
		return http.StatusBadGateway
	case apperr.KindDevice:
		return http.StatusServiceUnavailable
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// Error writes {"error": {"kind", "message"}} and aborts the chain. The message is translated
// for the request's Accept-Language when the error names one. Internal errors never leak their text.
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	message := err.Error()

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
		if b, ok := c.Get(bundleKey); ok {
			bundle, _ := b.(*i18n.Bundle)
			message = bundle.Localize(c.GetHeader("Accept-Language"), appErr.MessageID, appErr.Message, appErr.Data)
		}
	}
	if kind == apperr.KindInternal && appErr == nil {
		message = http.StatusText(http.StatusInternalServerError)
	}

	c.AbortWithStatusJSON(Status(kind), gin.H{
		"error": gin.H{
			"kind":    kind,
			"message": message,
		},
	})
}

// BadRequest reports a binding failure as a validation error.
func BadRequest(c *gin.Context, err error) {
	Error(c, apperr.Wrap(err, apperr.KindValidation, "", err.Error()))
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
