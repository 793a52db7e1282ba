package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "vidtube/backend/pkg/errors"
)

// Response is the envelope of every successful reply
type Response struct {
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// ErrorResponse is the envelope of every failed reply. Data is always null.
type ErrorResponse struct {
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
	Errors     []string    `json:"errors"`
}

func respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Response{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// respondError writes the envelope for err. Only the public message is
// returned; the internal cause goes to the log.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", fields...)
	} else {
		log.Debug("Request rejected", fields...)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		StatusCode: status,
		Data:       nil,
		Message:    apperrors.PublicMessage(err),
		Success:    false,
		Errors:     []string{},
	})
}
