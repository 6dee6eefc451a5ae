package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/storefront-insights/internal/domain"
	"github.com/gin-gonic/gin"
)

// envelope is the shape of every JSON body the API returns.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, success bool, message string, data any) {
	c.JSON(status, envelope{Success: success, Message: message, Data: data})
}

// fail logs err with request context and answers 500 with an opaque code.
func fail(c *gin.Context, logger *slog.Logger, message string, err error) {
	code := codeInternal
	if errors.Is(err, domain.ErrUpstream) {
		code = codeUpstream
	}
	logger.ErrorContext(c.Request.Context(), message, "path", c.FullPath(), "code", code, "error", err)
	respond(c, http.StatusInternalServerError, false, message, code)
}
