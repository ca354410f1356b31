// Package response writes the JSON envelopes shared by every handler.
package response

import (
	"log"

	"github.com/gin-gonic/gin"

	"geoguard-backend/internal/apperror"
)

// ErrorBody is the failure envelope.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// Error writes err as a failure envelope with the status its AppError carries.
// Errors that are not AppErrors are logged and reported as internal errors.
func Error(c *gin.Context, err error) {
	appErr := apperror.From(err)
	if appErr.Code == apperror.CodeInternal {
		log.Printf("[api] %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(appErr.HTTPStatus, ErrorBody{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
	})
}

// Abort writes err and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
