package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "vibecircles.web/pkg/errors"
)

// Response unified envelope
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 200 with data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMsg 200 with a message only
func SuccessWithMsg(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
	})
}

// Created 201 with message and data
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error writes the failure envelope for err. Server errors only expose their
// cause outside release mode.
func Error(c *gin.Context, err error) {
	status := appErrors.GetStatus(err)
	message := appErrors.GetMessage(err)

	if status >= http.StatusInternalServerError && gin.Mode() != gin.ReleaseMode {
		message = err.Error()
	}

	c.JSON(status, Response{
		Success: false,
		Message: message,
	})
}

// Abort writes the failure envelope and stops the handler chain
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// Unauthorized missing token
func Unauthorized(c *gin.Context) {
	Abort(c, appErrors.ErrUnauthorized)
}

// TooManyRequests rate limit exceeded
func TooManyRequests(c *gin.Context) {
	Abort(c, appErrors.ErrTooManyRequests)
}
