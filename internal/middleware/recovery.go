package middleware

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"

	appErrors "vibecircles.web/pkg/errors"
	"vibecircles.web/pkg/response"
)

// Recovery turns a panic into the 500 envelope
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("Panic recovered",
			"requestId", GetRequestID(c),
			"path", c.Request.URL.Path,
			"panic", fmt.Sprint(recovered),
		)
		response.Abort(c, appErrors.ErrServerError.Wrap(fmt.Errorf("panic: %v", recovered)))
	})
}
