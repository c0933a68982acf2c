package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/druglike/pkg/errors"
	"github.com/turtacn/druglike/pkg/types/common"
)

// Recovery turns a panic into a logged 500 with the standard error body.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	logger = logging.OrNop(logger)
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			logging.String("panic", fmt.Sprint(recovered)),
			logging.String("path", c.Request.URL.Path),
			logging.String("request_id", GetRequestID(c)))

		resp := common.NewErrorResponse(string(errors.ErrCodeInternal), errors.DefaultMessageForCode(errors.ErrCodeInternal), "")
		resp.RequestID = GetRequestID(c)
		c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
	})
}
