// Package handlers implements the gin handlers of the druglike HTTP API and
// the server-rendered dashboard.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/druglike/internal/application/screening"
	"github.com/turtacn/druglike/internal/domain/compound"
	"github.com/turtacn/druglike/internal/interfaces/http/middleware"
	"github.com/turtacn/druglike/pkg/errors"
	"github.com/turtacn/druglike/pkg/types/common"
)

// ScreeningService is the part of screening.Service the handlers use.
type ScreeningService interface {
	Rules() []*screening.Rule
	Rule(name screening.RuleName) (*screening.Rule, error)
	Ready() bool
	Annotated(ctx context.Context) (*compound.Dataset, error)
	Screen(ctx context.Context, name screening.RuleName, overrides screening.Cutoffs) (*screening.View, error)
	Dashboard(ctx context.Context, req screening.Request) ([]*screening.View, error)
}

var _ ScreeningService = (*screening.Service)(nil)

// respondOK writes data inside the standard success envelope.
func respondOK[T any](c *gin.Context, data T) {
	resp := common.NewSuccessResponse(data)
	resp.RequestID = middleware.GetRequestID(c)
	c.JSON(http.StatusOK, resp)
}

// statusAndBody maps err to an HTTP status and error envelope.  Errors that
// are not AppErrors are reported as internal errors without their text.
func statusAndBody(c *gin.Context, err error) (int, common.APIResponse[any]) {
	var appErr *errors.AppError
	var resp common.APIResponse[any]
	status := http.StatusInternalServerError
	if errors.As(err, &appErr) {
		status = errors.HTTPStatusForCode(appErr.Code)
		resp = common.NewErrorResponse(string(appErr.Code), appErr.Message, appErr.Detail)
	} else {
		resp = common.NewErrorResponse(string(errors.ErrCodeInternal), errors.DefaultMessageForCode(errors.ErrCodeInternal), "")
	}
	resp.RequestID = middleware.GetRequestID(c)
	return status, resp
}

// respondError writes err as a JSON error envelope and records it on the
// context for the request logger.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	status, body := statusAndBody(c, err)
	c.AbortWithStatusJSON(status, body)
}
