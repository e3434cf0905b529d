package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/audiotext/errors"
	"github.com/kbukum/audiotext/observability"
	"github.com/kbukum/audiotext/server/middleware"
)

// RespondWithError writes err with the status and envelope of its AppError.
// Errors that are not AppErrors become INTERNAL_ERROR. Server errors are
// reported to Sentry when it is configured.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.Wrap(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		observability.CaptureError(c.Request.Context(), c.Request, err, map[string]string{
			"code":       string(appErr.Code),
			"request_id": middleware.GetRequestID(c.Request.Context()),
		})
	}
	c.JSON(apperrors.StatusOf(appErr), appErr.ToResponse())
}

// RespondOK sends a 200 with data as the body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}
