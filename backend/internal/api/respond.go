package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"kinnected/backend/pkg/apperrors"
	"kinnected/backend/pkg/logger"
)

// respond writes a success body, merging the payload with success:true
func respond(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// respondError maps an application error onto the wire shape
// {success:false, message, code, errors?}. Server errors hide their cause from
// the caller and are logged instead.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.AsError(err)

	if appErr.Kind == apperrors.KindServer {
		logger.Named("api").Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	body := gin.H{
		"success": false,
		"message": appErr.Message,
		"code":    string(appErr.Kind),
	}
	if len(appErr.Details) > 0 {
		body["errors"] = appErr.Details
	}
	if appErr.Field != "" {
		body["field"] = appErr.Field
	}

	c.AbortWithStatusJSON(appErr.StatusCode(), body)
}

// respondBindError reports a malformed request body
func respondBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": "Invalid request body",
		"code":    string(apperrors.KindValidation),
		"errors":  []string{err.Error()},
	})
}
