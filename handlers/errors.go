package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fadhlanhapp/manpower-backend/backend"
	"github.com/fadhlanhapp/manpower-backend/logger"
	"github.com/fadhlanhapp/manpower-backend/utils"
)

// respondError maps backend failures before falling back to utils.HandleError
func respondError(c *gin.Context, err error) {
	var apiErr *backend.APIError
	switch {
	case backend.IsNotFound(err):
		utils.HandleError(c, utils.NewNotFoundError("Resource"))
	case errors.As(err, &apiErr):
		logger.Warn("backend rejected request",
			zap.String("path", c.FullPath()), zap.Int("backendStatus", apiErr.StatusCode), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Backend request failed"})
	default:
		if utils.StatusFor(err) >= http.StatusInternalServerError {
			logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		}
		utils.HandleError(c, err)
	}
}
