package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clipforge/config"
	"clipforge/internal/response"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
)

func (h *Handler) GetConfig(c *gin.Context) {
	response.Success(c, config.Conf)
}

// UpdateConfig replaces the runtime config and persists it. Queue and server
// settings still require a restart to take effect.
func (h *Handler) UpdateConfig(c *gin.Context) {
	var newConf config.Config
	if err := c.ShouldBindJSON(&newConf); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}

	prev := config.Conf
	config.Conf = newConf
	if err := config.CheckConfig(); err != nil {
		config.Conf = prev
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "invalid configuration", err))
		return
	}
	if err := config.SaveConfig(); err != nil {
		log.GetLogger().Error("UpdateConfig save err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeUnknown, "failed to save config", err))
		return
	}
	response.Success(c, nil)
}
