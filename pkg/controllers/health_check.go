package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sensestream/sensestream-server/pkg/models"
	redisservice "github.com/sensestream/sensestream-server/pkg/services/redis"
)

// HealthCheckController verifies the backing services are reachable.
type HealthCheckController struct {
	AppConfig      *config.AppConfig
	RedisService   *redisservice.RedisService
	StreamingModel *models.StreamingModel
}

// NewHealthCheckController creates a new HealthCheckController.
func NewHealthCheckController(config *config.AppConfig, rs *redisservice.RedisService, sm *models.StreamingModel) *HealthCheckController {
	return &HealthCheckController{
		AppConfig:      config,
		RedisService:   rs,
		StreamingModel: sm,
	}
}

func (hc *HealthCheckController) HandleHealthCheck(c *fiber.Ctx) error {
	if err := hc.RedisService.Ping(c.Context()); err != nil {
		return commonErrorResponse(c, "redis unreachable", fiber.StatusServiceUnavailable)
	}

	if db, err := hc.AppConfig.DB.DB(); err != nil || db.PingContext(c.Context()) != nil {
		return commonErrorResponse(c, "database unreachable", fiber.StatusServiceUnavailable)
	}

	return c.JSON(fiber.Map{
		"status": true,
		"msg":    "Healthy",
		"engine": fiber.Map{
			"provider": hc.StreamingModel.ProviderName(),
			"running":  hc.StreamingModel.IsRunning(),
		},
	})
}
