package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sensestream/sensestream-server/pkg/models"
)

// StreamingController holds dependencies for scheduler handlers.
type StreamingController struct {
	AppConfig      *config.AppConfig
	StreamingModel *models.StreamingModel
}

// NewStreamingController creates a new StreamingController.
func NewStreamingController(config *config.AppConfig, sm *models.StreamingModel) *StreamingController {
	return &StreamingController{
		AppConfig:      config,
		StreamingModel: sm,
	}
}

func (sc *StreamingController) HandleStart(c *fiber.Ctx) error {
	if err := sc.StreamingModel.Start(); err != nil {
		return commonErrorResponse(c, err.Error(), fiber.StatusInternalServerError)
	}
	return commonSuccessResponse(c, "streaming pipeline started")
}

func (sc *StreamingController) HandleStop(c *fiber.Ctx) error {
	if err := sc.StreamingModel.Stop(); err != nil {
		return commonErrorResponse(c, err.Error(), fiber.StatusInternalServerError)
	}
	return commonSuccessResponse(c, "streaming pipeline stopped")
}

func (sc *StreamingController) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    true,
		"streaming": sc.StreamingModel.GetStatus(),
	})
}

func (sc *StreamingController) HandleStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": true,
		"stats":  sc.StreamingModel.GetStats(),
	})
}

func (sc *StreamingController) HandleSubmitTask(c *fiber.Ctx) error {
	taskId := c.Params("taskId")
	queued, err := sc.StreamingModel.SubmitTask(taskId)
	if err != nil {
		status := fiber.StatusBadRequest
		switch err.Error() {
		case config.RequestedTaskNotExist:
			status = fiber.StatusNotFound
		case config.QueueIsFull:
			status = fiber.StatusTooManyRequests
		case config.StreamingNotRunning:
			status = fiber.StatusConflict
		}
		return commonErrorResponse(c, err.Error(), status)
	}

	return c.JSON(fiber.Map{
		"status": true,
		"queued": queued,
	})
}

func (sc *StreamingController) HandleFirstSegmentResult(c *fiber.Ctx) error {
	taskId := c.Params("taskId")
	res := sc.StreamingModel.GetFirstSegmentResult(taskId)
	if res == nil {
		return c.JSON(fiber.Map{
			"status":  true,
			"pending": true,
		})
	}

	return c.JSON(fiber.Map{
		"status":  true,
		"pending": false,
		"result":  res,
	})
}

func (sc *StreamingController) HandleSegmentResult(c *fiber.Ctx) error {
	segmentId := c.Params("segmentId")
	res := sc.StreamingModel.GetSegmentResult(segmentId)
	if res == nil {
		return commonErrorResponse(c, config.RequestedSegmentNotExist, fiber.StatusNotFound)
	}

	return c.JSON(fiber.Map{
		"status": true,
		"result": res,
	})
}

func (sc *StreamingController) HandleTaskResults(c *fiber.Ctx) error {
	taskId := c.Params("taskId")
	return c.JSON(fiber.Map{
		"status":  true,
		"results": sc.StreamingModel.GetTaskResults(taskId),
	})
}

func (sc *StreamingController) HandlePerformance(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      true,
		"performance": sc.StreamingModel.GetPerformance(),
	})
}

type cleanupReq struct {
	MaxAgeSeconds int `json:"max_age_seconds"`
}

func (sc *StreamingController) HandleCleanup(c *fiber.Ctx) error {
	req := new(cleanupReq)
	if err := c.BodyParser(req); err != nil {
		return commonErrorResponse(c, err.Error(), fiber.StatusBadRequest)
	}

	removed := sc.StreamingModel.CleanupResults(time.Duration(req.MaxAgeSeconds) * time.Second)
	return c.JSON(fiber.Map{
		"status":  true,
		"removed": removed,
	})
}
