package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sensestream/sensestream-server/pkg/models"
	"github.com/sirupsen/logrus"
)

// UploadController holds dependencies for upload handlers.
type UploadController struct {
	AppConfig   *config.AppConfig
	UploadModel *models.UploadModel
	TaskModel   *models.TaskModel
	logger      *logrus.Entry
}

// NewUploadController creates a new UploadController.
func NewUploadController(config *config.AppConfig, um *models.UploadModel, tm *models.TaskModel) *UploadController {
	return &UploadController{
		AppConfig:   config,
		UploadModel: um,
		TaskModel:   tm,
		logger:      config.Logger.WithField("controller", "upload"),
	}
}

// HandleUpload accepts a multipart audio upload, registers the task and
// kicks off slicing in the background.
func (uc *UploadController) HandleUpload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return commonErrorResponse(c, "missing file field", fiber.StatusBadRequest)
	}

	info, err := uc.UploadModel.SaveUploadedFile(fh)
	if err != nil {
		return commonErrorResponse(c, err.Error(), fiber.StatusBadRequest)
	}

	uc.startProcessing(info.TaskId)
	return c.JSON(fiber.Map{
		"status": true,
		"task":   info,
	})
}

// HandleUploadFromUrl downloads a remote file and registers the task.
func (uc *UploadController) HandleUploadFromUrl(c *fiber.Ctx) error {
	req := new(models.UploadFromUrlReq)
	if err := c.BodyParser(req); err != nil {
		return commonErrorResponse(c, err.Error(), fiber.StatusBadRequest)
	}
	if req.Url == "" {
		return commonErrorResponse(c, "url required", fiber.StatusBadRequest)
	}

	info, err := uc.UploadModel.SaveFromUrl(c.Context(), req.Url)
	if err != nil {
		return commonErrorResponse(c, err.Error(), fiber.StatusBadRequest)
	}

	uc.startProcessing(info.TaskId)
	return c.JSON(fiber.Map{
		"status": true,
		"task":   info,
	})
}

func (uc *UploadController) startProcessing(taskId string) {
	go func() {
		if err := uc.TaskModel.ProcessTask(context.Background(), taskId); err != nil {
			uc.logger.WithError(err).Errorln("processing failed for task", taskId)
		}
	}()
}
