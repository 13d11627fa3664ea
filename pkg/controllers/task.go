package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sensestream/sensestream-server/pkg/models"
)

// TaskController holds dependencies for task query handlers.
type TaskController struct {
	AppConfig *config.AppConfig
	TaskModel *models.TaskModel
}

// NewTaskController creates a new TaskController.
func NewTaskController(config *config.AppConfig, tm *models.TaskModel) *TaskController {
	return &TaskController{
		AppConfig: config,
		TaskModel: tm,
	}
}

func (tc *TaskController) HandleTaskStatus(c *fiber.Ctx) error {
	taskId := c.Params("taskId")
	res, err := tc.TaskModel.GetTaskStatus(taskId)
	if err != nil {
		return commonErrorResponse(c, err.Error(), fiber.StatusNotFound)
	}

	return c.JSON(fiber.Map{
		"status": true,
		"task":   res,
	})
}

func (tc *TaskController) HandleTaskResult(c *fiber.Ctx) error {
	taskId := c.Params("taskId")
	res, err := tc.TaskModel.GetTaskResult(taskId)
	if err != nil {
		status := fiber.StatusNotFound
		if err.Error() == config.TaskNotCompleted {
			status = fiber.StatusConflict
		}
		return commonErrorResponse(c, err.Error(), status)
	}

	return c.JSON(fiber.Map{
		"status": true,
		"result": res,
	})
}

func (tc *TaskController) HandleFetchTasks(c *fiber.Ctx) error {
	req := new(models.FetchTasksReq)
	if err := c.BodyParser(req); err != nil {
		return commonErrorResponse(c, err.Error(), fiber.StatusBadRequest)
	}

	tasks, total, err := tc.TaskModel.FetchTaskHistory(req)
	if err != nil {
		return commonErrorResponse(c, err.Error(), fiber.StatusInternalServerError)
	}

	return c.JSON(fiber.Map{
		"status": true,
		"total":  total,
		"tasks":  tasks,
	})
}

func (tc *TaskController) HandleDeleteTask(c *fiber.Ctx) error {
	req := new(models.DeleteTaskReq)
	if err := c.BodyParser(req); err != nil {
		return commonErrorResponse(c, err.Error(), fiber.StatusBadRequest)
	}
	if req.TaskId == "" {
		return commonErrorResponse(c, "task_id required", fiber.StatusBadRequest)
	}

	if err := tc.TaskModel.DeleteTaskHistory(req.TaskId); err != nil {
		status := fiber.StatusInternalServerError
		if err.Error() == config.RequestedTaskNotExist {
			status = fiber.StatusNotFound
		}
		return commonErrorResponse(c, err.Error(), status)
	}

	return c.JSON(fiber.Map{
		"status": true,
		"msg":    "success",
	})
}

func (tc *TaskController) HandleReadySegments(c *fiber.Ctx) error {
	tasks, err := tc.TaskModel.GetReadyTasks()
	if err != nil {
		return commonErrorResponse(c, err.Error(), fiber.StatusInternalServerError)
	}

	return c.JSON(fiber.Map{
		"status": true,
		"ready":  tasks,
	})
}

func (tc *TaskController) HandleTaskSegments(c *fiber.Ctx) error {
	taskId := c.Params("taskId")
	segments, err := tc.TaskModel.GetTaskSegments(taskId)
	if err != nil {
		return commonErrorResponse(c, err.Error(), fiber.StatusNotFound)
	}

	return c.JSON(fiber.Map{
		"status":   true,
		"segments": segments,
	})
}
