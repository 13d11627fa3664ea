package controllers

import (
	"github.com/gofiber/fiber/v2"
)

func commonErrorResponse(c *fiber.Ctx, msg string, status int) error {
	if status > 0 {
		_ = c.SendStatus(status)
	}
	return c.JSON(fiber.Map{
		"status": false,
		"msg":    msg,
	})
}

func commonSuccessResponse(c *fiber.Ctx, msg string) error {
	return c.JSON(fiber.Map{
		"status": true,
		"msg":    msg,
	})
}
