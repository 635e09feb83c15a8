package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// WakeUp is pinged by the frontend to spin up free-tier hosting before the
// first real request.
func WakeUp(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "backend awake"})
}
