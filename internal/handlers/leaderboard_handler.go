package handlers

import (
	"log"

	"github.com/rajkumardasgupta/btf-app-login/internal/services"

	"github.com/gofiber/fiber/v2"
)

// LeaderboardHandler handles HTTP requests for the planters leaderboard.
type LeaderboardHandler struct {
	leaderboardService *services.LeaderboardService
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(leaderboardService *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
	}
}

// RegisterRoutes registers the leaderboard routes with the Fiber app.
func (h *LeaderboardHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/leaderboard", h.HandleGetLeaderboard)
}

// HandleGetLeaderboard rebuilds the leaderboard from scratch. Only
// completed plantations are counted; the row matching the session email is
// flagged so the client can highlight it.
func (h *LeaderboardHandler) HandleGetLeaderboard(c *fiber.Ctx) error {
	email, _ := c.Locals("email").(string)
	rows, err := h.leaderboardService.Build(email)
	if err != nil {
		log.Printf("Error building leaderboard: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Could not build leaderboard",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"leaderboard":   rows,
		"totalPlanters": len(rows),
	})
}
