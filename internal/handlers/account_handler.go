package handlers

import (
	"errors"
	"log"

	"github.com/rajkumardasgupta/btf-app-login/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AccountHandler handles HTTP requests for the logged-in user's account.
type AccountHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(authService *services.AuthService) *AccountHandler {
	return &AccountHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the account routes. These run behind the
// session middleware, which puts the session email in Locals.
func (h *AccountHandler) RegisterRoutes(router fiber.Router) {
	accountRoutes := router.Group("/account")
	accountRoutes.Get("/", h.HandleGetAccount)
	accountRoutes.Patch("/name", h.HandleUpdateName)
}

// HandleGetAccount resolves the session email to the user record.
func (h *AccountHandler) HandleGetAccount(c *fiber.Ctx) error {
	email, _ := c.Locals("email").(string)
	user, err := h.authService.FindUserByEmail(email)
	if err != nil {
		log.Printf("Error fetching account for %s: %v", email, err)
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found in database",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch user data",
			"error":   err.Error(),
		})
	}
	return c.JSON(user)
}

// UpdateNameRequest represents the request body for a display name edit.
type UpdateNameRequest struct {
	Name string `json:"name" validate:"required"`
}

// HandleUpdateName changes the logged-in user's display name. Existing
// submissions keep the name they were submitted with.
func (h *AccountHandler) HandleUpdateName(c *fiber.Ctx) error {
	var req UpdateNameRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing name update request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	email, _ := c.Locals("email").(string)
	user, err := h.authService.FindUserByEmail(email)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "User not found in database",
		})
	}

	updated, err := h.authService.UpdateName(user.ID, req.Name)
	if err != nil {
		log.Printf("Error updating name for user %s: %v", user.ID, err)
		if errors.Is(err, services.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Name cannot be empty",
			})
		}
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found for update",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update name",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Name updated successfully",
		"user":    updated,
	})
}
