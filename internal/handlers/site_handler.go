package handlers

import (
	"errors"
	"log"

	"github.com/rajkumardasgupta/btf-app-login/internal/models"
	"github.com/rajkumardasgupta/btf-app-login/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// SiteHandler handles HTTP requests for plantation site submissions.
type SiteHandler struct {
	siteService    *services.SiteService
	weatherService *services.WeatherService
	validate       *validator.Validate
}

// NewSiteHandler creates a new SiteHandler.
func NewSiteHandler(siteService *services.SiteService, weatherService *services.WeatherService) *SiteHandler {
	return &SiteHandler{
		siteService:    siteService,
		weatherService: weatherService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the site routes with the Fiber app.
// The status patch is an administrative supplement; the mobile flows never
// update a submission after creation.
func (h *SiteHandler) RegisterRoutes(router fiber.Router) {
	siteRoutes := router.Group("/sites")
	siteRoutes.Get("/", h.HandleListSites)
	siteRoutes.Post("/", h.HandleSubmitSite)
	siteRoutes.Patch("/:id/status", h.HandleUpdateSiteStatus)
}

// SubmitSiteRequest represents the request body for a new submission.
// Latitude and longitude are pointers so that a missing coordinate is
// distinguishable from a zero one: a client that never acquired a device
// fix has nothing to send here.
type SubmitSiteRequest struct {
	Latitude      *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude     *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	NumberOfTrees *int     `json:"numberOfTrees" validate:"required,gte=0"`
	Note          string   `json:"note" validate:"omitempty,max=500"`
}

// HandleSubmitSite creates a new pending submission for the logged-in
// user. The response carries a current-weather lookup for display; a
// failed weather fetch is logged and the field left null, never an error.
func (h *SiteHandler) HandleSubmitSite(c *fiber.Ctx) error {
	var req SubmitSiteRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing submit site request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	email, _ := c.Locals("email").(string)
	submission, err := h.siteService.Submit(services.SubmitSiteInput{
		Latitude:         *req.Latitude,
		Longitude:        *req.Longitude,
		NumberOfTrees:    *req.NumberOfTrees,
		Note:             req.Note,
		SubmittedByEmail: email,
	})
	if err != nil {
		log.Printf("Error saving site submission: %v", err)
		if errors.Is(err, services.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Please fill all required fields",
				"error":   err.Error(),
			})
		}
		// The form state lives on the client; a failed save is reported so
		// the user may retry with what they already typed.
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Failed to save location",
			"error":   err.Error(),
		})
	}

	var weather *services.CurrentWeather
	if h.weatherService != nil {
		weather, err = h.weatherService.Current(submission.Latitude, submission.Longitude)
		if err != nil {
			log.Printf("Warning: weather lookup failed for site %s: %v", submission.ID, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Location and data saved successfully",
		"site":    submission,
		"weather": weather,
	})
}

// HandleListSites returns the joined submissions with both bucket totals.
// An optional status query parameter selects which bucket lands in items;
// the totals are always computed over the full unfiltered fetch.
func (h *SiteHandler) HandleListSites(c *fiber.Ctx) error {
	list, err := h.siteService.ListJoined()
	if err != nil {
		log.Printf("Error fetching joined site list: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Could not retrieve locations",
			"error":   err.Error(),
		})
	}

	filter := models.NormalizeStatus(c.Query("status"))
	items := list.Rows
	if filter == models.StatusPending || filter == models.StatusDone {
		items = make([]services.SiteRow, 0, len(list.Rows))
		for _, row := range list.Rows {
			if models.NormalizeStatus(row.Status) == filter {
				items = append(items, row)
			}
		}
	}

	return c.JSON(fiber.Map{
		"items":             items,
		"pendingTotalTrees": list.PendingTotalTrees,
		"doneTotalTrees":    list.DoneTotalTrees,
	})
}

// UpdateSiteStatusRequest represents the request body for a status change.
type UpdateSiteStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleUpdateSiteStatus applies the administrative pending/done
// transition to a submission.
func (h *SiteHandler) HandleUpdateSiteStatus(c *fiber.Ctx) error {
	siteID := c.Params("id")
	var req UpdateSiteStatusRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing status update request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	if err := h.siteService.UpdateStatus(siteID, req.Status); err != nil {
		log.Printf("Error updating status for site %s: %v", siteID, err)
		if errors.Is(err, services.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid site status",
				"error":   err.Error(),
			})
		}
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Site not found for status update",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update site status",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Site status updated successfully",
	})
}
