package handlers

import (
	"log"
	"strconv"

	"github.com/rajkumardasgupta/btf-app-login/internal/services"

	"github.com/gofiber/fiber/v2"
)

// WeatherHandler proxies current-conditions lookups for display.
type WeatherHandler struct {
	weatherService *services.WeatherService
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(weatherService *services.WeatherService) *WeatherHandler {
	return &WeatherHandler{
		weatherService: weatherService,
	}
}

// RegisterRoutes registers the weather route with the Fiber app.
func (h *WeatherHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/weather", h.HandleGetWeather)
}

// HandleGetWeather fetches current weather for a coordinate pair. The
// result is display-only and never persisted.
func (h *WeatherHandler) HandleGetWeather(c *fiber.Ctx) error {
	latitude, errLat := strconv.ParseFloat(c.Query("latitude"), 64)
	longitude, errLon := strconv.ParseFloat(c.Query("longitude"), 64)
	if errLat != nil || errLon != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "latitude and longitude query parameters are required",
		})
	}

	weather, err := h.weatherService.Current(latitude, longitude)
	if err != nil {
		log.Printf("Error fetching weather for %v,%v: %v", latitude, longitude, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Could not fetch weather",
			"error":   err.Error(),
		})
	}

	return c.JSON(weather)
}
