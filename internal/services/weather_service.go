package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// CurrentWeather is the current-conditions block of the open-meteo
// forecast response. Display-only; never persisted.
type CurrentWeather struct {
	Temperature   float64 `json:"temperature"`
	Windspeed     float64 `json:"windspeed"`
	Winddirection float64 `json:"winddirection"`
	Weathercode   int     `json:"weathercode"`
	Time          string  `json:"time"`
}

type forecastResponse struct {
	CurrentWeather *CurrentWeather `json:"current_weather"`
}

// WeatherService fetches current conditions for a coordinate pair from the
// open-meteo HTTP API. Lookups are advisory: callers treat a failure as
// "no weather available", never as a reason to fail their own operation.
type WeatherService struct {
	baseURL    string
	httpClient *http.Client
}

// NewWeatherService creates a new WeatherService against the given base
// URL (e.g. https://api.open-meteo.com).
func NewWeatherService(baseURL string) *WeatherService {
	return &WeatherService{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Current performs an unauthenticated GET for the current weather at the
// given coordinates.
func (s *WeatherService) Current(latitude, longitude float64) (*CurrentWeather, error) {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	query.Set("current_weather", "true")

	endpoint := fmt.Sprintf("%s/v1/forecast?%s", s.baseURL, query.Encode())
	resp, err := s.httpClient.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: weather request failed: %w", ErrFetchFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: weather API returned status %d", ErrFetchFailure, resp.StatusCode)
	}

	var forecast forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return nil, fmt.Errorf("%w: failed to decode weather response: %w", ErrFetchFailure, err)
	}
	if forecast.CurrentWeather == nil {
		return nil, fmt.Errorf("%w: weather response has no current_weather block", ErrFetchFailure)
	}

	return forecast.CurrentWeather, nil
}
