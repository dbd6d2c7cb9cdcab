package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/rajkumardasgupta/btf-app-login/internal/handlers"
	"github.com/rajkumardasgupta/btf-app-login/internal/middleware"
	"github.com/rajkumardasgupta/btf-app-login/internal/models"
	"github.com/rajkumardasgupta/btf-app-login/internal/repositories"
	"github.com/rajkumardasgupta/btf-app-login/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbCounter int64

// setupApp sets up a Fiber app for testing with in-memory SQLite and all
// handlers/services, plus a stub weather upstream.
func setupApp(t *testing.T) (*fiber.App, *services.SiteService) {
	t.Helper()

	// Configure Viper for testing
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	// Each setup gets its own named in-memory SQLite database so tests
	// cannot see each other's rows.
	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.LocationSubmission{}, &models.Session{})
	assert.NoError(t, err)

	// Stub weather upstream
	weatherUpstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"current_weather":{"temperature":29.5,"windspeed":8,"winddirection":90,"weathercode":1,"time":"2025-06-10T12:00"}}`))
	}))
	t.Cleanup(weatherUpstream.Close)

	// Initialize Repositories
	userRepo := repositories.NewGORMUserRepository(db)
	locationRepo := repositories.NewGORMLocationRepository(db)
	sessionRepo := repositories.NewGORMSessionRepository(db)

	// Initialize Services
	authService := services.NewAuthService(userRepo, sessionRepo, jwtSecret)
	siteService := services.NewSiteService(locationRepo, userRepo, nil) // nil for RabbitMQ client
	leaderboardService := services.NewLeaderboardService(locationRepo, userRepo)
	weatherService := services.NewWeatherService(weatherUpstream.URL)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	accountHandler := handlers.NewAccountHandler(authService)
	siteHandler := handlers.NewSiteHandler(siteService, weatherService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	mapHandler := handlers.NewMapHandler(siteService)
	weatherHandler := handlers.NewWeatherHandler(weatherService)

	app := fiber.New()

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	weatherHandler.RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", middleware.SessionRequired(authService))
	accountHandler.RegisterRoutes(protectedRoutes)
	siteHandler.RegisterRoutes(protectedRoutes)
	leaderboardHandler.RegisterRoutes(protectedRoutes)

	mapHandler.RegisterRoutes(app)

	return app, siteService
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func jsonRequest(method, target string, body interface{}, token string) *http.Request {
	var reader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// registerAndLogin registers a user and logs them in, returning the token.
func registerAndLogin(t *testing.T, app *fiber.App, name, email string) string {
	t.Helper()

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":  name,
		"email": email,
	}, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": email,
	}, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, _ := setupApp(t)

	// Registration
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":  "Test User",
		"email": "test@example.com",
	}, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Duplicate registration with different case conflicts
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":  "Someone Else",
		"email": "TEST@example.com",
	}, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Login with an unregistered email
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "nobody@example.com",
	}, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Login succeeds and the token resolves to a live session
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "test@example.com",
	}, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := decodeBody(t, resp)["token"].(string)
	assert.NotEmpty(t, token)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/v1/auth/session", nil, token), -1)
	assert.NoError(t, err)
	session := decodeBody(t, resp)
	assert.Equal(t, true, session["loggedIn"])
	assert.Equal(t, "test@example.com", session["email"])

	// Logout revokes the session
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/logout", nil, token), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/v1/auth/session", nil, token), -1)
	assert.NoError(t, err)
	session = decodeBody(t, resp)
	assert.Equal(t, false, session["loggedIn"])

	// Protected routes reject the revoked token
	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/v1/sites/", nil, token), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// And reject missing credentials outright
	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/v1/sites/", nil, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSiteSubmissionAndListing(t *testing.T) {
	app, _ := setupApp(t)
	token := registerAndLogin(t, app, "Alice", "alice@example.com")

	// Submit a site; the response carries advisory weather
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/sites/", map[string]interface{}{
		"latitude":      22.5726,
		"longitude":     88.3639,
		"numberOfTrees": 15,
		"note":          "beside the school",
	}, token), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)

	site, _ := body["site"].(map[string]interface{})
	assert.Equal(t, "pending", site["status"])
	assert.Equal(t, "Alice", site["submittedBy"])
	assert.NotNil(t, site["u_id"])

	weather, _ := body["weather"].(map[string]interface{})
	assert.Equal(t, 29.5, weather["temperature"])

	// Missing coordinates are rejected before anything is saved
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/sites/", map[string]interface{}{
		"numberOfTrees": 5,
	}, token), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Listing: one pending site, totals over the full fetch
	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/v1/sites/?status=pending", nil, token), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	listing := decodeBody(t, resp)
	items, _ := listing["items"].([]interface{})
	assert.Len(t, items, 1)
	assert.Equal(t, float64(15), listing["pendingTotalTrees"])
	assert.Equal(t, float64(0), listing["doneTotalTrees"])

	// Administrative transition to done
	siteID, _ := site["id"].(string)
	resp, err = app.Test(jsonRequest(http.MethodPatch, "/api/v1/sites/"+siteID+"/status", map[string]string{
		"status": "done",
	}, token), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The pending filter now shows nothing, but the done total moved;
	// both totals are still reported regardless of the active filter.
	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/v1/sites/?status=pending", nil, token), -1)
	assert.NoError(t, err)
	listing = decodeBody(t, resp)
	items, _ = listing["items"].([]interface{})
	assert.Empty(t, items)
	assert.Equal(t, float64(0), listing["pendingTotalTrees"])
	assert.Equal(t, float64(15), listing["doneTotalTrees"])

	// Invalid status value
	resp, err = app.Test(jsonRequest(http.MethodPatch, "/api/v1/sites/"+siteID+"/status", map[string]string{
		"status": "shipped",
	}, token), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLeaderboardEndpoint(t *testing.T) {
	app, siteService := setupApp(t)
	aliceToken := registerAndLogin(t, app, "Alice", "a@x.com")
	registerAndLogin(t, app, "Bob", "b@x.com")

	submit := func(token string, trees int) string {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/sites/", map[string]interface{}{
			"latitude":      1.0,
			"longitude":     2.0,
			"numberOfTrees": trees,
		}, token), -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		site, _ := decodeBody(t, resp)["site"].(map[string]interface{})
		id, _ := site["id"].(string)
		return id
	}

	// Bob was registered above; log his session in separately
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "b@x.com",
	}, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	bobToken, _ := decodeBody(t, resp)["token"].(string)

	aliceDone := submit(aliceToken, 5)
	submit(aliceToken, 3) // stays pending
	bobDone := submit(bobToken, 10)

	assert.NoError(t, siteService.UpdateStatus(aliceDone, "done"))
	assert.NoError(t, siteService.UpdateStatus(bobDone, "done"))

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/v1/leaderboard", nil, aliceToken), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	rows, _ := body["leaderboard"].([]interface{})
	assert.Len(t, rows, 2)

	first, _ := rows[0].(map[string]interface{})
	second, _ := rows[1].(map[string]interface{})
	assert.Equal(t, "Bob", first["name"])
	assert.Equal(t, float64(10), first["totalTrees"])
	assert.Equal(t, "Alice", second["name"])
	assert.Equal(t, float64(5), second["totalTrees"])
	assert.Equal(t, false, first["isYou"])
	assert.Equal(t, true, second["isYou"])
}

func TestMapPage(t *testing.T) {
	app, _ := setupApp(t)
	token := registerAndLogin(t, app, "Mapper", "mapper@x.com")

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/sites/", map[string]interface{}{
		"latitude":      22.5,
		"longitude":     88.3,
		"numberOfTrees": 4,
		"note":          "<script>alert(1)</script>corner plot",
	}, token), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// The map page is public
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/map", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	pageBytes, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	page := string(pageBytes)

	assert.Contains(t, page, "leaflet")
	assert.Contains(t, page, "renderMarkers(")
	assert.Contains(t, page, "Mapper")
	assert.Contains(t, page, "corner plot")
	// The note's script tag was stripped before injection
	assert.NotContains(t, page, "<script>alert(1)</script>")
}

func TestAccountNameUpdate(t *testing.T) {
	app, _ := setupApp(t)
	token := registerAndLogin(t, app, "Original Name", "rename@x.com")

	// A submission made before the rename snapshots the current name
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/sites/", map[string]interface{}{
		"latitude":      10.0,
		"longitude":     20.0,
		"numberOfTrees": 2,
	}, token), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Empty name is rejected
	resp, err = app.Test(jsonRequest(http.MethodPatch, "/api/v1/account/name", map[string]string{
		"name": "   ",
	}, token), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Rename
	resp, err = app.Test(jsonRequest(http.MethodPatch, "/api/v1/account/name", map[string]string{
		"name": "Updated Name",
	}, token), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/v1/account/", nil, token), -1)
	assert.NoError(t, err)
	account := decodeBody(t, resp)
	assert.Equal(t, "Updated Name", account["name"])

	// The listing joins against the live user record, so it shows the
	// new name; the record's own submittedBy snapshot is untouched.
	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/v1/sites/", nil, token), -1)
	assert.NoError(t, err)
	listing := decodeBody(t, resp)
	items, _ := listing["items"].([]interface{})
	assert.Len(t, items, 1)
	row, _ := items[0].(map[string]interface{})
	assert.Equal(t, "Updated Name", row["submitterName"])
}

func TestWeatherEndpoint(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/v1/weather?latitude=22.5&longitude=88.3", nil, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, 29.5, body["temperature"])

	// Missing coordinates
	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/v1/weather", nil, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
