package handlers

import (
	"encoding/json"
	"html/template"
	"log"

	"github.com/rajkumardasgupta/btf-app-login/internal/models"
	"github.com/rajkumardasgupta/btf-app-login/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
)

// mapMarker is the per-site payload serialized into the map page's marker
// script. Note is sanitized before it gets anywhere near the script.
type mapMarker struct {
	UID           int64   `json:"u_id"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	NumberOfTrees int     `json:"numberOfTrees"`
	Status        string  `json:"status"`
	Note          string  `json:"note"`
	SubmittedBy   string  `json:"submittedBy"`
}

// MapHandler renders the embedded Leaflet map page. The joined site
// dataset is injected as a script that clears all existing markers and
// re-adds one per site, so re-running it never stacks duplicate overlays.
type MapHandler struct {
	siteService *services.SiteService
	sanitizer   *bluemonday.Policy
	page        *template.Template
}

// NewMapHandler creates a new MapHandler.
func NewMapHandler(siteService *services.SiteService) *MapHandler {
	return &MapHandler{
		siteService: siteService,
		sanitizer:   bluemonday.StrictPolicy(),
		page:        template.Must(template.New("map").Parse(mapPageTemplate)),
	}
}

// RegisterRoutes registers the map page route with the Fiber app.
func (h *MapHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/map", h.HandleMapPage)
}

// HandleMapPage fetches the joined dataset and renders the map page with
// the marker payload injected. A reload re-runs the whole pipeline.
func (h *MapHandler) HandleMapPage(c *fiber.Ctx) error {
	list, err := h.siteService.ListJoined()
	if err != nil {
		log.Printf("Error fetching locations for map: %v", err)
		return c.Status(fiber.StatusBadGateway).SendString("Could not load map data")
	}

	markers := make([]mapMarker, 0, len(list.Rows))
	for _, row := range list.Rows {
		markers = append(markers, mapMarker{
			UID:           row.UID,
			Latitude:      row.Latitude,
			Longitude:     row.Longitude,
			NumberOfTrees: row.NumberOfTrees,
			Status:        models.NormalizeStatus(row.Status),
			Note:          h.sanitizer.Sanitize(row.Note),
			SubmittedBy:   h.sanitizer.Sanitize(row.SubmitterName),
		})
	}

	// json.Marshal escapes <, > and & so the payload cannot break out of
	// the surrounding script element.
	payload, err := json.Marshal(markers)
	if err != nil {
		log.Printf("Error marshaling map markers: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not render map")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return h.page.Execute(c.Response().BodyWriter(), struct {
		Locations template.JS
	}{
		Locations: template.JS(payload),
	})
}

// mapPageTemplate is the self-contained Leaflet page. Marker color encodes
// status: green for done, red otherwise. Each popup links the coordinate
// out to Google Maps.
const mapPageTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Plantation Sites Map</title>
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.3/dist/leaflet.css" />
  <style> html, body, #map { height: 100%; margin: 0; padding: 0; } </style>
</head>
<body>
  <div id="map"></div>
  <script src="https://unpkg.com/leaflet@1.9.3/dist/leaflet.js"></script>
  <script>
    const map = L.map('map').setView([22.5726, 88.3639], 8);
    L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
      attribution: '&copy; OpenStreetMap contributors'
    }).addTo(map);

    const redIcon = new L.Icon({
      iconUrl: 'https://unpkg.com/leaflet@1.9.3/dist/images/marker-icon.png',
      shadowUrl: 'https://unpkg.com/leaflet@1.9.3/dist/images/marker-shadow.png',
      iconSize: [25, 41],
      iconAnchor: [12, 41],
      popupAnchor: [1, -34],
      shadowSize: [41, 41]
    });
    const greenIcon = new L.Icon({
      iconUrl: 'https://raw.githubusercontent.com/pointhi/leaflet-color-markers/master/img/marker-icon-green.png',
      shadowUrl: 'https://unpkg.com/leaflet@1.9.3/dist/images/marker-shadow.png',
      iconSize: [25, 41],
      iconAnchor: [12, 41],
      popupAnchor: [1, -34],
      shadowSize: [41, 41]
    });

    function renderMarkers(locations) {
      map.eachLayer(function (layer) {
        if (layer instanceof L.Marker) map.removeLayer(layer);
      });

      locations.forEach(loc => {
        const icon = loc.status === 'done' ? greenIcon : redIcon;
        const marker = L.marker([loc.latitude, loc.longitude], { icon }).addTo(map);
        marker.bindPopup(
          '<strong>Task id:</strong> ' + loc.u_id + '<br/>' +
          '<strong>Trees:</strong> ' + loc.numberOfTrees + '<br/>' +
          '<strong>Status:</strong> ' + loc.status + '<br/>' +
          '<strong>Note:</strong> ' + (loc.note || 'N/A') + '<br/>' +
          '<strong>By:</strong> ' + loc.submittedBy + '<br/>' +
          '<a href="https://www.google.com/maps?q=' + loc.latitude + ',' + loc.longitude + '" target="_blank">' +
          'Open in Google Maps</a>'
        );
      });
    }

    renderMarkers({{.Locations}});
  </script>
</body>
</html>
`
