package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/platter/internal/catalog"
)

// CustomerHandler serves the public browsing endpoints.
type CustomerHandler struct {
	catalog *catalog.Service
	logger  *slog.Logger
}

func NewCustomerHandler(c *catalog.Service, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{catalog: c, logger: logger}
}

// Search handles GET /coutromer?location=&restaurantName=.
func (h *CustomerHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	results, err := h.catalog.Search(catalog.SearchQuery{
		City:         q.Get("location"),
		NameContains: q.Get("restaurantName"),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": results})
}

// Cities handles GET /coutromer/Location.
func (h *CustomerHandler) Cities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.catalog.ListDistinctCities()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cities)
}

// Menu handles GET /coutromer/{id}.
func (h *CustomerHandler) Menu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.catalog.GetRestaurantWithMenu(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"restaurant": menu.Restaurant,
		"foods":      menu.Foods,
	})
}
