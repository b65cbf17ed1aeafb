package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/platter/internal/auth"
	"github.com/dukerupert/platter/internal/imagestore"
	"github.com/dukerupert/platter/internal/menu"
)

type FoodHandler struct {
	admin  *menu.Admin
	images *imagestore.Store
	logger *slog.Logger
}

// NewFoodHandler returns the menu admin handler. images may be nil, in which
// case uploads answer 503.
func NewFoodHandler(admin *menu.Admin, images *imagestore.Store, logger *slog.Logger) *FoodHandler {
	return &FoodHandler{admin: admin, images: images, logger: logger}
}

type foodItemRequest struct {
	Name         string     `json:"foodName"`
	Price        flexString `json:"price"`
	ImagePath    string     `json:"imagePath"`
	Description  string     `json:"description"`
	RestaurantID string     `json:"res_id"`
}

type foodItemPatchRequest struct {
	Name        *string     `json:"foodName"`
	Price       *flexString `json:"price"`
	ImagePath   *string     `json:"imagePath"`
	Description *string     `json:"description"`
}

// Create handles POST /Foods. The owning restaurant is the authenticated one.
func (h *FoodHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := auth.RestaurantID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "not logged in")
		return
	}

	var req foodItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if rid := strings.TrimSpace(req.RestaurantID); rid != "" && rid != restaurantID {
		writeMessage(w, http.StatusForbidden, "cannot add items to another restaurant")
		return
	}

	item, err := h.admin.CreateItem(restaurantID, menu.ItemInput{
		Name:        req.Name,
		Price:       string(req.Price),
		ImagePath:   req.ImagePath,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"data":    item,
		"message": "Data successfully posted",
	})
}

// List handles GET /Foods/{id}, where id is a restaurant id.
func (h *FoodHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.admin.ListItems(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Delete handles DELETE /Foods/{id}, where id is a food item id.
func (h *FoodHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, err := h.admin.DeleteItem(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Get handles GET /Foods/edit/{id}.
func (h *FoodHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.admin.GetItem(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": item})
}

// Update handles PUT /Foods/edit/{id}.
func (h *FoodHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req foodItemPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch := menu.ItemPatch{
		Name:        req.Name,
		ImagePath:   req.ImagePath,
		Description: req.Description,
	}
	if req.Price != nil {
		p := string(*req.Price)
		patch.Price = &p
	}

	item, err := h.admin.UpdateItem(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Food item updated successfully",
		"data":    item,
	})
}

// UploadImage handles POST /Foods/images with a multipart "image" field and
// answers with the URL to store as the item's imagePath.
func (h *FoodHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		writeMessage(w, http.StatusServiceUnavailable, "image storage is not configured")
		return
	}
	restaurantID, ok := auth.RestaurantID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "not logged in")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imagestore.MaxSize+maxBodyBytes)
	file, _, err := r.FormFile("image")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	url, err := h.images.Upload(r.Context(), restaurantID, file)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
