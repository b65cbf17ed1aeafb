package handler

import (
	"log/slog"
	"net/http"

	"github.com/juju/errors"

	"github.com/dukerupert/platter/internal/account"
)

type RestaurantHandler struct {
	accounts *account.Service
	logger   *slog.Logger
}

func NewRestaurantHandler(accounts *account.Service, logger *slog.Logger) *RestaurantHandler {
	return &RestaurantHandler{accounts: accounts, logger: logger}
}

// Register handles POST /restaurant.
func (h *RestaurantHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req account.RegisterInput
	if !decodeJSON(w, r, &req) {
		return
	}

	restaurant, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    restaurant,
	})
}

// Login handles POST /restaurant/login. Bad credentials are a 400, matching
// the signup form's error handling.
func (h *RestaurantHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, errors.Unauthorized) {
		writeMessage(w, http.StatusBadRequest, "invalid credentials")
		return
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Login successful",
		"data":      sess.Restaurant,
		"token":     sess.Token,
		"expiresAt": sess.ExpiresAt,
	})
}
