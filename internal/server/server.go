package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/juju/clock"

	"github.com/dukerupert/platter/internal/account"
	"github.com/dukerupert/platter/internal/auth"
	"github.com/dukerupert/platter/internal/catalog"
	"github.com/dukerupert/platter/internal/email"
	"github.com/dukerupert/platter/internal/handler"
	"github.com/dukerupert/platter/internal/imagestore"
	"github.com/dukerupert/platter/internal/menu"
	"github.com/dukerupert/platter/internal/middleware"
	"github.com/dukerupert/platter/internal/model"
	"github.com/dukerupert/platter/internal/store"
	ws "github.com/dukerupert/platter/internal/websocket"
)

// Config carries the collaborators that come from process configuration.
// Images and Email may be nil. TrustProxy makes the login rate limit key on
// forwarding headers instead of the connection address.
type Config struct {
	Tokens     *auth.Issuer
	Images     *imagestore.Store
	Email      *email.Client
	Clock      clock.Clock
	TrustProxy bool
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	tokens      *auth.Issuer
	restaurantH *handler.RestaurantHandler
	customerH   *handler.CustomerHandler
	foodH       *handler.FoodHandler
	rateLimiter *middleware.RateLimiter
	clientIP    func(*http.Request) string
	logger      *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	restaurantStore := store.NewRestaurantStore(db)
	foodStore := store.NewFoodStore(db)

	var mailer account.Mailer
	if cfg.Email != nil {
		mailer = cfg.Email
	}
	accounts := account.NewService(restaurantStore, cfg.Tokens, mailer, logger.With("component", "account"))
	cat := catalog.NewService(restaurantStore, foodStore)
	admin := menu.NewAdmin(foodStore, restaurantStore, func(action string, item model.FoodItem) {
		hub.Broadcast(ws.NewMessage("food_item", action, item.ID, item.RestaurantID))
	})

	return &Server{
		db:          db,
		hub:         hub,
		tokens:      cfg.Tokens,
		restaurantH: handler.NewRestaurantHandler(accounts, logger.With("component", "restaurant")),
		customerH:   handler.NewCustomerHandler(cat, logger.With("component", "customer")),
		foodH:       handler.NewFoodHandler(admin, cfg.Images, logger.With("component", "food")),
		rateLimiter: middleware.NewRateLimiter(cfg.Clock),
		clientIP:    middleware.ClientIP(cfg.TrustProxy),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireRestaurant(s.tokens)
	protected := func(h http.HandlerFunc) http.Handler {
		return requireAuth(h)
	}

	// Account
	mux.HandleFunc("POST /restaurant", s.rateLimitedHandler(s.restaurantH.Register))
	mux.HandleFunc("POST /restaurant/login", s.rateLimitedHandler(s.restaurantH.Login))

	// Customer browsing
	mux.HandleFunc("GET /coutromer", s.customerH.Search)
	mux.HandleFunc("GET /coutromer/Location", s.customerH.Cities)
	mux.HandleFunc("GET /coutromer/{id}", s.customerH.Menu)

	// Menu admin; reads are public
	mux.Handle("POST /Foods", protected(s.foodH.Create))
	mux.Handle("POST /Foods/images", protected(s.foodH.UploadImage))
	mux.HandleFunc("GET /Foods/{id}", s.foodH.List)
	mux.Handle("DELETE /Foods/{id}", protected(s.foodH.Delete))
	mux.HandleFunc("GET /Foods/edit/{id}", s.foodH.Get)
	mux.Handle("PUT /Foods/edit/{id}", protected(s.foodH.Update))

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
	mux.HandleFunc("GET /health", s.healthHandler)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, s.clientIP, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
