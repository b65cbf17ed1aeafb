// Package account handles restaurant signup and login.
package account

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/juju/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/platter/internal/model"
	"github.com/dukerupert/platter/internal/store"
)

// TokenIssuer signs bearer tokens for a restaurant id.
type TokenIssuer interface {
	Issue(restaurantID string) (string, time.Time, error)
}

// Mailer delivers the optional welcome mail after signup.
type Mailer interface {
	Configured() bool
	SendWelcome(ctx context.Context, toEmail, restaurantName string) error
}

type Service struct {
	restaurants *store.RestaurantStore
	tokens      TokenIssuer
	mailer      Mailer
	logger      *slog.Logger
}

func NewService(rs *store.RestaurantStore, tokens TokenIssuer, mailer Mailer, logger *slog.Logger) *Service {
	return &Service{restaurants: rs, tokens: tokens, mailer: mailer, logger: logger}
}

type RegisterInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Location       string `json:"location"`
	City           string `json:"city"`
	ContactNo      string `json:"contactNo"`
	RestaurantName string `json:"restaurantName"`
}

func (in *RegisterInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Location = strings.TrimSpace(in.Location)
	in.City = strings.TrimSpace(in.City)
	in.ContactNo = strings.TrimSpace(in.ContactNo)
	in.RestaurantName = strings.TrimSpace(in.RestaurantName)
}

// Session is the result of a successful login.
type Session struct {
	Restaurant model.Restaurant `json:"data"`
	Token      string           `json:"token"`
	ExpiresAt  time.Time        `json:"expiresAt"`
}

// Register creates a restaurant account. Every field is required and the
// email must not already be registered.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.Restaurant, error) {
	in.normalize()
	if in.Name == "" || in.Email == "" || in.Password == "" || in.Location == "" ||
		in.City == "" || in.ContactNo == "" || in.RestaurantName == "" {
		return nil, errors.NotValidf("all fields are required")
	}

	existing, err := s.restaurants.GetByEmail(in.Email)
	if err != nil {
		return nil, errors.Annotate(err, "register")
	}
	if existing != nil {
		return nil, errors.AlreadyExistsf("email %q", in.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Annotate(err, "hash password")
	}

	r, err := s.restaurants.Create(store.NewRestaurant{
		Name:           in.Name,
		Email:          in.Email,
		PasswordHash:   string(hash),
		Location:       in.Location,
		City:           in.City,
		ContactNo:      in.ContactNo,
		RestaurantName: in.RestaurantName,
	})
	if err == store.ErrEmailTaken {
		return nil, errors.AlreadyExistsf("email %q", in.Email)
	}
	if err != nil {
		return nil, errors.Annotate(err, "register")
	}

	if s.mailer != nil && s.mailer.Configured() {
		if err := s.mailer.SendWelcome(ctx, r.Email, r.RestaurantName); err != nil {
			s.logger.Warn("send welcome email", "restaurant_id", r.ID, "error", err)
		}
	}

	s.logger.Info("restaurant registered", "restaurant_id", r.ID, "city", r.City)
	return r, nil
}

// Login checks the credentials and returns the safe profile with a bearer
// token. Unknown emails and wrong passwords are indistinguishable.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, errors.NotValidf("email and password required")
	}

	r, hash, err := s.restaurants.GetCredentials(email)
	if err != nil {
		return nil, errors.Annotate(err, "login")
	}
	if r == nil {
		return nil, errors.Unauthorizedf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, errors.Unauthorizedf("invalid credentials")
	}

	token, expires, err := s.tokens.Issue(r.ID)
	if err != nil {
		return nil, errors.Annotate(err, "login")
	}
	return &Session{Restaurant: *r, Token: token, ExpiresAt: expires}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
