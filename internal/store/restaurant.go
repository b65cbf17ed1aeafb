package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dukerupert/platter/internal/model"
)

// ErrEmailTaken is returned by Create when the email is already registered.
var ErrEmailTaken = errors.New("email already registered")

type RestaurantStore struct {
	db *sql.DB
}

func NewRestaurantStore(db *sql.DB) *RestaurantStore {
	return &RestaurantStore{db: db}
}

// NewRestaurant holds the fields supplied at signup.
type NewRestaurant struct {
	Name           string
	Email          string
	PasswordHash   string
	Location       string
	City           string
	ContactNo      string
	RestaurantName string
}

func scanRestaurant(scanner interface{ Scan(...any) error }) (*model.Restaurant, error) {
	var r model.Restaurant
	err := scanner.Scan(
		&r.ID, &r.Name, &r.Email, &r.Location, &r.City,
		&r.ContactNo, &r.RestaurantName, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const restaurantCols = `id, name, email, location, city, contact_no, restaurant_name, created_at, updated_at`

func (s *RestaurantStore) Create(nr NewRestaurant) (*model.Restaurant, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO restaurants (id, name, email, password_hash, location, city, contact_no, restaurant_name, city_key, name_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, nr.Name, nr.Email, nr.PasswordHash, nr.Location, nr.City, nr.ContactNo, nr.RestaurantName,
		searchKey(nr.City), searchKey(nr.RestaurantName),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert restaurant: %w", err)
	}
	return s.GetByID(id)
}

func (s *RestaurantStore) GetByID(id string) (*model.Restaurant, error) {
	row := s.db.QueryRow(`SELECT `+restaurantCols+` FROM restaurants WHERE id = ?`, id)
	r, err := scanRestaurant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	return r, nil
}

func (s *RestaurantStore) GetByEmail(email string) (*model.Restaurant, error) {
	row := s.db.QueryRow(`SELECT `+restaurantCols+` FROM restaurants WHERE email = ?`, email)
	r, err := scanRestaurant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get restaurant by email: %w", err)
	}
	return r, nil
}

// GetCredentials returns the restaurant registered under email together with
// its password hash, or nil if there is none.
func (s *RestaurantStore) GetCredentials(email string) (*model.Restaurant, string, error) {
	row := s.db.QueryRow(`SELECT `+restaurantCols+`, password_hash FROM restaurants WHERE email = ?`, email)
	var r model.Restaurant
	var hash string
	err := row.Scan(
		&r.ID, &r.Name, &r.Email, &r.Location, &r.City,
		&r.ContactNo, &r.RestaurantName, &r.CreatedAt, &r.UpdatedAt, &hash,
	)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("get credentials: %w", err)
	}
	return &r, hash, nil
}

func (s *RestaurantStore) List() ([]model.Restaurant, error) {
	return s.query(`SELECT ` + restaurantCols + ` FROM restaurants ORDER BY rowid ASC`)
}

// searchKey folds s for case-insensitive matching. SQLite's lower() only
// handles ASCII, so folding happens here and is stored alongside the value.
func searchKey(s string) string {
	return strings.ToLower(s)
}

// SearchByCity returns restaurants whose city contains substr, ignoring case.
func (s *RestaurantStore) SearchByCity(substr string) ([]model.Restaurant, error) {
	return s.query(
		`SELECT `+restaurantCols+` FROM restaurants WHERE instr(city_key, ?) > 0 ORDER BY rowid ASC`,
		searchKey(substr),
	)
}

// SearchByName returns restaurants whose display name contains substr,
// ignoring case.
func (s *RestaurantStore) SearchByName(substr string) ([]model.Restaurant, error) {
	return s.query(
		`SELECT `+restaurantCols+` FROM restaurants WHERE instr(name_key, ?) > 0 ORDER BY rowid ASC`,
		searchKey(substr),
	)
}

// ListCities returns the city of every restaurant in insertion order,
// duplicates included.
func (s *RestaurantStore) ListCities() ([]string, error) {
	rows, err := s.db.Query(`SELECT city FROM restaurants ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	defer rows.Close()

	var cities []string
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}

func (s *RestaurantStore) query(q string, args ...any) ([]model.Restaurant, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	defer rows.Close()

	var restaurants []model.Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}
		restaurants = append(restaurants, *r)
	}
	return restaurants, rows.Err()
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
