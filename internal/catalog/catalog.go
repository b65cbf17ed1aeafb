// Package catalog answers the read-only customer queries: restaurant search,
// the list of cities, and a restaurant's menu.
package catalog

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/juju/collections/set"
	"github.com/juju/errors"

	"github.com/dukerupert/platter/internal/model"
	"github.com/dukerupert/platter/internal/store"
)

type Service struct {
	restaurants *store.RestaurantStore
	foods       *store.FoodStore
}

func NewService(rs *store.RestaurantStore, fs *store.FoodStore) *Service {
	return &Service{restaurants: rs, foods: fs}
}

// SearchQuery filters restaurants. When both fields are set only City is
// applied.
type SearchQuery struct {
	City         string
	NameContains string
}

// Search returns the restaurants matching q, or all restaurants when q is
// empty. Matching is a case-insensitive substring test.
func (s *Service) Search(q SearchQuery) ([]model.Restaurant, error) {
	city := strings.TrimSpace(q.City)
	name := strings.TrimSpace(q.NameContains)

	var (
		results []model.Restaurant
		err     error
	)
	switch {
	case city != "":
		results, err = s.restaurants.SearchByCity(city)
	case name != "":
		results, err = s.restaurants.SearchByName(name)
	default:
		results, err = s.restaurants.List()
	}
	if err != nil {
		return nil, errors.Annotate(err, "search restaurants")
	}
	if results == nil {
		results = []model.Restaurant{}
	}
	return results, nil
}

// ListDistinctCities returns every restaurant city with its first letter
// upper-cased, without duplicates, in the order the cities first appear.
func (s *Service) ListDistinctCities() ([]string, error) {
	raw, err := s.restaurants.ListCities()
	if err != nil {
		return nil, errors.Annotate(err, "list cities")
	}

	seen := set.NewStrings()
	cities := []string{}
	for _, c := range raw {
		c = capitalize(strings.TrimSpace(c))
		if c == "" || seen.Contains(c) {
			continue
		}
		seen.Add(c)
		cities = append(cities, c)
	}
	return cities, nil
}

// GetRestaurantWithMenu resolves a restaurant id to its profile and items.
// An empty id is NotValid; an unknown id is NotFound.
func (s *Service) GetRestaurantWithMenu(restaurantID string) (*model.RestaurantWithMenu, error) {
	restaurantID = strings.TrimSpace(restaurantID)
	if restaurantID == "" {
		return nil, errors.NotValidf("empty restaurant id")
	}

	r, err := s.restaurants.GetByID(restaurantID)
	if err != nil {
		return nil, errors.Annotate(err, "get restaurant")
	}
	if r == nil {
		return nil, errors.NotFoundf("restaurant %q", restaurantID)
	}

	foods, err := s.foods.ListByRestaurant(restaurantID)
	if err != nil {
		return nil, errors.Annotate(err, "list menu")
	}
	if foods == nil {
		foods = []model.FoodItem{}
	}
	return &model.RestaurantWithMenu{Restaurant: *r, Foods: foods}, nil
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
