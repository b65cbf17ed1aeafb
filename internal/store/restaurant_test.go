package store

import (
	"testing"

	"github.com/dukerupert/platter/internal/database"
)

func setupRestaurantTestDB(t *testing.T) *RestaurantStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRestaurantStore(db)
}

func newTestRestaurant(email, city, name string) NewRestaurant {
	return NewRestaurant{
		Name:           "Owner",
		Email:          email,
		PasswordHash:   "hash",
		Location:       "1 Main St",
		City:           city,
		ContactNo:      "555-0100",
		RestaurantName: name,
	}
}

func TestRestaurantCreate(t *testing.T) {
	rs := setupRestaurantTestDB(t)

	r, err := rs.Create(newTestRestaurant("a@example.com", "pune", "Spice Hut"))
	if err != nil {
		t.Fatalf("create restaurant: %v", err)
	}
	if r.ID == "" {
		t.Error("expected generated id")
	}
	if r.Email != "a@example.com" {
		t.Errorf("email = %q, want %q", r.Email, "a@example.com")
	}
	if r.RestaurantName != "Spice Hut" {
		t.Errorf("restaurant name = %q, want %q", r.RestaurantName, "Spice Hut")
	}
	if r.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestRestaurantCreateDuplicateEmail(t *testing.T) {
	rs := setupRestaurantTestDB(t)

	if _, err := rs.Create(newTestRestaurant("a@example.com", "pune", "One")); err != nil {
		t.Fatalf("create first: %v", err)
	}
	_, err := rs.Create(newTestRestaurant("a@example.com", "delhi", "Two"))
	if err != ErrEmailTaken {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestRestaurantGetByIDNotFound(t *testing.T) {
	rs := setupRestaurantTestDB(t)

	got, err := rs.GetByID("does-not-exist")
	if err != nil {
		t.Fatalf("get restaurant: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent restaurant")
	}
}

func TestRestaurantGetCredentials(t *testing.T) {
	rs := setupRestaurantTestDB(t)
	rs.Create(newTestRestaurant("a@example.com", "pune", "One"))

	r, hash, err := rs.GetCredentials("a@example.com")
	if err != nil {
		t.Fatalf("get credentials: %v", err)
	}
	if r == nil || hash != "hash" {
		t.Fatalf("got (%v, %q), want restaurant with hash", r, hash)
	}

	r, hash, err = rs.GetCredentials("nobody@example.com")
	if err != nil {
		t.Fatalf("get credentials: %v", err)
	}
	if r != nil || hash != "" {
		t.Errorf("expected no credentials for unknown email")
	}
}

func TestRestaurantSearch(t *testing.T) {
	rs := setupRestaurantTestDB(t)
	rs.Create(newTestRestaurant("a@example.com", "Pune", "Spice Hut"))
	rs.Create(newTestRestaurant("b@example.com", "Mumbai", "Pune Palace"))
	rs.Create(newTestRestaurant("c@example.com", "pune", "Curry Corner"))

	byCity, err := rs.SearchByCity("PUNE")
	if err != nil {
		t.Fatalf("search by city: %v", err)
	}
	if len(byCity) != 2 {
		t.Fatalf("expected 2 restaurants in pune, got %d", len(byCity))
	}
	if byCity[0].RestaurantName != "Spice Hut" || byCity[1].RestaurantName != "Curry Corner" {
		t.Errorf("unexpected order: %q, %q", byCity[0].RestaurantName, byCity[1].RestaurantName)
	}

	byName, err := rs.SearchByName("curry")
	if err != nil {
		t.Fatalf("search by name: %v", err)
	}
	if len(byName) != 1 || byName[0].Email != "c@example.com" {
		t.Errorf("search by name = %+v, want Curry Corner only", byName)
	}

	// literal substring, not a pattern
	none, err := rs.SearchByName("%")
	if err != nil {
		t.Fatalf("search by name: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no match for %%, got %d", len(none))
	}

	all, err := rs.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 restaurants, got %d", len(all))
	}
}

func TestRestaurantSearchNonASCII(t *testing.T) {
	rs := setupRestaurantTestDB(t)
	rs.Create(newTestRestaurant("a@example.com", "ÜBERLINGEN", "ÇAFÉ ÉTOILE"))
	rs.Create(newTestRestaurant("b@example.com", "München", "Straßencafé"))

	byCity, err := rs.SearchByCity("überlingen")
	if err != nil {
		t.Fatalf("search by city: %v", err)
	}
	if len(byCity) != 1 || byCity[0].Email != "a@example.com" {
		t.Fatalf("search by city = %+v, want the Überlingen restaurant", byCity)
	}
	if byCity[0].City != "ÜBERLINGEN" {
		t.Errorf("city = %q, want the stored spelling", byCity[0].City)
	}

	byName, err := rs.SearchByName("çafé")
	if err != nil {
		t.Fatalf("search by name: %v", err)
	}
	if len(byName) != 1 || byName[0].RestaurantName != "ÇAFÉ ÉTOILE" {
		t.Errorf("search by name = %+v, want ÇAFÉ ÉTOILE", byName)
	}

	munich, err := rs.SearchByCity("MÜNCH")
	if err != nil {
		t.Fatalf("search by city: %v", err)
	}
	if len(munich) != 1 || munich[0].Email != "b@example.com" {
		t.Errorf("search by city = %+v, want München", munich)
	}
}

func TestRestaurantListCities(t *testing.T) {
	rs := setupRestaurantTestDB(t)
	rs.Create(newTestRestaurant("a@example.com", "pune", "One"))
	rs.Create(newTestRestaurant("b@example.com", "delhi", "Two"))
	rs.Create(newTestRestaurant("c@example.com", "pune", "Three"))

	cities, err := rs.ListCities()
	if err != nil {
		t.Fatalf("list cities: %v", err)
	}
	want := []string{"pune", "delhi", "pune"}
	if len(cities) != len(want) {
		t.Fatalf("cities = %v, want %v", cities, want)
	}
	for i := range want {
		if cities[i] != want[i] {
			t.Errorf("cities[%d] = %q, want %q", i, cities[i], want[i])
		}
	}
}
