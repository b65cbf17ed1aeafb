package client

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/juju/errors"

	"github.com/dukerupert/platter/internal/auth"
	"github.com/dukerupert/platter/internal/cart"
	"github.com/dukerupert/platter/internal/database"
	"github.com/dukerupert/platter/internal/localstore"
	"github.com/dukerupert/platter/internal/server"
)

func setupAPI(t *testing.T) (*server.Server, *httptest.Server) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	srv := server.New(db, server.Config{
		Tokens: auth.NewIssuer([]byte("test-secret"), time.Hour, nil),
	}, slog.Default())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

func signup(t *testing.T, c *Client, email, city, name string) *Session {
	t.Helper()
	ctx := context.Background()
	if _, err := c.Register(ctx, Signup{
		Name: "Owner", Email: email, Password: "pw", Location: "Main St",
		City: city, ContactNo: "555", RestaurantName: name,
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	sess, err := c.Login(ctx, email, "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return sess
}

func TestAccountAndBrowse(t *testing.T) {
	_, ts := setupAPI(t)
	ctx := context.Background()
	c := New(ts.URL)

	sess := signup(t, c, "owner@example.com", "pune", "Spice Hub")
	if sess.Token == "" || sess.Restaurant.ID == "" {
		t.Fatalf("session = %+v", sess)
	}
	if sess.Expired(time.Now()) {
		t.Error("fresh session reported expired")
	}

	if _, err := c.Login(ctx, "owner@example.com", "wrong"); !errors.Is(err, errors.BadRequest) {
		t.Errorf("bad login err = %v, want BadRequest", err)
	}

	found, err := c.Search(ctx, "PUNE", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].RestaurantName != "Spice Hub" {
		t.Errorf("Search = %+v", found)
	}

	cities, err := c.Cities(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cities) != 1 || cities[0] != "Pune" {
		t.Errorf("Cities = %v", cities)
	}

	if _, err := c.Menu(ctx, "nope"); !errors.Is(err, errors.NotFound) {
		t.Errorf("Menu(nope) err = %v, want NotFound", err)
	}
}

func TestFoodAdminAndCheckout(t *testing.T) {
	_, ts := setupAPI(t)
	ctx := context.Background()
	c := New(ts.URL)
	sess := signup(t, c, "owner@example.com", "Pune", "Spice Hub")

	dosa, err := c.CreateFood(ctx, FoodInput{Name: "Dosa", Price: "10.50", ImagePath: "/d.png", Description: "crispy"})
	if err != nil {
		t.Fatalf("CreateFood: %v", err)
	}
	idli, err := c.CreateFood(ctx, FoodInput{Name: "Idli", Price: "4.50", ImagePath: "/i.png", Description: "soft"})
	if err != nil {
		t.Fatalf("CreateFood: %v", err)
	}

	menu, err := c.Menu(ctx, sess.Restaurant.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(menu.Foods) != 2 || menu.Foods[0].Name != "Dosa" {
		t.Fatalf("menu = %+v", menu.Foods)
	}

	crt, err := cart.Open(localstore.NewMemory())
	if err != nil {
		t.Fatal(err)
	}
	crt.AddItem(menu.Foods[0], 2)
	crt.AddItem(menu.Foods[1], 1)
	if got := crt.Total().String(); got != "25.50" {
		t.Errorf("cart total = %s, want 25.50", got)
	}

	price := "11.00"
	if _, err := c.UpdateFood(ctx, dosa.ID, FoodPatch{Price: &price}); err != nil {
		t.Fatalf("UpdateFood: %v", err)
	}
	if _, err := c.DeleteFood(ctx, idli.ID); err != nil {
		t.Fatalf("DeleteFood: %v", err)
	}

	got, err := crt.Revalidate(ctx, c)
	if err != nil {
		t.Fatalf("Revalidate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("discrepancies = %+v", got)
	}
	if got[0].Kind != cart.DiscrepancyPriceChanged || got[0].New != 1100 {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Kind != cart.DiscrepancyMissing || got[1].ItemID != idli.ID {
		t.Errorf("second = %+v", got[1])
	}
	if crt.Total().String() != "25.50" {
		t.Error("revalidation changed the cart snapshot")
	}
}

func TestAuthErrors(t *testing.T) {
	_, ts := setupAPI(t)
	ctx := context.Background()

	anon := New(ts.URL)
	if _, err := anon.CreateFood(ctx, FoodInput{Name: "x"}); !errors.Is(err, errors.Unauthorized) {
		t.Errorf("anonymous create err = %v, want Unauthorized", err)
	}

	owner := New(ts.URL)
	signup(t, owner, "a@example.com", "Pune", "A")
	item, err := owner.CreateFood(ctx, FoodInput{Name: "Dosa", Price: "1", ImagePath: "/d.png", Description: "x"})
	if err != nil {
		t.Fatal(err)
	}

	other := New(ts.URL)
	signup(t, other, "b@example.com", "Pune", "B")
	if _, err := other.DeleteFood(ctx, item.ID); !errors.Is(err, errors.Forbidden) {
		t.Errorf("foreign delete err = %v, want Forbidden", err)
	}

	if _, err := owner.UploadImage(ctx, "d.png", strings.NewReader("\x89PNG")); !errors.Is(err, errors.NotSupported) {
		t.Errorf("upload without storage err = %v, want NotSupported", err)
	}
}

func TestWatch(t *testing.T) {
	srv, ts := setupAPI(t)
	c := New(ts.URL)
	sess := signup(t, c, "owner@example.com", "Pune", "Spice")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := make(chan Event, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.Watch(ctx, sess.Restaurant.ID, func(ev Event) { events <- ev })
	}()

	for srv.Hub().ClientCount() == 0 {
		select {
		case <-ctx.Done():
			t.Fatal("watcher never connected")
		case <-time.After(10 * time.Millisecond):
		}
	}

	item, err := c.CreateFood(context.Background(), FoodInput{Name: "Dosa", Price: "1", ImagePath: "/d.png", Description: "x"})
	if err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		if ev.Type != "food_item_created" || ev.ID != item.ID {
			t.Errorf("event = %+v", ev)
		}
	case <-ctx.Done():
		t.Fatal("no event received")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v after cancel", err)
	}
}

func TestStatusErrorPlainBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := New(ts.URL).Cities(context.Background())
	if err == nil || !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v", err)
	}
}
