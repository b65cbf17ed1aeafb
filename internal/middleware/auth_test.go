package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukerupert/platter/internal/auth"
)

func TestRequireRestaurantNoHeader(t *testing.T) {
	iss := auth.NewIssuer([]byte("secret"), time.Hour, nil)

	handler := RequireRestaurant(iss)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("POST", "/Foods", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Error("expected WWW-Authenticate header")
	}
}

func TestRequireRestaurantInvalidToken(t *testing.T) {
	iss := auth.NewIssuer([]byte("secret"), time.Hour, nil)

	handler := RequireRestaurant(iss)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	for _, h := range []string{"Bearer nope", "Basic dXNlcjpwYXNz", "Bearer "} {
		req := httptest.NewRequest("POST", "/Foods", nil)
		req.Header.Set("Authorization", h)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%q: status = %d, want %d", h, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestRequireRestaurantValidToken(t *testing.T) {
	iss := auth.NewIssuer([]byte("secret"), time.Hour, nil)
	tok, _, err := iss.Issue("rest-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var got string
	handler := RequireRestaurant(iss)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.RestaurantID(r.Context())
		if !ok {
			t.Fatal("expected restaurant id in request context")
		}
		got = id
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/Foods", nil)
	req.Header.Set("Authorization", "bearer "+tok)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got != "rest-1" {
		t.Errorf("restaurant id = %q, want %q", got, "rest-1")
	}
}
