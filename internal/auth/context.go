package auth

import "context"

type contextKey struct{}

// WithRestaurant returns a context carrying the id of the authenticated
// restaurant.
func WithRestaurant(ctx context.Context, restaurantID string) context.Context {
	return context.WithValue(ctx, contextKey{}, restaurantID)
}

// RestaurantID returns the authenticated restaurant id, if any.
func RestaurantID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}
