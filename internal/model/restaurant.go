package model

import "time"

// Restaurant is the safe profile of a restaurant account. The password hash
// lives only in the store layer and never appears here.
type Restaurant struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Location       string    `json:"location"`
	City           string    `json:"city"`
	ContactNo      string    `json:"contactNo"`
	RestaurantName string    `json:"restaurantName"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// RestaurantWithMenu is a restaurant profile together with its food items.
type RestaurantWithMenu struct {
	Restaurant Restaurant `json:"restaurant"`
	Foods      []FoodItem `json:"foods"`
}
