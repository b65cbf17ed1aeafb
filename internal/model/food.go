package model

import "time"

type FoodItem struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"res_id"`
	Name         string    `json:"foodName"`
	Price        Price     `json:"price"`
	ImagePath    string    `json:"imagePath"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FoodPatch carries the fields of a partial food item update. Nil fields are
// left untouched.
type FoodPatch struct {
	Name        *string
	Price       *Price
	ImagePath   *string
	Description *string
}

// Empty reports whether the patch changes nothing.
func (p FoodPatch) Empty() bool {
	return p.Name == nil && p.Price == nil && p.ImagePath == nil && p.Description == nil
}
