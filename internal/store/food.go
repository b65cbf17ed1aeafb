package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dukerupert/platter/internal/model"
)

type FoodStore struct {
	db *sql.DB
}

func NewFoodStore(db *sql.DB) *FoodStore {
	return &FoodStore{db: db}
}

func scanFood(scanner interface{ Scan(...any) error }) (*model.FoodItem, error) {
	var f model.FoodItem
	var cents int64
	err := scanner.Scan(
		&f.ID, &f.RestaurantID, &f.Name, &cents, &f.ImagePath,
		&f.Description, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.Price = model.Price(cents)
	return &f, nil
}

const foodCols = `id, restaurant_id, name, price_cents, image_path, description, created_at, updated_at`

func (s *FoodStore) Create(restaurantID, name string, price model.Price, imagePath, description string) (*model.FoodItem, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO food_items (id, restaurant_id, name, price_cents, image_path, description) VALUES (?, ?, ?, ?, ?, ?)`,
		id, restaurantID, name, price.Cents(), imagePath, description,
	)
	if err != nil {
		return nil, fmt.Errorf("insert food item: %w", err)
	}
	return s.GetByID(id)
}

func (s *FoodStore) GetByID(id string) (*model.FoodItem, error) {
	row := s.db.QueryRow(`SELECT `+foodCols+` FROM food_items WHERE id = ?`, id)
	f, err := scanFood(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get food item: %w", err)
	}
	return f, nil
}

// ListByRestaurant returns a restaurant's items in the order they were created.
func (s *FoodStore) ListByRestaurant(restaurantID string) ([]model.FoodItem, error) {
	rows, err := s.db.Query(
		`SELECT `+foodCols+` FROM food_items WHERE restaurant_id = ? ORDER BY rowid ASC`,
		restaurantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list food items: %w", err)
	}
	defer rows.Close()

	var items []model.FoodItem
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("scan food item: %w", err)
		}
		items = append(items, *f)
	}
	return items, rows.Err()
}

// Update applies the non-nil fields of patch and returns the updated item, or
// nil if no item has that id.
func (s *FoodStore) Update(id string, patch model.FoodPatch) (*model.FoodItem, error) {
	var sets []string
	var args []any
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Price != nil {
		sets = append(sets, "price_cents = ?")
		args = append(args, patch.Price.Cents())
	}
	if patch.ImagePath != nil {
		sets = append(sets, "image_path = ?")
		args = append(args, *patch.ImagePath)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	_, err := s.db.Exec(`UPDATE food_items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update food item: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes a food item and reports whether a row was deleted.
func (s *FoodStore) Delete(id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM food_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete food item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete food item rows affected: %w", err)
	}
	return n > 0, nil
}
