// Package menu lets a restaurant operator curate their own food items.
package menu

import (
	"context"
	"strings"

	"github.com/juju/errors"

	"github.com/dukerupert/platter/internal/auth"
	"github.com/dukerupert/platter/internal/model"
	"github.com/dukerupert/platter/internal/store"
)

// Change actions passed to a ChangeFunc.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeFunc is called after every successful write.
type ChangeFunc func(action string, item model.FoodItem)

// foodStore is the subset of store.FoodStore the Admin writes through.
type foodStore interface {
	Create(restaurantID, name string, price model.Price, imagePath, description string) (*model.FoodItem, error)
	GetByID(id string) (*model.FoodItem, error)
	ListByRestaurant(restaurantID string) ([]model.FoodItem, error)
	Update(id string, patch model.FoodPatch) (*model.FoodItem, error)
	Delete(id string) (bool, error)
}

type Admin struct {
	foods       foodStore
	restaurants *store.RestaurantStore
	onChange    ChangeFunc
}

func NewAdmin(fs *store.FoodStore, rs *store.RestaurantStore, onChange ChangeFunc) *Admin {
	if onChange == nil {
		onChange = func(string, model.FoodItem) {}
	}
	return &Admin{foods: fs, restaurants: rs, onChange: onChange}
}

// ItemInput is a full food item as submitted by the operator. Price is the
// decimal text entered in the form.
type ItemInput struct {
	Name        string
	Price       string
	ImagePath   string
	Description string
}

// ItemPatch is a partial update; nil fields are left alone.
type ItemPatch struct {
	Name        *string
	Price       *string
	ImagePath   *string
	Description *string
}

// CreateItem adds a food item to a restaurant's menu. Every field is required
// and the price must be a positive amount.
func (a *Admin) CreateItem(restaurantID string, in ItemInput) (*model.FoodItem, error) {
	restaurantID = strings.TrimSpace(restaurantID)
	in.Name = strings.TrimSpace(in.Name)
	in.Price = strings.TrimSpace(in.Price)
	in.ImagePath = strings.TrimSpace(in.ImagePath)
	in.Description = strings.TrimSpace(in.Description)

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"res_id", restaurantID},
		{"foodName", in.Name},
		{"price", in.Price},
		{"imagePath", in.ImagePath},
		{"description", in.Description},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NotValidf("missing %s", strings.Join(missing, ", "))
	}

	price, err := parsePositivePrice(in.Price)
	if err != nil {
		return nil, err
	}

	r, err := a.restaurants.GetByID(restaurantID)
	if err != nil {
		return nil, errors.Annotate(err, "create item")
	}
	if r == nil {
		return nil, errors.NotFoundf("restaurant %q", restaurantID)
	}

	item, err := a.foods.Create(restaurantID, in.Name, price, in.ImagePath, in.Description)
	if err != nil {
		return nil, errors.Annotate(err, "create item")
	}
	a.onChange(ActionCreated, *item)
	return item, nil
}

// GetItem returns one food item, e.g. to pre-fill an edit form.
func (a *Admin) GetItem(itemID string) (*model.FoodItem, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, errors.NotValidf("empty food item id")
	}
	item, err := a.foods.GetByID(itemID)
	if err != nil {
		return nil, errors.Annotate(err, "get item")
	}
	if item == nil {
		return nil, errors.NotFoundf("food item %q", itemID)
	}
	return item, nil
}

// ListItems returns a restaurant's items in the order they were created.
func (a *Admin) ListItems(restaurantID string) ([]model.FoodItem, error) {
	restaurantID = strings.TrimSpace(restaurantID)
	if restaurantID == "" {
		return nil, errors.NotValidf("empty restaurant id")
	}
	items, err := a.foods.ListByRestaurant(restaurantID)
	if err != nil {
		return nil, errors.Annotate(err, "list items")
	}
	if items == nil {
		items = []model.FoodItem{}
	}
	return items, nil
}

// UpdateItem applies a partial update. When ctx carries an authenticated
// restaurant, only that restaurant's items may be changed.
func (a *Admin) UpdateItem(ctx context.Context, itemID string, p ItemPatch) (*model.FoodItem, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, errors.NotValidf("empty food item id")
	}
	patch, err := p.validate()
	if err != nil {
		return nil, err
	}

	if _, err := a.owned(ctx, itemID); err != nil {
		return nil, err
	}

	item, err := a.foods.Update(itemID, patch)
	if err != nil {
		return nil, errors.Annotate(err, "update item")
	}
	if item == nil {
		return nil, errors.NotFoundf("food item %q", itemID)
	}
	a.onChange(ActionUpdated, *item)
	return item, nil
}

// DeleteItem permanently removes an item and returns what was deleted.
// Deleting an unknown id is NotFound.
func (a *Admin) DeleteItem(ctx context.Context, itemID string) (*model.FoodItem, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, errors.NotValidf("empty food item id")
	}

	item, err := a.owned(ctx, itemID)
	if err != nil {
		return nil, err
	}
	deleted, err := a.foods.Delete(itemID)
	if err != nil {
		return nil, errors.Annotate(err, "delete item")
	}
	if !deleted {
		// removed by a concurrent request after the ownership check
		return nil, errors.NotFoundf("food item %q", itemID)
	}
	a.onChange(ActionDeleted, *item)
	return item, nil
}

func (a *Admin) owned(ctx context.Context, itemID string) (*model.FoodItem, error) {
	item, err := a.foods.GetByID(itemID)
	if err != nil {
		return nil, errors.Annotate(err, "get item")
	}
	if item == nil {
		return nil, errors.NotFoundf("food item %q", itemID)
	}
	if rid, ok := auth.RestaurantID(ctx); ok && rid != item.RestaurantID {
		return nil, errors.Forbiddenf("food item %q belongs to another restaurant", itemID)
	}
	return item, nil
}

func (p ItemPatch) validate() (model.FoodPatch, error) {
	var out model.FoodPatch
	nonEmpty := func(field string, v *string) (*string, error) {
		if v == nil {
			return nil, nil
		}
		s := strings.TrimSpace(*v)
		if s == "" {
			return nil, errors.NotValidf("empty %s", field)
		}
		return &s, nil
	}

	var err error
	if out.Name, err = nonEmpty("foodName", p.Name); err != nil {
		return out, err
	}
	if out.ImagePath, err = nonEmpty("imagePath", p.ImagePath); err != nil {
		return out, err
	}
	if out.Description, err = nonEmpty("description", p.Description); err != nil {
		return out, err
	}
	priceText, err := nonEmpty("price", p.Price)
	if err != nil {
		return out, err
	}
	if priceText != nil {
		price, err := parsePositivePrice(*priceText)
		if err != nil {
			return out, err
		}
		out.Price = &price
	}

	if out.Empty() {
		return out, errors.NotValidf("empty update")
	}
	return out, nil
}

func parsePositivePrice(s string) (model.Price, error) {
	price, err := model.ParsePrice(s)
	if err != nil {
		return 0, errors.NewNotValid(err, "invalid price")
	}
	if price <= 0 {
		return 0, errors.NotValidf("price must be positive")
	}
	return price, nil
}
