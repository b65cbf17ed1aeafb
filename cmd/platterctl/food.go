package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/dukerupert/platter/internal/client"
	"github.com/dukerupert/platter/internal/model"
)

func (a *app) food(ctx context.Context, args []string) error {
	if err := needArgs(args, 1, "food list|show|add|edit|rm|upload"); err != nil {
		return err
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		return a.foodList(ctx, rest)
	case "show":
		return a.foodShow(ctx, rest)
	case "add":
		return a.foodAdd(ctx, rest)
	case "edit":
		return a.foodEdit(ctx, rest)
	case "rm":
		return a.foodRemove(ctx, rest)
	case "upload":
		return a.foodUpload(ctx, rest)
	default:
		return errors.BadRequestf("unknown food command %q", sub)
	}
}

func (a *app) foodList(ctx context.Context, args []string) error {
	var restaurantID string
	if len(args) > 0 {
		restaurantID = args[0]
	} else {
		sess, err := a.requireSession()
		if err != nil {
			return err
		}
		restaurantID = sess.Restaurant.ID
	}

	items, err := a.api.ListFoods(ctx, restaurantID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "no food items")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tITEM\tPRICE\tIMAGE\tDESCRIPTION")
	for _, f := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.Name, f.Price, f.ImagePath, f.Description)
	}
	return tw.Flush()
}

func (a *app) foodShow(ctx context.Context, args []string) error {
	if err := needArgs(args, 1, "food show <itemId>"); err != nil {
		return err
	}
	item, err := a.api.GetFoodItem(ctx, args[0])
	if err != nil {
		return err
	}
	if item == nil {
		return errors.NotFoundf("food item %q", args[0])
	}
	a.printItem(item)
	return nil
}

func (a *app) printItem(f *model.FoodItem) {
	fmt.Fprintf(a.out, "%s  %s\nprice:       %s\nimage:       %s\ndescription: %s\nrestaurant:  %s\n",
		f.ID, f.Name, f.Price, f.ImagePath, f.Description, f.RestaurantID)
}

func (a *app) foodAdd(ctx context.Context, args []string) error {
	if _, err := a.requireSession(); err != nil {
		return err
	}
	var in client.FoodInput
	fs := flagSet("food add")
	fs.StringVar(&in.Name, "name", "", "item name")
	fs.StringVar(&in.Price, "price", "", "price, e.g. 10.50")
	fs.StringVar(&in.ImagePath, "image", "", "image URL")
	fs.StringVar(&in.Description, "desc", "", "description")
	if err := fs.Parse(true, args); err != nil {
		return err
	}

	item, err := a.api.CreateFood(ctx, in)
	if err != nil {
		return err
	}
	a.printItem(item)
	return nil
}

func (a *app) foodEdit(ctx context.Context, args []string) error {
	if _, err := a.requireSession(); err != nil {
		return err
	}
	fs := flagSet("food edit")
	name := fs.String("name", "", "new name")
	price := fs.String("price", "", "new price")
	image := fs.String("image", "", "new image URL")
	desc := fs.String("desc", "", "new description")
	if err := fs.Parse(true, args); err != nil {
		return err
	}
	if err := needArgs(fs.Args(), 1, "food edit <itemId> [-name N] [-price P] [-image URL] [-desc D]"); err != nil {
		return err
	}

	// Only flags given on the command line are sent.
	var patch client.FoodPatch
	fs.Visit(func(f *gnuflag.Flag) {
		switch f.Name {
		case "name":
			patch.Name = name
		case "price":
			patch.Price = price
		case "image":
			patch.ImagePath = image
		case "desc":
			patch.Description = desc
		}
	})

	item, err := a.api.UpdateFood(ctx, fs.Args()[0], patch)
	if err != nil {
		return err
	}
	a.printItem(item)
	return nil
}

func (a *app) foodRemove(ctx context.Context, args []string) error {
	if _, err := a.requireSession(); err != nil {
		return err
	}
	if err := needArgs(args, 1, "food rm <itemId>"); err != nil {
		return err
	}
	item, err := a.api.DeleteFood(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted %s (%s)\n", item.Name, item.ID)
	return nil
}

func (a *app) foodUpload(ctx context.Context, args []string) error {
	if _, err := a.requireSession(); err != nil {
		return err
	}
	if err := needArgs(args, 1, "food upload <file>"); err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return errors.Annotate(err, "open image")
	}
	defer f.Close()

	url, err := a.api.UploadImage(ctx, filepath.Base(args[0]), f)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, url)
	return nil
}
