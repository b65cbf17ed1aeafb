package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dukerupert/platter/internal/client"
	"github.com/dukerupert/platter/internal/model"
)

func (a *app) search(ctx context.Context, args []string) error {
	fs := flagSet("search")
	city := fs.String("city", "", "city to filter by")
	name := fs.String("name", "", "restaurant name substring")
	if err := fs.Parse(true, args); err != nil {
		return err
	}

	found, err := a.api.Search(ctx, *city, *name)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Fprintln(a.out, "no restaurants found")
		return nil
	}
	printRestaurants(a.out, found)
	return nil
}

func printRestaurants(out io.Writer, rs []model.Restaurant) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRESTAURANT\tCITY\tADDRESS\tCONTACT")
	for _, r := range rs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.RestaurantName, r.City, r.Location, r.ContactNo)
	}
	tw.Flush()
}

func (a *app) cities(ctx context.Context) error {
	cities, err := a.api.Cities(ctx)
	if err != nil {
		return err
	}
	for _, c := range cities {
		fmt.Fprintln(a.out, c)
	}
	return nil
}

func (a *app) menu(ctx context.Context, args []string) error {
	if err := needArgs(args, 1, "menu <restaurantId>"); err != nil {
		return err
	}
	m, err := a.api.Menu(ctx, args[0])
	if err != nil {
		return err
	}

	c, err := a.openCart()
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s, %s (%s)\n", m.Restaurant.RestaurantName, m.Restaurant.City, m.Restaurant.ContactNo)
	if len(m.Foods) == 0 {
		fmt.Fprintln(a.out, "no items on the menu")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tITEM\tPRICE\tDESCRIPTION\t")
	for _, f := range m.Foods {
		mark := ""
		if c.Contains(f.ID) {
			mark = "in cart"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.Name, f.Price, f.Description, mark)
	}
	return tw.Flush()
}

func (a *app) watch(ctx context.Context, args []string) error {
	fs := flagSet("watch")
	restaurant := fs.String("restaurant", "", "only this restaurant's changes")
	if err := fs.Parse(true, args); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "watching for menu changes, interrupt to stop")
	return a.api.Watch(ctx, *restaurant, func(ev client.Event) {
		fmt.Fprintf(a.out, "%s %s restaurant=%s\n", ev.Type, ev.ID, ev.RestaurantID)
	})
}
