package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/juju/errors"

	"github.com/dukerupert/platter/internal/cart"
)

func (a *app) cart(ctx context.Context, args []string) error {
	if err := needArgs(args, 1, "cart show|add|remove|qty|clear|checkout"); err != nil {
		return err
	}
	c, err := a.openCart()
	if err != nil {
		return err
	}
	unsubscribe := c.Subscribe(func(ev cart.Event) {
		fmt.Fprintf(a.out, "cart: %d item(s)\n", ev.Count)
	})
	defer unsubscribe()

	sub, rest := args[0], args[1:]
	switch sub {
	case "show":
		return a.showCart(c)
	case "add":
		return a.cartAdd(ctx, c, rest)
	case "remove":
		if err := needArgs(rest, 1, "cart remove <itemId>"); err != nil {
			return err
		}
		removed, err := c.RemoveItem(rest[0])
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintln(a.out, "item is not in the cart")
		}
		return nil
	case "qty":
		if err := needArgs(rest, 2, "cart qty <itemId> <n>"); err != nil {
			return err
		}
		n, err := strconv.Atoi(rest[1])
		if err != nil {
			return errors.BadRequestf("quantity %q", rest[1])
		}
		if n < 1 {
			return errors.BadRequestf("quantity must be at least 1; use cart remove to drop an item")
		}
		if !c.Contains(rest[0]) {
			return errors.NotFoundf("item %q in cart", rest[0])
		}
		_, err = c.SetQuantity(rest[0], n)
		return err
	case "clear":
		return c.Clear()
	case "checkout":
		return a.checkout(ctx, c)
	default:
		return errors.BadRequestf("unknown cart command %q", sub)
	}
}

func (a *app) cartAdd(ctx context.Context, c *cart.Store, args []string) error {
	if err := needArgs(args, 2, "cart add <restaurantId> <itemId> [qty]"); err != nil {
		return err
	}
	qty := 1
	if len(args) > 2 {
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return errors.BadRequestf("quantity %q", args[2])
		}
		qty = n
	}

	m, err := a.api.Menu(ctx, args[0])
	if err != nil {
		return err
	}
	for _, f := range m.Foods {
		if f.ID == args[1] {
			return c.AddItem(f, qty)
		}
	}
	return errors.NotFoundf("item %q on %s's menu", args[1], m.Restaurant.RestaurantName)
}

func (a *app) showCart(c *cart.Store) error {
	entries := c.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "your cart is empty")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tITEM\tPRICE\tQTY\tSUBTOTAL")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", e.Food.ID, e.Food.Name, e.Food.Price, e.Quantity, e.Subtotal())
	}
	fmt.Fprintf(tw, "\t\t\t\t\nTOTAL\t\t\t%d\t%s\n", c.Quantity(), c.Total())
	return tw.Flush()
}

func (a *app) checkout(ctx context.Context, c *cart.Store) error {
	if c.Len() == 0 {
		fmt.Fprintln(a.out, "your cart is empty")
		return nil
	}
	if err := a.showCart(c); err != nil {
		return err
	}

	diffs, err := c.Revalidate(ctx, a.api)
	if err != nil {
		return err
	}
	if len(diffs) == 0 {
		fmt.Fprintln(a.out, "all prices are current")
		return nil
	}
	fmt.Fprintln(a.out, "the menu has changed since these items were added:")
	for _, d := range diffs {
		switch d.Kind {
		case cart.DiscrepancyMissing:
			fmt.Fprintf(a.out, "  %s (%s) is no longer available\n", d.Name, d.ItemID)
		case cart.DiscrepancyPriceChanged:
			fmt.Fprintf(a.out, "  %s (%s) now costs %s, was %s\n", d.Name, d.ItemID, d.New, d.Old)
		}
	}
	return nil
}
