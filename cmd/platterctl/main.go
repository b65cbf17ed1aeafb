// Command platterctl browses restaurants, keeps a local cart and manages a
// restaurant's menu against a platter server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/dukerupert/platter/internal/cart"
	"github.com/dukerupert/platter/internal/client"
	"github.com/dukerupert/platter/internal/localstore"
)

const usage = `usage: platterctl [-api URL] [-state DIR] <command> [args]

browse:
  search [-city C] [-name N]    list restaurants
  cities                        list known cities
  menu <restaurantId>           show a restaurant and its menu
  watch [-restaurant ID]        stream menu changes

cart:
  cart show
  cart add <restaurantId> <itemId> [qty]
  cart remove <itemId>
  cart qty <itemId> <n>
  cart clear
  cart checkout                 show the total and re-check prices

restaurant:
  signup -name -email -password -location -city -contact -restaurant
  login -email E -password P
  logout
  whoami
  food list [restaurantId]
  food show <itemId>
  food add -name N -price P -image URL -desc D
  food edit <itemId> [-name N] [-price P] [-image URL] [-desc D]
  food rm <itemId>
  food upload <file>
`

type app struct {
	api     *client.Client
	storage localstore.Storage
	out     io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "platterctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := gnuflag.NewFlagSet("platterctl", gnuflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	apiURL := fs.String("api", envOr("PLATTER_API_URL", "http://localhost:8080"), "server base URL")
	stateDir := fs.String("state", envOr("PLATTER_STATE_DIR", defaultStateDir()), "directory for local state")
	if err := fs.Parse(false, args); err != nil {
		return errors.NewBadRequest(err, usage)
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprint(out, usage)
		return nil
	}

	storage, err := localstore.OpenDir(*stateDir)
	if err != nil {
		return err
	}
	a := &app{storage: storage, out: out}
	a.api = client.New(*apiURL)
	if sess, err := a.session(); err == nil && sess != nil {
		a.api.SetToken(sess.Token)
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "search":
		return a.search(ctx, cmdArgs)
	case "cities":
		return a.cities(ctx)
	case "menu":
		return a.menu(ctx, cmdArgs)
	case "watch":
		return a.watch(ctx, cmdArgs)
	case "cart":
		return a.cart(ctx, cmdArgs)
	case "signup":
		return a.signup(ctx, cmdArgs)
	case "login":
		return a.login(ctx, cmdArgs)
	case "logout":
		return a.logout()
	case "whoami":
		return a.whoami()
	case "food":
		return a.food(ctx, cmdArgs)
	case "help":
		fmt.Fprint(out, usage)
		return nil
	default:
		return errors.BadRequestf("unknown command %q", cmd)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".platter"
	}
	return filepath.Join(dir, "platter")
}

func (a *app) openCart() (*cart.Store, error) {
	c, err := cart.Open(a.storage)
	if err != nil {
		return nil, err
	}
	if c.Recovered() {
		fmt.Fprintln(a.out, "note: saved cart was unreadable and has been reset")
	}
	return c, nil
}

// flagSet returns a subcommand flag set that reports errors instead of
// exiting.
func flagSet(name string) *gnuflag.FlagSet {
	fs := gnuflag.NewFlagSet(name, gnuflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func needArgs(args []string, n int, form string) error {
	if len(args) < n {
		return errors.BadRequestf("usage: platterctl %s", form)
	}
	return nil
}
