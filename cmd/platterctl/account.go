package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/juju/errors"

	"github.com/dukerupert/platter/internal/client"
	"github.com/dukerupert/platter/internal/localstore"
)

// session returns the saved login, or nil when logged out. An unreadable or
// expired session counts as logged out.
func (a *app) session() (*client.Session, error) {
	raw, ok, err := a.storage.Get(localstore.KeyRestaurantUser)
	if err != nil || !ok {
		return nil, err
	}
	var sess client.Session
	if err := json.Unmarshal(raw, &sess); err != nil || sess.Token == "" {
		return nil, nil
	}
	if sess.Expired(time.Now()) {
		return nil, nil
	}
	return &sess, nil
}

func (a *app) requireSession() (*client.Session, error) {
	sess, err := a.session()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errors.Unauthorizedf("not logged in; run platterctl login")
	}
	return sess, nil
}

func (a *app) signup(ctx context.Context, args []string) error {
	var in client.Signup
	fs := flagSet("signup")
	fs.StringVar(&in.Name, "name", "", "owner name")
	fs.StringVar(&in.Email, "email", "", "login email")
	fs.StringVar(&in.Password, "password", "", "password")
	fs.StringVar(&in.Location, "location", "", "street address")
	fs.StringVar(&in.City, "city", "", "city")
	fs.StringVar(&in.ContactNo, "contact", "", "contact number")
	fs.StringVar(&in.RestaurantName, "restaurant", "", "restaurant name")
	if err := fs.Parse(true, args); err != nil {
		return err
	}

	r, err := a.api.Register(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "registered %s (%s); log in to manage the menu\n", r.RestaurantName, r.ID)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flagSet("login")
	email := fs.String("email", "", "login email")
	password := fs.String("password", "", "password")
	if err := fs.Parse(true, args); err != nil {
		return err
	}

	sess, err := a.api.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return errors.Annotate(err, "encode session")
	}
	if err := a.storage.Set(localstore.KeyRestaurantUser, raw); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "logged in as %s\n", sess.Restaurant.RestaurantName)
	return nil
}

func (a *app) logout() error {
	if err := a.storage.Remove(localstore.KeyRestaurantUser); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "logged out")
	return nil
}

func (a *app) whoami() error {
	sess, err := a.session()
	if err != nil {
		return err
	}
	if sess == nil {
		fmt.Fprintln(a.out, "not logged in")
		return nil
	}
	r := sess.Restaurant
	fmt.Fprintf(a.out, "%s <%s>\n%s, %s, %s\nid %s, session expires %s\n",
		r.Name, r.Email, r.RestaurantName, r.Location, r.City, r.ID, sess.ExpiresAt.Local().Format(time.RFC1123))
	return nil
}
