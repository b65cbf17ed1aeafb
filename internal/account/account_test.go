package account

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/juju/errors"

	"github.com/dukerupert/platter/internal/auth"
	"github.com/dukerupert/platter/internal/database"
	"github.com/dukerupert/platter/internal/store"
)

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) Configured() bool { return true }

func (m *fakeMailer) SendWelcome(_ context.Context, to, _ string) error {
	m.sent = append(m.sent, to)
	return m.err
}

func setupAccountService(t *testing.T) (*Service, *auth.Issuer, *fakeMailer) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	iss := auth.NewIssuer([]byte("test-secret"), time.Hour, nil)
	mailer := &fakeMailer{}
	return NewService(store.NewRestaurantStore(db), iss, mailer, slog.Default()), iss, mailer
}

func validInput() RegisterInput {
	return RegisterInput{
		Name:           "Asha",
		Email:          " Asha@Example.com ",
		Password:       "s3cret",
		Location:       "12 MG Road",
		City:           "pune",
		ContactNo:      "555-0100",
		RestaurantName: "Spice Hut",
	}
}

func TestRegister(t *testing.T) {
	svc, _, mailer := setupAccountService(t)

	r, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if r.Email != "asha@example.com" {
		t.Errorf("email = %q, want normalized %q", r.Email, "asha@example.com")
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "asha@example.com" {
		t.Errorf("welcome mail sent to %v", mailer.sent)
	}
}

func TestRegisterMissingField(t *testing.T) {
	svc, _, _ := setupAccountService(t)

	in := validInput()
	in.ContactNo = "  "
	_, err := svc.Register(context.Background(), in)
	if !errors.Is(err, errors.NotValid) {
		t.Fatalf("err = %v, want NotValid", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := setupAccountService(t)

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("register: %v", err)
	}
	in := validInput()
	in.Email = "ASHA@example.com"
	_, err := svc.Register(context.Background(), in)
	if !errors.Is(err, errors.AlreadyExists) {
		t.Fatalf("err = %v, want AlreadyExists", err)
	}
}

func TestRegisterMailFailureIsNotFatal(t *testing.T) {
	svc, _, mailer := setupAccountService(t)
	mailer.err = errors.New("postmark down")

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("register: %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, iss, _ := setupAccountService(t)
	r, _ := svc.Register(context.Background(), validInput())

	sess, err := svc.Login(context.Background(), "asha@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Restaurant.ID != r.ID {
		t.Errorf("restaurant id = %q, want %q", sess.Restaurant.ID, r.ID)
	}
	id, err := iss.Verify(sess.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if id != r.ID {
		t.Errorf("token subject = %q, want %q", id, r.ID)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _, _ := setupAccountService(t)
	svc.Register(context.Background(), validInput())

	_, err := svc.Login(context.Background(), "asha@example.com", "wrong")
	if !errors.Is(err, errors.Unauthorized) {
		t.Errorf("wrong password: err = %v, want Unauthorized", err)
	}

	_, err = svc.Login(context.Background(), "nobody@example.com", "s3cret")
	if !errors.Is(err, errors.Unauthorized) {
		t.Errorf("unknown email: err = %v, want Unauthorized", err)
	}

	_, err = svc.Login(context.Background(), "", "")
	if !errors.Is(err, errors.NotValid) {
		t.Errorf("empty: err = %v, want NotValid", err)
	}
}
