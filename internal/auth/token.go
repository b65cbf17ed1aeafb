package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/juju/clock"
	"github.com/juju/errors"
)

const issuer = "platter"

// Issuer signs and verifies the bearer tokens handed out at login. The token
// subject is the restaurant id.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewIssuer(secret []byte, ttl time.Duration, clk clock.Clock) *Issuer {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Issuer{secret: secret, ttl: ttl, clock: clk}
}

// Issue returns a signed token for restaurantID and its expiry time.
func (i *Issuer) Issue(restaurantID string) (string, time.Time, error) {
	now := i.clock.Now()
	expires := now.Add(i.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   restaurantID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, errors.Annotate(err, "sign token")
	}
	return signed, expires, nil
}

// Verify checks the signature and expiry of token and returns the restaurant
// id it was issued for.
func (i *Issuer) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.clock.Now),
	)
	if err != nil {
		return "", errors.Unauthorizedf("invalid token: %v", err)
	}
	if claims.Subject == "" {
		return "", errors.Unauthorizedf("invalid token: missing subject")
	}
	return claims.Subject, nil
}
