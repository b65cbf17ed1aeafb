// Package config loads server settings from the environment. A .env file in
// the working directory is read first when present.
package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/juju/errors"

	"github.com/dukerupert/platter/internal/imagestore"
)

type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string
	BaseURL   string

	// TrustProxy honours CF-Connecting-IP and X-Forwarded-For for client
	// addresses. Only enable it behind a proxy that sets those headers.
	TrustProxy bool

	JWTSecret []byte
	JWTTTL    time.Duration
	// GeneratedSecret is set when no PLATTER_JWT_SECRET was given and tokens
	// will not survive a restart.
	GeneratedSecret bool

	S3 imagestore.Config

	PostmarkToken string
	FromEmail     string
}

// Load reads .env (if any) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Annotate(err, "load .env")
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function such as os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := &Config{
		Port:      get("PLATTER_PORT", "8080"),
		DBPath:    get("PLATTER_DB_PATH", "platter.db"),
		LogLevel:  get("PLATTER_LOG_LEVEL", "info"),
		LogFormat: get("PLATTER_LOG_FORMAT", "text"),
		S3: imagestore.Config{
			Endpoint:  get("PLATTER_S3_ENDPOINT", ""),
			Bucket:    get("PLATTER_S3_BUCKET", ""),
			Region:    get("PLATTER_S3_REGION", "us-east-1"),
			AccessKey: get("PLATTER_S3_ACCESS_KEY", ""),
			SecretKey: get("PLATTER_S3_SECRET_KEY", ""),
			PublicURL: get("PLATTER_S3_PUBLIC_URL", ""),
		},
		PostmarkToken: get("PLATTER_POSTMARK_TOKEN", ""),
		FromEmail:     get("PLATTER_FROM_EMAIL", ""),
	}
	cfg.BaseURL = strings.TrimRight(get("PLATTER_BASE_URL", fmt.Sprintf("http://localhost:%s", cfg.Port)), "/")

	ttl, err := time.ParseDuration(get("PLATTER_JWT_TTL", "24h"))
	if err != nil {
		return nil, errors.NotValidf("PLATTER_JWT_TTL %q", get("PLATTER_JWT_TTL", ""))
	}
	if ttl <= 0 {
		return nil, errors.NotValidf("non-positive PLATTER_JWT_TTL")
	}
	cfg.JWTTTL = ttl

	trust, err := strconv.ParseBool(get("PLATTER_TRUST_PROXY", "false"))
	if err != nil {
		return nil, errors.NotValidf("PLATTER_TRUST_PROXY %q", get("PLATTER_TRUST_PROXY", ""))
	}
	cfg.TrustProxy = trust

	if secret := get("PLATTER_JWT_SECRET", ""); secret != "" {
		cfg.JWTSecret = []byte(secret)
	} else {
		cfg.JWTSecret = make([]byte, 32)
		if _, err := rand.Read(cfg.JWTSecret); err != nil {
			return nil, errors.Annotate(err, "generate jwt secret")
		}
		cfg.GeneratedSecret = true
	}

	return cfg, nil
}
