package config

import (
	"testing"
	"time"

	"github.com/juju/errors"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(nil))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBPath != "platter.db" {
		t.Errorf("port/db = %q/%q", cfg.Port, cfg.DBPath)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("JWTTTL = %v, want 24h", cfg.JWTTTL)
	}
	if !cfg.GeneratedSecret || len(cfg.JWTSecret) != 32 {
		t.Errorf("expected a generated 32-byte secret, got %d bytes (generated=%v)", len(cfg.JWTSecret), cfg.GeneratedSecret)
	}
	if cfg.S3.Enabled() {
		t.Error("S3 should be disabled without settings")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"PLATTER_PORT":        "9000",
		"PLATTER_BASE_URL":    "https://food.example.com/",
		"PLATTER_JWT_SECRET":  "s3cret",
		"PLATTER_JWT_TTL":     "90m",
		"PLATTER_S3_BUCKET":   "menu-images",
		"PLATTER_S3_ENDPOINT": "https://s3.example.com",
		"PLATTER_LOG_FORMAT":  "json",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.BaseURL != "https://food.example.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if string(cfg.JWTSecret) != "s3cret" || cfg.GeneratedSecret {
		t.Errorf("JWTSecret = %q generated=%v", cfg.JWTSecret, cfg.GeneratedSecret)
	}
	if cfg.JWTTTL != 90*time.Minute {
		t.Errorf("JWTTTL = %v", cfg.JWTTTL)
	}
	if cfg.S3.Bucket != "menu-images" || cfg.S3.Region != "us-east-1" {
		t.Errorf("S3 = %+v", cfg.S3)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q", cfg.LogFormat)
	}
}

func TestFromEnvBadTTL(t *testing.T) {
	for _, v := range []string{"tomorrow", "-1h"} {
		_, err := FromEnv(lookupFrom(map[string]string{"PLATTER_JWT_TTL": v}))
		if !errors.Is(err, errors.NotValid) {
			t.Errorf("TTL %q: err = %v, want NotValid", v, err)
		}
	}
}

func TestFromEnvTrustProxy(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(nil))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.TrustProxy {
		t.Error("TrustProxy should default to false")
	}

	cfg, err = FromEnv(lookupFrom(map[string]string{"PLATTER_TRUST_PROXY": "true"}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if !cfg.TrustProxy {
		t.Error("TrustProxy = false, want true")
	}

	_, err = FromEnv(lookupFrom(map[string]string{"PLATTER_TRUST_PROXY": "sometimes"}))
	if !errors.Is(err, errors.NotValid) {
		t.Errorf("err = %v, want NotValid", err)
	}
}
