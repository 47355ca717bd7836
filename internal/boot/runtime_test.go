package boot

import (
	"testing"
	"time"

	"github.com/chiefduck/ratewatch/internal/config"
)

func TestProvideRuntimeConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := ProvideRuntimeConfig(config.Config{Auth: config.AuthConfig{JWTExpiresIn: "1h"}})
	if err == nil {
		t.Fatal("expected error for missing jwt secret")
	}
}

func TestProvideRuntimeConfigRejectsBadExpiry(t *testing.T) {
	_, err := ProvideRuntimeConfig(config.Config{Auth: config.AuthConfig{JWTSecret: "x", JWTExpiresIn: "soon"}})
	if err == nil {
		t.Fatal("expected error for invalid expiry")
	}
}

func TestProvideRuntimeConfigEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("BLAND_API_KEY", "env-bland")
	t.Setenv("STRIPE_SECRET_KEY", "sk_env")

	cfg := config.Config{
		Server: config.ServerConfig{Addr: ":8080"},
		Auth:   config.AuthConfig{JWTSecret: "file-secret", JWTExpiresIn: "2h"},
		Bland:  config.BlandConfig{APIKey: "file-bland"},
		Stripe: config.StripeConfig{SecretKey: "sk_file"},
	}
	rc, err := ProvideRuntimeConfig(cfg)
	if err != nil {
		t.Fatalf("ProvideRuntimeConfig: %v", err)
	}
	if rc.ServerAddr != ":7000" {
		t.Errorf("ServerAddr = %q, want :7000", rc.ServerAddr)
	}
	if rc.JwtSecret != "env-secret" {
		t.Errorf("JwtSecret = %q, want env-secret", rc.JwtSecret)
	}
	if rc.BlandAPIKey != "env-bland" {
		t.Errorf("BlandAPIKey = %q, want env-bland", rc.BlandAPIKey)
	}
	if rc.StripeSecretKey != "sk_env" {
		t.Errorf("StripeSecretKey = %q, want sk_env", rc.StripeSecretKey)
	}
	if rc.JwtExpiresIn != 2*time.Hour {
		t.Errorf("JwtExpiresIn = %v, want 2h", rc.JwtExpiresIn)
	}
}
