// Package boot provides runtime configuration and dependency wiring for the server.
package boot

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chiefduck/ratewatch/internal/config"
)

// RuntimeConfig holds parsed runtime settings (JWT, server address, upstream credentials).
// Values may be overridden by environment variables (e.g. HTTP_ADDR, BLAND_API_KEY).
type RuntimeConfig struct {
	JwtSecret       string
	JwtExpiresIn    time.Duration
	ServerAddr      string
	BlandAPIKey     string
	StripeSecretKey string
}

// ProvideRuntimeConfig builds RuntimeConfig from the given config and applies env overrides.
func ProvideRuntimeConfig(cfg config.Config) (*RuntimeConfig, error) {
	jwtExpiresIn, err := time.ParseDuration(cfg.Auth.JWTExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("invalid jwt expires in: %w", err)
	}

	ret := &RuntimeConfig{
		JwtSecret:       cfg.Auth.JWTSecret,
		JwtExpiresIn:    jwtExpiresIn,
		ServerAddr:      cfg.Server.Addr,
		BlandAPIKey:     cfg.Bland.APIKey,
		StripeSecretKey: cfg.Stripe.SecretKey,
	}

	if value := os.Getenv("HTTP_ADDR"); value != "" {
		ret.ServerAddr = value
	}
	if value := os.Getenv("JWT_SECRET"); value != "" {
		ret.JwtSecret = value
	}
	if value := os.Getenv("BLAND_API_KEY"); value != "" {
		ret.BlandAPIKey = value
	}
	if value := os.Getenv("STRIPE_SECRET_KEY"); value != "" {
		ret.StripeSecretKey = value
	}

	if strings.TrimSpace(ret.JwtSecret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	return ret, nil
}
