package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the superlists service.
type Config struct {
	Addr              string        `env:"ADDR,default=:8000"`
	DBDSN             string        `env:"DB_DSN,required"`
	SiteBaseURL       string        `env:"SITE_BASE_URL,default=http://localhost:8000"`
	TokenTTL          time.Duration `env:"TOKEN_TTL,default=24h"`
	SessionTTL        time.Duration `env:"SESSION_TTL,default=336h"`
	SendGridAPIKey    string        `env:"SENDGRID_API_KEY"`
	MailFrom          string        `env:"MAIL_FROM,default=noreply@superlists.local"`
	MailFromName      string        `env:"MAIL_FROM_NAME,default=Superlists"`
	NATSURL           string        `env:"NATS_URL"`
	OTLPEndpoint      string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	AllowedOrigins    []string      `env:"CORS_ALLOWED_ORIGINS"`
	RequestsPerMinute int           `env:"RATE_LIMIT_PER_MINUTE,default=100"`
	CookieSecure      bool          `env:"COOKIE_SECURE,default=false"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
