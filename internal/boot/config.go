package boot

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env           string `env:"ENV,default=dev"`
	DataDirectory string `env:"DATA_DIR,default=."`
	FrontendURL   string `env:"FRONTEND_URL,default=http://localhost:3000"`
	Server        struct {
		Port        string `env:"PORT,default=8080"`
		MetricsPort string `env:"METRICS_PORT,default=8081"`
		Origins     string `env:"ALLOWED_ORIGINS,default=*"`
	}
	JWT struct {
		Secret         string        `env:"JWT_SECRET,default=dev-only-insecure-secret"`
		Expire         time.Duration `env:"JWT_EXPIRE,default=24h"`
		RememberExpire time.Duration `env:"JWT_REMEMBER_EXPIRE,default=720h"`
	}
	EmailJS struct {
		ServiceID  string `env:"EMAILJS_SERVICE_ID"`
		TemplateID string `env:"EMAILJS_TEMPLATE_ID"`
		PublicKey  string `env:"EMAILJS_PUBLIC_KEY"`
	}
	RateLimit struct {
		Points   int           `env:"RATE_LIMIT_POINTS,default=100"`
		Duration time.Duration `env:"RATE_LIMIT_DURATION,default=60s"`
	}
}

func Load() (*Config, error) {
	config := &Config{}
	if err := envconfig.Process(context.Background(), config); err != nil {
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}
	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "dev"
}
