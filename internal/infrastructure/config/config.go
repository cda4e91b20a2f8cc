package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`
	SetupKey  string `env:"SETUP_KEY,  required"`

	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Auth     AuthConfig
	OTP      OTPConfig
	PubSub   PubSubConfig
	SMTP     SMTPConfig
	Push     PushConfig
	Tasks    TaskConfig
	HTTPLog  HTTPLogConfig
}

type PostgresConfig struct {
	URL      string `env:"DATABASE_URL,       required"`
	MaxConns int32  `env:"DATABASE_MAX_CONNS, default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, required"`
	Database string `env:"MONGO_DB,  default=showroom"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     required"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=168h"`
}

type OTPConfig struct {
	TTL            time.Duration `env:"OTP_TTL,             default=10m"`
	Length         int           `env:"OTP_LENGTH,          default=6"`
	ResendCooldown time.Duration `env:"OTP_RESEND_COOLDOWN, default=0s"`
	MaxAttempts    int           `env:"OTP_MAX_ATTEMPTS,    default=5"`
}

// PubSubConfig selects the realtime backend. AppID, Secret and Cluster
// namespace channels so several deployments can share one broker.
type PubSubConfig struct {
	Driver  string `env:"PUBSUB_DRIVER,  default=redis"`
	AppID   string `env:"PUBSUB_APP_ID,  required"`
	Secret  string `env:"PUBSUB_SECRET,  required"`
	Cluster string `env:"PUBSUB_CLUSTER, required"`
	NatsURL string `env:"NATS_URL,       default=nats://localhost:4222"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT,     default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM,     default=no-reply@showroom.local"`
}

type PushConfig struct {
	BaseURL string        `env:"PUSH_BASE_URL, default=https://onesignal.com/api/v1"`
	AppID   string        `env:"PUSH_APP_ID,   required"`
	APIKey  string        `env:"PUSH_API_KEY,  required"`
	Timeout time.Duration `env:"PUSH_TIMEOUT,  default=5s"`
}

type TaskConfig struct {
	Workers     int           `env:"TASK_WORKERS,      default=8"`
	MaxAttempts int           `env:"TASK_MAX_ATTEMPTS, default=3"`
	Backoff     time.Duration `env:"TASK_BACKOFF,      default=200ms"`
}

type HTTPLogConfig struct {
	BodyLimit   int      `env:"LOG_BODY_LIMIT, default=4096"`
	CORSOrigins []string `env:"CORS_ORIGINS"`
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads an optional .env file, then the environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return FromLookuper(ctx, envconfig.OsLookuper())
}

// FromLookuper processes configuration from an arbitrary source.
func FromLookuper(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	switch cfg.PubSub.Driver {
	case "redis", "nats":
	default:
		return nil, fmt.Errorf("config: unknown PUBSUB_DRIVER %q", cfg.PubSub.Driver)
	}
	return &cfg, nil
}
