package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// MinTokenSecretLength is the minimum size of TOKEN_SECRET in bytes.
const MinTokenSecretLength = 32

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Auth   AuthConfig
	Argon2 Argon2Config
	Pool   PoolConfig
	Mongo  MongoConfig
	Redis  RedisConfig
}

type AuthConfig struct {
	// TokenFormat selects the token minted on login and registration:
	// "signed" (HS256 JWT) or "legacy" (XOR cookie).
	TokenFormat        string        `env:"TOKEN_FORMAT,         default=signed"`
	TokenSecret        string        `env:"TOKEN_SECRET"`
	TokenTTL           time.Duration `env:"TOKEN_TTL,            default=24h"`
	AcceptLegacyTokens bool          `env:"ACCEPT_LEGACY_TOKENS, default=false"`
	LegacyTokenKey     string        `env:"LEGACY_TOKEN_KEY"`
	Realm              string        `env:"AUTH_REALM,           default=publish"`
}

type Argon2Config struct {
	MemoryKiB   uint32 `env:"ARGON2_MEMORY_KIB,  default=19456"`
	Iterations  uint32 `env:"ARGON2_ITERATIONS,  default=2"`
	Parallelism uint8  `env:"ARGON2_PARALLELISM, default=1"`
}

type PoolConfig struct {
	// Workers defaults to runtime.NumCPU() when zero.
	Workers    int `env:"HASH_WORKERS,     default=0"`
	QueueDepth int `env:"HASH_QUEUE_DEPTH, default=64"`
}

type MongoConfig struct {
	URI         string        `env:"MONGO_URI,           default=mongodb://localhost:27017"`
	Database    string        `env:"MONGO_DB,            default=lairs"`
	MaxPoolSize uint64        `env:"MONGO_MAX_POOL_SIZE, default=100"`
	Timeout     time.Duration `env:"MONGO_TIMEOUT,       default=10s"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT,  default=5s"`
}

// Load reads configuration from environment variables using go-envconfig
// and validates it.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field rules envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.Auth.TokenFormat {
	case "signed", "legacy":
	default:
		errs = append(errs, fmt.Errorf("TOKEN_FORMAT must be \"signed\" or \"legacy\", got %q", c.Auth.TokenFormat))
	}

	// Signed tokens are always accepted, so the secret is always required.
	if len(c.Auth.TokenSecret) < MinTokenSecretLength {
		errs = append(errs, fmt.Errorf("TOKEN_SECRET must be at least %d bytes", MinTokenSecretLength))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}

	if c.Auth.TokenFormat == "legacy" && !c.Auth.AcceptLegacyTokens {
		errs = append(errs, errors.New("TOKEN_FORMAT=legacy requires ACCEPT_LEGACY_TOKENS=true"))
	}
	if c.Auth.AcceptLegacyTokens && c.Auth.LegacyTokenKey == "" {
		errs = append(errs, errors.New("LEGACY_TOKEN_KEY is required when legacy tokens are accepted"))
	}

	if c.Argon2.MemoryKiB < 8*uint32(c.Argon2.Parallelism) {
		errs = append(errs, errors.New("ARGON2_MEMORY_KIB must be at least 8 * ARGON2_PARALLELISM"))
	}
	if c.Argon2.Iterations == 0 || c.Argon2.Parallelism == 0 {
		errs = append(errs, errors.New("ARGON2_ITERATIONS and ARGON2_PARALLELISM must be positive"))
	}
	if c.Pool.Workers < 0 || c.Pool.QueueDepth <= 0 {
		errs = append(errs, errors.New("HASH_WORKERS must be >= 0 and HASH_QUEUE_DEPTH > 0"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// IsDevelopment reports whether the service runs in the development env.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
