package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"golang.org/x/crypto/bcrypt"

	"auth_service/internal/lib/hasher"
	"auth_service/internal/session"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

const minProdSecretLen = 32

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	Storage    `yaml:"storage"`
	Tokens     `yaml:"tokens"`
	Hasher     `yaml:"hasher"`
	RabbitMQ   `yaml:"rabbitmq"`
	Redis      `yaml:"redis"`
	Postgres   `yaml:"postgres"`
	HTTPServer `yaml:"http_server"`
	RateLimit  `yaml:"rate_limit"`
	Email      `yaml:"email"`

	// InsecureSecret is set by Validate when the development fallback secret was substituted.
	InsecureSecret bool `yaml:"-"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type RateLimit struct {
	Enabled bool `yaml:"enabled" env:"RATE_LIMIT_ENABLED" env-default:"true"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"postgres"`
	Port     int    `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB"`
	SSLMode  string `yaml:"sslmode" env-default:"disable"`
	MaxConns int32  `yaml:"max_conns" env-default:"10"`
}

type Tokens struct {
	Secret     string        `yaml:"secret" env:"SESSION_SECRET"`
	SessionTTL time.Duration `yaml:"session_ttl" env-default:"24h"`
	Issuer     string        `yaml:"issuer" env-default:"auth_service"`
}

type Hasher struct {
	Algorithm  string `yaml:"algorithm" env:"HASHER_ALGORITHM" env-default:"bcrypt"`
	BcryptCost int    `yaml:"bcrypt_cost" env:"HASHER_BCRYPT_COST" env-default:"12"`
	Workers    int    `yaml:"workers" env:"HASHER_WORKERS" env-default:"0"`
}

type RabbitMQ struct {
	URL       string `yaml:"url" env:"RABBITMQ_URL"`
	QueueName string `yaml:"queue_name" env:"RABBITMQ_QUEUE" env-default:"registrations"`
}

type Redis struct {
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env-default:"0"`
}

type Email struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
}

// MustLoad reads and validates the config, panicking on any error.
// An empty configPath falls back to the CONFIG_PATH environment variable.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err.Error())
	}

	return cfg
}

func Load(configPath string) (*Config, error) {
	const op = "config.Load"

	var cfg Config

	if err := read(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

// MailerConfig is the part of the config file cmd/mail_sender reads.
type MailerConfig struct {
	Env      string `yaml:"env" env:"ENV" env-default:"local"`
	RabbitMQ `yaml:"rabbitmq"`
	Email    `yaml:"email"`
}

func MustLoadMailer(configPath string) *MailerConfig {
	cfg, err := LoadMailer(configPath)
	if err != nil {
		panic(err.Error())
	}

	return cfg
}

// LoadMailer reads the same file as Load but checks only the broker and SMTP sections.
func LoadMailer(configPath string) (*MailerConfig, error) {
	const op = "config.LoadMailer"

	var cfg MailerConfig

	if err := read(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func (c *MailerConfig) Validate() error {
	var errs []error

	if err := validateEnv(c.Env); err != nil {
		errs = append(errs, err)
	}
	if c.RabbitMQ.URL == "" {
		errs = append(errs, errors.New("rabbitmq url is required"))
	}
	if c.Email.Host == "" {
		errs = append(errs, errors.New("email host is required"))
	}

	return errors.Join(errs...)
}

func read(configPath string, cfg any) error {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath == "" {
		return errors.New("config path is not set")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", configPath)
	}

	if err := cleanenv.ReadConfig(configPath, cfg); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	return nil
}

func validateEnv(env string) error {
	switch env {
	case EnvLocal, EnvDev, EnvProd:
		return nil
	default:
		return fmt.Errorf("unknown env %q", env)
	}
}

// Validate rejects configurations the service must not start with.
// In the local environment an empty secret is replaced by session.InsecureDevSecret.
func (c *Config) Validate() error {
	var errs []error

	if err := validateEnv(c.Env); err != nil {
		errs = append(errs, err)
	}

	if c.Tokens.Secret == "" {
		if c.Env == EnvLocal {
			c.Tokens.Secret = session.InsecureDevSecret
			c.InsecureSecret = true
		} else {
			errs = append(errs, session.ErrEmptySecret)
		}
	}
	if c.Env == EnvProd && c.Tokens.Secret != "" && len(c.Tokens.Secret) < minProdSecretLen {
		errs = append(errs, fmt.Errorf("session secret must be at least %d bytes in prod", minProdSecretLen))
	}
	if c.Env != EnvLocal && c.Tokens.Secret == session.InsecureDevSecret {
		errs = append(errs, errors.New("the development session secret is not allowed outside local"))
	}

	if c.Tokens.SessionTTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}

	switch c.Hasher.Algorithm {
	case hasher.AlgorithmBcrypt, hasher.AlgorithmArgon2id:
	default:
		errs = append(errs, fmt.Errorf("unknown hasher algorithm %q", c.Hasher.Algorithm))
	}
	if c.Hasher.BcryptCost < bcrypt.MinCost || c.Hasher.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", c.Hasher.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
	}

	switch c.Storage.Driver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if c.Postgres.User == "" || c.Postgres.DBName == "" {
			errs = append(errs, errors.New("postgres user and dbname are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	return errors.Join(errs...)
}

// DSN formats the Postgres connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host,
		p.Port,
		p.User,
		p.Password,
		p.DBName,
		p.SSLMode,
	)
}
