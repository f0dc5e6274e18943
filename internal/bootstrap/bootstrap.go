// Package bootstrap holds the startup steps shared by the api and worker services
package bootstrap

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/cuongbtq/job-tracker/internal/config"
	"github.com/cuongbtq/job-tracker/shared/logger"
	"github.com/cuongbtq/job-tracker/shared/postgresql"
	"github.com/cuongbtq/job-tracker/shared/rabbitmq"
)

const migrateTimeout = 30 * time.Second

// Service names one binary and where its config lives
type Service struct {
	Name          string
	ConfigEnv     string
	DefaultConfig string
	Validate      func(*config.Config) error
}

// LoadConfig reads .env, parses -config from args and validates the result
func (s Service) LoadConfig(args []string) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	path := os.Getenv(s.ConfigEnv)
	if path == "" {
		path = s.DefaultConfig
	}

	flags := flag.NewFlagSet(s.Name, flag.ContinueOnError)
	configPath := flags.String("config", path, "Path to configuration file")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if s.Validate != nil {
		if err := s.Validate(cfg); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}

	return cfg, nil
}

// LoggerConfig maps the logging section onto the shared logger
func LoggerConfig(cfg *config.LoggingConfig) *logger.Config {
	return &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	}
}

func PostgresConfig(cfg *config.DatabaseConfig) *postgresql.Config {
	return &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}
}

func RabbitMQConfig(cfg *config.RabbitMQConfig) *rabbitmq.Config {
	return &rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		QueueName:          cfg.Queue.Name,
		QueueDurable:       cfg.Queue.Durable,
		QueueAutoDelete:    cfg.Queue.AutoDelete,
		QueueExclusive:     cfg.Queue.Exclusive,
		RoutingKey:         cfg.RoutingKey,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout,
		PublishRetries:     cfg.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.Publish.RetryInterval,
		PublishBackoffMult: cfg.Publish.BackoffMultiplier,
	}
}

// Backends are the connections both services open at startup
type Backends struct {
	DB     *postgresql.Client
	Broker *rabbitmq.Client
}

// Connect opens PostgreSQL, applies migrations when asked, then opens RabbitMQ.
// A failure closes whatever was already opened.
func Connect(cfg *config.Config, migrations fs.FS, log *slog.Logger) (*Backends, error) {
	db, err := postgresql.NewClient(PostgresConfig(&cfg.Database), log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
		err := db.ApplyMigrations(ctx, migrations)
		cancel()
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	broker, err := rabbitmq.NewClient(RabbitMQConfig(&cfg.RabbitMQ), log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}
	log.Info("RabbitMQ connection established")

	return &Backends{DB: db, Broker: broker}, nil
}

// Close releases both connections and logs the final pool stats
func (b *Backends) Close(log *slog.Logger) {
	log.Info("Database pool at shutdown", b.DB.PoolStats())
	if err := b.Broker.Close(); err != nil {
		log.Warn("Failed to close RabbitMQ", slog.Any("error", err))
	}
	if err := b.DB.Close(); err != nil {
		log.Warn("Failed to close database", slog.Any("error", err))
	}
}
