package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Database wraps the sql connection pool together with the logger
// every handler reports to.
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// DatabaseConfiguration holds the connection settings for Postgres.
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// NewDatabaseConfiguration reads the configuration from the environment.
// A .env file in the working directory is loaded first if it exists.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, NewError("load .env", err)
	}

	config := &DatabaseConfiguration{
		Host:     os.Getenv("EVENTER_DB_HOST"),
		Port:     os.Getenv("EVENTER_DB_PORT"),
		Database: os.Getenv("EVENTER_DB_DATABASE"),
		Username: os.Getenv("EVENTER_DB_USERNAME"),
		Password: os.Getenv("EVENTER_DB_PASSWORD"),
		Schema:   getenv("EVENTER_DB_SCHEMA", "public"),
		SSLMode:  getenv("EVENTER_DB_SSLMODE", "disable"),
	}

	var missing []string
	if config.Host == "" {
		missing = append(missing, "EVENTER_DB_HOST")
	}
	if config.Port == "" {
		missing = append(missing, "EVENTER_DB_PORT")
	}
	if config.Database == "" {
		missing = append(missing, "EVENTER_DB_DATABASE")
	}
	if config.Username == "" {
		missing = append(missing, "EVENTER_DB_USERNAME")
	}
	if len(missing) > 0 {
		return nil, NewError("database configuration", fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", ")))
	}

	return config, nil
}

// DSN returns the lib/pq connection string.
func (c *DatabaseConfiguration) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode, c.Schema,
	)
}

// NewDatabase opens and pings a connection pool.
// It panics if the database cannot be reached after a few attempts.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	if logger == nil {
		logger = slog.Default()
	}

	instance, err := connect(config, 5, time.Second)
	if err != nil {
		log.Panicf("error connecting to database %s: %v", name, err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host), slog.String("port", config.Port))

	return &Database{
		Name:     name,
		Instance: instance,
		Logger:   logger,
	}
}

// NewTestDatabase opens a database with a debug logger writing to stdout.
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	return NewDatabase("test", config, NewLogger(os.Stdout, slog.LevelDebug))
}

// Close closes the connection pool.
func (d *Database) Close() error {
	if d == nil || d.Instance == nil {
		return nil
	}
	return d.Instance.Close()
}

func connect(config *DatabaseConfiguration, attempts int, wait time.Duration) (*sql.DB, error) {
	instance, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, NewError("open", err)
	}

	instance.SetMaxOpenConns(10)
	instance.SetMaxIdleConns(5)
	instance.SetConnMaxLifetime(30 * time.Minute)

	for i := 0; i < attempts; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = instance.PingContext(ctx)
		cancel()
		if err == nil {
			return instance, nil
		}
		time.Sleep(wait)
	}

	_ = instance.Close()
	return nil, NewError("ping", err)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
