// Package config loads process settings from the environment, an optional
// .env file and an optional config file. Environment variables win.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var ErrPortMissing = errors.New("PORT is not set")

type Database struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
	URL      string `mapstructure:"url"`
	Path     string `mapstructure:"path"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// PostgresURL returns DB_URL when set, otherwise builds one from the parts.
func (d Database) PostgresURL() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.Username, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Database,
	}
	if d.SSLMode != "" {
		u.RawQuery = "sslmode=" + d.SSLMode
	}
	return u.String()
}

type Config struct {
	Port            string        `mapstructure:"port"`
	FrontendURL     string        `mapstructure:"frontend_url"`
	LogLevel        string        `mapstructure:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Database        Database      `mapstructure:"db"`
}

func (c Config) Addr() string {
	return ":" + c.Port
}

// AllowedOrigins splits FRONTEND_URL on commas.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.FrontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("log_level", "info")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.host", "db")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.username", "user")
	v.SetDefault("db.password", "password")
	v.SetDefault("db.database", "tododb")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.path", "./data/tasks.db")

	binds := map[string]string{
		"port":             "PORT",
		"frontend_url":     "FRONTEND_URL",
		"log_level":        "LOG_LEVEL",
		"shutdown_timeout": "SHUTDOWN_TIMEOUT",
		"db.driver":        "DB_DRIVER",
		"db.host":          "DB_HOST",
		"db.port":          "DB_PORT",
		"db.username":      "DB_USERNAME",
		"db.password":      "DB_PASSWORD",
		"db.database":      "DB_DATABASE",
		"db.sslmode":       "DB_SSLMODE",
		"db.url":           "DB_URL",
		"db.path":          "DB_PATH",
		"db.max_conns":     "DB_MAX_CONNS",
	}
	for key, env := range binds {
		_ = v.BindEnv(key, env)
	}
	return v
}

// loadDotEnv reads path (or ./.env) into the environment. A missing file is fine.
func loadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	return nil
}

// Load builds the server configuration. It fails when PORT is unset.
func Load(envFile, configFile string) (*Config, error) {
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}

	v := newViper()
	if err := readConfigFile(v, configFile); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if strings.TrimSpace(cfg.Port) == "" {
		return nil, ErrPortMissing
	}

	switch cfg.Database.Driver {
	case DriverMemory, DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	return &cfg, nil
}

// LoadDatabase reads only the database section; used by tools that do not listen.
func LoadDatabase(envFile, configFile string) (*Database, error) {
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}
	v := newViper()
	if err := readConfigFile(v, configFile); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg.Database, nil
}

type Client struct {
	APIURL        string `mapstructure:"api_url"`
	TelegramToken string `mapstructure:"telegram_token"`
	StateFile     string `mapstructure:"state_file"`
}

// LoadClient reads settings for the command-line and chat clients.
func LoadClient(envFile string) (*Client, error) {
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("api_url", "http://localhost:3000/api")
	_ = v.BindEnv("api_url", "API_URL")
	_ = v.BindEnv("telegram_token", "TELEGRAM_TOKEN")
	_ = v.BindEnv("state_file", "TASKS_STATE_FILE")

	var c Client
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode client config: %w", err)
	}
	return &c, nil
}
