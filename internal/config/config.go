// Package config loads and validates the runtime configuration at startup.
// Fail-fast: Load returns an error naming every missing or invalid value.
//
// Sources, later ones win: built-in defaults, the YAML file, a .env file in the
// working directory, process environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Empty salary policies, see store.EmptySalaryPolicy.
const (
	EmptySalaryZero = "zero"
	EmptySalarySkip = "skip"
)

// hh.ru refuses to serve more than 2000 items per search; 20 pages of 100.
const (
	MaxPerPage = 100
	MaxPages   = 20
)

// DefaultCompanies is the employer list scraped when the config names none.
var DefaultCompanies = []string{
	"Яндекс",
	"Skyeng",
	"Ozon",
	"СБЕР",
	"СКБ Приморья Примсоцбанк",
	"Додо Пицца",
	"Банк Приморье",
	"Светофор, Сеть магазинов низких цен",
	"DNS Головной офис",
	"Авито",
}

// Config holds all runtime configuration.
type Config struct {
	// Postgres points at the maintenance database used to drop and create Database.
	Postgres Postgres `yaml:"postgres"`
	// Database is the scrape target, recreated on every run.
	Database string `yaml:"database"`

	HH        HH       `yaml:"hh"`
	Companies []string `yaml:"companies"`

	EmptySalary    string `yaml:"empty_salary"`
	RedisURL       string `yaml:"redis_url"`
	HTTPPort       string `yaml:"http_port"`
	ScrapeSchedule string `yaml:"scrape_schedule"` // cron spec, e.g. "@every 6h"

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Postgres is a set of connection parameters. It is passed by value; use
// WithDatabase to point a copy at another database.
type Postgres struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// HH configures the hh.ru API client.
type HH struct {
	BaseURL        string `yaml:"base_url"`
	UserAgent      string `yaml:"user_agent"`
	PerPage        int    `yaml:"per_page"`
	MaxPages       int    `yaml:"max_pages"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// WithDatabase returns a copy of p connected to name.
func (p Postgres) WithDatabase(name string) Postgres {
	p.DBName = name
	return p
}

// ConnString renders p as a postgres:// URL accepted by pgx.
func (p Postgres) ConnString() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:   "/" + p.DBName,
	}
	if p.Password != "" {
		u.User = url.UserPassword(p.User, p.Password)
	} else {
		u.User = url.User(p.User)
	}
	if p.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {p.SSLMode}}.Encode()
	}
	return u.String()
}

// Timeout is the per-request HTTP timeout.
func (h HH) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// Target returns the connection parameters of the scrape database.
func (c *Config) Target() Postgres {
	return c.Postgres.WithDatabase(c.Database)
}

func defaults() *Config {
	cfg := &Config{
		Postgres: Postgres{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			DBName:  "postgres",
			SSLMode: "disable",
		},
		Database: "hh_vacancy",
		HH: HH{
			BaseURL:        "https://api.hh.ru",
			UserAgent:      "hh-parser/1.0",
			PerPage:        MaxPerPage,
			MaxPages:       MaxPages,
			TimeoutSeconds: 15,
		},
		EmptySalary: EmptySalaryZero,
		HTTPPort:    "8080",
	}
	cfg.Log.Level = "info"
	return cfg
}

// Load reads path (skipped when empty), applies .env and environment
// overrides and returns a validated Config.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if len(cfg.Companies) == 0 {
		cfg.Companies = append([]string(nil), DefaultCompanies...)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Postgres.Host, "PGHOST")
	setString(&cfg.Postgres.User, "PGUSER")
	setString(&cfg.Postgres.Password, "PGPASSWORD")
	setString(&cfg.Postgres.SSLMode, "PGSSLMODE")
	setString(&cfg.Postgres.DBName, "HH_ADMIN_DB")
	setString(&cfg.Database, "HH_DATABASE")
	setString(&cfg.HH.BaseURL, "HH_API_URL")
	setString(&cfg.HH.UserAgent, "HH_USER_AGENT")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.HTTPPort, "HTTP_PORT")
	setString(&cfg.ScrapeSchedule, "SCRAPE_SCHEDULE")
	setString(&cfg.EmptySalary, "HH_EMPTY_SALARY")

	if v, ok := os.LookupEnv("PGPORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PGPORT must be an integer, got %q", v)
		}
		cfg.Postgres.Port = port
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func (c *Config) validate() error {
	var problems []string

	if c.Postgres.Host == "" {
		problems = append(problems, "postgres.host (PGHOST) is required")
	}
	if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
		problems = append(problems, fmt.Sprintf("postgres.port must be in 1..65535, got %d", c.Postgres.Port))
	}
	if c.Postgres.User == "" {
		problems = append(problems, "postgres.user (PGUSER) is required")
	}
	if c.Postgres.DBName == "" {
		problems = append(problems, "postgres.dbname (HH_ADMIN_DB) is required")
	}
	if c.Database == "" {
		problems = append(problems, "database (HH_DATABASE) is required")
	}
	if c.Database != "" && c.Database == c.Postgres.DBName {
		problems = append(problems, "database must differ from postgres.dbname, it is dropped on every run")
	}
	if c.HH.BaseURL == "" {
		problems = append(problems, "hh.base_url (HH_API_URL) is required")
	}
	if c.HH.PerPage <= 0 || c.HH.PerPage > MaxPerPage {
		problems = append(problems, fmt.Sprintf("hh.per_page must be in 1..%d, got %d", MaxPerPage, c.HH.PerPage))
	}
	if c.HH.MaxPages <= 0 || c.HH.MaxPages > MaxPages {
		problems = append(problems, fmt.Sprintf("hh.max_pages must be in 1..%d, got %d", MaxPages, c.HH.MaxPages))
	}
	if c.HH.TimeoutSeconds <= 0 {
		problems = append(problems, "hh.timeout_seconds must be positive")
	}
	switch c.EmptySalary {
	case EmptySalaryZero, EmptySalarySkip:
	default:
		problems = append(problems, fmt.Sprintf("empty_salary must be %q or %q, got %q", EmptySalaryZero, EmptySalarySkip, c.EmptySalary))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
