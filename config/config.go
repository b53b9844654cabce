// ABOUTME: Application configuration from .env, an XDG JSON file, and BANNERBOOK_* variables
// ABOUTME: Environment variables win over the file, and the file wins over defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/harperreed/bannerbook/alerts"
	"github.com/harperreed/bannerbook/db"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	LedgerKV     = "kv"
	LedgerSQLite = "sqlite"

	FileName = "config.json"
)

type Config struct {
	LedgerBackend    string `json:"ledger_backend"`
	DBPath           string `json:"db_path,omitempty"`
	RetentionDays    int    `json:"retention_days"`
	DefaultAlertDays int    `json:"default_alert_days"`
	FollowUpDays     int    `json:"follow_up_days"`
	Timezone         string `json:"timezone,omitempty"`
	NATSURL          string `json:"nats_url,omitempty"`
	NATSSubject      string `json:"nats_subject,omitempty"`
	LogLevel         string `json:"log_level"`
	LogFormat        string `json:"log_format"`
}

func Default() *Config {
	return &Config{
		LedgerBackend:    LedgerKV,
		DBPath:           db.DefaultPath(),
		RetentionDays:    30,
		DefaultAlertDays: alerts.DefaultAlertDays,
		FollowUpDays:     alerts.DefaultFollowUpDays,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Path is the config file location under the XDG data home.
func Path() string {
	return filepath.Join(xdg.DataHome, "bannerbook", FileName)
}

// Load reads .env from the working directory if present, then the config file,
// then BANNERBOOK_* overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFrom(Path())
}

// LoadFrom is Load without the .env step, reading the file at path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"BANNERBOOK_LEDGER":       &c.LedgerBackend,
		"BANNERBOOK_DB_PATH":      &c.DBPath,
		"BANNERBOOK_TIMEZONE":     &c.Timezone,
		"BANNERBOOK_NATS_URL":     &c.NATSURL,
		"BANNERBOOK_NATS_SUBJECT": &c.NATSSubject,
		"BANNERBOOK_LOG_LEVEL":    &c.LogLevel,
		"BANNERBOOK_LOG_FORMAT":   &c.LogFormat,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"BANNERBOOK_RETENTION_DAYS": &c.RetentionDays,
		"BANNERBOOK_ALERT_DAYS":     &c.DefaultAlertDays,
		"BANNERBOOK_FOLLOW_UP_DAYS": &c.FollowUpDays,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.LedgerBackend {
	case LedgerKV, LedgerSQLite:
	default:
		return fmt.Errorf("unknown ledger backend %q (want %s or %s)", c.LedgerBackend, LedgerKV, LedgerSQLite)
	}
	if c.RetentionDays < 0 || c.DefaultAlertDays < 0 || c.FollowUpDays < 0 {
		return fmt.Errorf("day counts must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Save writes the config file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Location resolves Timezone, defaulting to the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) Policy() alerts.Policy {
	loc, err := c.Location()
	if err != nil {
		loc = time.Local
	}
	return alerts.Policy{
		DefaultAlertDays: c.DefaultAlertDays,
		FollowUpDays:     c.FollowUpDays,
		Location:         loc,
	}
}

func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// NewLogger builds the process logger. Output goes to stderr so command
// output on stdout stays clean.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if strings.EqualFold(c.LogFormat, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
