// Package config loads hockey-report settings from a YAML file with
// HOCKEY_REPORT_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/hockey-report/internal/logger"
	"github.com/pfrederiksen/hockey-report/internal/report"
)

// Config holds runtime configuration.
type Config struct {
	Subject     SubjectConfig     `yaml:"subject"`
	Teams       map[string]string `yaml:"teams"` // team name -> report code
	Fallback    string            `yaml:"fallback_policy"`
	Timezone    string            `yaml:"timezone"`
	Concurrency int               `yaml:"concurrency"`
	DataDir     string            `yaml:"data_dir"`
	LogLevel    string            `yaml:"log_level"`
	Fetch       FetchConfig       `yaml:"fetch"`
	Calendar    CalendarConfig    `yaml:"calendar"`
	Redis       RedisConfig       `yaml:"redis"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Telegram    TelegramConfig    `yaml:"telegram"`
	Server      ServerConfig      `yaml:"server"`
}

// SubjectConfig names the team whose games are tracked.
type SubjectConfig struct {
	Team string `yaml:"team"` // fragment matched against report labels
	City string `yaml:"city"` // city as written in the schedule feed
}

type FetchConfig struct {
	ReportURL string        `yaml:"report_url"`
	FeedURL   string        `yaml:"feed_url"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
	Retries   int           `yaml:"retries"`
	Browser   bool          `yaml:"browser"` // render game center pages in headless Chrome
}

type CalendarConfig struct {
	ICSURL string `yaml:"ics_url"`
	Name   string `yaml:"name"`
}

type RedisConfig struct {
	URL string        `yaml:"url"`
	TTL time.Duration `yaml:"ttl"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	teams := make(map[string]string, len(defaultTeams))
	for name, code := range defaultTeams {
		teams[name] = code
	}
	return &Config{
		Subject:     SubjectConfig{Team: defaultSubjectTeam, City: defaultSubjectCity},
		Teams:       teams,
		Fallback:    string(report.FallbackBalance),
		Timezone:    defaultTimezone,
		Concurrency: defaultConcurrency,
		DataDir:     defaultDataDir,
		LogLevel:    defaultLogLevel,
		Fetch: FetchConfig{
			Timeout: defaultFetchTimeout,
			Retries: defaultFetchRetries,
		},
		Calendar: CalendarConfig{ICSURL: defaultICSURL, Name: defaultCalendarName},
		Redis:    RedisConfig{TTL: defaultReportTTL},
		Server:   ServerConfig{Addr: defaultServerAddr},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Subject.Team = envOrDefault(envSubjectTeam, c.Subject.Team)
	c.Subject.City = envOrDefault(envSubjectCity, c.Subject.City)
	c.Fallback = envOrDefault(envFallback, c.Fallback)
	c.Timezone = envOrDefault(envTimezone, c.Timezone)
	c.Concurrency = intEnvOrDefault(envConcurrency, c.Concurrency)
	c.DataDir = envOrDefault(envDataDir, c.DataDir)
	c.LogLevel = envOrDefault(envLogLevel, c.LogLevel)

	c.Fetch.ReportURL = envOrDefault(envReportURL, c.Fetch.ReportURL)
	c.Fetch.FeedURL = envOrDefault(envFeedURL, c.Fetch.FeedURL)
	c.Fetch.UserAgent = envOrDefault(envUserAgent, c.Fetch.UserAgent)
	c.Fetch.Timeout = durationEnvOrDefault(envFetchTimeout, c.Fetch.Timeout)
	c.Fetch.Retries = intEnvOrDefault(envFetchRetries, c.Fetch.Retries)
	c.Fetch.Browser = boolEnvOrDefault(envBrowser, c.Fetch.Browser)

	c.Calendar.ICSURL = envOrDefault(envICSURL, c.Calendar.ICSURL)
	c.Redis.URL = envOrDefault(envRedisURL, c.Redis.URL)
	c.Redis.TTL = durationEnvOrDefault(envRedisTTL, c.Redis.TTL)
	c.Postgres.DSN = envOrDefault(envPostgresDSN, c.Postgres.DSN)
	c.Telegram.Token = envOrDefault(envTelegramToken, c.Telegram.Token)
	c.Telegram.ChatID = int64EnvOrDefault(envTelegramChatID, c.Telegram.ChatID)
	c.Server.Addr = envOrDefault(envServerAddr, c.Server.Addr)
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Subject.Team) == "" {
		errs = append(errs, errors.New("subject.team is required"))
	}
	if _, err := report.ParseFallbackPolicy(c.Fallback); err != nil {
		errs = append(errs, err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	if c.Fetch.Retries < 0 {
		errs = append(errs, fmt.Errorf("fetch.retries must not be negative, got %d", c.Fetch.Retries))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location returns the configured time zone, UTC if it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TeamRegistry returns the team table in the form the parser wants.
func (c *Config) TeamRegistry() report.TeamRegistry {
	return report.TeamRegistry(c.Teams)
}

// ParserOptions builds report parser options from the config.
func (c *Config) ParserOptions(log *logger.Logger) report.Options {
	policy, err := report.ParseFallbackPolicy(c.Fallback)
	if err != nil {
		policy = report.FallbackBalance
	}
	return report.Options{
		Teams:       c.TeamRegistry(),
		SubjectTeam: c.Subject.Team,
		Fallback:    policy,
		Location:    c.Location(),
		Logger:      log,
	}
}
