package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/hockey-report/internal/report"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Subject.Team != "Greenville" || cfg.Concurrency != 4 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if code, ok := cfg.TeamRegistry().CodeFor("Greenville Swamp Rabbits"); !ok || code != "GVL" {
		t.Errorf("CodeFor(Greenville Swamp Rabbits) = %q, %v", code, ok)
	}
	if cfg.Location().String() != "America/New_York" {
		t.Errorf("location = %s", cfg.Location())
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
subject:
  team: Savannah
  city: Savannah
teams:
  Lake Placid: LP
fallback_policy: drop
timezone: America/Chicago
concurrency: 8
fetch:
  timeout: 10s
  retries: 1
redis:
  url: redis://localhost:6379/0
telegram:
  chat_id: -1001234
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Subject.Team != "Savannah" || cfg.Subject.City != "Savannah" {
		t.Errorf("subject = %+v", cfg.Subject)
	}
	if cfg.Teams["Lake Placid"] != "LP" {
		t.Errorf("teams = %v", cfg.Teams)
	}
	if cfg.Concurrency != 8 || cfg.Fetch.Retries != 1 || cfg.Fetch.Timeout != 10*time.Second {
		t.Errorf("unexpected values: %+v", cfg)
	}
	if cfg.Telegram.ChatID != -1001234 {
		t.Errorf("chat id = %d", cfg.Telegram.ChatID)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("unset server addr should keep its default, got %q", cfg.Server.Addr)
	}

	opts := cfg.ParserOptions(nil)
	if opts.Fallback != report.FallbackDrop || opts.SubjectTeam != "Savannah" {
		t.Errorf("parser options = %+v", opts)
	}
	if opts.Location.String() != "America/Chicago" {
		t.Errorf("parser location = %s", opts.Location)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "concurrency: 2\n")
	t.Setenv(envConcurrency, "6")
	t.Setenv(envSubjectTeam, "Atlanta")
	t.Setenv(envRedisTTL, "1h")
	t.Setenv(envBrowser, "yes")
	t.Setenv(envTelegramChatID, "-42")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Concurrency != 6 {
		t.Errorf("concurrency = %d, expected env value 6", cfg.Concurrency)
	}
	if cfg.Subject.Team != "Atlanta" {
		t.Errorf("subject team = %q", cfg.Subject.Team)
	}
	if cfg.Redis.TTL != time.Hour || !cfg.Fetch.Browser || cfg.Telegram.ChatID != -42 {
		t.Errorf("unexpected overrides: redis ttl %v, browser %v, chat %d", cfg.Redis.TTL, cfg.Fetch.Browser, cfg.Telegram.ChatID)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"unknown fallback policy", "fallback_policy: coin-flip\n", "fallback policy"},
		{"bad timezone", "timezone: Mars/Olympus\n", "timezone"},
		{"zero concurrency", "concurrency: 0\n", "concurrency"},
		{"empty subject", "subject:\n  team: \"\"\n", "subject.team"},
		{"malformed yaml", "subject: [\n", "parsing config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestBoolEnvOrDefault(t *testing.T) {
	cases := []struct {
		val      string
		expected bool
	}{
		{"", true},
		{"true", true},
		{"1", true},
		{"YES", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"maybe", true},
	}
	for _, tc := range cases {
		t.Setenv("HOCKEY_REPORT_BOOL_TEST", tc.val)
		if got := boolEnvOrDefault("HOCKEY_REPORT_BOOL_TEST", true); got != tc.expected {
			t.Errorf("boolEnvOrDefault(%q) = %v, expected %v", tc.val, got, tc.expected)
		}
	}
}

func TestDurationEnvOrDefault(t *testing.T) {
	t.Setenv("HOCKEY_REPORT_DURATION_TEST", "nonsense")
	if got := durationEnvOrDefault("HOCKEY_REPORT_DURATION_TEST", time.Minute); got != time.Minute {
		t.Errorf("invalid duration should fall back, got %v", got)
	}
	t.Setenv("HOCKEY_REPORT_DURATION_TEST", "-5s")
	if got := durationEnvOrDefault("HOCKEY_REPORT_DURATION_TEST", time.Minute); got != time.Minute {
		t.Errorf("negative duration should fall back, got %v", got)
	}
	t.Setenv("HOCKEY_REPORT_DURATION_TEST", "90s")
	if got := durationEnvOrDefault("HOCKEY_REPORT_DURATION_TEST", time.Minute); got != 90*time.Second {
		t.Errorf("got %v, expected 90s", got)
	}
}
