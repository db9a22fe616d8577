package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envSubjectTeam    = "HOCKEY_REPORT_SUBJECT_TEAM"
	envSubjectCity    = "HOCKEY_REPORT_SUBJECT_CITY"
	envFallback       = "HOCKEY_REPORT_FALLBACK_POLICY"
	envTimezone       = "HOCKEY_REPORT_TIMEZONE"
	envConcurrency    = "HOCKEY_REPORT_CONCURRENCY"
	envDataDir        = "HOCKEY_REPORT_DATA_DIR"
	envLogLevel       = "HOCKEY_REPORT_LOG_LEVEL"
	envReportURL      = "HOCKEY_REPORT_REPORT_URL"
	envFeedURL        = "HOCKEY_REPORT_FEED_URL"
	envUserAgent      = "HOCKEY_REPORT_USER_AGENT"
	envFetchTimeout   = "HOCKEY_REPORT_FETCH_TIMEOUT"
	envFetchRetries   = "HOCKEY_REPORT_FETCH_RETRIES"
	envBrowser        = "HOCKEY_REPORT_BROWSER"
	envICSURL         = "HOCKEY_REPORT_ICS_URL"
	envRedisURL       = "HOCKEY_REPORT_REDIS_URL"
	envRedisTTL       = "HOCKEY_REPORT_REDIS_TTL"
	envPostgresDSN    = "HOCKEY_REPORT_POSTGRES_DSN"
	envTelegramToken  = "HOCKEY_REPORT_TELEGRAM_TOKEN"
	envTelegramChatID = "HOCKEY_REPORT_TELEGRAM_CHAT_ID"
	envServerAddr     = "HOCKEY_REPORT_SERVER_ADDR"
)

const (
	defaultSubjectTeam  = "Greenville"
	defaultSubjectCity  = "Greenville"
	defaultTimezone     = "America/New_York"
	defaultConcurrency  = 4
	defaultDataDir      = "~/.local/share/hockey-report"
	defaultLogLevel     = "INFO"
	defaultFetchTimeout = 30 * time.Second
	defaultFetchRetries = 3
	defaultICSURL       = "https://swamprabbits.com/schedule-all.ics"
	defaultCalendarName = "Greenville Swamp Rabbits"
	defaultReportTTL    = 365 * 24 * time.Hour
	defaultServerAddr   = ":8080"
)

// defaultTeams maps ECHL team names to the codes used in goal summaries.
var defaultTeams = map[string]string{
	"Adirondack":     "ADK",
	"Allen":          "ALN",
	"Atlanta":        "ATL",
	"Bloomington":    "BLM",
	"Cincinnati":     "CIN",
	"Florida":        "FLA",
	"Fort Wayne":     "FW",
	"Greensboro":     "GSO",
	"Greenville":     "GVL",
	"Idaho":          "IDH",
	"Indy":           "IND",
	"Iowa":           "IA",
	"Jacksonville":   "JAX",
	"Kalamazoo":      "KAL",
	"Kansas City":    "KC",
	"Maine":          "MNE",
	"Norfolk":        "NOR",
	"Orlando":        "ORL",
	"Rapid City":     "RC",
	"Reading":        "REA",
	"Savannah":       "SAV",
	"South Carolina": "SC",
	"Tahoe":          "TAH",
	"Toledo":         "TOL",
	"Trois-Rivieres": "TR",
	"Tulsa":          "TUL",
	"Utah":           "UTA",
	"Wheeling":       "WHL",
	"Wichita":        "WIC",
	"Worcester":      "WOR",
}

func envOrDefault(key, defaultValue string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val != "" {
		return val
	}
	return defaultValue
}

func durationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}

func intEnvOrDefault(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return defaultValue
	}
	return val
}

// int64EnvOrDefault allows negative values; Telegram group chat ids are negative.
func int64EnvOrDefault(key string, defaultValue int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return defaultValue
	}
	return val
}

func boolEnvOrDefault(key string, defaultValue bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	if raw == "1" || strings.EqualFold(raw, "true") || strings.EqualFold(raw, "yes") {
		return true
	}
	if raw == "0" || strings.EqualFold(raw, "false") || strings.EqualFold(raw, "no") {
		return false
	}
	return defaultValue
}
