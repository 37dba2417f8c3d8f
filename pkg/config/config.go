package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	Google  GoogleConfig
	Sheets  SheetsConfig
	Events  EventsConfig
	Cache   CacheConfig
	Metrics MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Sheets.applyDefaults()
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ROSTER_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"ROSTER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ROSTER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// GoogleConfig holds the service-account material used to authenticate the Sheets client.
type GoogleConfig struct {
	CredentialsJSON        string `envconfig:"ROSTER_GOOGLE_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ROSTER_GOOGLE_APPLICATION_CREDENTIALS"`
}

// HasCredentials reports whether either credential source is set.
func (g GoogleConfig) HasCredentials() bool {
	return strings.TrimSpace(g.CredentialsJSON) != "" || strings.TrimSpace(g.ApplicationCredentials) != ""
}

type SheetsConfig struct {
	MembersSheetID    string `envconfig:"ROSTER_MEMBERS_SHEET_ID" required:"true"`
	EventsSheetID     string `envconfig:"ROSTER_EVENTS_SHEET_ID"`
	AttendanceSheetID string `envconfig:"ROSTER_ATTENDANCE_SHEET_ID"`

	MembersTab    string `envconfig:"ROSTER_MEMBERS_TAB" default:"Members"`
	EventsTab     string `envconfig:"ROSTER_EVENTS_TAB" default:"Events"`
	AttendanceTab string `envconfig:"ROSTER_ATTENDANCE_TAB" default:"Attendance"`

	MaxRetries int           `envconfig:"ROSTER_SHEETS_MAX_RETRIES" default:"3"`
	BaseDelay  time.Duration `envconfig:"ROSTER_SHEETS_BASE_DELAY" default:"1s"`
}

// Events and attendance live on tabs of the members spreadsheet unless overridden.
func (s *SheetsConfig) applyDefaults() {
	if strings.TrimSpace(s.EventsSheetID) == "" {
		s.EventsSheetID = s.MembersSheetID
	}
	if strings.TrimSpace(s.AttendanceSheetID) == "" {
		s.AttendanceSheetID = s.MembersSheetID
	}
}

type EventsConfig struct {
	RequireEndAfterStart bool `envconfig:"ROSTER_EVENTS_REQUIRE_END_AFTER_START" default:"false"`
}

type CacheConfig struct {
	RedisURL string        `envconfig:"ROSTER_REDIS_URL"`
	TTL      time.Duration `envconfig:"ROSTER_CACHE_TTL" default:"30s"`
}

// Enabled reports whether the range-read cache should be wired.
func (c CacheConfig) Enabled() bool {
	return strings.TrimSpace(c.RedisURL) != "" && c.TTL > 0
}

type MetricsConfig struct {
	TextfilePath string `envconfig:"ROSTER_METRICS_TEXTFILE"`
}
