package config

const EnvPrefix = "ROSTER"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv               = "ROSTER_APP_ENV"
	EnvLogLevel             = "ROSTER_LOG_LEVEL"
	EnvGoogleCredentials    = "ROSTER_GOOGLE_CREDENTIALS_JSON"
	EnvGoogleCredentialFile = "ROSTER_GOOGLE_APPLICATION_CREDENTIALS"
	EnvMembersSheetID       = "ROSTER_MEMBERS_SHEET_ID"
	EnvEventsSheetID        = "ROSTER_EVENTS_SHEET_ID"
	EnvAttendanceSheetID    = "ROSTER_ATTENDANCE_SHEET_ID"
	EnvSheetsMaxRetries     = "ROSTER_SHEETS_MAX_RETRIES"
	EnvSheetsBaseDelay      = "ROSTER_SHEETS_BASE_DELAY"
	EnvRequireEndAfterStart = "ROSTER_EVENTS_REQUIRE_END_AFTER_START"
	EnvRedisURL             = "ROSTER_REDIS_URL"
	EnvCacheTTL             = "ROSTER_CACHE_TTL"
	EnvMetricsTextfile      = "ROSTER_METRICS_TEXTFILE"
)
