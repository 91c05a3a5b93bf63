package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App      AppConfig
	Paths    PathsConfig
	Database DatabaseConfig
	Worker   WorkerConfig
	Session  SessionConfig
	Bots     BotsConfig
	Pricing  PricingConfig
	Operator OperatorConfig
	Dispatch DispatchConfig
	Estimate EstimateConfig
	Media    MediaConfig
	Channels ChannelsConfig
	Security SecurityConfig
	APIKeys  APIKeysConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasicAuth          []string
	BasePath           string
	TrustedProxies     []string
	BaseUrl            string
	CorsAllowedOrigins []string
	// TenantID is the single-tenant fallback used when the tenants table
	// carries no binding for an inbound channel account.
	TenantID string
}

type PathsConfig struct {
	BaseDir  string
	Storages string
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string // File path for SQLite, DB name for Postgres
	ValkeyEnabled   bool
	ValkeyAddress   string
	ValkeyPassword  string
	ValkeyDB        int
	ValkeyKeyPrefix string
}

type WorkerConfig struct {
	Role              string // core | dispatch | all
	Enabled           bool   // run an embedded worker inside the rest process
	PollIntervalMs    int
	BatchSize         int
	PoolSize          int
	RetryBaseSeconds  int
	RetryCapSeconds   int
	MaxAttempts       int
	StaleAfterSeconds int
}

type SessionConfig struct {
	TTLHours          int
	StaleHintMinutes  int
	CleanupIntervalMn int
}

// BotsConfig restricts which conversation bots a deployment loads. An
// empty list means every compiled-in bot.
type BotsConfig struct {
	Enabled []string
}

// PricingConfig points at the optional tariff override file.
type PricingConfig struct {
	ConfigPath string
}

type OperatorConfig struct {
	NotificationsEnabled bool
	Channel              string // whatsapp | telegram
	Whatsapp             string
	TranslationEnabled   bool
	TranslationProvider  string // openai | gemini
	TargetLang           string
	MaxInlineMedia       int
}

type DispatchConfig struct {
	CrewFallbackEnabled bool
	CrewFallbackDelayMs int
}

type EstimateConfig struct {
	DisplayEnabled bool
}

type MediaConfig struct {
	TTLDays       int
	MaxImageBytes int64
	MaxVideoBytes int64
	SigningSecret string
	StoragePath   string
	LinkTTLHours  int
}

// ChannelsConfig carries the global provider credentials used when a
// tenant has no channel binding of its own.
type ChannelsConfig struct {
	TelegramBotToken  string
	MetaAccessToken   string
	MetaPhoneNumberID string
	MetaVerifyToken   string
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromNumber  string
}

type SecurityConfig struct {
	EncryptionKey string
	SecretKey     string
}

type APIKeysConfig struct {
	OpenAI string
	Gemini string
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig loads configuration from environment variables or defaults.
func LoadConfig() (*Config, error) {
	baseDir := getEnv("APP_BASE_DIR", "storages")

	debug := false
	if v := os.Getenv("APP_DEBUG"); v == "true" || v == "1" || v == "on" {
		debug = true
	}

	var basicAuth []string
	if v := os.Getenv("APP_BASIC_AUTH"); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	corsOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if v := os.Getenv("APP_CORS_ALLOWED_ORIGINS"); v != "" {
		corsOrigins = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Version:            "v0.9.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              debug,
		Environment:        getEnv("APP_ENV", "development"),
		BasicAuth:          basicAuth,
		BasePath:           getEnv("APP_BASE_PATH", ""),
		BaseUrl:            getEnv("APP_BASE_URL", "http://localhost:3000"),
		CorsAllowedOrigins: corsOrigins,
		TenantID:           getEnv("APP_TENANT_ID", "default"),
	}
	if v := os.Getenv("APP_TRUSTED_PROXIES"); v != "" {
		appCfg.TrustedProxies = strings.Split(v, ",")
	}

	pathsCfg := PathsConfig{
		BaseDir:  baseDir,
		Storages: baseDir,
	}

	dbCfg := DatabaseConfig{
		Driver:          getEnv("DB_DRIVER", "sqlite"),
		Name:            getEnv("DB_NAME", filepath.Join(pathsCfg.Storages, "leadgate.db")),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		ValkeyEnabled:   getEnvBool("VALKEY_ENABLED", false),
		ValkeyAddress:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		ValkeyPassword:  getEnv("VALKEY_PASSWORD", ""),
		ValkeyDB:        getEnvInt("VALKEY_DB", 0),
		ValkeyKeyPrefix: getEnv("VALKEY_KEY_PREFIX", "leadgate:"),
	}

	workerCfg := WorkerConfig{
		Role:              getEnv("WORKER_ROLE", "all"),
		Enabled:           getEnvBool("WORKER_EMBEDDED", true),
		PollIntervalMs:    getEnvInt("WORKER_POLL_INTERVAL_MS", 1000),
		BatchSize:         getEnvInt("WORKER_BATCH_SIZE", 10),
		PoolSize:          getEnvInt("WORKER_POOL_SIZE", 4),
		RetryBaseSeconds:  getEnvInt("WORKER_RETRY_BASE_SECONDS", 60),
		RetryCapSeconds:   getEnvInt("WORKER_RETRY_CAP_SECONDS", 3600),
		MaxAttempts:       getEnvInt("WORKER_MAX_ATTEMPTS", 5),
		StaleAfterSeconds: getEnvInt("WORKER_STALE_AFTER_SECONDS", 300),
	}

	sessionCfg := SessionConfig{
		TTLHours:          getEnvInt("SESSION_TTL_HOURS", 48),
		StaleHintMinutes:  getEnvInt("SESSION_STALE_HINT_MINUTES", 60),
		CleanupIntervalMn: getEnvInt("SESSION_CLEANUP_INTERVAL_MINUTES", 30),
	}

	botsCfg := BotsConfig{Enabled: []string{"moving_v1"}}
	if v := os.Getenv("BOTS_ENABLED"); v != "" {
		botsCfg.Enabled = strings.Split(v, ",")
	}

	operatorCfg := OperatorConfig{
		NotificationsEnabled: getEnvBool("OPERATOR_NOTIFICATIONS_ENABLED", true),
		Channel:              getEnv("OPERATOR_NOTIFICATION_CHANNEL", "whatsapp"),
		Whatsapp:             getEnv("OPERATOR_WHATSAPP", ""),
		TranslationEnabled:   getEnvBool("OPERATOR_TRANSLATION_ENABLED", false),
		TranslationProvider:  getEnv("OPERATOR_TRANSLATION_PROVIDER", "openai"),
		TargetLang:           getEnv("OPERATOR_LEAD_TARGET_LANG", "ru"),
		MaxInlineMedia:       getEnvInt("OPERATOR_MAX_INLINE_MEDIA", 10),
	}

	dispatchCfg := DispatchConfig{
		CrewFallbackEnabled: getEnvBool("DISPATCH_CREW_FALLBACK_ENABLED", false),
		CrewFallbackDelayMs: getEnvInt("DISPATCH_CREW_FALLBACK_DELAY_MS", 2000),
	}

	mediaCfg := MediaConfig{
		TTLDays:       getEnvInt("MEDIA_TTL_DAYS", 30),
		MaxImageBytes: getEnvInt64("MEDIA_MAX_IMAGE_BYTES", 10*1024*1024),
		MaxVideoBytes: getEnvInt64("MEDIA_MAX_VIDEO_BYTES", 50*1024*1024),
		SigningSecret: getEnv("MEDIA_SIGNING_SECRET", ""),
		StoragePath:   getEnv("MEDIA_STORAGE_PATH", filepath.Join(pathsCfg.Storages, "media")),
		LinkTTLHours:  getEnvInt("MEDIA_LINK_TTL_HOURS", 24),
	}

	cfg := &Config{
		App:      appCfg,
		Paths:    pathsCfg,
		Database: dbCfg,
		Worker:   workerCfg,
		Session:  sessionCfg,
		Bots:     botsCfg,
		Pricing:  PricingConfig{ConfigPath: getEnv("PRICING_CONFIG_PATH", "")},
		Operator: operatorCfg,
		Dispatch: dispatchCfg,
		Estimate: EstimateConfig{DisplayEnabled: getEnvBool("ESTIMATE_DISPLAY_ENABLED", true)},
		Media:    mediaCfg,
		Channels: ChannelsConfig{
			TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
			MetaAccessToken:   getEnv("META_ACCESS_TOKEN", ""),
			MetaPhoneNumberID: getEnv("META_PHONE_NUMBER_ID", ""),
			MetaVerifyToken:   getEnv("META_VERIFY_TOKEN", ""),
			TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
			TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
			TwilioFromNumber:  getEnv("TWILIO_FROM_NUMBER", ""),
		},
		Security: SecurityConfig{
			EncryptionKey: getEnv("APP_ENCRYPTION_KEY", ""),
			SecretKey:     getEnv("APP_SECRET_KEY", "changeme_please_change_me_in_prod_12345"),
		},
		APIKeys: APIKeysConfig{
			OpenAI: getEnv("OPENAI_API_KEY", ""),
			Gemini: getEnv("GEMINI_API_KEY", ""),
		},
	}

	Global = cfg
	return cfg, nil
}
