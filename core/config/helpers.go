package config

import (
	"os"
	"strconv"
	"strings"
)

// GetAllSettings returns a map of all dynamic settings currently loaded in
// memory. Exposed on the admin surface for diagnostics.
func GetAllSettings() map[string]any {
	if Global == nil {
		return map[string]any{}
	}
	return map[string]any{
		"app_debug":                      Global.App.Debug,
		"app_version":                    Global.App.Version,
		"worker_role":                    Global.Worker.Role,
		"worker_pool_size":               Global.Worker.PoolSize,
		"session_ttl_hours":              Global.Session.TTLHours,
		"operator_notifications_enabled": Global.Operator.NotificationsEnabled,
		"operator_notification_channel":  Global.Operator.Channel,
		"dispatch_crew_fallback_enabled": Global.Dispatch.CrewFallbackEnabled,
		"estimate_display_enabled":       Global.Estimate.DisplayEnabled,
		"media_ttl_days":                 Global.Media.TTLDays,
	}
}

// Helpers
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		vLower := strings.ToLower(v)
		return vLower == "1" || vLower == "true" || vLower == "yes" || vLower == "on"
	}
	return fallback
}
