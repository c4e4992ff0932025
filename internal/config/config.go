package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 运行时配置，全部来自环境变量（可选 .env 文件）
type Config struct {
	Port          string
	DBPath        string
	JWTSecret     string
	AdminUsername string
	AdminPassword string

	// 报告保留窗口与后台清理间隔
	ReportTTL       time.Duration
	JanitorInterval time.Duration

	// Google Sheets 同步
	SheetSyncEnabled bool
	CredentialPath   string
	SpreadsheetID    string
	SheetName        string
}

// Load 读取配置，.env 不存在时直接使用进程环境变量
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("未找到 .env 文件，使用环境变量", "error", err)
	}

	cfg := &Config{
		Port:             getEnv("PORT", "3070"),
		DBPath:           getEnv("DB_PATH", "data/entitlement.db"),
		JWTSecret:        getEnv("JWT_SECRET", "change-me-in-production"),
		AdminUsername:    getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:    getEnv("ADMIN_PASSWORD", "admin"),
		ReportTTL:        time.Duration(getEnvInt("REPORT_TTL_DAYS", 3)) * 24 * time.Hour,
		JanitorInterval:  time.Duration(getEnvInt("JANITOR_INTERVAL_MINUTES", 60)) * time.Minute,
		SheetSyncEnabled: getEnvBool("SHEET_SYNC_ENABLED", false),
		CredentialPath:   getEnv("GOOGLE_CREDENTIALS_PATH", "credentials.json"),
		SpreadsheetID:    getEnv("SPREADSHEET_ID", ""),
		SheetName:        getEnv("SHEET_NAME", "codes"),
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("配置项不是整数，使用默认值", "key", key, "value", v)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
