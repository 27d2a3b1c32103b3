package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	TablePrefix string
	Storage     string // "postgres" or "memory"
	CORSOrigins string
	JWKSURL     string // auth is enabled when set
	JWTRole     string // required "role" claim, empty accepts any
	// Audit log
	ActionLogPath string
	// Template archives
	ImportTempDir      string
	TemplateArchiveDir string
	TemplateFilePrefix string
	TemplateFileExt    string
	MaxUploadMB        int64
	// Logging
	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Environment:        env,
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		TablePrefix:        getTablePrefix(env),
		Storage:            getEnv("STORAGE", "postgres"),
		CORSOrigins:        getEnv("CORS_ORIGINS", "http://localhost:3000"),
		JWKSURL:            getEnv("JWKS_URL", ""),
		JWTRole:            getEnv("JWT_REQUIRED_ROLE", ""),
		ActionLogPath:      getEnv("ACTION_LOG_PATH", "action_log.db"),
		ImportTempDir:      getEnv("IMPORT_TEMP_DIR", os.TempDir()),
		TemplateArchiveDir: getEnv("TEMPLATE_ARCHIVE_DIR", DefaultTemplateArchiveDir),
		TemplateFilePrefix: getEnv("TEMPLATE_FILE_PREFIX", DefaultTemplateFilePrefix),
		TemplateFileExt:    getEnv("TEMPLATE_FILE_EXT", DefaultTemplateFileExt),
		MaxUploadMB:        int64(getEnvInt("MAX_UPLOAD_MB", 100)),
		LogDir:             getEnv("LOG_DIR", ""),
		LogMaxFiles:        getEnvInt("LOG_MAX_FILES", 10),
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
