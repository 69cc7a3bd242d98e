package config

import (
	"os"
	"strconv"
)

type Config struct {
	Addr       string
	DataFile   string
	HistoryDir string
	// Redis - empty means the in-memory session slot
	RedisURL string
	// Meilisearch - empty URL disables the index, searches fall back to a scan
	MeiliURL       string
	MeiliMasterKey string
	// S3-compatible backup target - empty endpoint disables backups
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool
}

func Load() Config {
	return Config{
		Addr:           getenv("API_ADDR", ":8787"),
		DataFile:       getenv("AUTORENTOOL_DATA_FILE", "./data/document.json"),
		HistoryDir:     getenv("AUTORENTOOL_HISTORY_DIR", "./data/history"),
		RedisURL:       getenv("REDIS_URL", ""),
		MeiliURL:       getenv("MEILI_URL", ""),
		MeiliMasterKey: getenv("MEILI_MASTER_KEY", ""),
		S3Endpoint:     getenv("S3_ENDPOINT", ""),
		S3AccessKey:    getenv("S3_ACCESS_KEY", ""),
		S3SecretKey:    getenv("S3_SECRET_KEY", ""),
		S3Bucket:       getenv("S3_BUCKET", "autorentool-backup"),
		S3UseSSL:       getenvBool("S3_USE_SSL", false),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
