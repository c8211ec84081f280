package config

import (
	"github.com/joho/godotenv"
	"log"
	"os"
	"strconv"
	"time"
)

type DB struct {
	DbHOST     string
	DbPORT     string
	DbUSER     string
	DbPASSWORD string
	DbNAME     string
	DbSSLMODE  string
}

type MinIO struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	Region     string
}

type Listing struct {
	PageSize         int
	TrendingMinUses  int
	RecentWindowDays int
	WeeklyWindowDays int
}

type Config struct {
	ServerPort          int
	DB                  DB
	MinIO               MinIO
	Listing             Listing
	JWTSecretKey        string
	MediaArchiveEnabled bool
	DownloadTimeout     time.Duration
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return duration
}

func LoadDB() DB {
	return DB{
		DbHOST:     getEnv("DB_HOST", "localhost"),
		DbPORT:     getEnv("DB_PORT", "5432"),
		DbUSER:     getEnv("DB_USER", "postgres"),
		DbPASSWORD: getEnv("DB_PASSWORD", "password"),
		DbNAME:     getEnv("DB_NAME", "minera"),
		DbSSLMODE:  getEnv("DB_SSLMODE", "disable"),
	}
}

func LoadMinIO() MinIO {
	return MinIO{
		Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName: getEnv("MINIO_BUCKET_NAME", "media"),
		UseSSL:     getEnvBool("MINIO_USE_SSL", false),
		Region:     getEnv("MINIO_REGION", "us-east-1"),
	}
}

func LoadListing() Listing {
	return Listing{
		PageSize:         getEnvAsInt("ITEMS_PER_PAGE", 28),
		TrendingMinUses:  getEnvAsInt("TRENDING_MIN_USES", 50),
		RecentWindowDays: getEnvAsInt("RECENT_WINDOW_DAYS", 5),
		WeeklyWindowDays: getEnvAsInt("WEEKLY_WINDOW_DAYS", 7),
	}
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		ServerPort:          getEnvAsInt("SERVER_PORT", 8080),
		DB:                  LoadDB(),
		MinIO:               LoadMinIO(),
		Listing:             LoadListing(),
		JWTSecretKey:        getEnv("JWT_SECRET_KEY", ""),
		MediaArchiveEnabled: getEnvBool("MEDIA_ARCHIVE_ENABLED", false),
		DownloadTimeout:     parseDuration(getEnv("DOWNLOAD_TIMEOUT", "30s"), 30*time.Second),
	}
}
