package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress string

	MongoURI      string
	MongoDatabase string

	JWTSecret     string
	JWTExpiration time.Duration

	// FetchLimit is the default number of rows returned by list endpoints
	// when the caller does not pass limit.
	FetchLimit int64

	MaxUploadSizeMB int64

	// StorageBucket selects the GCS media backend when set; otherwise media
	// files are written to UploadDir on local disk.
	StorageBucket string
	UploadDir     string
}

func Load() *Config {
	// Optional; real deployments set env directly.
	_ = godotenv.Load()

	return &Config{
		ServerAddress:   getEnv("SERVER_ADDRESS", ":8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "castboard"),
		JWTSecret:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTExpiration:   24 * time.Hour,
		FetchLimit:      getEnvInt("FETCH_LIMIT", 10),
		MaxUploadSizeMB: getEnvInt("MAX_UPLOAD_SIZE_MB", 50),
		StorageBucket:   getEnv("STORAGE_BUCKET", ""),
		UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
