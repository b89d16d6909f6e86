package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	JWTSecret string

	AccessTokenMaxAge int

	// DocstoreDriver selects the document store backend: postgres, redis or
	// memory.
	DocstoreDriver string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisURL string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string

	ReconcileEnabled  bool
	ReconcileInterval time.Duration
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	accessTokenMaxAge, err := strconv.Atoi(os.Getenv("ACCESS_TOKEN_MAX_AGE"))
	if err != nil || accessTokenMaxAge <= 0 {
		accessTokenMaxAge = 900
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	docstoreDriver := os.Getenv("DOCSTORE_DRIVER")
	if docstoreDriver == "" {
		docstoreDriver = "postgres"
	}

	reconcileEnabled, _ := strconv.ParseBool(os.Getenv("RECONCILE_ENABLED"))

	reconcileInterval, err := time.ParseDuration(os.Getenv("RECONCILE_INTERVAL"))
	if err != nil || reconcileInterval <= 0 {
		reconcileInterval = 15 * time.Minute
	}

	return &Config{
		ServerPort: serverPort,

		JWTSecret: os.Getenv("JWT_SECRET"),

		AccessTokenMaxAge: accessTokenMaxAge,

		DocstoreDriver: docstoreDriver,

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		RedisURL: os.Getenv("REDIS_URL"),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),

		ReconcileEnabled:  reconcileEnabled,
		ReconcileInterval: reconcileInterval,
	}, nil
}
