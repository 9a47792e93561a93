package utils

import (
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`
	DBSSLMode  string `yaml:"DB_SSLMODE"`

	// Application
	AppPort string `yaml:"APP_PORT"`
	AppEnv  string `yaml:"APP_ENV"`
	AppURL  string `yaml:"APP_URL"`

	// JWT
	JWTSecret     string `yaml:"JWT_SECRET"`
	JWTTTLMinutes string `yaml:"JWT_TTL_MINUTES"`

	// Logging
	LogLevel      string `yaml:"LOG_LEVEL"`
	LogFormat     string `yaml:"LOG_FORMAT"`
	AccessLogFile string `yaml:"ACCESS_LOG_FILE"`

	// HTTP limits
	RateLimitMax           string `yaml:"RATE_LIMIT_MAX"`
	RateLimitWindowSeconds string `yaml:"RATE_LIMIT_WINDOW_SECONDS"`
	CORSAllowOrigins       string `yaml:"CORS_ALLOW_ORIGINS"`

	// Media storage: "s3" or "local"
	MediaStorage string `yaml:"MEDIA_STORAGE"`
	MediaRoot    string `yaml:"MEDIA_ROOT"`
	MediaURL     string `yaml:"MEDIA_URL"`

	// AWS S3 configuration
	AWSS3Bucket   string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region   string `yaml:"AWS_S3_REGION"`
	AWSAccessKey  string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey  string `yaml:"AWS_SECRET_KEY"`
	AWSS3Endpoint string `yaml:"AWS_S3_ENDPOINT"`

	// Mailing configuration
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`

	// Fixtures
	IngredientsFixture string `yaml:"INGREDIENTS_FIXTURE"`
}

var (
	config     Config
	configOnce sync.Once
)

var defaults = map[string]string{
	"DB_HOST":                   "localhost",
	"DB_PORT":                   "5432",
	"DB_SSLMODE":                "disable",
	"APP_PORT":                  "8000",
	"APP_ENV":                   "development",
	"APP_URL":                   "http://foodgram.example.org",
	"JWT_TTL_MINUTES":           "1440",
	"LOG_LEVEL":                 "info",
	"LOG_FORMAT":                "json",
	"ACCESS_LOG_FILE":           "./logs/app.log",
	"RATE_LIMIT_MAX":            "20",
	"RATE_LIMIT_WINDOW_SECONDS": "1",
	"CORS_ALLOW_ORIGINS":        "*",
	"MEDIA_STORAGE":             "local",
	"MEDIA_ROOT":                "./media",
	"MEDIA_URL":                 "/media",
	"SMTP_PORT":                 "587",
	"SMTP_SENDER_NAME":          "Foodgram",
	"INGREDIENTS_FIXTURE":       "data/ingredients.json",
}

// LoadConfig reads .env and config.yaml (or CONFIG_PATH). Both are optional;
// environment variables always take precedence in GetConfig.
func LoadConfig() {
	configOnce.Do(func() {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Printf("Error reading .env file: %s\n", err)
		}

		path := os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "config.yaml"
		}

		file, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				log.Printf("Error reading YAML file: %s\n", err)
			}
			return
		}

		if err := yaml.Unmarshal(file, &config); err != nil {
			log.Printf("Error parsing YAML file: %s\n", err)
		}
	})
}

func GetConfig(key string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	if v := fromFile(key); v != "" {
		return v
	}
	return defaults[key]
}

// GetConfigInt returns the integer value of key, or fallback when it is
// unset or not a number.
func GetConfigInt(key string, fallback int) int {
	n, err := strconv.Atoi(GetConfig(key))
	if err != nil {
		return fallback
	}
	return n
}

func fromFile(key string) string {
	switch key {
	case "DB_USER":
		return config.DBUser
	case "DB_NAME":
		return config.DBName
	case "DB_PASSWORD":
		return config.DBPassword
	case "DB_PORT":
		return config.DBPort
	case "DB_HOST":
		return config.DBHost
	case "DB_SSLMODE":
		return config.DBSSLMode
	case "APP_PORT":
		return config.AppPort
	case "APP_ENV":
		return config.AppEnv
	case "APP_URL":
		return config.AppURL
	case "JWT_SECRET":
		return config.JWTSecret
	case "JWT_TTL_MINUTES":
		return config.JWTTTLMinutes
	case "LOG_LEVEL":
		return config.LogLevel
	case "LOG_FORMAT":
		return config.LogFormat
	case "ACCESS_LOG_FILE":
		return config.AccessLogFile
	case "RATE_LIMIT_MAX":
		return config.RateLimitMax
	case "RATE_LIMIT_WINDOW_SECONDS":
		return config.RateLimitWindowSeconds
	case "CORS_ALLOW_ORIGINS":
		return config.CORSAllowOrigins
	case "MEDIA_STORAGE":
		return config.MediaStorage
	case "MEDIA_ROOT":
		return config.MediaRoot
	case "MEDIA_URL":
		return config.MediaURL
	case "AWS_S3_BUCKET":
		return config.AWSS3Bucket
	case "AWS_S3_REGION":
		return config.AWSS3Region
	case "AWS_ACCESS_KEY":
		return config.AWSAccessKey
	case "AWS_SECRET_KEY":
		return config.AWSSecretKey
	case "AWS_S3_ENDPOINT":
		return config.AWSS3Endpoint
	case "SMTP_HOST":
		return config.SMTPHost
	case "SMTP_PORT":
		return config.SMTPPort
	case "SMTP_SENDER_NAME":
		return config.SMTPSenderName
	case "SMTP_AUTH_EMAIL":
		return config.SMTPAuthEmail
	case "SMTP_AUTH_PASSWORD":
		return config.SMTPAuthPassword
	case "INGREDIENTS_FIXTURE":
		return config.IngredientsFixture
	default:
		return ""
	}
}

func IsDevelopment() bool {
	return GetConfig("APP_ENV") == "development"
}
