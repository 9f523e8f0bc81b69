package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// Email
	EmailFrom    string
	ResendAPIKey string
	NotifyEmail  string // Receives a note for every new wish awaiting moderation

	// Observability (optional)
	SentryDSN string

	// Storage driver for gallery images: "s3" or "object"
	StorageDriver string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)

	// Storage (HTTP object API, e.g. a hosted storage gateway)
	ObjectStorageURL    string
	ObjectStorageBucket string
	ObjectStorageKey    string

	// Media CDN (video wishes)
	MediaAPIURL       string
	MediaDeliveryURL  string
	MediaCloudName    string
	MediaUploadPreset string
	MediaTransform    string
	MediaFormat       string

	// Upload limits
	UploadMaxImages    int
	UploadMaxImageSize int64
	UploadMaxVideoSize int64
	VideoMinDuration   time.Duration
	VideoMaxDuration   time.Duration

	// Wish limits
	WishNameMax    int
	WishMessageMax int
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Our Wedding"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  envRequired("APP_URL"),
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/vows.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 24*time.Hour),

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),
		NotifyEmail:  envString("NOTIFY_EMAIL", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		StorageDriver: envString("STORAGE_DRIVER", "s3"),

		S3Region:    envString("S3_REGION", "us-east-1"),
		S3Bucket:    envString("S3_BUCKET", "gallery"),
		S3AccessKey: envString("S3_ACCESS_KEY", ""),
		S3SecretKey: envString("S3_SECRET_KEY", ""),
		S3Endpoint:  envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers

		ObjectStorageURL:    envString("OBJECT_STORAGE_URL", ""),
		ObjectStorageBucket: envString("OBJECT_STORAGE_BUCKET", "gallery"),
		ObjectStorageKey:    envString("OBJECT_STORAGE_KEY", ""),

		MediaAPIURL:       envString("MEDIA_API_URL", "https://api.cloudinary.com"),
		MediaDeliveryURL:  envString("MEDIA_DELIVERY_URL", "https://res.cloudinary.com"),
		MediaCloudName:    envString("MEDIA_CLOUD_NAME", ""),
		MediaUploadPreset: envString("MEDIA_UPLOAD_PRESET", ""),
		MediaTransform:    envString("MEDIA_TRANSFORM", "c_limit,w_1280,q_auto,f_mp4"),
		MediaFormat:       envString("MEDIA_FORMAT", "mp4"),

		UploadMaxImages:    envInt("UPLOAD_MAX_IMAGES", 20),
		UploadMaxImageSize: envInt64("UPLOAD_MAX_IMAGE_SIZE", 20<<20),  // 20MB
		UploadMaxVideoSize: envInt64("UPLOAD_MAX_VIDEO_SIZE", 150<<20), // 150MB
		VideoMinDuration:   envDuration("VIDEO_MIN_DURATION", 15*time.Second),
		VideoMaxDuration:   envDuration("VIDEO_MAX_DURATION", 60*time.Second),

		WishNameMax:    envInt("WISH_NAME_MAX", 100),
		WishMessageMax: envInt("WISH_MESSAGE_MAX", 200),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for production deployments.
// Development allows some services (like email) to use fallback modes for easier local testing.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
	if cfg.MediaCloudName == "" || cfg.MediaUploadPreset == "" {
		slog.Error("production deployment requires MEDIA_CLOUD_NAME and MEDIA_UPLOAD_PRESET",
			"hint", "video wishes are uploaded to the media CDN")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("config invalid int64, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// SecureCookies reports whether auth cookies need the Secure flag.
// Overridable for staging setups served over plain HTTP.
func (c *Config) SecureCookies() bool {
	return envBool("SECURE_COOKIES", c.IsProduction())
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets, credentials, and sensitive data are excluded.
// Safe to expose in ctx and client-facing contexts.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName: c.AppName,
		AppEnv:  c.AppEnv,
		AppURL:  c.AppURL,
		Port:    c.Port,

		EmailFrom: c.EmailFrom,

		StorageDriver:    c.StorageDriver,
		S3Endpoint:       c.S3Endpoint,
		ObjectStorageURL: c.ObjectStorageURL,
		MediaDeliveryURL: c.MediaDeliveryURL,

		UploadMaxImages:    c.UploadMaxImages,
		UploadMaxImageSize: c.UploadMaxImageSize,
		UploadMaxVideoSize: c.UploadMaxVideoSize,
		VideoMinDuration:   c.VideoMinDuration,
		VideoMaxDuration:   c.VideoMaxDuration,
		WishNameMax:        c.WishNameMax,
		WishMessageMax:     c.WishMessageMax,
	}
}
