package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Rental
		Mail
		Import
		Tasks
		OverdueNotice
	}

	HTTP struct {
		Port int32
		Host string
		// PublicURL is the externally reachable base URL used in
		// confirmation links sent by email.
		PublicURL string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	Auth struct {
		// SecretKey signs email/staff confirmation tokens.
		SecretKey            string
		JWTSecretKey         string
		JWTRefreshSecretKey  string
		AccessTokenLifetime  time.Duration
		RefreshTokenLifetime time.Duration
		ConfirmationMaxAge   time.Duration
		BcryptCost           int
	}

	Rental struct {
		DueDays int
	}

	Mail struct {
		Host       string
		Port       int
		From       string
		AdminEmail string
	}

	Import struct {
		MaxUploadBytes int64
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	OverdueNotice struct {
		Enabled  bool
		Schedule string // Cron format: "0 9 * * *" = daily at 09:00
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("public_url", "http://localhost:8000")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("secret_key", "default_secret_key")
	v.SetDefault("jwt_secret_key", "default-jwt-secret")
	v.SetDefault("jwt_refresh_secret_key", "default-jwt-refresh-secret")
	v.SetDefault("access_token_expire_minutes", 30)
	v.SetDefault("refresh_token_expire_minutes", 3000)
	v.SetDefault("confirmation_token_max_age", "1h")
	v.SetDefault("bcrypt_cost", 12)

	// Rental defaults
	v.SetDefault("book_rental_due_days", DefaultDueDays)

	// Mail defaults
	v.SetDefault("email_host", "localhost")
	v.SetDefault("email_port", 10251)
	v.SetDefault("email_from", "admin@libtrary.com")
	v.SetDefault("admin_email", "admin@libtrary.com")

	// Bulk import defaults
	v.SetDefault("bulk_import_max_bytes", DefaultMaxUploadBytes)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "2s")
	v.SetDefault("task_timeout", "1m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Overdue notice defaults
	v.SetDefault("overdue_notice_enabled", false)
	v.SetDefault("overdue_notice_schedule", "0 9 * * *")

	return &Config{
		HTTP: HTTP{
			Port:      v.GetInt32("PORT"),
			Host:      v.GetString("HOST"),
			PublicURL: v.GetString("PUBLIC_URL"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			SecretKey:            v.GetString("SECRET_KEY"),
			JWTSecretKey:         v.GetString("JWT_SECRET_KEY"),
			JWTRefreshSecretKey:  v.GetString("JWT_REFRESH_SECRET_KEY"),
			AccessTokenLifetime:  time.Duration(v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")) * time.Minute,
			RefreshTokenLifetime: time.Duration(v.GetInt("REFRESH_TOKEN_EXPIRE_MINUTES")) * time.Minute,
			ConfirmationMaxAge:   v.GetDuration("CONFIRMATION_TOKEN_MAX_AGE"),
			BcryptCost:           v.GetInt("BCRYPT_COST"),
		},
		Rental: Rental{
			DueDays: v.GetInt("BOOK_RENTAL_DUE_DAYS"),
		},
		Mail: Mail{
			Host:       v.GetString("EMAIL_HOST"),
			Port:       v.GetInt("EMAIL_PORT"),
			From:       v.GetString("EMAIL_FROM"),
			AdminEmail: v.GetString("ADMIN_EMAIL"),
		},
		Import: Import{
			MaxUploadBytes: v.GetInt64("BULK_IMPORT_MAX_BYTES"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		OverdueNotice: OverdueNotice{
			Enabled:  v.GetBool("OVERDUE_NOTICE_ENABLED"),
			Schedule: v.GetString("OVERDUE_NOTICE_SCHEDULE"),
		},
	}
}
