// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath        = pflag.String("config", ".", "Directory containing config.toml")
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"s3", "r2", "memory"}
	validDrivers      = []string{"sqlite", "postgres"}
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func bindEnvs() {
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")
	v.BindEnv("host.cors_origins", "host_cors")

	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")
	v.BindEnv("host.ssl.certificate_path", "host_ssl_certificate_path")
	v.BindEnv("host.ssl.certificate_key_path", "host_ssl_certificate_key_path")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("jwt.secret", "jwt_secret")
	v.BindEnv("jwt.ttl_hours", "jwt_ttl_hours")

	v.BindEnv("mail.enabled", "mail_enabled")
	v.BindEnv("mail.host", "mail_host")
	v.BindEnv("mail.port", "mail_port")
	v.BindEnv("mail.username", "mail_username")
	v.BindEnv("mail.password", "mail_password")
	v.BindEnv("mail.sender", "mail_sender")

	v.BindEnv("outbox.workers", "outbox_workers")
	v.BindEnv("outbox.max_attempts", "outbox_max_attempts")
	v.BindEnv("outbox.poll_seconds", "outbox_poll_seconds")

	v.BindEnv("storage.type", "storage_type")

	v.BindEnv("aws.region", "aws_region")
	v.BindEnv("aws.access_key", "aws_access_key")
	v.BindEnv("aws.secret_access_key", "aws_secret_access_key")
	v.BindEnv("aws.bucket", "aws_bucket")
	v.BindEnv("aws.endpoint", "aws_endpoint")
	v.BindEnv("aws.public_url", "aws_public_url")

	v.BindEnv("upload.max_size", "upload_max_size")

	v.BindEnv("review.deadline_days", "review_deadline_days")
	v.BindEnv("review.reminder_cron", "review_reminder_cron")

	v.BindEnv("membership.uri", "membership_uri")
	v.BindEnv("membership.database", "membership_database")
	v.BindEnv("membership.collection", "membership_collection")

	v.BindEnv("cache.redis_addr", "cache_redis_addr")
	v.BindEnv("cache.redis_password", "cache_redis_password")

	v.BindEnv("security.rate_limit", "security_rate_limit")

	v.BindEnv("cloudflare.account_id", "cloudflare_account_id")
	v.BindEnv("cloudflare.access_key_id", "cloudflare_access_key_id")
	v.BindEnv("cloudflare.secret_access_key", "cloudflare_secret_access_key")
	v.BindEnv("cloudflare.bucket", "cloudflare_bucket")
	v.BindEnv("cloudflare.public_url", "cloudflare_public_url")

	v.BindEnv("cloudflare.turnstile.enabled", "cloudflare_turnstile_enabled")
	v.BindEnv("cloudflare.turnstile.secret_token", "cloudflare_turnstile_secret_token")
}

func setDefaults() {
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("db.driver", "sqlite")

	v.SetDefault("jwt.ttl_hours", 24)

	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.port", 587)

	v.SetDefault("outbox.workers", 4)
	v.SetDefault("outbox.max_attempts", 5)
	v.SetDefault("outbox.poll_seconds", 10)

	v.SetDefault("storage.type", "memory")

	v.SetDefault("upload.max_size", 25)

	v.SetDefault("review.deadline_days", 3)
	v.SetDefault("review.reminder_cron", "@hourly")

	v.SetDefault("membership.database", "membership")
	v.SetDefault("membership.collection", "members")

	v.SetDefault("security.rate_limit", 10)

	v.SetDefault("conference.categories", []string{})

	v.SetDefault("payment.currency", "USD")
	v.SetDefault("payment.default_fee", 0)

	v.SetDefault("cloudflare.turnstile.enabled", false)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	v.AutomaticEnv()

	bindEnvs()
	setDefaults()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); ok {
			return errors.New("config.toml file is missing")
		}

		return fmt.Errorf("failed to read config file, %w", err)
	}

	if err := Validate(); err != nil {
		return err
	}

	if v.GetString("jwt.secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	if !v.GetBool("cloudflare.turnstile.enabled") {
		fmt.Println("[WARNING]: Cloudflare's turnstile is disabled. Registration and password resets won't be guarded against bots")
	}

	if !v.GetBool("mail.enabled") {
		fmt.Println("[WARNING]: Mail is disabled. Outgoing mail will only be logged")
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}

// Validate checks the loaded values without touching the filesystem
func Validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetBool("host.ssl.enabled") {
		if v.GetString("host.ssl.certificate_path") == "" {
			return errors.New("no ssl certificate path provided")
		}

		if v.GetString("host.ssl.certificate_key_path") == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if !slices.Contains(validDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("db.driver") == "postgres" && v.GetString("db.dsn") == "" {
		return errors.New("db.dsn is required for postgres")
	}

	if v.GetInt("jwt.ttl_hours") <= 0 {
		return errors.New("jwt.ttl_hours must be bigger than 0")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if d := v.GetInt("review.deadline_days"); d <= 0 || d > 60 {
		return errors.New("review.deadline_days must be between 1 and 60")
	}

	if _, err := cron.ParseStandard(v.GetString("review.reminder_cron")); err != nil {
		return fmt.Errorf("invalid review.reminder_cron, %w", err)
	}

	if v.GetInt("outbox.workers") <= 0 {
		return errors.New("outbox.workers must be bigger than 0")
	}

	if v.GetInt("outbox.max_attempts") <= 0 {
		return errors.New("outbox.max_attempts must be bigger than 0")
	}

	if v.GetInt("outbox.poll_seconds") <= 0 {
		return errors.New("outbox.poll_seconds must be bigger than 0")
	}

	if v.GetBool("mail.enabled") {
		if v.GetString("mail.host") == "" {
			return errors.New("mail host can't be empty")
		}
		if v.GetString("mail.sender") == "" {
			return errors.New("mail sender can't be empty")
		}
	}

	switch v.GetString("storage.type") {
	case "s3":
		{
			if v.GetString("aws.region") == "" {
				return errors.New("aws region can't be empty")
			}
			if v.GetString("aws.access_key") == "" {
				return errors.New("aws access key can't be empty")
			}
			if v.GetString("aws.secret_access_key") == "" {
				return errors.New("secret access key can't be empty")
			}
			if v.GetString("aws.bucket") == "" {
				return errors.New("bucket can't be empty")
			}
		}
	case "r2":
		{
			if v.GetString("cloudflare.account_id") == "" {
				return errors.New("cloudflare account id can't be empty")
			}
			if v.GetString("cloudflare.access_key_id") == "" {
				return errors.New("cloudflare access key id can't be empty")
			}
			if v.GetString("cloudflare.secret_access_key") == "" {
				return errors.New("cloudflare secret access key can't be empty")
			}
			if v.GetString("cloudflare.bucket") == "" {
				return errors.New("cloudflare bucket can't be empty")
			}
			if v.GetString("cloudflare.public_url") == "" {
				return errors.New("cloudflare public url can't be empty")
			}
		}
	case "memory":
		fmt.Println("[WARNING]: Using in-memory storage. Uploaded files are lost on restart")
	}

	if !slices.Contains(validStorageTypes, v.GetString("storage.type")) {
		return errors.New("invalid storage type provided")
	}

	if v.GetInt("security.rate_limit") < 0 {
		return errors.New("security.rate_limit can't be negative")
	}

	if v.GetBool("cloudflare.turnstile.enabled") && v.GetString("cloudflare.turnstile.secret_token") == "" {
		return errors.New("turnstile secret token is missing")
	}

	for t, fee := range v.GetStringMap("payment.fees") {
		f, ok := toFloat(fee)
		if !ok || f < 0 {
			return fmt.Errorf("invalid fee for membership type %q", t)
		}
	}

	return nil
}

func toFloat(x any) (float64, bool) {
	switch n := x.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}

	return 0, false
}

// Fees returns payment.fees keyed by membership type
func Fees() map[string]float64 {
	out := make(map[string]float64)
	for t, fee := range v.GetStringMap("payment.fees") {
		if f, ok := toFloat(fee); ok {
			out[t] = f
		}
	}

	return out
}
