package utils

import (
	"fieldfuze-dispatch/models"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-super-secret-jwt-key-change-this-in-production"

// GetConfig read the configuration from environment variables or config files
func GetConfig() (*models.Config, error) {
	config, err := Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return config, nil
}

// Load initializes and returns the application configuration using Viper
func Load() (*models.Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// Config file not found, continue with defaults and env vars
		fmt.Printf("Config file not found (%v), using defaults and environment variables\n", err)
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	flattenNestedConfig(v)

	var config models.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "FieldFuze Dispatch")
	v.SetDefault("app_version", "1.0.0")
	v.SetDefault("app_env", "development")
	v.SetDefault("app_host", "0.0.0.0")
	v.SetDefault("app_port", "8081")
	v.SetDefault("timezone", "UTC")

	v.SetDefault("jwt_secret", defaultJWTSecret)
	v.SetDefault("jwt_expires_in", 30*time.Minute)

	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("aws_access_key_id", "")
	v.SetDefault("aws_secret_access_key", "")
	v.SetDefault("dynamodb_endpoint", "")
	v.SetDefault("dynamodb_table_prefix", "dev")

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("response_cache_ttl", 15*time.Second)

	v.SetDefault("cache_max_age_seconds", 10)
	v.SetDefault("stale_while_revalidate_seconds", 30)
	v.SetDefault("photo_read_concurrency", 8)

	v.SetDefault("dispatch_api_url", "http://localhost:8081/api/v1")
	v.SetDefault("dispatch_api_token", "")
	v.SetDefault("poll_interval", 30*time.Second)
	v.SetDefault("retry_base_interval", time.Second)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("cors_origins", []string{"*"})

	v.SetDefault("basePath", "/api/v1")

	v.SetDefault("tables", []string{
		"jobs", "technicians", "crews", "crew_members",
		"roster_entries", "dispatch_logs", "photos", "customers",
	})
	v.SetDefault("provision_enabled", true)
	v.SetDefault("provision_schedule", "@every 10m")
	v.SetDefault("provision_dry_run", false)
}

// validate checks if all required configuration is provided
func validate(c *models.Config) error {
	if c.JWTSecret == defaultJWTSecret && c.AppEnv == "production" {
		return fmt.Errorf("JWT_SECRET must be set in production environment")
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	if c.PhotoReadConcurrency <= 0 {
		return fmt.Errorf("photo_read_concurrency must be positive")
	}

	if c.PollInterval < 0 {
		return fmt.Errorf("poll_interval must not be negative")
	}

	if c.AppEnv == "production" && c.AWSAccessKeyID == "" {
		fmt.Println("No AWS credentials provided, assuming IAM role is used")
	}

	return nil
}

// nestedKeys maps nested config.json keys onto the flat keys Config uses.
var nestedKeys = map[string]string{
	"app.name":                             "app_name",
	"app.version":                          "app_version",
	"app.env":                              "app_env",
	"app.host":                             "app_host",
	"app.port":                             "app_port",
	"app.timezone":                         "timezone",
	"jwt.secret":                           "jwt_secret",
	"jwt.expires_in":                       "jwt_expires_in",
	"aws.region":                           "aws_region",
	"aws.access_key_id":                    "aws_access_key_id",
	"aws.secret_access_key":                "aws_secret_access_key",
	"aws.dynamodb_endpoint":                "dynamodb_endpoint",
	"aws.dynamodb_table_prefix":            "dynamodb_table_prefix",
	"redis.addr":                           "redis_addr",
	"redis.password":                       "redis_password",
	"redis.db":                             "redis_db",
	"redis.response_cache_ttl":             "response_cache_ttl",
	"cache.max_age_seconds":                "cache_max_age_seconds",
	"cache.stale_while_revalidate_seconds": "stale_while_revalidate_seconds",
	"dispatch.photo_read_concurrency":      "photo_read_concurrency",
	"client.api_url":                       "dispatch_api_url",
	"client.api_token":                     "dispatch_api_token",
	"client.poll_interval":                 "poll_interval",
	"client.retry_base_interval":           "retry_base_interval",
	"logging.level":                        "log_level",
	"logging.format":                       "log_format",
	"cors.origins":                         "cors_origins",
	"worker.tables":                        "tables",
	"worker.enabled":                       "provision_enabled",
	"worker.schedule":                      "provision_schedule",
	"worker.dry_run":                       "provision_dry_run",
}

// flattenNestedConfig flattens the nested JSON structure to flat keys for easier mapping
func flattenNestedConfig(v *viper.Viper) {
	for nested, flat := range nestedKeys {
		if v.IsSet(nested) {
			v.Set(flat, v.Get(nested))
		}
	}
}
