package models

import "time"

// Config holds all configuration for the application
type Config struct {
	// Application
	AppName    string `mapstructure:"app_name"`
	AppVersion string `mapstructure:"app_version"`
	AppEnv     string `mapstructure:"app_env"`
	AppHost    string `mapstructure:"app_host"`
	AppPort    string `mapstructure:"app_port"`

	// Company timezone used to decide what "today" is
	Timezone string `mapstructure:"timezone"`

	// JWT
	JWTSecret    string        `mapstructure:"jwt_secret"`
	JWTExpiresIn time.Duration `mapstructure:"jwt_expires_in"`

	// AWS
	AWSRegion           string `mapstructure:"aws_region"`
	AWSAccessKeyID      string `mapstructure:"aws_access_key_id"`
	AWSSecretAccessKey  string `mapstructure:"aws_secret_access_key"`
	DynamoDBEndpoint    string `mapstructure:"dynamodb_endpoint"`
	DynamoDBTablePrefix string `mapstructure:"dynamodb_table_prefix"`

	// Redis response cache (disabled when RedisAddr is empty)
	RedisAddr        string        `mapstructure:"redis_addr"`
	RedisPassword    string        `mapstructure:"redis_password"`
	RedisDB          int           `mapstructure:"redis_db"`
	ResponseCacheTTL time.Duration `mapstructure:"response_cache_ttl"`

	// HTTP caching of board reads
	CacheMaxAgeSeconds          int `mapstructure:"cache_max_age_seconds"`
	StaleWhileRevalidateSeconds int `mapstructure:"stale_while_revalidate_seconds"`

	// Aggregation
	PhotoReadConcurrency int `mapstructure:"photo_read_concurrency"`

	// Client (dispatchctl)
	DispatchAPIURL    string        `mapstructure:"dispatch_api_url"`
	DispatchAPIToken  string        `mapstructure:"dispatch_api_token"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	RetryBaseInterval time.Duration `mapstructure:"retry_base_interval"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// CORS
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Base Path
	BasePath string `mapstructure:"basePath"`

	// Table provisioning worker
	Tables            []string `mapstructure:"tables"`
	ProvisionEnabled  bool     `mapstructure:"provision_enabled"`
	ProvisionSchedule string   `mapstructure:"provision_schedule"`
	ProvisionDryRun   bool     `mapstructure:"provision_dry_run"`
}

// TableName returns the prefixed name of a base table.
func (c *Config) TableName(base string) string {
	if c.DynamoDBTablePrefix == "" {
		return base
	}
	return c.DynamoDBTablePrefix + "_" + base
}
