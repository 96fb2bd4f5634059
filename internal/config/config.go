package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Vision    VisionConfig    `yaml:"vision"`
	Nutrition NutritionConfig `yaml:"nutrition"`
	Events    EventsConfig    `yaml:"events"`
	Rollup    RollupConfig    `yaml:"rollup"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"              env:"SERVER_HOST"              env-default:"0.0.0.0"`
	Port            int           `yaml:"port"              env:"SERVER_PORT"              env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"      env:"SERVER_READ_TIMEOUT"      env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"     env:"SERVER_WRITE_TIMEOUT"     env-default:"150s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"      env:"SERVER_IDLE_TIMEOUT"      env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"  env:"SERVER_SHUTDOWN_TIMEOUT"  env-default:"10s"`
	UploadRateLimit int           `yaml:"upload_rate_limit" env:"SERVER_UPLOAD_RATE_LIMIT" env-default:"10"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret"         env:"AUTH_JWT_SECRET"         env-required:"true"`
	JWTIssuer        string        `yaml:"jwt_issuer"         env:"AUTH_JWT_ISSUER"         env-default:"fitcoach"`
	AccessTokenTTL   time.Duration `yaml:"access_token_ttl"   env:"AUTH_ACCESS_TOKEN_TTL"   env-default:"24h"`
	PasswordHashCost int           `yaml:"password_hash_cost" env:"AUTH_PASSWORD_HASH_COST" env-default:"10"`
}

// VisionConfig holds model provider settings for photo analysis.
// APIKey is required for the API server: without it the estimator and
// validator cannot be constructed and startup fails with a configuration
// error rather than a silent no-op.
type VisionConfig struct {
	APIKey         string        `yaml:"api_key"         env:"VISION_API_KEY"`
	Model          string        `yaml:"model"           env:"VISION_MODEL"           env-default:"claude-sonnet-4-20250514"`
	MaxRetries     int           `yaml:"max_retries"     env:"VISION_MAX_RETRIES"     env-default:"3"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"VISION_REQUEST_TIMEOUT" env-default:"60s"`
	MaxImageBytes  int64         `yaml:"max_image_bytes" env:"VISION_MAX_IMAGE_BYTES" env-default:"10485760"`
}

// NutritionConfig holds pipeline tuning knobs.
type NutritionConfig struct {
	// ConfidenceThreshold is the confidence gate: records scored strictly
	// below it require user confirmation and trigger the low-confidence
	// follow-up event. A score exactly at the threshold passes.
	ConfidenceThreshold float64 `yaml:"confidence_threshold" env:"NUTRITION_CONFIDENCE_THRESHOLD" env-default:"0.7"`
}

// EventsConfig holds NATS settings for domain event publishing.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url" env:"EVENTS_NATS_URL" env-default:"nats://127.0.0.1:4222"`
}

// RollupConfig holds Temporal settings for the daily rollup worker.
type RollupConfig struct {
	TemporalHostPort string `yaml:"temporal_host_port" env:"ROLLUP_TEMPORAL_HOST_PORT" env-default:"127.0.0.1:7233"`
	Namespace        string `yaml:"namespace"          env:"ROLLUP_NAMESPACE"          env-default:"default"`
	TaskQueue        string `yaml:"task_queue"         env:"ROLLUP_TASK_QUEUE"         env-default:"daily-rollup"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}
