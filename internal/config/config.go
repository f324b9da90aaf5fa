package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	JWT     JWTConfig
	S3      S3Config
	Log     LogConfig
	CORS    CORSConfig
	Email   EmailConfig
	Redis   RedisConfig
	Billing BillingConfig
}

// BillingConfig holds the seller-side settings of the financial core.
type BillingConfig struct {
	HomeJurisdiction string `mapstructure:"home_jurisdiction"`
	InvoicePrefix    string `mapstructure:"invoice_prefix"`
	QuotationPrefix  string `mapstructure:"quotation_prefix"`
	CodeWidth        int    `mapstructure:"code_width"`
}

// Validate rejects billing settings that would produce ambiguous codes or taxes.
func (b *BillingConfig) Validate() error {
	if strings.TrimSpace(b.HomeJurisdiction) == "" {
		return fmt.Errorf("billing: home jurisdiction is required")
	}
	if b.InvoicePrefix == "" || b.QuotationPrefix == "" {
		return fmt.Errorf("billing: invoice and quotation prefixes are required")
	}
	if b.InvoicePrefix == b.QuotationPrefix {
		return fmt.Errorf("billing: invoice and quotation prefixes must differ")
	}
	if b.CodeWidth < 1 {
		return fmt.Errorf("billing: code width must be at least 1")
	}
	return nil
}

// RedisConfig holds the distributed lock backend settings. An empty Addr disables locking.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// Enabled reports whether a Redis address is configured.
func (r *RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings for rendered documents.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional .env file and environment variables
// with the CRM_ prefix.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CRM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "crm")
	v.SetDefault("db.password", "crm_secret")
	v.SetDefault("db.name", "crm_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "crmcore")

	// S3 defaults
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "crm-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 20)
	v.SetDefault("s3.presign_expiry", 604800)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-south-1")
	v.SetDefault("email.from_address", "billing@example.com")
	v.SetDefault("email.from_name", "Billing")

	// Redis defaults (empty addr disables the payment lock)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", "5s")

	// Billing defaults
	v.SetDefault("billing.home_jurisdiction", "Delhi")
	v.SetDefault("billing.invoice_prefix", "IN")
	v.SetDefault("billing.quotation_prefix", "QT")
	v.SetDefault("billing.code_width", 3)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "CRM_SERVER_PORT",
		"server.read_timeout":       "CRM_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "CRM_SERVER_WRITE_TIMEOUT",
		"server.environment":        "CRM_SERVER_ENVIRONMENT",
		"db.host":                   "CRM_DB_HOST",
		"db.port":                   "CRM_DB_PORT",
		"db.user":                   "CRM_DB_USER",
		"db.password":               "CRM_DB_PASSWORD",
		"db.name":                   "CRM_DB_NAME",
		"db.sslmode":                "CRM_DB_SSLMODE",
		"db.max_open":               "CRM_DB_MAX_OPEN",
		"db.max_idle":               "CRM_DB_MAX_IDLE",
		"jwt.secret":                "CRM_JWT_SECRET",
		"jwt.access_expiry":         "CRM_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":        "CRM_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                "CRM_JWT_ISSUER",
		"s3.region":                 "CRM_S3_REGION",
		"s3.bucket":                 "CRM_S3_BUCKET",
		"s3.endpoint":               "CRM_S3_ENDPOINT",
		"s3.access_key":             "CRM_S3_ACCESS_KEY",
		"s3.secret_key":             "CRM_S3_SECRET_KEY",
		"s3.max_file_size_mb":       "CRM_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":         "CRM_S3_PRESIGN_EXPIRY",
		"log.level":                 "CRM_LOG_LEVEL",
		"log.format":                "CRM_LOG_FORMAT",
		"cors.allowed_origins":      "CRM_CORS_ALLOWED_ORIGINS",
		"email.provider":            "CRM_EMAIL_PROVIDER",
		"email.region":              "CRM_EMAIL_REGION",
		"email.from_address":        "CRM_EMAIL_FROM_ADDRESS",
		"email.from_name":           "CRM_EMAIL_FROM_NAME",
		"redis.addr":                "CRM_REDIS_ADDR",
		"redis.password":            "CRM_REDIS_PASSWORD",
		"redis.db":                  "CRM_REDIS_DB",
		"redis.lock_ttl":            "CRM_REDIS_LOCK_TTL",
		"billing.home_jurisdiction": "CRM_BILLING_HOME_JURISDICTION",
		"billing.invoice_prefix":    "CRM_BILLING_INVOICE_PREFIX",
		"billing.quotation_prefix":  "CRM_BILLING_QUOTATION_PREFIX",
		"billing.code_width":        "CRM_BILLING_CODE_WIDTH",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if CRM_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("CRM_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}
	cfg.Redis = RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
		LockTTL:  v.GetDuration("redis.lock_ttl"),
	}
	cfg.Billing = BillingConfig{
		HomeJurisdiction: v.GetString("billing.home_jurisdiction"),
		InvoicePrefix:    v.GetString("billing.invoice_prefix"),
		QuotationPrefix:  v.GetString("billing.quotation_prefix"),
		CodeWidth:        v.GetInt("billing.code_width"),
	}

	if err := cfg.Billing.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// splitList parses a comma-separated value, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
