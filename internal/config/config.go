package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv   string `mapstructure:"APP_ENV"`
	AppPort  string `mapstructure:"APP_PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     int    `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBScheme   string `mapstructure:"DB_SCHEME"`

	// --- S3 ---
	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`
	S3Region    string `mapstructure:"S3_REGION"`
	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`
	S3UseSSL    bool   `mapstructure:"S3_USE_SSL"`
	S3PathStyle bool   `mapstructure:"S3_PATH_STYLE"`

	// --- Redis ---
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// --- Загрузка ---
	UploadMaxBytes int64         `mapstructure:"UPLOAD_MAX_BYTES"`
	UploadLockTTL  time.Duration `mapstructure:"UPLOAD_LOCK_TTL"`
	AuthCacheTTL   time.Duration `mapstructure:"AUTH_CACHE_TTL"`

	// --- Уведомления ---
	NotifiedEvents []string `mapstructure:"NOTIFIED_EVENTS"`
	NotifyChannel  string   `mapstructure:"NOTIFY_CHANNEL"`
	NotifySecret   string   `mapstructure:"NOTIFY_SECRET"`
	NotifyIssuer   string   `mapstructure:"NOTIFY_ISSUER"`
}

var defaults = map[string]any{
	"APP_ENV":          "local",
	"APP_PORT":         "8080",
	"LOG_LEVEL":        "info",
	"DB_HOST":          "localhost",
	"DB_PORT":          5432,
	"DB_SCHEME":        "public",
	"S3_REGION":        "us-east-1",
	"S3_BUCKET":        "attachments",
	"REDIS_ADDR":       "localhost:6379",
	"REDIS_DB":         0,
	"UPLOAD_MAX_BYTES": int64(32 << 20),
	"UPLOAD_LOCK_TTL":  "30s",
	"AUTH_CACHE_TTL":   "0s",
	"NOTIFIED_EVENTS":  "",
	"NOTIFY_CHANNEL":   "infdot.notifications",
	"NOTIFY_ISSUER":    "infdot-upload",
}

func mask(s string) string {
	if s != "" {
		return "********"
	}
	return "(empty)"
}

// String реализует интерфейс Stringer
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  AppEnv: %s\n", c.AppEnv)
	fmt.Fprintf(&sb, "  AppPort: %s\n", c.AppPort)
	fmt.Fprintf(&sb, "  LogLevel: %s\n", c.LogLevel)
	fmt.Fprintf(&sb, "  DBHost: %s\n", c.DBHost)
	fmt.Fprintf(&sb, "  DBPort: %d\n", c.DBPort)
	fmt.Fprintf(&sb, "  DBUser: %s\n", c.DBUser)
	fmt.Fprintf(&sb, "  DBName: %s\n", c.DBName)
	fmt.Fprintf(&sb, "  DBScheme: %s\n", c.DBScheme)
	fmt.Fprintf(&sb, "  DBPassword: %s\n", mask(c.DBPassword))

	// S3
	fmt.Fprintf(&sb, "  S3Endpoint: %s\n", c.S3Endpoint)
	fmt.Fprintf(&sb, "  S3Region: %s\n", c.S3Region)
	fmt.Fprintf(&sb, "  S3Bucket: %s\n", c.S3Bucket)
	fmt.Fprintf(&sb, "  S3AccessKey: %s\n", mask(c.S3AccessKey))
	fmt.Fprintf(&sb, "  S3SecretKey: %s\n", mask(c.S3SecretKey))
	fmt.Fprintf(&sb, "  S3UseSSL: %v\n", c.S3UseSSL)
	fmt.Fprintf(&sb, "  S3PathStyle: %v\n", c.S3PathStyle)

	// Redis
	fmt.Fprintf(&sb, "  RedisAddr: %s\n", c.RedisAddr)
	fmt.Fprintf(&sb, "  RedisDB: %d\n", c.RedisDB)
	fmt.Fprintf(&sb, "  RedisPassword: %s\n", mask(c.RedisPassword))

	fmt.Fprintf(&sb, "  UploadMaxBytes: %d\n", c.UploadMaxBytes)
	fmt.Fprintf(&sb, "  UploadLockTTL: %s\n", c.UploadLockTTL)
	fmt.Fprintf(&sb, "  AuthCacheTTL: %s\n", c.AuthCacheTTL)

	fmt.Fprintf(&sb, "  NotifiedEvents: %v\n", c.NotifiedEvents)
	fmt.Fprintf(&sb, "  NotifyChannel: %s\n", c.NotifyChannel)
	fmt.Fprintf(&sb, "  NotifyIssuer: %s\n", c.NotifyIssuer)
	fmt.Fprintf(&sb, "  NotifySecret: %s\n", mask(c.NotifySecret))

	return sb.String()
}

// LoadFromEnv загружает конфигурацию из переменных окружения
func LoadFromEnv() (*Config, error) {
	// Загружаем .env только для локальной разработки
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.New("failed to load .env")
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	// Регистрируем интересующие ключи окружения
	keys := []string{
		"DB_USER", "DB_PASSWORD", "DB_NAME",
		"S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_USE_SSL", "S3_PATH_STYLE",
		"REDIS_PASSWORD", "NOTIFY_SECRET",
	}
	for k := range defaults {
		keys = append(keys, k)
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.NotifiedEvents = splitList(cfg.NotifiedEvents)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", c.UploadMaxBytes)
	}
	if c.AuthCacheTTL < 0 {
		return fmt.Errorf("AUTH_CACHE_TTL must not be negative, got %s", c.AuthCacheTTL)
	}
	if c.NotifyEnabled() && c.NotifySecret == "" {
		return errors.New("NOTIFY_SECRET is required when NOTIFIED_EVENTS is set")
	}
	return nil
}

// NotifyEnabled: включено ли хоть одно событие
func (c *Config) NotifyEnabled() bool {
	return len(c.NotifiedEvents) > 0
}

// splitList: "a, b,,c" → [a b c]
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// GetDSN: схема задаётся через search_path
func (c *Config) GetDSN() string {
	q := url.Values{}
	q.Set("sslmode", "disable")
	if c.DBScheme != "" {
		q.Set("search_path", c.DBScheme)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}
