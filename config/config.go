package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Inbox    InboxConfig    `mapstructure:"inbox"`
}

type ServerConfig struct {
	Port      int     `mapstructure:"port"`
	Mode      string  `mapstructure:"mode"`
	RateLimit float64 `mapstructure:"rate_limit"` // requests per second per client
	RateBurst int     `mapstructure:"rate_burst"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres | sqlite
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
}

type RedisConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	UnreadTTL time.Duration `mapstructure:"unread_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | console
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Insecure    bool   `mapstructure:"insecure"`
}

// InboxConfig 收件箱计算参数
type InboxConfig struct {
	AdminWorkingSet     int           `mapstructure:"admin_working_set"`
	ScanFloor           int           `mapstructure:"scan_floor"`
	ScanCeiling         int           `mapstructure:"scan_ceiling"`
	ScanPerThread       int           `mapstructure:"scan_per_thread"`
	OptionalCallTimeout time.Duration `mapstructure:"optional_call_timeout"`
}

// Load 读取 config.yaml（可选）并应用环境变量覆盖，例如 DATABASE_DRIVER、INBOX_ADMIN_WORKING_SET。
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "host=localhost user=postgres password=postgres dbname=quotes port=5432 sslmode=disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.unread_ttl", 15*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("jwt.secret", "quote-inbox-dev-secret")

	v.SetDefault("sentry.environment", "development")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.service_name", "quote-inbox")
	v.SetDefault("tracing.insecure", true)

	v.SetDefault("inbox.admin_working_set", 800)
	v.SetDefault("inbox.scan_floor", 250)
	v.SetDefault("inbox.scan_ceiling", 8000)
	v.SetDefault("inbox.scan_per_thread", 30)
	v.SetDefault("inbox.optional_call_timeout", 3*time.Second)
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if c.Inbox.AdminWorkingSet <= 0 {
		return fmt.Errorf("inbox.admin_working_set must be positive, got %d", c.Inbox.AdminWorkingSet)
	}
	if c.Inbox.ScanFloor <= 0 || c.Inbox.ScanCeiling < c.Inbox.ScanFloor {
		return fmt.Errorf("inbox scan bounds invalid: floor=%d ceiling=%d", c.Inbox.ScanFloor, c.Inbox.ScanCeiling)
	}
	if c.Inbox.ScanPerThread <= 0 {
		return fmt.Errorf("inbox.scan_per_thread must be positive, got %d", c.Inbox.ScanPerThread)
	}
	if c.Inbox.OptionalCallTimeout <= 0 {
		return fmt.Errorf("inbox.optional_call_timeout must be positive")
	}
	return nil
}

// Addr 返回 HTTP 监听地址
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Server.Port) }
