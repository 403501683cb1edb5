package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/example/posture-check/internal/posture"
)

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig       `mapstructure:"server"`
	Database   DatabaseConfig     `mapstructure:"database"`
	Redis      RedisConfig        `mapstructure:"redis"`
	Pose       PoseConfig         `mapstructure:"pose"`
	Auth       AuthConfig         `mapstructure:"auth"`
	Upload     UploadConfig       `mapstructure:"upload"`
	Cache      CacheConfig        `mapstructure:"cache"`
	Log        LogConfig          `mapstructure:"log"`
	Thresholds posture.Thresholds `mapstructure:"thresholds"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PoseConfig struct {
	Addr    string        `mapstructure:"addr"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`
	JWTAudience string        `mapstructure:"jwt_audience"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
}

type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// aliases keeps the environment names used by existing deployments.
var aliases = map[string]string{
	"pose.addr":         "IMAGE_PROCESSOR_ADDR",
	"auth.jwt_secret":   "JWT_SECRET",
	"auth.jwt_audience": "JWT_AUDIENCE",
}

func setDefaults(v *viper.Viper) {
	t := posture.DefaultThresholds()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("database.dsn", "host=postgres user=postgres password=postgres dbname=posture port=5432 sslmode=disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("redis.addr", "redis:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("pose.addr", "pose-estimator:50051")
	v.SetDefault("pose.timeout", 10*time.Second)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_audience", "")
	v.SetDefault("auth.token_ttl", 30*24*time.Hour)
	v.SetDefault("upload.max_bytes", 10<<20)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("thresholds.frontal_low", t.FrontalLow)
	v.SetDefault("thresholds.frontal_mid", t.FrontalMid)
	v.SetDefault("thresholds.sagittal_low", t.SagittalLow)
	v.SetDefault("thresholds.sagittal_mid", t.SagittalMid)
	v.SetDefault("thresholds.frontal_notable", 0.0)
	v.SetDefault("thresholds.sagittal_notable", 0.0)
}

// Load reads .env (if present), an optional YAML file and the environment,
// in increasing order of precedence. An empty path skips the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env failed: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range aliases {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s failed: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks settings the service cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Redis.Addr == "" {
		return errors.New("redis.addr is required")
	}
	if c.Pose.Addr == "" {
		return errors.New("pose.addr is required")
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("upload.max_bytes must be positive")
	}
	return ValidateThresholds(c.Thresholds)
}

// ValidateThresholds rejects non-positive or non-ascending bounds.
func ValidateThresholds(t posture.Thresholds) error {
	check := func(view string, b posture.Bounds) error {
		if b.Low <= 0 || b.Mid <= 0 {
			return fmt.Errorf("thresholds.%s bounds must be positive", view)
		}
		if b.Low >= b.Mid {
			return fmt.Errorf("thresholds.%s_low must be below %s_mid", view, view)
		}
		return nil
	}
	if err := check("frontal", t.Frontal()); err != nil {
		return err
	}
	if err := check("sagittal", t.Sagittal()); err != nil {
		return err
	}
	if t.FrontalNotable < 0 || t.SagittalNotable < 0 {
		return errors.New("notable thresholds must not be negative")
	}
	return nil
}
