// Package config loads server settings from an optional config.yaml and the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	NotifierLocal = "local"
	NotifierRedis = "redis"
	NotifierMongo = "mongo"
)

type Config struct {
	Server   ServerConfig
	Mongo    MongoConfig
	Auth     AuthConfig
	Limits   LimitsConfig
	Store    string
	Notifier string
	Redis    RedisConfig
	Metrics  MetricsConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port       int
	TLSCert    string `mapstructure:"tls_cert"`
	TLSKey     string `mapstructure:"tls_key"`
	RequireTLS bool   `mapstructure:"require_tls"`
}

type MongoConfig struct {
	URI      string
	Database string
}

type AuthConfig struct {
	Secret    string
	Keys      string        // kid:secret,kid2:secret2
	ActiveKid string        `mapstructure:"active_kid"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LimitsConfig struct {
	AuthPerMinute int `mapstructure:"auth_per_minute"`
	SendPerMinute int `mapstructure:"send_per_minute"`
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

type MetricsConfig struct {
	Address string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads config.yaml from configPath (or ./config, or the working
// directory) if present, then applies environment overrides and validates.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	setDefaults(v)
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 50051)
	v.SetDefault("server.require_tls", false)
	v.SetDefault("mongo.database", "chat_db")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("limits.auth_per_minute", 10)
	v.SetDefault("limits.send_per_minute", 120)
	v.SetDefault("store", StoreMongo)
	v.SetDefault("notifier", NotifierLocal)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "roomchat:changes:")
	v.SetDefault("metrics.address", ":9090")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("server.tls_cert", "TLS_CERT")
	_ = v.BindEnv("server.tls_key", "TLS_KEY")
	_ = v.BindEnv("server.require_tls", "REQUIRE_TLS")
	_ = v.BindEnv("mongo.uri", "MONGODB_URI")
	_ = v.BindEnv("mongo.database", "MONGODB_DATABASE")
	_ = v.BindEnv("auth.secret", "JWT_SECRET")
	_ = v.BindEnv("auth.keys", "JWT_KEYS")
	_ = v.BindEnv("auth.active_kid", "JWT_ACTIVE_KID")
	_ = v.BindEnv("auth.token_ttl", "JWT_TTL")
	_ = v.BindEnv("limits.auth_per_minute", "RATE_LIMIT_RPM")
	_ = v.BindEnv("limits.send_per_minute", "SEND_RATE_PER_MINUTE")
	_ = v.BindEnv("store", "STORE")
	_ = v.BindEnv("notifier", "NOTIFIER")
	_ = v.BindEnv("redis.address", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
	_ = v.BindEnv("metrics.address", "METRICS_ADDR")
	_ = v.BindEnv("log.level", "LOG_LEVEL")
	_ = v.BindEnv("log.pretty", "LOG_PRETTY")
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMongo:
		if c.Mongo.URI == "" {
			return errors.New("MONGODB_URI must be set when STORE=mongo")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}

	switch c.Notifier {
	case NotifierLocal, NotifierRedis:
	case NotifierMongo:
		if c.Store != StoreMongo {
			return errors.New("NOTIFIER=mongo requires STORE=mongo")
		}
	default:
		return fmt.Errorf("unknown NOTIFIER %q", c.Notifier)
	}

	if c.Auth.Secret == "" && c.Auth.Keys == "" {
		return errors.New("either JWT_SECRET or JWT_KEYS must be set")
	}
	if _, err := c.Auth.KeyMap(); err != nil {
		return err
	}
	if c.Server.RequireTLS && (c.Server.TLSCert == "" || c.Server.TLSKey == "") {
		return errors.New("REQUIRE_TLS is true but TLS_CERT/TLS_KEY are not configured")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Server.Port)
	}
	return nil
}

// KeyMap parses Keys into kid -> secret. It returns nil when Keys is empty.
func (a AuthConfig) KeyMap() (map[string]string, error) {
	if a.Keys == "" {
		return nil, nil
	}
	keys := map[string]string{}
	for _, p := range strings.Split(a.Keys, ",") {
		if p == "" {
			continue
		}
		kid, secret, ok := strings.Cut(p, ":")
		if !ok || kid == "" || secret == "" {
			return nil, fmt.Errorf("invalid JWT_KEYS entry: %s", p)
		}
		keys[kid] = secret
	}
	if a.ActiveKid != "" {
		if _, ok := keys[a.ActiveKid]; !ok {
			return nil, fmt.Errorf("JWT_ACTIVE_KID %q not in JWT_KEYS", a.ActiveKid)
		}
	}
	return keys, nil
}
