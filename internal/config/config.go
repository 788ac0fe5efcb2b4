package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int           `mapstructure:"port"`
		CorsAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string      `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string      `mapstructure:"cors_allowed_headers"`
		ReadTimeout        time.Duration `mapstructure:"read_timeout"`
		WriteTimeout       time.Duration `mapstructure:"write_timeout"`
		Timezone           string        `mapstructure:"timezone"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
		MaxConns int32  `mapstructure:"max_conns"`
	} `mapstructure:"database"`

	JWT struct {
		Secret     string        `mapstructure:"secret"`
		AccessTTL  time.Duration `mapstructure:"access_ttl"`
		RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
		Issuer     string        `mapstructure:"issuer"`
	} `mapstructure:"jwt"`

	Redis struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Invoice struct {
		IncomingPrefix string `mapstructure:"incoming_prefix"`
		OutgoingPrefix string `mapstructure:"outgoing_prefix"`
		IncomingPolicy string `mapstructure:"incoming_policy"`
	} `mapstructure:"invoice"`

	Auth struct {
		Mode string `mapstructure:"mode"`
	} `mapstructure:"auth"`

	Archive ArchiveConfig `mapstructure:"archive"`

	Log struct {
		Level       string `mapstructure:"level"`
		Format      string `mapstructure:"format"`
		ServiceName string `mapstructure:"service_name"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"log"`
}

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(configFile())

	// AUTH_MODE, INVOICE_INCOMING_POLICY, ... map onto nested keys
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	applyEnvOverrides(&cfg)

	if cfg.JWT.Secret == "" || cfg.JWT.Secret == "${JWT_SECRET}" {
		log.Fatal("JWT_SECRET is not set")
	}

	return &cfg
}

func configFile() string {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return path
	}
	return "configs/config.yaml"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.timezone", "UTC")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "stock_db")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("jwt.access_ttl", time.Hour)
	v.SetDefault("jwt.refresh_ttl", 30*24*time.Hour)
	v.SetDefault("jwt.issuer", "stock-backend")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("invoice.incoming_prefix", "inv")
	v.SetDefault("invoice.outgoing_prefix", "out")
	v.SetDefault("invoice.incoming_policy", "preserve")

	v.SetDefault("auth.mode", "strict")

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.region", "auto")
	v.SetDefault("archive.prefix", "invoices/")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.service_name", "stock-backend")
	v.SetDefault("log.environment", "development")
}

func applyEnvOverrides(cfg *Config) {
	// Override database settings from DB_* environment variables
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}

	if cfg.JWT.Secret == "" || cfg.JWT.Secret == "${JWT_SECRET}" {
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	}

	// K8s sets REDIS_SERVICE_HOST and REDIS_SERVICE_PORT for services
	if host := firstEnv("REDIS_HOST", "REDIS_SERVICE_HOST"); host != "" {
		cfg.Redis.Host = host
	}
	if port := firstEnv("REDIS_PORT", "REDIS_SERVICE_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Redis.Port = n
		}
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}

	cfg.Archive.applyEnv()
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
