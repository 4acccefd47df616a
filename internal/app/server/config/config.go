package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	Env         string
	DB          db
	Server      server
	Logger      logger
	Cache       cacheConfig
	Sync        syncConfig
	Scheduler   schedulerConfig
	Marketplace marketplaceConfig
}

type db struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type server struct {
	RunAddress string `env:"RUN_ADDRESS"`
}

type logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type cacheConfig struct {
	TTL        time.Duration `env:"CACHE_TTL"`
	MaxEntries int           `env:"CACHE_MAX_ENTRIES"`
	Backend    string        `env:"CACHE_BACKEND"`
	SQLitePath string        `env:"CACHE_SQLITE_PATH"`
}

type syncConfig struct {
	MaxSyncAge time.Duration `env:"SYNC_MAX_AGE"`
	PageSize   int           `env:"SYNC_PAGE_SIZE"`
	MaxRetries int           `env:"SYNC_MAX_RETRIES"`
	RetryDelay time.Duration `env:"SYNC_RETRY_DELAY"`
}

type schedulerConfig struct {
	Enabled  bool          `env:"SCHEDULER_ENABLED"`
	Interval time.Duration `env:"SCHEDULER_INTERVAL"`
	Accounts []string      `env:"SCHEDULER_ACCOUNTS"`
}

type marketplaceConfig struct {
	BaseURL string        `env:"MARKETPLACE_BASE_URL"`
	Timeout time.Duration `env:"MARKETPLACE_TIMEOUT"`
}

func MustLoad() *Config {
	if err := godotenv.Load(envPath); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	viper.AutomaticEnv()

	viper.SetDefault("run_address", ":8080")
	viper.SetDefault("app_env", EnvLocal)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("cache_ttl", "10m")
	viper.SetDefault("cache_max_entries", 128)
	viper.SetDefault("cache_backend", BackendPostgres)
	viper.SetDefault("cache_sqlite_path", "claims_cache.db")
	viper.SetDefault("sync_max_age", "15m")
	viper.SetDefault("sync_page_size", 50)
	viper.SetDefault("sync_max_retries", 3)
	viper.SetDefault("sync_retry_delay", "2s")
	viper.SetDefault("scheduler_enabled", false)
	viper.SetDefault("scheduler_interval", "10m")
	viper.SetDefault("marketplace_timeout", "30s")

	config := Config{
		Env: viper.GetString("app_env"),
		DB: db{
			DatabaseURI: viper.GetString("database_uri"),
			Migrations:  viper.GetString("migrations_path"),
		},
		Server: server{RunAddress: viper.GetString("run_address")},
		Logger: logger{LogLevel: viper.GetString("log_level")},
		Cache: cacheConfig{
			TTL:        viper.GetDuration("cache_ttl"),
			MaxEntries: viper.GetInt("cache_max_entries"),
			Backend:    viper.GetString("cache_backend"),
			SQLitePath: viper.GetString("cache_sqlite_path"),
		},
		Sync: syncConfig{
			MaxSyncAge: viper.GetDuration("sync_max_age"),
			PageSize:   viper.GetInt("sync_page_size"),
			MaxRetries: viper.GetInt("sync_max_retries"),
			RetryDelay: viper.GetDuration("sync_retry_delay"),
		},
		Scheduler: schedulerConfig{
			Enabled:  viper.GetBool("scheduler_enabled"),
			Interval: viper.GetDuration("scheduler_interval"),
			Accounts: splitAccounts(viper.GetString("scheduler_accounts")),
		},
		Marketplace: marketplaceConfig{
			BaseURL: viper.GetString("marketplace_base_url"),
			Timeout: viper.GetDuration("marketplace_timeout"),
		},
	}

	return &config
}

func splitAccounts(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	accounts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			accounts = append(accounts, p)
		}
	}

	return accounts
}
