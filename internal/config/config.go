// Package config assembles the route discovery service's configuration
// from environment variables, generalizing the corpus's viper-based nested
// Config pattern and pinning every numeric default named by the design to
// the value the design states.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Host string
	Port int
}

type PostgresConfig struct {
	DSN         string
	MaxOpenConn int
	MaxIdleConn int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DirectionsConfig struct {
	BaseURL       string
	ProxyBaseURL  string
	SharedSecret  string
	BearerToken   string
	PerCallTimeout time.Duration
}

type CacheConfig struct {
	RouteTTL           time.Duration
	PoiRegionTTL       time.Duration
	MemoryCacheMaxEntries int
}

type ConcurrencyConfig struct {
	MaxFanOut             int
	MaxCombinationsPerTol int
	MaxRetries            int
	RepoPoolSize          int
	RepoQueryTimeout      time.Duration
	DirectionsBudgetCeil  int
}

type LoggingConfig struct {
	Env string
}

type Config struct {
	Server      ServerConfig
	Postgres    PostgresConfig
	SQLite      SQLiteConfig
	Redis       RedisConfig
	Directions  DirectionsConfig
	Cache       CacheConfig
	Concurrency ConcurrencyConfig
	Logging     LoggingConfig
	PoiBackend  string // "postgis" | "sqlite"
}

// Load reads a local .env file (best-effort, matching the teacher's
// bootstrap step) and then assembles Config from the environment via
// viper, with defaults pinned to every constant named in SPEC_FULL.md.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_open_conn", 10)
	v.SetDefault("postgres.max_idle_conn", 5)

	v.SetDefault("sqlite.path", "./region.db")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("directions.base_url", "")
	v.SetDefault("directions.proxy_base_url", "")
	v.SetDefault("directions.shared_secret", "")
	v.SetDefault("directions.bearer_token", "")
	v.SetDefault("directions.per_call_timeout", "30s")

	v.SetDefault("cache.route_ttl", "24h")
	v.SetDefault("cache.poi_region_ttl", "168h") // 7 days
	v.SetDefault("cache.memory_cache_max_entries", 1000)

	v.SetDefault("concurrency.max_fan_out", 5)
	v.SetDefault("concurrency.max_combinations_per_tol", 20)
	v.SetDefault("concurrency.max_retries", 5)
	v.SetDefault("concurrency.repo_pool_size", 10)
	v.SetDefault("concurrency.repo_query_timeout", "5s")
	v.SetDefault("concurrency.directions_budget_ceil", 60)

	v.SetDefault("logging.env", "production")
	v.SetDefault("poi_backend", "postgis")

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("server.host"),
			Port: v.GetInt("server.port"),
		},
		Postgres: PostgresConfig{
			DSN:         v.GetString("postgres.dsn"),
			MaxOpenConn: v.GetInt("postgres.max_open_conn"),
			MaxIdleConn: v.GetInt("postgres.max_idle_conn"),
		},
		SQLite: SQLiteConfig{
			Path: v.GetString("sqlite.path"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Directions: DirectionsConfig{
			BaseURL:        v.GetString("directions.base_url"),
			ProxyBaseURL:   v.GetString("directions.proxy_base_url"),
			SharedSecret:   v.GetString("directions.shared_secret"),
			BearerToken:    v.GetString("directions.bearer_token"),
			PerCallTimeout: v.GetDuration("directions.per_call_timeout"),
		},
		Cache: CacheConfig{
			RouteTTL:              v.GetDuration("cache.route_ttl"),
			PoiRegionTTL:          v.GetDuration("cache.poi_region_ttl"),
			MemoryCacheMaxEntries: v.GetInt("cache.memory_cache_max_entries"),
		},
		Concurrency: ConcurrencyConfig{
			MaxFanOut:             v.GetInt("concurrency.max_fan_out"),
			MaxCombinationsPerTol: v.GetInt("concurrency.max_combinations_per_tol"),
			MaxRetries:            v.GetInt("concurrency.max_retries"),
			RepoPoolSize:          v.GetInt("concurrency.repo_pool_size"),
			RepoQueryTimeout:      v.GetDuration("concurrency.repo_query_timeout"),
			DirectionsBudgetCeil:  v.GetInt("concurrency.directions_budget_ceil"),
		},
		Logging:    LoggingConfig{Env: v.GetString("logging.env")},
		PoiBackend: v.GetString("poi_backend"),
	}

	return cfg, nil
}

// UsesProxiedDirections reports whether a proxy base URL is configured,
// the selection rule the Directions Client construction uses (§4.3).
func (c *Config) UsesProxiedDirections() bool {
	return c.Directions.ProxyBaseURL != ""
}
