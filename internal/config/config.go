package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Data           DataConfig           `mapstructure:"data"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Neo4j          Neo4jConfig          `mapstructure:"neo4j"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
	Security       SecurityConfig       `mapstructure:"security"`
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DataConfig selects where movies and ratings are loaded from.
type DataConfig struct {
	Source      string `mapstructure:"source"`
	MoviesPath  string `mapstructure:"movies_path"`
	RatingsPath string `mapstructure:"ratings_path"`
	UsersPath   string `mapstructure:"users_path"`
	TagsPath    string `mapstructure:"tags_path"`
	LinksPath   string `mapstructure:"links_path"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type Neo4jConfig struct {
	URL            string `mapstructure:"url"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	NeighborsLimit int    `mapstructure:"neighbors_limit"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	GroupID string   `mapstructure:"group_id"`
	Topics  struct {
		Ratings     string `mapstructure:"ratings"`
		DeadLetters string `mapstructure:"dead_letters"`
	} `mapstructure:"topics"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RecommendationConfig struct {
	MinRatings        int                `mapstructure:"min_ratings"`
	DefaultCount      int                `mapstructure:"default_count"`
	MaxCount          int                `mapstructure:"max_count"`
	MaxCompareCount   int                `mapstructure:"max_compare_count"`
	TopSimilarUsers   int                `mapstructure:"top_similar_users"`
	MinUserSimilarity float64            `mapstructure:"min_user_similarity"`
	Oversample        int                `mapstructure:"oversample"`
	AnchorMinRatings  int                `mapstructure:"anchor_min_ratings"`
	HybridWeights     map[string]float64 `mapstructure:"hybrid_weights"`
	CacheTTL          time.Duration      `mapstructure:"cache_ttl"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	// Set defaults
	setDefaults()

	// Environment variable overrides
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate rejects settings the recommendation engine cannot work with.
func (c *Config) Validate() error {
	switch c.Data.Source {
	case "csv":
		if c.Data.MoviesPath == "" || c.Data.RatingsPath == "" {
			return fmt.Errorf("data.movies_path and data.ratings_path are required for csv source")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for postgres source")
		}
	default:
		return fmt.Errorf("unknown data.source %q", c.Data.Source)
	}

	rec := c.Recommendation
	if rec.MinRatings < 0 {
		return fmt.Errorf("recommendation.min_ratings must not be negative")
	}
	if rec.DefaultCount < 1 || rec.DefaultCount > rec.MaxCount {
		return fmt.Errorf("recommendation.default_count must be between 1 and max_count")
	}
	if rec.TopSimilarUsers < 1 {
		return fmt.Errorf("recommendation.top_similar_users must be positive")
	}
	if rec.Oversample < 1 {
		return fmt.Errorf("recommendation.oversample must be at least 1")
	}
	for method, weight := range rec.HybridWeights {
		if weight < 0 {
			return fmt.Errorf("recommendation.hybrid_weights.%s must not be negative", method)
		}
	}
	return nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "development")

	// Data defaults
	viper.SetDefault("data.source", "csv")
	viper.SetDefault("data.movies_path", "./data/movies.csv")
	viper.SetDefault("data.ratings_path", "./data/ratings.csv")
	viper.SetDefault("data.users_path", "./data/users.csv")
	viper.SetDefault("data.tags_path", "./data/tags.csv")
	viper.SetDefault("data.links_path", "./data/links.csv")

	// Database defaults
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.max_idle_time", "15m")
	viper.SetDefault("database.max_lifetime", "1h")
	viper.SetDefault("database.connect_timeout", "10s")

	// Redis defaults
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.timeout", "5s")

	// Neo4j defaults
	viper.SetDefault("neo4j.neighbors_limit", 10)

	// Kafka defaults
	viper.SetDefault("kafka.group_id", "movierec-rebuilder")
	viper.SetDefault("kafka.topics.ratings", "ratings")
	viper.SetDefault("kafka.topics.dead_letters", "ratings-dlq")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Recommendation defaults
	viper.SetDefault("recommendation.min_ratings", 10)
	viper.SetDefault("recommendation.default_count", 10)
	viper.SetDefault("recommendation.max_count", 100)
	viper.SetDefault("recommendation.max_compare_count", 50)
	viper.SetDefault("recommendation.top_similar_users", 50)
	viper.SetDefault("recommendation.min_user_similarity", 0.1)
	viper.SetDefault("recommendation.oversample", 2)
	viper.SetDefault("recommendation.anchor_min_ratings", 5)
	viper.SetDefault("recommendation.hybrid_weights", DefaultHybridWeights())
	viper.SetDefault("recommendation.cache_ttl", "5m")

	// Security defaults
	viper.SetDefault("security.cors.allowed_origins", []string{"*"})
	viper.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	viper.SetDefault("security.cors.allowed_headers", []string{"*"})

	// Rate limit defaults
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 600)
	viper.SetDefault("rate_limit.window", "1m")
}

// DefaultHybridWeights returns the blend used when none is configured.
func DefaultHybridWeights() map[string]float64 {
	return map[string]float64{
		"collaborative": 0.4,
		"item_based":    0.3,
		"content_based": 0.2,
		"popularity":    0.1,
	}
}
