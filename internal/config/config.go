// Package config builds the immutable service configuration from defaults,
// an optional ecoflyer.yaml, .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dharmasatrya/ecoflyer/internal/providers"
)

// envFiles are loaded in order; variables already set are not overridden.
var envFiles = []string{".env.local", ".env"}

type Config struct {
	Port string

	CacheEnabled bool
	JobsEnabled  bool
	JobsTTL      time.Duration
	RedisHost    string
	RedisPort    string
	RedisUser    string
	RedisPass    string
	RedisTTL     time.Duration

	TequilaAPIKey     string
	TIMAPIKey         string
	UnsplashAccessKey string
	TequilaURL        string
	TIMURL            string
	UnsplashURL       string

	AirportsFile          string
	MaxAirportCodes       int
	OriginRadiusKm        float64
	OptionsPerDestination int
	ResultLimit           int
	CabinClass            string
	Currency              string

	PipelineTimeout time.Duration
	HTTPTimeout     time.Duration
	RateLimitRPS    float64
	RateLimitBurst  int
}

// RedisEnabled reports whether anything needs a Redis connection.
func (c Config) RedisEnabled() bool {
	return c.CacheEnabled || c.JobsEnabled
}

// bindings maps config keys to the environment variables that set them.
var bindings = map[string]string{
	"port":                   "PORT",
	"cache.enabled":          "CACHE_ENABLED",
	"jobs.enabled":           "JOBS_ENABLED",
	"jobs.ttl":               "JOBS_TTL",
	"redis.host":             "REDIS_HOST",
	"redis.port":             "REDIS_PORT",
	"redis.user":             "REDIS_USER",
	"redis.pass":             "REDIS_PASS",
	"redis.ttl":              "REDIS_TTL",
	"tequila.api_key":        "TEQUILA_API_KEY",
	"tequila.url":            "TEQUILA_URL",
	"tequila.result_limit":   "TEQUILA_RESULT_LIMIT",
	"tim.api_key":            "TIM_API_KEY",
	"tim.url":                "TIM_URL",
	"tim.cabin_class":        "TIM_CABIN_CLASS",
	"unsplash.access_key":    "UNSPLASH_ACCESS_KEY",
	"unsplash.url":           "UNSPLASH_URL",
	"airports.file":          "AIRPORTS_FILE",
	"airports.max_codes":     "AIRPORTS_MAX_CODES",
	"airports.origin_radius": "ORIGIN_RADIUS_KM",
	"search.options":         "OPTIONS_PER_DESTINATION",
	"search.currency":        "CURRENCY",
	"search.timeout":         "PIPELINE_TIMEOUT",
	"http.timeout":           "HTTP_TIMEOUT",
	"ratelimit.rps":          "RATE_LIMIT_RPS",
	"ratelimit.burst":        "RATE_LIMIT_BURST",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.ttl", 24*time.Hour)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.ttl", 5*time.Minute)
	v.SetDefault("tequila.url", providers.DefaultTequilaURL)
	v.SetDefault("tequila.result_limit", providers.DefaultTequilaLimit)
	v.SetDefault("tim.url", providers.DefaultTIMURL)
	v.SetDefault("tim.cabin_class", providers.ClassEconomy)
	v.SetDefault("unsplash.url", providers.DefaultUnsplashURL)
	v.SetDefault("airports.file", "data/airports.json")
	v.SetDefault("airports.max_codes", 600)
	v.SetDefault("airports.origin_radius", 100.0)
	v.SetDefault("search.options", 5)
	v.SetDefault("search.currency", "EUR")
	v.SetDefault("search.timeout", 60*time.Second)
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("ratelimit.rps", 5.0)
	v.SetDefault("ratelimit.burst", 10)
}

// Load reads the configuration. configFile may be empty, in which case
// ecoflyer.yaml is looked up in the working directory and is optional.
func Load(configFile string) (Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, err
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("ecoflyer")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := Config{
		Port:                  strings.TrimPrefix(v.GetString("port"), ":"),
		CacheEnabled:          v.GetBool("cache.enabled"),
		JobsEnabled:           v.GetBool("jobs.enabled"),
		JobsTTL:               v.GetDuration("jobs.ttl"),
		RedisHost:             v.GetString("redis.host"),
		RedisPort:             v.GetString("redis.port"),
		RedisUser:             v.GetString("redis.user"),
		RedisPass:             v.GetString("redis.pass"),
		RedisTTL:              v.GetDuration("redis.ttl"),
		TequilaAPIKey:         v.GetString("tequila.api_key"),
		TIMAPIKey:             v.GetString("tim.api_key"),
		UnsplashAccessKey:     v.GetString("unsplash.access_key"),
		TequilaURL:            strings.TrimSuffix(v.GetString("tequila.url"), "/"),
		TIMURL:                strings.TrimSuffix(v.GetString("tim.url"), "/"),
		UnsplashURL:           strings.TrimSuffix(v.GetString("unsplash.url"), "/"),
		AirportsFile:          v.GetString("airports.file"),
		MaxAirportCodes:       v.GetInt("airports.max_codes"),
		OriginRadiusKm:        v.GetFloat64("airports.origin_radius"),
		OptionsPerDestination: v.GetInt("search.options"),
		ResultLimit:           v.GetInt("tequila.result_limit"),
		CabinClass:            v.GetString("tim.cabin_class"),
		Currency:              strings.ToUpper(v.GetString("search.currency")),
		PipelineTimeout:       v.GetDuration("search.timeout"),
		HTTPTimeout:           v.GetDuration("http.timeout"),
		RateLimitRPS:          v.GetFloat64("ratelimit.rps"),
		RateLimitBurst:        v.GetInt("ratelimit.burst"),
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error

	if c.TequilaAPIKey == "" {
		errs = append(errs, errors.New("TEQUILA_API_KEY is required"))
	}
	if c.TIMAPIKey == "" {
		errs = append(errs, errors.New("TIM_API_KEY is required"))
	}
	if c.UnsplashAccessKey == "" {
		errs = append(errs, errors.New("UNSPLASH_ACCESS_KEY is required"))
	}
	if c.AirportsFile == "" {
		errs = append(errs, errors.New("AIRPORTS_FILE is required"))
	}
	if !providers.ValidCabinClass(c.CabinClass) {
		errs = append(errs, fmt.Errorf("cabin class %q is not one of economy, premiumEconomy, business, first", c.CabinClass))
	}
	if c.OptionsPerDestination < 1 {
		errs = append(errs, fmt.Errorf("options per destination must be positive, got %d", c.OptionsPerDestination))
	}
	if c.ResultLimit < 1 || c.ResultLimit > 1000 {
		errs = append(errs, fmt.Errorf("result limit must be in [1, 1000], got %d", c.ResultLimit))
	}
	if c.MaxAirportCodes < 1 {
		errs = append(errs, fmt.Errorf("max airport codes must be positive, got %d", c.MaxAirportCodes))
	}
	if c.OriginRadiusKm <= 0 {
		errs = append(errs, fmt.Errorf("origin radius must be positive, got %v", c.OriginRadiusKm))
	}
	if c.PipelineTimeout <= 0 || c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	if c.RedisEnabled() && (c.RedisHost == "" || c.RedisPort == "") {
		errs = append(errs, errors.New("REDIS_HOST and REDIS_PORT are required when the cache or job store is enabled"))
	}

	return errors.Join(errs...)
}
