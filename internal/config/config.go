// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/nsvirk/bhavapi/pkg/utils/zaplogger"
)

// Config represents the application configuration.
// Fields without a `default` tag are required.
type Config struct {
	APIName                  string `env:"BHAV_API_APP_NAME" default:"NSE Platform API"`
	APIVersion               string `env:"BHAV_API_APP_VERSION" default:"1.0.0"`
	ServerPort               string `env:"BHAV_API_SERVER_PORT" default:"8000"`
	ServerLogLevel           string `env:"BHAV_API_SERVER_LOG_LEVEL" default:"info"`
	PostgresDsn              string `env:"BHAV_API_PG_DSN"`
	PostgresLogLevel         string `env:"BHAV_API_PG_LOG_LEVEL" default:"warn"`
	RedisHost                string `env:"BHAV_API_REDIS_HOST" default:"localhost"`
	RedisPort                string `env:"BHAV_API_REDIS_PORT" default:"6379"`
	RedisPassword            string `env:"BHAV_API_REDIS_PASSWORD" default:""`
	JWTSecret                string `env:"BHAV_API_JWT_SECRET"`
	AccessTokenExpireMinutes string `env:"BHAV_API_ACCESS_TOKEN_EXPIRE_MINUTES" default:"1440"`
	FrontendURL              string `env:"BHAV_API_FRONTEND_URL" default:"http://localhost:4200"`
	GoogleClientID           string `env:"BHAV_API_GOOGLE_CLIENT_ID" default:""`
	GoogleClientSecret       string `env:"BHAV_API_GOOGLE_CLIENT_SECRET" default:""`
	GoogleRedirectURI        string `env:"BHAV_API_GOOGLE_REDIRECT_URI" default:"http://localhost:8000/api/auth/google/callback"`
	PoliteDelay              string `env:"BHAV_API_POLITE_DELAY" default:"500ms"`
	PrimeTimeout             string `env:"BHAV_API_PRIME_TIMEOUT" default:"10s"`
	FetchTimeout             string `env:"BHAV_API_FETCH_TIMEOUT" default:"30s"`
	FOCacheTTL               string `env:"BHAV_API_FO_CACHE_TTL" default:"30m"`
	SymbolsCacheTTL          string `env:"BHAV_API_SYMBOLS_CACHE_TTL" default:"1h"`
	LookbackDays             string `env:"BHAV_API_LOOKBACK_DAYS" default:"5"`
	CachePruneSchedule       string `env:"BHAV_API_CACHE_PRUNE_SCHEDULE" default:"*/30 * * * *"`
	Timezone                 string `env:"BHAV_API_TIMEZONE" default:"Asia/Kolkata"`
	BSEScripCodesFile        string `env:"BHAV_API_BSE_SCRIP_CODES_FILE" default:"bse_scrip_codes.csv"`
}

var (
	SingleLine string = "--------------------------------------------------"
)

var (
	instance *Config
	once     sync.Once
	err      error
)

// Get returns the application configuration
func Get() (*Config, error) {
	once.Do(func() {
		zaplogger.Info(SingleLine)
		zaplogger.Info("Loading Configuration")
		instance, err = loadConfig()
	})
	return instance, err
}

// loadConfig loads configuration from an optional .env file and the environment
func loadConfig() (*Config, error) {
	// best-effort: .env is optional
	_ = godotenv.Load()

	cfg := &Config{}
	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() error {
	t := reflect.TypeOf(*c)
	v := reflect.ValueOf(c).Elem()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		envTag := field.Tag.Get("env")
		if envTag == "" {
			return fmt.Errorf("missing env tag for field %s", field.Name)
		}

		value := os.Getenv(envTag)
		if value == "" {
			defaultValue, hasDefault := field.Tag.Lookup("default")
			if !hasDefault {
				return fmt.Errorf("env variable %s is required but not set", envTag)
			}
			value = defaultValue
		}

		v.Field(i).SetString(value)
	}

	return nil
}

// GetPoliteDelay returns the spacing between requests to one upstream host
func (c *Config) GetPoliteDelay() time.Duration {
	return parseDuration(c.PoliteDelay, 500*time.Millisecond)
}

// GetPrimeTimeout returns the timeout for the session priming request
func (c *Config) GetPrimeTimeout() time.Duration {
	return parseDuration(c.PrimeTimeout, 10*time.Second)
}

// GetFetchTimeout returns the timeout for payload requests
func (c *Config) GetFetchTimeout() time.Duration {
	return parseDuration(c.FetchTimeout, 30*time.Second)
}

// GetFOCacheTTL returns the time-to-live of cached F&O tables
func (c *Config) GetFOCacheTTL() time.Duration {
	return parseDuration(c.FOCacheTTL, 30*time.Minute)
}

// GetSymbolsCacheTTL returns the time-to-live of the cached latest equity table
func (c *Config) GetSymbolsCacheTTL() time.Duration {
	return parseDuration(c.SymbolsCacheTTL, time.Hour)
}

// GetAccessTokenExpiry returns the lifetime of issued access tokens
func (c *Config) GetAccessTokenExpiry() time.Duration {
	minutes, err := strconv.Atoi(c.AccessTokenExpireMinutes)
	if err != nil || minutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(minutes) * time.Minute
}

// GetLookbackDays returns how many calendar days are scanned for the latest data
func (c *Config) GetLookbackDays() int {
	days, err := strconv.Atoi(c.LookbackDays)
	if err != nil || days <= 0 {
		return 5
	}
	return days
}

// GetLocation returns the exchange time zone, falling back to local time
func (c *Config) GetLocation() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// String returns the configuration as a string
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n--------------------------------------\n")
	sb.WriteString("Configuration:\n")
	sb.WriteString("--------------------------------------\n")

	t := reflect.TypeOf(*c)
	v := reflect.ValueOf(*c)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		value := v.Field(i).String()

		// Mask sensitive fields
		value = maskSensitiveField(field.Name, value)
		sb.WriteString(fmt.Sprintf("  %s:  %s\n", field.Name, value))
	}

	sb.WriteString("--------------------------------------\n")

	return sb.String()
}

func maskSensitiveField(fieldName, value string) string {
	sensitiveFields := []string{"token", "dsn", "secret", "password"}

	fieldNameLower := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFields {
		if strings.Contains(fieldNameLower, sensitive) {
			return maskValue(value)
		}
	}

	return value
}

func maskValue(value string) string {
	if len(value) <= 3 {
		return strings.Repeat("*", 7)
	}
	return value[:3] + strings.Repeat("*", 7)
}
