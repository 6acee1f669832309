package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream services. Every call is bounded by UpstreamTimeout.
	UpstreamTimeout    time.Duration
	GSIReverseURL      string
	GSISearchURL       string
	WeatherCatalogURL  string
	WeatherForecastURL string
	CatalogTTL         time.Duration
	ReverseCacheSize   int

	// MuniDirectoryPath overrides the embedded municipality dataset when set.
	MuniDirectoryPath string

	// Chat webhook configuration.
	LineEnabled            bool
	LineChannelSecret      string
	LineChannelAccessToken string
	LineAPIURL             string

	// Outcome event publishing.
	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaOutcomeTopic string

	TracingEnabled     bool
	TracingServiceName string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	upstreamTimeout, err := parsePositiveDuration("UPSTREAM_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	catalogTTL, err := parsePositiveDuration("CATALOG_TTL", "1h")
	if err != nil {
		return nil, err
	}

	lineSecret := os.Getenv("LINE_CHANNEL_SECRET")
	lineToken := os.Getenv("LINE_CHANNEL_ACCESS_TOKEN")
	lineEnabled := lineSecret != "" && lineToken != ""
	if v := os.Getenv("LINE_ENABLED"); v != "" {
		lineEnabled = v == "true"
	}

	brokers := sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		UpstreamTimeout:    upstreamTimeout,
		GSIReverseURL:      sharedcfg.EnvOrDefault("GSI_REVERSE_URL", "https://mreversegeocoder.gsi.go.jp/reverse-geocoder/LonLatToAddress"),
		GSISearchURL:       sharedcfg.EnvOrDefault("GSI_SEARCH_URL", "https://msearch.gsi.go.jp/address-search/AddressSearch"),
		WeatherCatalogURL:  sharedcfg.EnvOrDefault("WEATHER_CATALOG_URL", "https://weather.tsukumijima.net/primary_area.xml"),
		WeatherForecastURL: sharedcfg.EnvOrDefault("WEATHER_FORECAST_URL", "https://weather.tsukumijima.net/api/forecast"),
		CatalogTTL:         catalogTTL,
		ReverseCacheSize:   parseReverseCacheSize(),

		MuniDirectoryPath: os.Getenv("MUNI_DIRECTORY_PATH"),

		LineEnabled:            lineEnabled,
		LineChannelSecret:      lineSecret,
		LineChannelAccessToken: lineToken,
		LineAPIURL:             sharedcfg.EnvOrDefault("LINE_API_URL", "https://api.line.me"),

		KafkaEnabled:      kafkaEnabled,
		KafkaBrokers:      brokers,
		KafkaOutcomeTopic: sharedcfg.EnvOrDefault("KAFKA_OUTCOME_TOPIC", "forecast-resolutions"),

		TracingEnabled:     os.Getenv("TRACING_ENABLED") == "true",
		TracingServiceName: sharedcfg.EnvOrDefault("TRACING_SERVICE_NAME", "forecast-bot"),
	}

	if cfg.LineEnabled && (cfg.LineChannelSecret == "" || cfg.LineChannelAccessToken == "") {
		return nil, errors.New("LINE_ENABLED is true but LINE_CHANNEL_SECRET or LINE_CHANNEL_ACCESS_TOKEN is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaOutcomeTopic == "" {
		return nil, errors.New("KAFKA_OUTCOME_TOPIC is required")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseReverseCacheSize() int {
	if s := os.Getenv("REVERSE_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
