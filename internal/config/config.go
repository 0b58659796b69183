package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Google  GoogleConfig  `yaml:"google" mapstructure:"google"`
	Weather WeatherConfig `yaml:"weather" mapstructure:"weather"`
	OSM     OSMConfig     `yaml:"osm" mapstructure:"osm"`
	Shelter ShelterConfig `yaml:"shelter" mapstructure:"shelter"`
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// GoogleConfig holds Routes API credentials and client behavior.
type GoogleConfig struct {
	APIKey       string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	CacheDir     string  `yaml:"cache_dir" mapstructure:"cache_dir"`
	RateLimitQPS float64 `yaml:"rate_limit_qps" mapstructure:"rate_limit_qps"`
}

// WeatherConfig holds the data.gov.sg endpoints and optional API key.
type WeatherConfig struct {
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	RainfallURL string `yaml:"rainfall_url" mapstructure:"rainfall_url"`
	ForecastURL string `yaml:"forecast_url" mapstructure:"forecast_url"`
}

// OSMConfig configures building footprint retrieval.
type OSMConfig struct {
	Endpoint        string  `yaml:"endpoint" mapstructure:"endpoint"`
	BuildingRadiusM float64 `yaml:"building_radius_m" mapstructure:"building_radius_m"`
}

// ShelterConfig locates the static covered-walkway dataset.
type ShelterConfig struct {
	ShapefilePath string `yaml:"shapefile_path" mapstructure:"shapefile_path"`
}

// ScoringConfig holds the geometric scoring thresholds.
type ScoringConfig struct {
	RainProximityM         float64 `yaml:"rain_proximity_m" mapstructure:"rain_proximity_m"`
	ShelterBufferM         float64 `yaml:"shelter_buffer_m" mapstructure:"shelter_buffer_m"`
	DefaultBuildingHeightM float64 `yaml:"default_building_height_m" mapstructure:"default_building_height_m"`
	MetersPerLevel         float64 `yaml:"meters_per_level" mapstructure:"meters_per_level"`
	// AlwaysWetStations lists station IDs treated as raining regardless of
	// their reported value. Empty unless an operator configures overrides.
	AlwaysWetStations []string `yaml:"always_wet_stations" mapstructure:"always_wet_stations"`
}

// StoreConfig configures the reports database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SHADEPATH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8000)
	v.SetDefault("store.path", "shadepath.db")
	v.SetDefault("google.base_url", "https://routes.googleapis.com/directions/v2:computeRoutes")
	v.SetDefault("google.cache_dir", "cache_data")
	v.SetDefault("google.rate_limit_qps", 5)
	v.SetDefault("weather.rainfall_url", "https://api-open.data.gov.sg/v2/real-time/api/rainfall")
	v.SetDefault("weather.forecast_url", "https://api-open.data.gov.sg/v2/real-time/api/two-hr-forecast")
	v.SetDefault("osm.endpoint", "https://overpass-api.de/api/interpreter")
	v.SetDefault("osm.building_radius_m", 1000)
	v.SetDefault("scoring.rain_proximity_m", 5000)
	v.SetDefault("scoring.shelter_buffer_m", 100)
	v.SetDefault("scoring.default_building_height_m", 10.0)
	v.SetDefault("scoring.meters_per_level", 3.0)
	v.SetDefault("scoring.always_wet_stations", []string{})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
