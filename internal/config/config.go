// internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	ERP       ERPConfig
	Analytics AnalyticsConfig
	Cache     CacheConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// ERPConfig holds connection settings for the external business system.
type ERPConfig struct {
	URL      string
	Database string
	Username string
	Password string
	// QueryLimit caps the number of records fetched per bulk query.
	QueryLimit int
}

type AnalyticsConfig struct {
	ModelsDir string
	// TrainCron is the schedule for nightly model training.
	TrainCron string
	// TrainTopN is how many top-selling products get a model retrained nightly.
	TrainTopN int
}

type CacheConfig struct {
	ForecastTTLSeconds      int
	AnomalyTTLSeconds       int
	SegmentationTTLSeconds  int
	ReplenishmentTTLSeconds int
	DemandTTLSeconds        int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("ERP_URL", "http://localhost:8069")
		viper.SetDefault("ERP_DB", "erp")
		viper.SetDefault("ERP_USERNAME", "admin")
		viper.SetDefault("ERP_PASSWORD", "admin")
		viper.SetDefault("ERP_QUERY_LIMIT", 50000)
		viper.SetDefault("ANALYTICS_MODELS_DIR", "./data/models/forecasts")
		viper.SetDefault("ANALYTICS_TRAIN_CRON", "30 3 * * *")
		viper.SetDefault("ANALYTICS_TRAIN_TOP_N", 50)
		viper.SetDefault("CACHE_FORECAST_TTL_SECONDS", 120)
		viper.SetDefault("CACHE_ANOMALY_TTL_SECONDS", 90)
		viper.SetDefault("CACHE_SEGMENTATION_TTL_SECONDS", 120)
		viper.SetDefault("CACHE_REPLENISHMENT_TTL_SECONDS", 120)
		viper.SetDefault("CACHE_DEMAND_TTL_SECONDS", 90)

		// Read from environment variables
		viper.AutomaticEnv()

		// Ensure the model store directory exists
		ensureDir(viper.GetString("ANALYTICS_MODELS_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			ERP: ERPConfig{
				URL:        viper.GetString("ERP_URL"),
				Database:   viper.GetString("ERP_DB"),
				Username:   viper.GetString("ERP_USERNAME"),
				Password:   viper.GetString("ERP_PASSWORD"),
				QueryLimit: viper.GetInt("ERP_QUERY_LIMIT"),
			},
			Analytics: AnalyticsConfig{
				ModelsDir: viper.GetString("ANALYTICS_MODELS_DIR"),
				TrainCron: viper.GetString("ANALYTICS_TRAIN_CRON"),
				TrainTopN: viper.GetInt("ANALYTICS_TRAIN_TOP_N"),
			},
			Cache: CacheConfig{
				ForecastTTLSeconds:      viper.GetInt("CACHE_FORECAST_TTL_SECONDS"),
				AnomalyTTLSeconds:       viper.GetInt("CACHE_ANOMALY_TTL_SECONDS"),
				SegmentationTTLSeconds:  viper.GetInt("CACHE_SEGMENTATION_TTL_SECONDS"),
				ReplenishmentTTLSeconds: viper.GetInt("CACHE_REPLENISHMENT_TTL_SECONDS"),
				DemandTTLSeconds:        viper.GetInt("CACHE_DEMAND_TTL_SECONDS"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
