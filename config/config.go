package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type ModeConfig struct {
	Hosts int `mapstructure:"hosts"`
	Joins int `mapstructure:"joins"`
}

type Config struct {
	Server struct {
		Port string
	}
	Database struct {
		DSN string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	JWT struct {
		Secret string
	}
	Match struct {
		QueueCapacity   int                   `mapstructure:"queueCapacity"`
		CommandBuffer   int                   `mapstructure:"commandBuffer"`
		SweepInterval   time.Duration         `mapstructure:"sweepInterval"`
		DefaultDeadline time.Duration         `mapstructure:"defaultDeadline"`
		MatchTTL        int                   `mapstructure:"matchTTL"` // seconds
		Modes           map[string]ModeConfig `mapstructure:"modes"`
	}
}

var C Config

func Load() {
	viper.SetConfigFile("config/config.yaml")
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Failed to read config: %v", err)
	}
	if err := viper.Unmarshal(&C); err != nil {
		log.Fatalf("Failed to parse config: %v", err)
	}
}
