package dto

import (
	"encoding/base64"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ListenAddress string `env:"LISTEN_ADDRESS" envDefault:":8080"`
	DatabaseDSN   string `env:"DATABASE_DSN"`
	RabbitMQURL   string `env:"RABBITMQ_URL"`

	// Base64-encoded Firebase service account JSON.
	FirebaseKey string `env:"FIREBASE_KEY"`

	PlacesAPIKey     string `env:"PLACES_API_KEY"`
	PlacesBaseURL    string `env:"PLACES_BASE_URL" envDefault:"https://maps.googleapis.com/maps/api/place"`
	GeocodeBaseURL   string `env:"GEOCODE_BASE_URL" envDefault:"https://maps.googleapis.com/maps/api/geocode"`
	PlacesRatePerSec float64 `env:"PLACES_RATE_PER_SEC" envDefault:"10"`
}

func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, reading configuration from environment")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInternalFailure, err)
	}

	if cfg.DatabaseDSN == "" {
		return Config{}, fmt.Errorf("%w: DATABASE_DSN is required", ErrInternalFailure)
	}
	if cfg.FirebaseKey == "" {
		return Config{}, fmt.Errorf("%w: FIREBASE_KEY is required", ErrInternalFailure)
	}
	if cfg.PlacesAPIKey == "" {
		return Config{}, fmt.Errorf("%w: PLACES_API_KEY is required", ErrInternalFailure)
	}

	return cfg, nil
}

func (c Config) DecodeFirebaseKey() ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(c.FirebaseKey)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding firebase key: %v", ErrInternalFailure, err)
	}
	return decoded, nil
}
