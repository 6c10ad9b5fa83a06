package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const defaultHorizonDays = 60

type Config struct {
	DBDSN          string
	HTTPAddr       string
	Environment    string
	MigrationsPath string

	// BookingHorizonDays caps how far ahead free-window queries may
	// expand the recurring schedule.
	BookingHorizonDays int
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables win in deployment.
	if err := godotenv.Load(".env"); err == nil {
		log.Println("Loaded configuration from .env file")
	}

	cfg := &Config{
		DBDSN:              os.Getenv("DB_DSN"),
		HTTPAddr:           os.Getenv("HTTP_ADDR"),
		Environment:        os.Getenv("ENV"),
		MigrationsPath:     os.Getenv("MIGRATIONS_PATH"),
		BookingHorizonDays: defaultHorizonDays,
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}

	if raw := os.Getenv("BOOKING_HORIZON_DAYS"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("BOOKING_HORIZON_DAYS must be a positive integer, got %q", raw)
		}
		cfg.BookingHorizonDays = days
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}
