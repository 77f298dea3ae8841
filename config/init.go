package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/mailroomhq/mailroom/internal/logger"
	"github.com/mailroomhq/mailroom/internal/tracing"
)

type Config struct {
	AppConfig       *AppConfig
	Logger          *logger.Config
	Tracing         *tracing.JaegerConfig
	DatabaseConfig  *DatabaseConfig
	R2StorageConfig *R2StorageConfig
	RedisConfig     *RedisConfig
	MailerooConfig  *MailerooConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:       &AppConfig{},
		Logger:          &logger.Config{},
		Tracing:         &tracing.JaegerConfig{},
		DatabaseConfig:  &DatabaseConfig{},
		R2StorageConfig: &R2StorageConfig{},
		RedisConfig:     &RedisConfig{},
		MailerooConfig:  &MailerooConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		log.Fatalf("Error loading mailroom config: %v", err)
	}

	return config, nil
}
