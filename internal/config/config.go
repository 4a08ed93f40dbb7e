package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"3500" validate:"min=1000,max=65535"`

	WelcomeText    string `env:"WELCOME_TEXT"     envDefault:"Welcome to chat!" validate:"required"`
	SystemName     string `env:"SYSTEM_NAME"      envDefault:"Admin"            validate:"required"`
	ChatTimeLayout string `env:"CHAT_TIME_LAYOUT" envDefault:"3:04:05 PM"       validate:"required"`

	WsSendBuffer int   `env:"WS_SEND_BUFFER" envDefault:"64"   validate:"min=1,max=4096"`
	WsReadLimit  int64 `env:"WS_READ_LIMIT"  envDefault:"8192" validate:"min=512"`

	RedisEnabled       bool   `env:"REDIS_ENABLED"        envDefault:"false"`
	RedisHost          string `env:"REDIS_HOST"           envDefault:"localhost"`
	RedisPort          uint16 `env:"REDIS_PORT"           envDefault:"6379" validate:"min=1000,max=65535"`
	RedisChannelPrefix string `env:"REDIS_CHANNEL_PREFIX" envDefault:"chat" validate:"required"`

	JournalEnabled   bool   `env:"JOURNAL_ENABLED"   envDefault:"false"`
	PostgresHost     string `env:"POSTGRES_HOST"     envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT"     envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"     envDefault:"chat_user"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"chat_password"`
	PostgresDb       string `env:"POSTGRES_DB"       envDefault:"chat_db"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	// Parse config from environment variables
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
