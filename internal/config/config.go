package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ModeDesktop = "desktop"
	ModeServer  = "server"
)

type Config struct {
	Mode       string        `yaml:"mode" env:"GOMOKU_MODE" env-default:"desktop"`
	LogLevel   string        `yaml:"log-level" env:"GOMOKU_LOG_LEVEL" env-default:"info"`
	LogFile    string        `yaml:"log-file" env:"GOMOKU_LOG_FILE" env-default:"gomoku.log"`
	HTTPPort   string        `yaml:"http-port" env:"GOMOKU_HTTP_PORT" env-default:"9090"`
	SocketPort string        `yaml:"socket-port" env:"GOMOKU_SOCKET_PORT" env-default:"8080"`
	GameTTL    time.Duration `yaml:"game-ttl" env:"GOMOKU_GAME_TTL" env-default:"24h"`
	Redis      Redis         `yaml:"redis"`
}

type Redis struct {
	Host string `yaml:"host" env:"GOMOKU_REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"GOMOKU_REDIS_PORT" env-default:"6379"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads the yaml file at path, then applies env overrides and defaults.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if config.Mode != ModeDesktop && config.Mode != ModeServer {
		return nil, fmt.Errorf("unknown mode %q: expected %s or %s", config.Mode, ModeDesktop, ModeServer)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
