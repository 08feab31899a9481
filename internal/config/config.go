package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string   `yaml:"http-port" env:"HTTP_PORT" env-default:"8080"`
	SocketPort string   `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8081"`
	Opponent   Opponent `yaml:"opponent"`
	Session    Session  `yaml:"session"`
}

// Opponent tunes the computer player.
type Opponent struct {
	Delay string `yaml:"delay" env:"OPPONENT_DELAY" env-default:"600ms"`
	Seed  int64  `yaml:"seed" env:"OPPONENT_SEED" env-default:"0"`
}

type Session struct {
	TTL string `yaml:"ttl" env:"SESSION_TTL" env-default:"24h"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// GetReplyDelay parses the configured pacing delay for the opponent's move.
func (that *Opponent) GetReplyDelay() (time.Duration, error) {
	delay, err := time.ParseDuration(that.Delay)
	if err != nil {
		return 0, fmt.Errorf("invalid opponent delay %q: %w", that.Delay, err)
	}

	return delay, nil
}

// GetTTL parses how long an idle session is kept.
func (that *Session) GetTTL() (time.Duration, error) {
	ttl, err := time.ParseDuration(that.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid session ttl %q: %w", that.TTL, err)
	}

	return ttl, nil
}
