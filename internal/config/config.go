package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env-default:"8080"`
	Redis      Redis  `yaml:"redis"`
	Bot        Bot    `yaml:"bot"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

// Bot configures the computer player.
type Bot struct {
	MoveDelayMS int `yaml:"move-delay-ms" env-default:"600"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// MoveDelay - the pause before the computer's move is applied.
func (that *Bot) MoveDelay() time.Duration {
	return time.Duration(that.MoveDelayMS) * time.Millisecond
}
