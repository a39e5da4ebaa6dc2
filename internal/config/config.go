package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type RoomConf struct {
	WebsocketReadLimit int64         `env:"WEBSOCKET_READ_LIMIT" envDefault:"4096"`
	SweepInterval      time.Duration `env:"SWEEP_INTERVAL"       envDefault:"5m"`
	MaxAge             time.Duration `env:"MAX_AGE"              envDefault:"2h"`
	EmptyMaxAge        time.Duration `env:"EMPTY_MAX_AGE"        envDefault:"30m"`
}

type RateConf struct {
	Window time.Duration `env:"WINDOW" envDefault:"1s"`
	Limit  int           `env:"LIMIT"  envDefault:"25"`
}

type Config struct {
	Addr  string   `env:"ADDR" envDefault:":3001"`
	Debug bool     `env:"DEBUG"`
	Room  RoomConf `envPrefix:"ROOM_"`
	Rate  RateConf `envPrefix:"RATE_"`
}

// Load reads configuration from the environment, bootstrapped from an
// optional .env file.
func Load(path string) (Config, error) {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	return env.ParseAs[Config]()
}
