package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"log"
)

type Config struct {
	Redis Redis
	Push  Push
	API   API
	Agent Agent
}

type Redis struct {
	Addr     string `env:"Redis_Address"`
	Password string `env:"Redis_Password"`
	DB       int    `env:"Redis_DB"`
}

type Push struct {
	StreamPrefix string `env:"Push_StreamPrefix" envDefault:"push"`
	Group        string `env:"Push_Group" envDefault:"mlnotify"`
	TokenSetKey  string `env:"Push_TokenSet" envDefault:"push:tokens"`
}

type API struct {
	// Key is the static bearer secret for the dispatch endpoint. An empty
	// value is a deployment error and makes every request fail with 500.
	Key string `env:"Api_Key"`
}

type Agent struct {
	DBPath        string        `env:"Agent_DBPath" envDefault:"mlnotify.db"`
	DeviceName    string        `env:"Agent_DeviceName"`
	DebounceDelay time.Duration `env:"Agent_DebounceDelay" envDefault:"500ms"`
}

func Load() *Config {
	var c Config
	if err := env.Parse(&c); err != nil {
		log.Fatal(err)
	}

	return &c
}
