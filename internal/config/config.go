package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Lobby  LobbyConfig  `yaml:"lobby"`
	Clock  ClockConfig  `yaml:"clock"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	AllowOrigins    string `yaml:"allowOrigins"`
	ReadBufferSize  int    `yaml:"readBufferSize"`
	WriteBufferSize int    `yaml:"writeBufferSize"`
}

// Origins splits AllowOrigins into the list the websocket upgrader checks.
func (s ServerConfig) Origins() []string {
	origins := []string{}
	for _, o := range strings.Split(s.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// StoreConfig points at the badger directory. An empty Dir keeps the archive
// in memory.
type StoreConfig struct {
	Dir string `yaml:"dir"`
}

type LobbyConfig struct {
	PairInterval time.Duration `yaml:"pairInterval"`
}

type ClockConfig struct {
	Initial time.Duration `yaml:"initial"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":3000",
			AllowOrigins:    "http://localhost:5173",
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		Lobby: LobbyConfig{PairInterval: time.Second},
		Clock: ClockConfig{Initial: 10 * time.Minute},
	}
}

// Load reads a YAML file over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("'%s': %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("'%s': %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("'%s': %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.ReadBufferSize <= 0 || c.Server.WriteBufferSize <= 0 {
		return errors.New("websocket buffer sizes must be positive")
	}
	if c.Lobby.PairInterval <= 0 {
		return errors.New("lobby.pairInterval must be positive")
	}
	if c.Clock.Initial <= 0 {
		return errors.New("clock.initial must be positive")
	}
	return nil
}
