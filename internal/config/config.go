package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	StaticDir      string   `yaml:"static_dir"`
}

type RoomConfig struct {
	MaxUsers  int   `yaml:"max_users"`
	TTLHours  int   `yaml:"ttl_hours"`
	ChatLimit int64 `yaml:"chat_limit"`
	RedoLimit int64 `yaml:"redo_limit"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	RedisCfg     RedisConfig  `yaml:"redis"`
	ServerCfg    ServerConfig `yaml:"server"`
	RoomCfg      RoomConfig   `yaml:"room"`
	LoggerConfig LoggerConfig `yaml:"logger"`
}

var (
	ErrNoDataInCfg  = errors.New("config: no data in config file")
	ErrMissingField = errors.New("config: missing required field")
)

func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoDataInCfg
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv lets deployment credentials override the file.
func (c *Config) applyEnv() {
	if host := os.Getenv("REDIS_HOST"); host != "" {
		c.RedisCfg.Host = host
	}
	if port := os.Getenv("REDIS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.RedisCfg.Port = p
		}
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		c.RedisCfg.Password = pw
	}
	if port := os.Getenv("PORT"); port != "" {
		c.ServerCfg.Port = port
	}
}

func (c *Config) applyDefaults() {
	if c.RedisCfg.Port == 0 {
		c.RedisCfg.Port = 6379
	}
	if c.ServerCfg.Port == "" {
		c.ServerCfg.Port = "3000"
	}
	if c.RoomCfg.MaxUsers == 0 {
		c.RoomCfg.MaxUsers = 10
	}
	if c.RoomCfg.TTLHours == 0 {
		c.RoomCfg.TTLHours = 24
	}
	if c.RoomCfg.ChatLimit == 0 {
		c.RoomCfg.ChatLimit = 100
	}
	if c.RoomCfg.RedoLimit == 0 {
		c.RoomCfg.RedoLimit = 50
	}
	if c.LoggerConfig.Level == "" {
		c.LoggerConfig.Level = "info"
	}
}

func (c *Config) validate() error {
	if c.RedisCfg.Host == "" {
		return ErrMissingField
	}
	return nil
}

func (c *Config) RoomTTL() time.Duration {
	return time.Duration(c.RoomCfg.TTLHours) * time.Hour
}
