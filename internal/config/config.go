package config

import (
	"os"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const DefaultBalance = 0

type ServerConfig struct {
	Mode string `yaml:"mode"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	File string `yaml:"file"`
}

type ItemsConfig struct {
	File string `yaml:"file"`
}

// GameConfig bounds the random login bonus. When Max < Min the bonus
// is zero, which effectively disables it.
type GameConfig struct {
	LoginCreditMin int `yaml:"login_credit_min"`
	LoginCreditMax int `yaml:"login_credit_max"`
}

type JaegerConfig struct {
	Sampler struct {
		Type  string  `yaml:"type"`
		Param float64 `yaml:"param"`
	} `yaml:"sampler"`
	Reporter struct {
		LogSpans           bool   `yaml:"log_spans"`
		LocalAgentHostPort string `yaml:"local_agent_host_port"`
	} `yaml:"reporter"`
}

type Config struct {
	ServiceName string       `yaml:"service_name"`
	Server      ServerConfig `yaml:"server"`
	DB          *DBConfig    `yaml:"db"`
	Items       ItemsConfig  `yaml:"items"`
	Game        GameConfig   `yaml:"game"`
	Jaeger      JaegerConfig `yaml:"jaeger"`
}

func MustLoad(path string) *Config {
	conf := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		zap.L().Fatal("failed to read config", zap.String("path", path), zap.Error(err))
	}

	if err = yaml.Unmarshal(data, conf); err != nil {
		zap.L().Fatal("failed to parse config", zap.String("path", path), zap.Error(err))
	}

	conf.applyDefaults()
	conf.applyEnv()
	return conf
}

func (c *Config) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "game-shop"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "dev"
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.DB == nil {
		c.DB = &DBConfig{}
	}
	if c.DB.File == "" {
		c.DB.File = "game.db"
	}
	if c.Items.File == "" {
		c.Items.File = "items.json"
	}
	if c.Jaeger.Sampler.Type == "" {
		c.Jaeger.Sampler.Type = "const"
		c.Jaeger.Sampler.Param = 1
	}
	if c.Jaeger.Reporter.LocalAgentHostPort == "" {
		c.Jaeger.Reporter.LocalAgentHostPort = "localhost:6831"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SHOP_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("SHOP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}
