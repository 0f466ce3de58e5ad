package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Questions struct {
		File string `yaml:"file"`
		Deck string `yaml:"deck"`
		TTL  string `yaml:"ttl"`
	} `yaml:"questions"`
	Rooms struct {
		IdleTimeout           string `yaml:"idleTimeout"`
		SweepInterval         string `yaml:"sweepInterval"`
		RecheckBarrierOnLeave *bool  `yaml:"recheckBarrierOnLeave"`
		ScoreOncePerQuestion  bool   `yaml:"scoreOncePerQuestion"`
	} `yaml:"rooms"`
	WS struct {
		SendBuffer int     `yaml:"sendBuffer"`
		RateLimit  float64 `yaml:"rateLimit"`
		RateBurst  int     `yaml:"rateBurst"`
	} `yaml:"ws"`
}

// Load reads YAML config from path and fills in defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default is the configuration used when no file is given.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Questions.Deck == "" {
		c.Questions.Deck = "default"
	}
	if c.Rooms.RecheckBarrierOnLeave == nil {
		enabled := true
		c.Rooms.RecheckBarrierOnLeave = &enabled
	}
	if c.WS.SendBuffer <= 0 {
		c.WS.SendBuffer = 32
	}
	if c.WS.RateLimit <= 0 {
		c.WS.RateLimit = 10
	}
	if c.WS.RateBurst <= 0 {
		c.WS.RateBurst = 20
	}
}

// RecheckOnLeave reports whether a departure re-evaluates the ready barrier.
func (c Config) RecheckOnLeave() bool {
	return c.Rooms.RecheckBarrierOnLeave == nil || *c.Rooms.RecheckBarrierOnLeave
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
