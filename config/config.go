package config

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	DefaultFile               = "config.yaml"
	DefaultBaudRate           = 115200
	DefaultConfigReloadPeriod = 30 * time.Second
	DefaultPollPeriod         = 100 * time.Millisecond
	DefaultChip               = "gpiochip0"
	DefaultFullScale          = 4095
)

type ChannelConfig struct {
	Channel  uint8  `yaml:"channel"`
	Name     string `yaml:"name"`
	DeviceID string `yaml:"deviceID"`
}

// LocalConfig describes a mux wired directly to a Linux board.
type LocalConfig struct {
	Chip       string        `yaml:"chip"`
	IIODevice  string        `yaml:"iioDevice"`
	AnalogPin  uint32        `yaml:"analogPin"`
	SelectPins []uint32      `yaml:"selectPins"`
	PollPeriod time.Duration `yaml:"pollPeriod"`
	Sim        bool          `yaml:"sim"`
}

type Config struct {
	PortName           string          `yaml:"portName"`
	BaudRate           int             `yaml:"baudRate"`
	FullScale          uint16          `yaml:"fullScale"`
	ReadPeriod         time.Duration   `yaml:"readPeriod"`
	ConfigReloadPeriod time.Duration   `yaml:"configReloadPeriod"`
	Channels           []ChannelConfig `yaml:"channels"`
	Local              LocalConfig     `yaml:"local"`
}

func (c *Config) applyDefaults() {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.FullScale == 0 {
		c.FullScale = DefaultFullScale
	}
	if c.ConfigReloadPeriod <= 0 {
		c.ConfigReloadPeriod = DefaultConfigReloadPeriod
	}
	if c.Local.Chip == "" {
		c.Local.Chip = DefaultChip
	}
	if c.Local.PollPeriod <= 0 {
		c.Local.PollPeriod = DefaultPollPeriod
	}
}

// Channel returns the configuration of a mux channel, or nil if it has none.
func (c *Config) Channel(channel uint8) *ChannelConfig {
	for i := range c.Channels {
		if c.Channels[i].Channel == channel {
			return &c.Channels[i]
		}
	}
	return nil
}

// ChannelName returns the configured name or "chN".
func (c *Config) ChannelName(channel uint8) string {
	if cc := c.Channel(channel); cc != nil && cc.Name != "" {
		return cc.Name
	}
	return fmt.Sprintf("ch%d", channel)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Store holds the current configuration and reloads it from disk.
type Store struct {
	path   string
	logger *slog.Logger

	lock   sync.RWMutex
	config *Config
}

// NewStore loads path once. A missing or broken file leaves the defaults in
// place so the caller can still run with flags only.
func NewStore(path string, logger *slog.Logger) *Store {
	s := &Store{path: path, logger: logger}
	s.config = &Config{}
	s.config.applyDefaults()
	s.Reload()
	return s
}

func (s *Store) Get() *Config {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.config
}

// Update applies f to a copy of the current config and stores the result.
func (s *Store) Update(f func(*Config)) {
	s.lock.Lock()
	defer s.lock.Unlock()
	cfg := *s.config
	f(&cfg)
	s.config = &cfg
}

func (s *Store) Reload() bool {
	cfg, err := Load(s.path)
	if err != nil {
		s.logger.Warn("error loading config file", "path", s.path, "err", err)
		return false
	}

	s.lock.Lock()
	s.config = cfg
	s.lock.Unlock()
	s.logger.Info("configuration reloaded", "path", s.path)
	return true
}

// Reloader reloads the config every ConfigReloadPeriod until shutdownChan is
// closed.
func (s *Store) Reloader(shutdownChan <-chan struct{}) {
	ticker := time.NewTicker(s.Get().ConfigReloadPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Reload()
		case <-shutdownChan:
			s.logger.Info("configuration reloader shutting down")
			return
		}
	}
}
