// Package config loads the device configuration with viper.
//
// Values come from, in increasing priority: built-in defaults, configs/config.yml
// (optional) and LIGHTHOUSE_* environment variables (dots become underscores,
// e.g. LIGHTHOUSE_POLLER_API_KEY).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "LIGHTHOUSE"

// Config is the typed view of every tunable the device reads at boot.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Portal    PortalConfig    `mapstructure:"portal"`
	Link      LinkConfig      `mapstructure:"link"`
	Connect   ConnectConfig   `mapstructure:"connect"`
	BootGuard BootGuardConfig `mapstructure:"bootguard"`
	Poller    PollerConfig    `mapstructure:"poller"`
	Strip     StripConfig     `mapstructure:"strip"`
	Renderer  RendererConfig  `mapstructure:"renderer"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

type PortalConfig struct {
	Port       string  `mapstructure:"port"`
	MDNS       bool    `mapstructure:"mdns"`
	RatePerSec float64 `mapstructure:"rate_per_sec"`
	Burst      int     `mapstructure:"burst"`
}

type LinkConfig struct {
	Mode      string        `mapstructure:"mode"` // sim | sysfs
	Interface string        `mapstructure:"interface"`
	SimDelay  time.Duration `mapstructure:"sim_delay"`
	SimReject []string      `mapstructure:"sim_reject"`
}

type ConnectConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Tick    time.Duration `mapstructure:"tick"`
}

type BootGuardConfig struct {
	Threshold int `mapstructure:"threshold"`
}

type PollerConfig struct {
	URL      string        `mapstructure:"url"`
	APIKey   string        `mapstructure:"api_key"`
	AppKey   string        `mapstructure:"app_key"`
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxBody  int64         `mapstructure:"max_body"`
}

type StripConfig struct {
	Pixels  int  `mapstructure:"pixels"`
	Console bool `mapstructure:"console"`
}

type RendererConfig struct {
	Tick   time.Duration `mapstructure:"tick"`
	Frame  time.Duration `mapstructure:"frame"`
	Window int           `mapstructure:"window"`
	Dim    int           `mapstructure:"dim"`
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", "lighthouse.db")
	v.SetDefault("http.port", "8080")

	v.SetDefault("portal.port", "8081")
	v.SetDefault("portal.mdns", true)
	v.SetDefault("portal.rate_per_sec", 1.0)
	v.SetDefault("portal.burst", 3)

	v.SetDefault("link.mode", "sim")
	v.SetDefault("link.interface", "wlan0")
	v.SetDefault("link.sim_delay", 2*time.Second)
	v.SetDefault("link.sim_reject", []string{})

	v.SetDefault("connect.timeout", 15*time.Second)
	v.SetDefault("connect.tick", 100*time.Millisecond)

	v.SetDefault("bootguard.threshold", 3)

	v.SetDefault("poller.url", "https://api.datadoghq.com/api/v1/monitor")
	v.SetDefault("poller.api_key", "")
	v.SetDefault("poller.app_key", "")
	v.SetDefault("poller.interval", 30*time.Second)
	v.SetDefault("poller.timeout", 5*time.Second)
	v.SetDefault("poller.max_body", 256<<10)

	v.SetDefault("strip.pixels", 16)
	v.SetDefault("strip.console", false)

	v.SetDefault("renderer.tick", 10*time.Millisecond)
	v.SetDefault("renderer.frame", 100*time.Millisecond)
	v.SetDefault("renderer.window", 3)
	v.SetDefault("renderer.dim", 30)
}

// Load reads configuration. An empty path searches ./configs/config.yml;
// a missing file there is not an error, a missing explicit path is.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the loops cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Strip.Pixels <= 0:
		return fmt.Errorf("strip.pixels must be > 0, got %d", c.Strip.Pixels)
	case c.Renderer.Window <= 0:
		return fmt.Errorf("renderer.window must be > 0, got %d", c.Renderer.Window)
	case c.Renderer.Dim < 0 || c.Renderer.Dim > 255:
		return fmt.Errorf("renderer.dim must be within 0..255, got %d", c.Renderer.Dim)
	case c.Renderer.Tick <= 0 || c.Renderer.Frame <= 0:
		return errors.New("renderer.tick and renderer.frame must be > 0")
	case c.Connect.Timeout <= 0 || c.Connect.Tick <= 0:
		return errors.New("connect.timeout and connect.tick must be > 0")
	case c.Poller.Interval <= 0 || c.Poller.Timeout <= 0:
		return errors.New("poller.interval and poller.timeout must be > 0")
	case c.Poller.MaxBody <= 0:
		return fmt.Errorf("poller.max_body must be > 0, got %d", c.Poller.MaxBody)
	case c.BootGuard.Threshold <= 0:
		return fmt.Errorf("bootguard.threshold must be > 0, got %d", c.BootGuard.Threshold)
	case c.Link.Mode != "sim" && c.Link.Mode != "sysfs":
		return fmt.Errorf("link.mode must be sim or sysfs, got %q", c.Link.Mode)
	}
	return nil
}
