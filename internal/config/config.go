package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type PowerCfg struct {
	BudgetMA  float64 `yaml:"budget_ma"`   // 0 disables the global limit
	LedChanMA float64 `yaml:"led_chan_ma"` // current per channel at full scale
	WhiteCap  float64 `yaml:"white_cap"`   // max per-pixel sum of r+g+b, 0 disables
}

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0, empty for the first port
	SpeedHz int    `yaml:"speed_hz"` // e.g. 8000000
}

type Encoding struct {
	Gamma      float64 `yaml:"gamma"`
	Policy     string  `yaml:"policy"`     // "fixed" | "adaptive"
	Brightness int     `yaml:"brightness"` // 0..31, fixed policy only
}

type Scheduler struct {
	HoldMinS      float64 `yaml:"hold_min_s"`
	HoldMaxS      float64 `yaml:"hold_max_s"`
	CrossfadeS    float64 `yaml:"crossfade_s"`
	FadeS         float64 `yaml:"fade_s"`    // dim to off / back on
	SpinRate      float64 `yaml:"spin_rate"` // LEDs per second
	SpinLEDs      int     `yaml:"spin_leds"` // distance of one spin
	ShutdownSteps int     `yaml:"shutdown_steps"`
}

type Worker struct {
	Retries   int `yaml:"retries"`
	BackoffMs int `yaml:"backoff_ms"`
}

type Config struct {
	Driver     string  `yaml:"driver"` // "spi" | "sim" | "null"
	ColorOrder string  `yaml:"color_order"`
	FPS        int     `yaml:"fps"`
	Speed      float64 `yaml:"speed"`
	NoSync     bool    `yaml:"no_sync"`

	Scene  string `yaml:"scene,omitempty"`
	Sprite string `yaml:"sprite,omitempty"`
	Seed   int64  `yaml:"seed,omitempty"`

	Role   string `yaml:"role"` // "standalone" | "master" | "follower"
	Follow string `yaml:"follow,omitempty"`
	Addr   string `yaml:"addr"`

	Geometry string `yaml:"geometry,omitempty"`

	Warn           bool `yaml:"warn"`
	PrintFrameRate bool `yaml:"print_frame_rate"`
	DebugMessages  bool `yaml:"debug_messages"`

	Encoding  Encoding          `yaml:"encoding"`
	Power     PowerCfg          `yaml:"power"`
	SPI       SPI               `yaml:"spi,omitempty"`
	Scheduler Scheduler         `yaml:"scheduler"`
	Worker    Worker            `yaml:"worker"`
	Scripts   map[string]string `yaml:"scripts,omitempty"`
}

// Default returns the stock configuration for the tree.
func Default() *Config {
	return &Config{
		Driver:     "spi",
		ColorOrder: "BGR",
		FPS:        60,
		Speed:      1,
		Role:       "standalone",
		Addr:       ":8080",
		Encoding:   Encoding{Gamma: 2.5, Policy: "fixed", Brightness: 31},
		Power:      PowerCfg{LedChanMA: 20, WhiteCap: 3},
		SPI:        SPI{SpeedHz: 8_000_000},
		Scheduler: Scheduler{
			HoldMinS:      400.0 / 60,
			HoldMaxS:      800.0 / 60,
			CrossfadeS:    1,
			FadeS:         1,
			SpinRate:      180,
			SpinLEDs:      112,
			ShutdownSteps: 15,
		},
		Worker: Worker{Retries: 3, BackoffMs: 5},
	}
}

// Load reads path over the defaults; keys absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// ValidationError is a configuration error. These are fatal at startup.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (c *Config) Validate() error {
	switch c.Driver {
	case "spi", "sim", "null":
	default:
		return invalid("driver", "unknown driver %q", c.Driver)
	}
	switch c.Role {
	case "standalone", "master":
	case "follower":
		if c.Follow == "" {
			return invalid("follow", "follower role needs a master url")
		}
	default:
		return invalid("role", "unknown role %q", c.Role)
	}
	if c.FPS <= 0 || c.FPS > 1000 {
		return invalid("fps", "%d out of range", c.FPS)
	}
	if c.Speed <= 0 {
		return invalid("speed", "must be positive")
	}
	if c.Encoding.Gamma <= 0 {
		return invalid("encoding.gamma", "must be positive")
	}
	if c.Encoding.Brightness < 0 || c.Encoding.Brightness > 31 {
		return invalid("encoding.brightness", "%d out of 0..31", c.Encoding.Brightness)
	}
	s := c.Scheduler
	if s.HoldMinS <= 0 || s.HoldMaxS < s.HoldMinS {
		return invalid("scheduler.hold", "need 0 < hold_min_s <= hold_max_s")
	}
	if s.CrossfadeS <= 0 || s.FadeS <= 0 {
		return invalid("scheduler", "crossfade_s and fade_s must be positive")
	}
	if s.SpinRate <= 0 || s.SpinLEDs <= 0 {
		return invalid("scheduler.spin", "spin_rate and spin_leds must be positive")
	}
	if s.ShutdownSteps < 0 {
		return invalid("scheduler.shutdown_steps", "must not be negative")
	}
	if c.Worker.Retries < 0 || c.Worker.BackoffMs < 0 {
		return invalid("worker", "retries and backoff_ms must not be negative")
	}
	return nil
}
