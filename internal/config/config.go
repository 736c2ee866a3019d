package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/ledstrip/internal/color"
)

var ErrInvalid = errors.New("config: invalid")

type PowerCfg struct {
	// WhiteCap limits each pixel's r+g+b to WhiteCap*3*255; 0 disables it.
	WhiteCap float64 `yaml:"white_cap"`
}

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0, or a periph port name for nrz
	SpeedHz int    `yaml:"speed_hz"` // e.g. 2400000
	ResetUs int    `yaml:"reset_us"` // e.g. 300
}

type Config struct {
	Driver     string      `yaml:"driver"` // "sim" | "nrz" | "spidev" | "console"
	NumLEDs    int         `yaml:"num_leds"`
	ColorOrder string      `yaml:"color_order"`
	BaseColor  color.Color `yaml:"base_color"`

	TickQuantumUs   int     `yaml:"tick_quantum_us"`
	BaseRate        float32 `yaml:"base_rate"`
	MailboxCapacity int     `yaml:"mailbox_capacity"`

	Addr    string `yaml:"addr"`
	Preview bool   `yaml:"preview"`

	Power PowerCfg `yaml:"power"`
	SPI   SPI      `yaml:"spi,omitempty"`
}

// Default matches a small strip on the simulator.
func Default() *Config {
	return &Config{
		Driver:          "sim",
		NumLEDs:         60,
		ColorOrder:      "wire",
		BaseColor:       color.White,
		TickQuantumUs:   500,
		BaseRate:        40,
		MailboxCapacity: 1,
		Addr:            ":8080",
		Preview:         true,
		SPI: SPI{
			Dev:     "/dev/spidev0.0",
			SpeedHz: 2400000,
			ResetUs: 300,
		},
	}
}

func (c *Config) TickQuantum() time.Duration {
	return time.Duration(c.TickQuantumUs) * time.Microsecond
}

func (c *Config) Validate() error {
	switch {
	case c.NumLEDs <= 0:
		return fmt.Errorf("%w: num_leds must be positive, got %d", ErrInvalid, c.NumLEDs)
	case c.TickQuantumUs <= 0:
		return fmt.Errorf("%w: tick_quantum_us must be positive", ErrInvalid)
	case !(c.BaseRate > 0):
		return fmt.Errorf("%w: base_rate must be positive; use speed 0 to freeze animations", ErrInvalid)
	case c.MailboxCapacity < 0:
		return fmt.Errorf("%w: mailbox_capacity is negative", ErrInvalid)
	case c.Power.WhiteCap < 0 || c.Power.WhiteCap > 1:
		return fmt.Errorf("%w: power.white_cap must be within 0..1", ErrInvalid)
	}
	return nil
}

// Load reads path on top of Default, so absent keys keep their defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if err := Overlay(path, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Overlay applies the keys present in path to c and validates the result. c
// is left untouched on error.
func Overlay(path string, c *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	next := *c
	if err := yaml.Unmarshal(b, &next); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
