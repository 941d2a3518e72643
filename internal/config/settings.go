package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the YAML settings file. Missing keys keep the flag value.
type Settings struct {
	Offset      *time.Duration `yaml:"offset"`
	Delay       *time.Duration `yaml:"delay"`
	AutoPlay    *bool          `yaml:"auto_play"`
	Strict      *bool          `yaml:"strict"`
	ScrollSpeed *float64       `yaml:"scroll_speed"`
	BarRow      *uint          `yaml:"bar_row"`
	Keys        *string        `yaml:"keys"`
	Device      *string        `yaml:"device"`
	MetricsAddr *string        `yaml:"metrics_addr"`
}

func LoadSettings(file string) (*Settings, error) {
	data, err := os.ReadFile(file)
	if nil != err {
		return nil, fmt.Errorf("unable to read settings: %w", err)
	}
	s := &Settings{}
	if err := yaml.Unmarshal(data, s); nil != err {
		return nil, fmt.Errorf("unable to parse settings %s: %w", file, err)
	}
	return s, nil
}

// apply copies every value of the file whose flag was not given.
func (s *Settings) apply(c *Config, set map[string]bool) {
	if nil != s.Offset && !set["offset"] {
		c.Offset = *s.Offset
	}
	if nil != s.Delay && !set["delay"] {
		c.Delay = *s.Delay
	}
	if nil != s.AutoPlay && !set["auto-play"] {
		c.AutoPlay = *s.AutoPlay
	}
	if nil != s.Strict && !set["strict"] {
		c.Strict = *s.Strict
	}
	if nil != s.ScrollSpeed && !set["scroll-speed"] {
		c.ScrollSpeed = *s.ScrollSpeed
	}
	if nil != s.BarRow && !set["bar-row"] {
		c.BarRow = *s.BarRow
	}
	if nil != s.Keys && !set["keys"] {
		c.Keys = *s.Keys
	}
	if nil != s.Device && !set["device"] {
		c.Device = *s.Device
	}
	if nil != s.MetricsAddr && !set["metrics-addr"] {
		c.MetricsAddr = *s.MetricsAddr
	}
}
