// Package config reads the command line and an optional YAML settings
// file. Flags given on the command line win over the file.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"
)

const Version = "0.3.0"

type Config struct {
	Chart    string
	Settings string

	Offset      time.Duration
	Delay       time.Duration
	AutoPlay    bool
	Strict      bool
	ScrollSpeed float64 // ms of chart time per terminal row
	BarRow      uint
	Keys        string
	Device      string
	FramePeriod time.Duration
	MetricsAddr string
	Verbose     bool
}

// Parse reads args, without the program name.
func Parse(args []string) (*Config, error) {
	c := &Config{}
	set := map[string]bool{}

	app := kingpin.New("bms", "Play a BMS chart in the terminal")
	app.Version(Version)
	flag := func(name, help string) *kingpin.FlagClause {
		return app.Flag(name, help).Action(func(*kingpin.ParseContext) error {
			set[name] = true
			return nil
		})
	}

	app.Arg("chart", "BMS chart file").Required().ExistingFileVar(&c.Chart)
	app.Flag("config", "YAML settings file").Short('c').ExistingFileVar(&c.Settings)
	flag("offset", "Judge offset, positive when input lands late").Default("0ms").Short('o').DurationVar(&c.Offset)
	flag("delay", "Start delay").Default("1.5s").Short('d').DurationVar(&c.Delay)
	flag("auto-play", "Let the game play itself").Short('a').BoolVar(&c.AutoPlay)
	flag("strict", "Refuse charts with unmatched long notes").BoolVar(&c.Strict)
	flag("scroll-speed", "Chart ms per terminal row, lower is faster").Default("20").Short('s').Float64Var(&c.ScrollSpeed)
	flag("bar-row", "Rows from the bottom to render the hit bar").Default("4").UintVar(&c.BarRow)
	flag("keys", "Keys for lanes 1 to 9").Default("zsxdcfvgb").Short('k').StringVar(&c.Keys)
	flag("device", "evdev keyboard for press and release, e.g. /dev/input/event3").StringVar(&c.Device)
	flag("frame-period", "Render frame period").Default("4ms").Short('p').DurationVar(&c.FramePeriod)
	flag("metrics-addr", "Serve prometheus metrics on this address").StringVar(&c.MetricsAddr)
	flag("verbose", "Log debug output").Short('v').BoolVar(&c.Verbose)

	if _, err := app.Parse(args); nil != err {
		return nil, err
	}

	if c.Settings != "" {
		s, err := LoadSettings(c.Settings)
		if nil != err {
			return nil, err
		}
		s.apply(c, set)
	}

	if err := c.validate(); nil != err {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.ScrollSpeed <= 0 {
		return fmt.Errorf("scroll speed must be positive, got %v", c.ScrollSpeed)
	}
	if len([]rune(c.Keys)) == 0 {
		return fmt.Errorf("no lane keys given")
	}
	if c.FramePeriod <= 0 {
		return fmt.Errorf("frame period must be positive, got %v", c.FramePeriod)
	}
	return nil
}

// OffsetMs is the judge offset on the chart's ms timeline.
func (c *Config) OffsetMs() float64 {
	return float64(c.Offset) / float64(time.Millisecond)
}

// KeyLane maps a key to its lane, 0 when it is not a lane key.
func (c *Config) KeyLane(r rune) int {
	for i, k := range []rune(c.Keys) {
		if r == k {
			return i + 1
		}
	}
	return 0
}

func (c *Config) Level() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
