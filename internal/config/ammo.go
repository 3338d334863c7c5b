package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// AmmoConfig is the configuration of the replay converters (har2ammo,
// pcap2ammo)
type AmmoConfig struct {
	Input         string    `mapstructure:"input"`
	Output        string    `mapstructure:"output"`
	Tag           string    `mapstructure:"tag"`
	Filter        string    `mapstructure:"filter"`
	HTTPFilter    string    `mapstructure:"http_filter"`
	StatsOnly     bool      `mapstructure:"stats_only"`
	AddHeaders    []string  `mapstructure:"add_header"`
	DeleteHeaders []string  `mapstructure:"delete_header"`
	Log           LogConfig `mapstructure:"log"`
}

var ammoBindings = map[string]string{
	"input":       "input",
	"output":      "output",
	"tag":         "tag",
	"filter":      "filter",
	"http_filter": "http-filter",
	"stats_only":  "stats-only",
}

// NewAmmoFlagSet creates the flag set of a replay converter. With
// positionalInput the input file is the first argument instead of -i
func NewAmmoFlagSet(name string, positionalInput bool) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)

	fs.String("config", "", "Path to an optional configuration file (json, yaml or toml)")
	if !positionalInput {
		fs.StringP("input", "i", "", "Input file")
	}
	fs.StringP("output", "o", "", "Output ammo file (default stdout)")
	fs.StringP("tag", "t", "", "Tag written into every ammo header")
	fs.StringP("filter", "f", "", "TCP/IP filter, a Lua expression over ip and tcp")
	fs.StringP("http-filter", "F", "", "HTTP filter, a Lua expression over http")
	fs.BoolP("stats-only", "S", false, "Print stats only")
	fs.StringArray("add-header", nil, "Add header to each request, \"<name>: <value>\"")
	fs.StringArray("delete-header", nil, "Delete header from each request")
	fs.BoolP("version", "v", false, "Print version")
	addLogFlags(fs)

	return fs
}

// LoadAmmoConfig merges flags, environment and the optional config file.
// When the flag set has no input flag the first positional argument is used
func LoadAmmoConfig(fs *pflag.FlagSet) (*AmmoConfig, error) {
	v := newViper()
	v.SetDefault("input", "")
	v.SetDefault("output", "")
	v.SetDefault("tag", "")
	v.SetDefault("filter", "")
	v.SetDefault("http_filter", "")
	v.SetDefault("stats_only", false)
	v.SetDefault("add_header", []string{})
	v.SetDefault("delete_header", []string{})

	if err := bind(v, fs, ammoBindings); err != nil {
		return nil, err
	}
	if err := bind(v, fs, logBindings); err != nil {
		return nil, err
	}
	if err := readConfigFile(v, fs); err != nil {
		return nil, err
	}
	if fs.Lookup("input") == nil && fs.NArg() > 0 {
		v.Set("input", fs.Arg(0))
	}

	var cfg AmmoConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	// header flags are repeatable and their values may contain commas
	if values, ok := changedArray(fs, "add-header"); ok {
		cfg.AddHeaders = values
	}
	if values, ok := changedArray(fs, "delete-header"); ok {
		cfg.DeleteHeaders = values
	}

	if err := cfg.Log.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func changedArray(fs *pflag.FlagSet, name string) ([]string, bool) {
	flag := fs.Lookup(name)
	if flag == nil || !flag.Changed {
		return nil, false
	}
	values, err := fs.GetStringArray(name)
	if err != nil {
		return nil, false
	}
	return values, true
}
