package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tank-tools/internal/phout"
	"tank-tools/internal/stats"
)

// EnvPrefix prefixes every environment variable read by the tools
const EnvPrefix = "TANKTOOLS"

// Output formats of parse-phout
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Config represents the complete configuration of the phout analysis
type Config struct {
	Input     string       `mapstructure:"input"`
	Field     string       `mapstructure:"field"`
	FromDate  string       `mapstructure:"from_date"`
	ToDate    string       `mapstructure:"to_date"`
	Limit     int          `mapstructure:"limit"`
	Quantiles []float64    `mapstructure:"quantiles"`
	Output    OutputConfig `mapstructure:"output"`
	Log       LogConfig    `mapstructure:"log"`
	AWS       AWSConfig    `mapstructure:"aws"`
}

// OutputConfig defines output settings
type OutputConfig struct {
	Format     string `mapstructure:"format"`
	ReportFile string `mapstructure:"report_file"`
	Location   string `mapstructure:"location"`
}

// LogConfig defines the diagnostic logger written to stderr
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  string `mapstructure:"color"`
}

// AWSConfig contains the credentials used for s3:// inputs
type AWSConfig struct {
	Region          string `mapstructure:"region"`
	Profile         string `mapstructure:"profile"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// NewFlagSet creates the flag set of parse-phout. The caller parses it and
// passes it to LoadConfig
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)

	fs.String("config", "", "Path to an optional configuration file (json, yaml or toml)")
	fs.StringP("input", "i", "", "Phout file, local path or s3://bucket/key")
	fs.String("field", phout.FieldIntervalReal.String(), "Field used for the percentile table")
	fs.String("from-date", "", "Skip records before this date")
	fs.String("to-date", "", "Stop at the first record after this date")
	fs.IntP("limit", "l", 0, "Stop after this many records (0 means no limit)")
	fs.StringSlice("quantiles", nil, "Comma separated quantiles in [0, 1]")
	fs.String("format", FormatText, "Output format: text, json or markdown")
	fs.String("report", "", "Also save a markdown report to this file")
	fs.String("tz", "", "Time zone for timestamps (IANA name, default local)")
	addLogFlags(fs)
	fs.String("aws-region", "", "AWS region for s3:// inputs")
	fs.String("aws-profile", "", "AWS shared config profile for s3:// inputs")
	fs.String("aws-endpoint", "", "Custom S3 endpoint URL")

	return fs
}

func addLogFlags(fs *pflag.FlagSet) {
	fs.String("log-level", "warn", "Log level: none, error, warn, info or debug")
	fs.String("log-format", "logfmt", "Log format: logfmt or json")
	fs.String("log-color", "auto", "Colored logs: auto, always or never")
}

var configBindings = map[string]string{
	"input":              "input",
	"field":              "field",
	"from_date":          "from-date",
	"to_date":            "to-date",
	"limit":              "limit",
	"quantiles":          "quantiles",
	"output.format":      "format",
	"output.report_file": "report",
	"output.location":    "tz",
	"aws.region":         "aws-region",
	"aws.profile":        "aws-profile",
	"aws.endpoint":       "aws-endpoint",
}

var logBindings = map[string]string{
	"log.level":  "log-level",
	"log.format": "log-format",
	"log.color":  "log-color",
}

// newViper creates an isolated viper instance reading TANKTOOLS_* variables
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "logfmt")
	v.SetDefault("log.color", "auto")

	return v
}

func bind(v *viper.Viper, fs *pflag.FlagSet, bindings map[string]string) error {
	for key, name := range bindings {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func readConfigFile(v *viper.Viper, fs *pflag.FlagSet) error {
	path, err := fs.GetString("config")
	if err != nil || path == "" {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// LoadConfig merges flags, environment, the optional config file and
// defaults, then validates the result
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	v := newViper()
	v.SetDefault("input", "")
	v.SetDefault("field", phout.FieldIntervalReal.String())
	v.SetDefault("from_date", "")
	v.SetDefault("to_date", "")
	v.SetDefault("limit", 0)
	v.SetDefault("quantiles", stats.ExtendedQuantiles)
	v.SetDefault("output.format", FormatText)
	v.SetDefault("output.report_file", "")
	v.SetDefault("output.location", "")
	v.SetDefault("aws.region", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("aws.endpoint", "")
	v.SetDefault("aws.access_key_id", "")
	v.SetDefault("aws.secret_access_key", "")

	if err := bind(v, fs, configBindings); err != nil {
		return nil, err
	}
	if err := bind(v, fs, logBindings); err != nil {
		return nil, err
	}
	if err := readConfigFile(v, fs); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if len(cfg.Quantiles) == 0 {
		cfg.Quantiles = append([]float64(nil), stats.ExtendedQuantiles...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input is required")
	}
	if _, err := phout.ParseField(c.Field); err != nil {
		return fmt.Errorf("field: %w", err)
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	for _, q := range c.Quantiles {
		if q < 0 || q > 1 {
			return fmt.Errorf("quantile %v is out of range [0, 1]", q)
		}
	}

	switch c.Output.Format {
	case FormatText, FormatJSON, FormatMarkdown:
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}
	if _, err := c.Output.TimeLocation(); err != nil {
		return err
	}

	return c.Log.Validate()
}

// Flags returns the load filters of the configuration
func (c *Config) Flags() phout.Flags {
	return phout.Flags{
		FromDate: c.FromDate,
		ToDate:   c.ToDate,
		Limit:    c.Limit,
	}
}

// TimeLocation resolves Location, time.Local when empty or "Local"
func (o OutputConfig) TimeLocation() (*time.Location, error) {
	if o.Location == "" || o.Location == "Local" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(o.Location)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", o.Location, err)
	}
	return loc, nil
}

// Validate checks the logger settings
func (l LogConfig) Validate() error {
	switch l.Level {
	case "none", "error", "warn", "info", "debug":
	default:
		return fmt.Errorf("unknown log level %q", l.Level)
	}
	switch l.Format {
	case "logfmt", "json":
	default:
		return fmt.Errorf("unknown log format %q", l.Format)
	}
	switch l.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("unknown log color mode %q", l.Color)
	}
	return nil
}
