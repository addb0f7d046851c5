// Package config loads csvtools settings from defaults, a YAML file, the
// environment and finally command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lyrasis/csv-data-tools/pkg/csv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CSVTOOLS_"

// Config holds everything a batch run needs besides its input and output
// paths.
type Config struct {
	// Delimiter is a delimiter name. Empty infers it from the suffix.
	Delimiter string `yaml:"delimiter" validate:"omitempty,oneof=comma pipe tab"`
	// Suffix selects input files, such as ".psv".
	Suffix string `yaml:"suffix"`
	// ExampleLimit is the number of example rows kept per anomaly.
	ExampleLimit int `yaml:"example_limit" validate:"min=0"`
	// Markers is "sentinel" or "plain".
	Markers string `yaml:"markers" validate:"oneof=sentinel plain"`
	// StripPlus cleans every field with csv.StripPlus.
	StripPlus bool `yaml:"strip_plus"`
	// LeadingField overrides the record identifier pattern.
	LeadingField string `yaml:"leading_field"`
	// StrictQuotes rejects stray quotes when checking delimited files.
	StrictQuotes bool `yaml:"strict_quotes"`
	// Workers bounds how many files are processed at once.
	Workers int `yaml:"workers" validate:"min=1,max=256"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ExampleLimit: csv.DefaultExampleLimit,
		Markers:      csv.SentinelMarkers.String(),
		LeadingField: `^[0-9-]+$`,
		Workers:      runtime.GOMAXPROCS(0),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored; variables already set are not overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. An empty path or a missing file yields the
// defaults with overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal returns the configuration as YAML, in the form Load reads.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvPrefix + "DELIMITER"); v != "" {
		c.Delimiter = strings.ToLower(v)
	}
	if v := os.Getenv(EnvPrefix + "SUFFIX"); v != "" {
		c.Suffix = v
	}
	if v := os.Getenv(EnvPrefix + "MARKERS"); v != "" {
		c.Markers = strings.ToLower(v)
	}
	if v := os.Getenv(EnvPrefix + "LEADING_FIELD"); v != "" {
		c.LeadingField = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvPrefix + "LOG_FORMAT"); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
	if err := envInt("WORKERS", &c.Workers); err != nil {
		return err
	}
	if err := envInt("EXAMPLES", &c.ExampleLimit); err != nil {
		return err
	}
	if err := envBool("STRIP_PLUS", &c.StripPlus); err != nil {
		return err
	}
	return envBool("STRICT_QUOTES", &c.StrictQuotes)
}

func envInt(name string, dst *int) error {
	v := os.Getenv(EnvPrefix + name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
	}
	*dst = n
	return nil
}

func envBool(name string, dst *bool) error {
	v := os.Getenv(EnvPrefix + name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
	}
	*dst = b
	return nil
}

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s=%v fails %q", fe.Namespace(), fe.Value(), fe.Tag()+paramSuffix(fe.Param()))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func paramSuffix(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}

// CSVOptions turns the configuration into csv options. Without a delimiter
// name the suffix decides; without either the default comma is used.
func (c *Config) CSVOptions() (csv.Options, error) {
	opts := csv.DefaultOptions()

	switch {
	case c.Delimiter != "":
		d, err := csv.DelimiterByName(c.Delimiter)
		if err != nil {
			return opts, err
		}
		opts.Delimiter = d
	default:
		if d, ok := csv.DelimiterForSuffix(c.Suffix); ok {
			opts.Delimiter = d
		}
	}

	markers, err := csv.ParseMarkerStyle(c.Markers)
	if err != nil {
		return opts, err
	}
	opts.Markers = markers
	opts.ExampleLimit = c.ExampleLimit
	opts.StrictQuotes = c.StrictQuotes
	if c.LeadingField != "" {
		opts.LeadingField = c.LeadingField
	}
	if c.StripPlus {
		opts.Transform = csv.StripPlus
	}
	return opts, opts.Validate()
}

// DelimiterExplicit reports whether the delimiter was named or implied by
// the suffix, as opposed to left for sniffing.
func (c *Config) DelimiterExplicit() bool {
	if c.Delimiter != "" {
		return true
	}
	_, ok := csv.DelimiterForSuffix(c.Suffix)
	return ok
}
