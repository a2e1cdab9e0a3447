package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/penwyp/go-actograph/internal/core/model"
)

const defaultConfigPath = "~/.go-actograph/config.toml"

// Config holds user preferences. Command-line flags override these values.
type Config struct {
	Output      string `toml:"output" validate:"oneof=table json csv summary"`
	Timezone    string `toml:"timezone"`
	Mode        string `toml:"mode" validate:"oneof=calendar chronometer"`
	LogLevel    string `toml:"log_level" validate:"oneof=debug info warn error"`
	LogFile     string `toml:"log_file"`
	LogFormat   string `toml:"log_format" validate:"oneof=text json"`
	Concurrency int    `toml:"concurrency" validate:"gte=1,lte=64"`
}

func Default() Config {
	return Config{
		Output:      "table",
		Timezone:    "Local",
		Mode:        model.ModeCalendar,
		LogLevel:    "info",
		LogFormat:   "text",
		Concurrency: 4,
	}
}

var validate = validator.New()

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads the TOML file at path, or the default location when path is
// empty, over the defaults. A missing file is not an error; the returned
// bool reports whether a file was read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	if path == "" {
		path = defaultConfigPath
	}
	resolved, err := expandPath(path)
	if err != nil {
		return nil, "", false, err
	}

	exists := true
	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		exists = false
	case err != nil:
		return nil, "", false, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolved, exists, nil
}

func (c *Config) normalize() error {
	c.Output = strings.ToLower(strings.TrimSpace(c.Output))
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogLevel == "warning" {
		c.LogLevel = "warn"
	}
	if strings.TrimSpace(c.Timezone) == "" {
		c.Timezone = "Local"
	}

	var err error
	if c.LogFile, err = expandPath(strings.TrimSpace(c.LogFile)); err != nil {
		return fmt.Errorf("log_file: %w", err)
	}
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s=%q does not satisfy %s %s",
				tomlKey(fe.StructField()), fmt.Sprint(fe.Value()), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Encode renders the configuration as TOML
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

func tomlKey(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
