package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up in the working directory
// and in the user config directory.
const FileName = "clipforward.toml"

// Backend names accepted in Config.Backends.
const (
	BackendAutomation = "automation"
	BackendNative     = "native"
)

// Duration wraps time.Duration so it can be written as "100ms" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// MarshalText renders the duration in Go syntax.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// TrayConfig controls the optional system tray icon.
type TrayConfig struct {
	Enabled bool `toml:"enabled"`
}

// Config holds the application configuration
type Config struct {
	Hotkey             string     `toml:"hotkey"`
	WindowTitlePattern string     `toml:"window_title_pattern"`
	Backends           []string   `toml:"backends"`
	PasteKeys          string     `toml:"paste_keys"`
	SubmitKeys         string     `toml:"submit_keys"`
	FocusDelay         Duration   `toml:"focus_delay"`
	SubmitDelay        Duration   `toml:"submit_delay"`
	TitleSampleSize    int        `toml:"title_sample_size"`
	LogLevel           string     `toml:"log_level"`
	Tray               TrayConfig `toml:"tray"`

	// Non-TOML fields (runtime state)
	path string
}

// Default returns the built-in configuration used when no file is present.
func Default() *Config {
	return &Config{
		Hotkey:             "ctrl+v",
		WindowTitlePattern: ".*ChatGPT.*",
		Backends:           []string{BackendAutomation, BackendNative},
		PasteKeys:          DefaultPasteKeys,
		SubmitKeys:         "enter",
		FocusDelay:         Duration{100 * time.Millisecond},
		SubmitDelay:        Duration{50 * time.Millisecond},
		TitleSampleSize:    10,
		LogLevel:           "info",
	}
}

// GetConfigPath returns the file the configuration was read from, or ""
// when the built-in defaults are in use.
func (c *Config) GetConfigPath() string {
	return c.path
}

// TitlePattern compiles WindowTitlePattern case-insensitively.
func (c *Config) TitlePattern() (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + c.WindowTitlePattern)
	if err != nil {
		return nil, fmt.Errorf("invalid window_title_pattern %q: %w", c.WindowTitlePattern, err)
	}
	return re, nil
}

// Validate checks values that cannot be fixed up silently.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Hotkey) == "" {
		errs = append(errs, errors.New("hotkey must not be empty"))
	}
	if strings.TrimSpace(c.WindowTitlePattern) == "" {
		errs = append(errs, errors.New("window_title_pattern must not be empty"))
	} else if _, err := c.TitlePattern(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.PasteKeys) == "" {
		errs = append(errs, errors.New("paste_keys must not be empty"))
	}
	if strings.TrimSpace(c.SubmitKeys) == "" {
		errs = append(errs, errors.New("submit_keys must not be empty"))
	}
	if len(c.Backends) == 0 {
		errs = append(errs, errors.New("backends must list at least one backend"))
	}
	for _, b := range c.Backends {
		switch b {
		case BackendAutomation, BackendNative:
		default:
			errs = append(errs, fmt.Errorf("unknown backend %q (want %q or %q)", b, BackendAutomation, BackendNative))
		}
	}
	if c.FocusDelay.Duration < 0 || c.SubmitDelay.Duration < 0 {
		errs = append(errs, errors.New("delays must not be negative"))
	}
	if c.TitleSampleSize < 0 {
		errs = append(errs, errors.New("title_sample_size must not be negative"))
	}

	return errors.Join(errs...)
}

// Path returns the configuration file to use: clipforward.toml in the working
// directory if it exists, otherwise the per-user location.
func Path() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(dir, "clipforward", FileName)
}

// Load reads configPath on top of Default. A missing file is not an error:
// the defaults are returned unchanged.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(configPath); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to stat config file '%s': %w", configPath, err)
	}

	md, err := toml.DecodeFile(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", configPath, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown keys in config file '%s': %s", configPath, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file '%s': %w", configPath, err)
	}

	cfg.path = configPath
	return cfg, nil
}

// WriteDefault creates configPath with the default configuration. An existing
// file is left untouched.
func WriteDefault(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("error checking config path '%s': %w", configPath, err)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory '%s': %w", dir, err)
		}
	}

	f, err := os.OpenFile(configPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create config file '%s': %w", configPath, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(Default()); err != nil {
		return fmt.Errorf("failed to write default config file '%s': %w", configPath, err)
	}
	return nil
}
