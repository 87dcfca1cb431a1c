// Package config provides configuration loading for dayplan.
package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cpuguy83/dayplan/internal/calendar"
	"github.com/cpuguy83/dayplan/internal/store"
)

// Config is the root configuration structure.
type Config struct {
	// Store selects the backend: "outlook", "ics", or "caldav".
	Store string `yaml:"store"`

	// Timezone is an IANA zone name; empty uses the process-local zone.
	Timezone string `yaml:"timezone"`

	// OffsetCorrection is subtracted from raw store timestamps before
	// zone conversion, compensating for the store's timestamp-reporting
	// quirk. Negative means unset, in which case the outlook backend
	// defaults to nine hours and the others to zero.
	OffsetCorrection time.Duration `yaml:"offset_correction"`

	// RestrictLayout is the Go time layout for restriction-predicate
	// timestamps; it must match the store's locale exactly.
	RestrictLayout string `yaml:"restrict_layout"`

	ICS     ICSConfig    `yaml:"ics"`
	CalDAV  CalDAVConfig `yaml:"caldav"`
	Render  RenderConfig `yaml:"render"`
	Filters FilterConfig `yaml:"filters"`
}

// ICSConfig configures the ICS feed backend.
type ICSConfig struct {
	// Source is a filesystem path or http(s) URL.
	Source      string `yaml:"source"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	PasswordCmd string `yaml:"password_cmd,omitempty"`
}

// CalDAVConfig configures the CalDAV backend.
type CalDAVConfig struct {
	URL         string `yaml:"url"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	PasswordCmd string `yaml:"password_cmd,omitempty"`

	// Calendar is the display name of the calendar to read; empty picks
	// the first one the server lists.
	Calendar string `yaml:"calendar,omitempty"`
}

// RenderConfig configures the schedule output.
type RenderConfig struct {
	Title      string `yaml:"title"`
	ShowAllDay bool   `yaml:"show_all_day"`
}

// FilterConfig configures event include filtering.
type FilterConfig struct {
	Mode  string       `yaml:"mode"` // "or" or "and"
	Rules []FilterRule `yaml:"rules"`
}

// FilterRule defines a single filter rule.
// Use exactly one of: Contains, Exact, Prefix, Suffix, or Regex.
type FilterRule struct {
	Field           string `yaml:"field"`              // "subject", "location", "organizer", "category"
	Contains        string `yaml:"contains,omitempty"` // Substring match
	Exact           string `yaml:"exact,omitempty"`    // Exact string match
	Prefix          string `yaml:"prefix,omitempty"`   // Starts with
	Suffix          string `yaml:"suffix,omitempty"`   // Ends with
	Regex           string `yaml:"regex,omitempty"`    // Regular expression
	CaseInsensitive bool   `yaml:"case_insensitive"`
}

// Load reads configuration from the default location
// (~/.config/dayplan/config.yaml). A missing file yields the defaults.
func Load() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("get config dir: %w", err)
	}

	path := filepath.Join(configDir, "dayplan", "config.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := &Config{OffsetCorrection: -1}
		cfg.applyDefaults()
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	path = expandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	cfg.OffsetCorrection = -1
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.applyDefaults()
	cfg.ICS.Source = expandPath(cfg.ICS.Source)

	return &cfg, nil
}

// applyDefaults sets default values for unspecified config options.
func (c *Config) applyDefaults() {
	if c.Store == "" {
		if runtime.GOOS == "windows" {
			c.Store = "outlook"
		} else {
			c.Store = "ics"
		}
	}
	if c.OffsetCorrection < 0 {
		if c.Store == "outlook" {
			c.OffsetCorrection = calendar.DefaultOffsetCorrection
		} else {
			c.OffsetCorrection = 0
		}
	}
	if c.RestrictLayout == "" {
		c.RestrictLayout = store.DefaultRestrictLayout
	}
	if c.Render.Title == "" {
		c.Render.Title = "Schedule"
	}
	if c.Filters.Mode == "" {
		c.Filters.Mode = "or"
	}
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// GetPassword returns the ICS feed password, executing password_cmd if needed.
func (c *ICSConfig) GetPassword() (string, error) {
	return password(c.Password, c.PasswordCmd)
}

// GetPassword returns the CalDAV password, executing password_cmd if needed.
func (c *CalDAVConfig) GetPassword() (string, error) {
	return password(c.Password, c.PasswordCmd)
}

func password(literal, cmd string) (string, error) {
	if literal != "" {
		return literal, nil
	}
	if cmd == "" {
		return "", nil
	}

	out, err := exec.Command("sh", "-c", cmd).Output()
	if err != nil {
		return "", fmt.Errorf("execute password_cmd: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// UnmarshalYAML accepts the offset correction as a duration string
// ("9h", "0") or bare hour count.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Store            string       `yaml:"store"`
		Timezone         string       `yaml:"timezone"`
		OffsetCorrection *string      `yaml:"offset_correction"`
		RestrictLayout   string       `yaml:"restrict_layout"`
		ICS              ICSConfig    `yaml:"ics"`
		CalDAV           CalDAVConfig `yaml:"caldav"`
		Render           RenderConfig `yaml:"render"`
		Filters          FilterConfig `yaml:"filters"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	c.Store = raw.Store
	c.Timezone = raw.Timezone
	c.RestrictLayout = raw.RestrictLayout
	c.ICS = raw.ICS
	c.CalDAV = raw.CalDAV
	c.Render = raw.Render
	c.Filters = raw.Filters

	c.OffsetCorrection = -1
	if raw.OffsetCorrection != nil {
		d, err := parseOffset(*raw.OffsetCorrection)
		if err != nil {
			return fmt.Errorf("parse offset_correction: %w", err)
		}
		c.OffsetCorrection = d
	}
	return nil
}

// parseOffset parses "9h30m" style durations and bare hour counts ("9").
func parseOffset(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("offset must not be negative: %s", s)
		}
		return d, nil
	}

	hours, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if hours < 0 {
		return 0, fmt.Errorf("offset must not be negative: %s", s)
	}
	return time.Duration(hours) * time.Hour, nil
}
