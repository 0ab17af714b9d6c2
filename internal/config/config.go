// Package config loads cadence settings from YAML and CADENCE_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tgienger/cadence/internal/db"
	"github.com/tgienger/cadence/internal/lifecycle"
	"github.com/tgienger/cadence/internal/models"
	"github.com/tgienger/cadence/internal/recurrence"
	"github.com/tgienger/cadence/internal/ui/styles"
)

// Config represents the full cadence configuration
type Config struct {
	// Database is the SQLite file. Empty means the XDG data directory.
	Database string `yaml:"database" mapstructure:"database"`

	// Actor is recorded as CompletedBy / CreatedBy
	Actor string `yaml:"actor" mapstructure:"actor"`

	// Theme names the TUI color theme
	Theme string `yaml:"theme" mapstructure:"theme"`

	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Statuses   StatusesConfig   `yaml:"statuses" mapstructure:"statuses"`
	Recurrence RecurrenceConfig `yaml:"recurrence" mapstructure:"recurrence"`
	Agenda     AgendaConfig     `yaml:"agenda" mapstructure:"agenda"`
}

// LogConfig configures the slog logger
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	// File receives log output. Empty means stderr for commands and
	// cadence.log next to the database for the TUI.
	File string `yaml:"file" mapstructure:"file"`
}

// StatusConfig is one entry of the status catalog
type StatusConfig struct {
	ID       string `yaml:"id" mapstructure:"id"`
	Label    string `yaml:"label" mapstructure:"label"`
	Terminal bool   `yaml:"terminal,omitempty" mapstructure:"terminal"`
}

// StatusesConfig lists statuses in display order
type StatusesConfig struct {
	Initial string         `yaml:"initial" mapstructure:"initial"`
	List    []StatusConfig `yaml:"list" mapstructure:"list"`
}

// RecurrenceConfig selects scheduling behavior
type RecurrenceConfig struct {
	WeeklyByWeekDays    bool `yaml:"weekly_by_weekdays" mapstructure:"weekly_by_weekdays"`
	BusinessDayInterval bool `yaml:"business_day_interval" mapstructure:"business_day_interval"`
}

// AgendaConfig configures the agenda digest
type AgendaConfig struct {
	// HorizonDays is how far ahead "upcoming" looks
	HorizonDays int `yaml:"horizon_days" mapstructure:"horizon_days"`
	// Schedule is the cron expression used by agenda --watch
	Schedule string `yaml:"schedule" mapstructure:"schedule"`
}

// Default returns the default configuration
func Default() *Config {
	statuses := lifecycle.DefaultStatuses()
	list := make([]StatusConfig, 0, len(statuses.All()))
	for _, d := range statuses.All() {
		list = append(list, StatusConfig{ID: string(d.ID), Label: d.Label, Terminal: d.Terminal})
	}

	return &Config{
		Actor: defaultActor(),
		Theme: styles.DefaultTheme,
		Log: LogConfig{
			Level: "info",
		},
		Statuses: StatusesConfig{
			Initial: string(statuses.Initial()),
			List:    list,
		},
		Recurrence: RecurrenceConfig{
			WeeklyByWeekDays: true,
		},
		Agenda: AgendaConfig{
			HorizonDays: 7,
			Schedule:    "0 8 * * *",
		},
	}
}

func defaultActor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "me"
}

// Path returns the config file location under the XDG config directory
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "cadence", "config.yaml")
}

// Load reads path over the defaults. A missing file is not an error.
// CADENCE_* environment variables override scalar settings, e.g.
// CADENCE_ACTOR or CADENCE_LOG_LEVEL.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CADENCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Env lookups only happen for keys viper knows about.
	v.SetDefault("database", cfg.Database)
	v.SetDefault("actor", cfg.Actor)
	v.SetDefault("theme", cfg.Theme)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("recurrence.weekly_by_weekdays", cfg.Recurrence.WeeklyByWeekDays)
	v.SetDefault("recurrence.business_day_interval", cfg.Recurrence.BusinessDayInterval)
	v.SetDefault("agenda.horizon_days", cfg.Agenda.HorizonDays)
	v.SetDefault("agenda.schedule", cfg.Agenda.Schedule)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	// A configured list replaces the default one instead of merging into it.
	if v.IsSet("statuses.list") {
		cfg.Statuses.List = nil
		if !v.IsSet("statuses.initial") {
			cfg.Statuses.Initial = ""
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if _, err := cfg.StatusSet(); err != nil {
		return nil, err
	}
	if _, ok := styles.Lookup(cfg.Theme); !ok {
		return nil, fmt.Errorf("unknown theme %q (have %s)", cfg.Theme, strings.Join(styles.ThemeNames(), ", "))
	}
	return cfg, nil
}

// WriteDefault writes the default configuration to path. An existing file
// is kept unless overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, os.ErrExist)
		}
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	header := "# cadence configuration\n# Environment variables CADENCE_<SECTION>_<KEY> override these values.\n"
	return os.WriteFile(path, append([]byte(header), data...), 0644)
}

// Encode renders cfg as YAML
func (c *Config) Encode() ([]byte, error) {
	return yaml.Marshal(c)
}

// StatusSet builds the status catalog from the configured list
func (c *Config) StatusSet() (lifecycle.StatusSet, error) {
	if len(c.Statuses.List) == 0 {
		return lifecycle.DefaultStatuses(), nil
	}
	defs := make([]lifecycle.StatusDef, 0, len(c.Statuses.List))
	for _, s := range c.Statuses.List {
		defs = append(defs, lifecycle.StatusDef{
			ID:       models.Status(strings.TrimSpace(s.ID)),
			Label:    s.Label,
			Terminal: s.Terminal,
		})
	}
	initial := models.Status(c.Statuses.Initial)
	if initial == "" {
		initial = defs[0].ID
	}
	return lifecycle.NewStatusSet(defs, initial)
}

// Scheduler returns the recurrence scheduler configured by c
func (c *Config) Scheduler() recurrence.Scheduler {
	return recurrence.Scheduler{
		WeeklyByWeekDays:    c.Recurrence.WeeklyByWeekDays,
		BusinessDayInterval: c.Recurrence.BusinessDayInterval,
	}
}

// DatabasePath resolves the database file, falling back to the XDG data dir
func (c *Config) DatabasePath() (string, error) {
	if c.Database != "" {
		return c.Database, nil
	}
	return db.DefaultPath()
}
