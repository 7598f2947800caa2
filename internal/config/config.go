// Package config loads terminal settings from configs/config.yml, with
// BEDSIDE_* environment variables taking precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"bedside_terminal/internal/models"

	"github.com/spf13/viper"
)

const envPrefix = "BEDSIDE"

// DefaultPaths are searched for config.yml when Load gets none.
var DefaultPaths = []string{"configs", "."}

type Config struct {
	Log     LogConfig
	Stream  StreamConfig
	DB      DBConfig
	HTTP    HTTPConfig
	Session SessionConfig
	Notices NoticeConfig
	Seed    []models.MedicationSchedule
}

type LogConfig struct {
	Level    string
	Encoding string
}

// StreamConfig describes the event source connection.
type StreamConfig struct {
	Host          string
	Port          int
	RetryInterval time.Duration
	DialTimeout   time.Duration
	ReadBuffer    int
	MaxLineBytes  int
}

// Addr is host:port of the event source.
func (s StreamConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type DBConfig struct {
	Path string
}

type HTTPConfig struct {
	Port string
}

type SessionConfig struct {
	DefaultPatient  string
	DefaultEditTime string
	SwipeStep       time.Duration
}

type NoticeConfig struct {
	WarningDuration time.Duration
	SuccessDuration time.Duration
}

type seedEntry struct {
	Name      string   `mapstructure:"name"`
	Enabled   *bool    `mapstructure:"enabled"`
	DoseTimes []string `mapstructure:"dose_times"`
}

var defaultSeed = []map[string]any{
	{"name": "Paracetamol", "enabled": true, "dose_times": []string{"08:00", "20:00"}},
	{"name": "Amoxicillin", "enabled": true, "dose_times": []string{"08:00", "20:00"}},
	{"name": "Aspirin", "enabled": true, "dose_times": []string{"08:00", "20:00"}},
	{"name": "Metformin", "enabled": true, "dose_times": []string{"08:00", "20:00"}},
	{"name": "Lisinopril", "enabled": true, "dose_times": []string{"08:00", "20:00"}},
	{"name": "Atorvastatin", "enabled": true, "dose_times": []string{"08:00", "20:00"}},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")

	v.SetDefault("stream.host", "127.0.0.1")
	v.SetDefault("stream.port", 8765)
	v.SetDefault("stream.retry_interval", "2s")
	v.SetDefault("stream.dial_timeout", "5s")
	v.SetDefault("stream.read_buffer", 4096)
	v.SetDefault("stream.max_line_bytes", 64<<10)

	v.SetDefault("db.path", "bedside.db")
	v.SetDefault("http.port", "8080")

	v.SetDefault("session.default_patient", "Patient")
	v.SetDefault("session.default_edit_time", "08:00")
	v.SetDefault("session.swipe_step", "30m")

	v.SetDefault("notices.warning_duration", "5s")
	v.SetDefault("notices.success_duration", "3s")

	v.SetDefault("seed.schedules", defaultSeed)
}

// Load reads config.yml from the first of paths that has one (DefaultPaths
// when empty). A missing file is not an error; defaults and environment
// variables still apply.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = DefaultPaths
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Log: LogConfig{
			Level:    v.GetString("log.level"),
			Encoding: v.GetString("log.encoding"),
		},
		Stream: StreamConfig{
			Host:          v.GetString("stream.host"),
			Port:          v.GetInt("stream.port"),
			RetryInterval: v.GetDuration("stream.retry_interval"),
			DialTimeout:   v.GetDuration("stream.dial_timeout"),
			ReadBuffer:    v.GetInt("stream.read_buffer"),
			MaxLineBytes:  v.GetInt("stream.max_line_bytes"),
		},
		DB:   DBConfig{Path: v.GetString("db.path")},
		HTTP: HTTPConfig{Port: v.GetString("http.port")},
		Session: SessionConfig{
			DefaultPatient:  v.GetString("session.default_patient"),
			DefaultEditTime: v.GetString("session.default_edit_time"),
			SwipeStep:       v.GetDuration("session.swipe_step"),
		},
		Notices: NoticeConfig{
			WarningDuration: v.GetDuration("notices.warning_duration"),
			SuccessDuration: v.GetDuration("notices.success_duration"),
		},
	}

	var entries []seedEntry
	if err := v.UnmarshalKey("seed.schedules", &entries); err != nil {
		return nil, fmt.Errorf("decode seed.schedules: %w", err)
	}
	for _, e := range entries {
		s := models.MedicationSchedule{Name: strings.TrimSpace(e.Name), Enabled: e.Enabled == nil || *e.Enabled}
		for _, raw := range e.DoseTimes {
			t, err := models.ParseTimeOfDay(raw)
			if err != nil {
				return nil, fmt.Errorf("seed schedule %q: %w", e.Name, err)
			}
			s.DoseTimes = append(s.DoseTimes, t)
		}
		s.DoseTimes = models.SortTimes(s.DoseTimes)
		cfg.Seed = append(cfg.Seed, s)
	}
	return cfg, nil
}

// Validate checks that every setting the terminal relies on is usable.
func (c *Config) Validate() error {
	if c.Stream.Host == "" {
		return errors.New("stream.host cannot be empty")
	}
	if c.Stream.Port <= 0 || c.Stream.Port > 65535 {
		return fmt.Errorf("stream.port %d out of range", c.Stream.Port)
	}
	if c.Stream.RetryInterval <= 0 {
		return errors.New("stream.retry_interval must be > 0")
	}
	if c.Stream.DialTimeout <= 0 {
		return errors.New("stream.dial_timeout must be > 0")
	}
	if c.Stream.ReadBuffer <= 0 || c.Stream.MaxLineBytes <= 0 {
		return errors.New("stream.read_buffer and stream.max_line_bytes must be > 0")
	}
	if c.DB.Path == "" {
		return errors.New("db.path cannot be empty")
	}
	if c.HTTP.Port == "" {
		return errors.New("http.port cannot be empty")
	}
	if _, err := models.ParseTimeOfDay(c.Session.DefaultEditTime); err != nil {
		return fmt.Errorf("session.default_edit_time: %w", err)
	}
	if c.Session.SwipeStep <= 0 {
		return errors.New("session.swipe_step must be > 0")
	}
	if c.Notices.WarningDuration <= 0 || c.Notices.SuccessDuration <= 0 {
		return errors.New("notices durations must be > 0")
	}
	seen := make(map[string]bool, len(c.Seed))
	for _, s := range c.Seed {
		if s.Name == "" {
			return errors.New("seed.schedules: name cannot be empty")
		}
		if seen[s.Name] {
			return fmt.Errorf("seed.schedules: duplicate medication %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}
