// Package cliconfig loads application settings from defaults, an optional
// YAML file, TABATA_* environment variables and command line flags, in
// increasing order of precedence.
package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	AppName   = "tabata"
	EnvPrefix = "TABATA"
)

type Config struct {
	WorkoutsFile string         `mapstructure:"workouts_file"`
	StateDir     string         `mapstructure:"state_dir"`
	Log          LogConfig      `mapstructure:"log"`
	Audio        AudioConfig    `mapstructure:"audio"`
	WakeLock     WakeLockConfig `mapstructure:"wakelock"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type AudioConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	SampleRate int  `mapstructure:"sample_rate"`
}

type WakeLockConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Flag names understood by BindFlags and ApplyFlags
const (
	FlagConfig     = "config"
	FlagWorkouts   = "workouts"
	FlagLogFile    = "log-file"
	FlagNoAudio    = "no-audio"
	FlagNoWakeLock = "no-wakelock"
)

// DefaultConfigDir returns $XDG_CONFIG_HOME/tabata or its platform equivalent.
func DefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(dir, AppName)
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("workouts_file", "")
	v.SetDefault("state_dir", DefaultConfigDir())
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 5)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.sample_rate", 44100)
	v.SetDefault("wakelock.enabled", true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// RegisterFlags adds the shared flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagConfig, "", "config file (default "+filepath.Join(DefaultConfigDir(), "config.yaml")+")")
	fs.String(FlagWorkouts, "", "workouts file (default <state dir>/workouts.yaml)")
	fs.String(FlagLogFile, "", "log file (default <state dir>/tabata.log)")
	fs.Bool(FlagNoAudio, false, "disable audible cues")
	fs.Bool(FlagNoWakeLock, false, "let the display sleep during workouts")
}

// BindFlags binds the value flags registered by RegisterFlags to their keys.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	bindings := map[string]string{
		"workouts_file": FlagWorkouts,
		"log.file":      FlagLogFile,
	}
	for key, name := range bindings {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Load reads the config file and unmarshals every source into a Config.
// An explicit path must exist; the default location is optional.
func Load(v *viper.Viper, path string) (Config, error) {
	var cfg Config

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyFlags applies the negated boolean flags, which only ever disable features.
func ApplyFlags(cfg *Config, fs *pflag.FlagSet) {
	changed := map[string]bool{}
	fs.Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if changed[FlagNoAudio] {
		if off, err := fs.GetBool(FlagNoAudio); err == nil && off {
			cfg.Audio.Enabled = false
		}
	}
	if changed[FlagNoWakeLock] {
		if off, err := fs.GetBool(FlagNoWakeLock); err == nil && off {
			cfg.WakeLock.Enabled = false
		}
	}
}

// Validate checks ranges and fills paths derived from StateDir.
func (c *Config) Validate() error {
	if c.StateDir == "" {
		return errors.New("state_dir must not be empty")
	}
	if c.WorkoutsFile == "" {
		c.WorkoutsFile = filepath.Join(c.StateDir, "workouts.yaml")
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(c.StateDir, AppName+".log")
	}
	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be positive, got %d", c.Log.MaxSizeMB)
	}
	if c.Log.MaxBackups < 0 {
		return fmt.Errorf("log.max_backups must not be negative, got %d", c.Log.MaxBackups)
	}
	if c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log.max_age_days must not be negative, got %d", c.Log.MaxAgeDays)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	return nil
}
