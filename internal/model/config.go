package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// UserConfig identifies whose database is opened.
type UserConfig struct {
	ID string `mapstructure:"id" yaml:"id"`
}

// StorageConfig locates the per-user databases.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
}

// IconConfig controls the app icon cache.
type IconConfig struct {
	CacheDir string `mapstructure:"cache_dir" yaml:"cache_dir"`
	Size     int    `mapstructure:"size" yaml:"size"`
}

// CaptureConfig tunes the capture pipeline.
type CaptureConfig struct {
	// MaxInFlight bounds concurrent capture tasks. Events arriving while
	// the bound is reached wait for a free slot.
	MaxInFlight int `mapstructure:"max_in_flight" yaml:"max_in_flight"`

	// Buffer is the size of the channel feeding captured notifications
	// to the UI.
	Buffer int `mapstructure:"buffer" yaml:"buffer"`
}

// DNDConfig holds the do-not-disturb settings.
type DNDConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Threshold string `mapstructure:"threshold" yaml:"threshold"`
}

// SpacesConfig holds space defaults.
type SpacesConfig struct {
	DefaultName string `mapstructure:"default_name" yaml:"default_name"`
}

// MailConfig configures the IMAP mailbox listener.
type MailConfig struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
	Host            string `mapstructure:"host" yaml:"host"`
	Port            string `mapstructure:"port" yaml:"port"`
	Username        string `mapstructure:"username" yaml:"username"`
	TLS             bool   `mapstructure:"tls" yaml:"tls"`
	Mailbox         string `mapstructure:"mailbox" yaml:"mailbox"`
	PollIntervalSec int    `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme   string `mapstructure:"theme" yaml:"theme"`
	GroupBy string `mapstructure:"group_by" yaml:"group_by"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	User    UserConfig    `mapstructure:"user" yaml:"user"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Icons   IconConfig    `mapstructure:"icons" yaml:"icons"`
	Capture CaptureConfig `mapstructure:"capture" yaml:"capture"`
	DND     DNDConfig     `mapstructure:"dnd" yaml:"dnd"`
	Spaces  SpacesConfig  `mapstructure:"spaces" yaml:"spaces"`
	Mail    MailConfig    `mapstructure:"mail" yaml:"mail"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// configDir returns ~/.config/toastcenter, or the working directory when
// the home directory cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "toastcenter")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/toastcenter/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// defaultUserID picks the OS user name so separate accounts on one machine
// get separate databases.
func defaultUserID() string {
	for _, key := range []string{"USER", "USERNAME"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return "default"
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dir := configDir()
	return &AppConfig{
		User:    UserConfig{ID: defaultUserID()},
		Storage: StorageConfig{DataDir: filepath.Join(dir, "data")},
		Icons: IconConfig{
			CacheDir: filepath.Join(dir, "icons"),
			Size:     64,
		},
		Capture: CaptureConfig{MaxInFlight: 8, Buffer: 64},
		DND:     DNDConfig{Enabled: false, Threshold: string(PriorityHigh)},
		Spaces:  SpacesConfig{DefaultName: "Work"},
		Mail: MailConfig{
			Port:            "993",
			TLS:             true,
			Mailbox:         "INBOX",
			PollIntervalSec: 120,
		},
		Display: DisplayConfig{Theme: "default", GroupBy: "app"},
		Log:     LogConfig{Level: "info"},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
// Environment variables prefixed with TOASTCENTER_ override file values.
func LoadConfig(path string) (*AppConfig, error) {
	def := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("toastcenter")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("user.id", def.User.ID)
	v.SetDefault("storage.data_dir", def.Storage.DataDir)
	v.SetDefault("icons.cache_dir", def.Icons.CacheDir)
	v.SetDefault("icons.size", def.Icons.Size)
	v.SetDefault("capture.max_in_flight", def.Capture.MaxInFlight)
	v.SetDefault("capture.buffer", def.Capture.Buffer)
	v.SetDefault("dnd.enabled", def.DND.Enabled)
	v.SetDefault("dnd.threshold", def.DND.Threshold)
	v.SetDefault("spaces.default_name", def.Spaces.DefaultName)
	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.host", "")
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.port", def.Mail.Port)
	v.SetDefault("mail.tls", def.Mail.TLS)
	v.SetDefault("mail.mailbox", def.Mail.Mailbox)
	v.SetDefault("mail.poll_interval_sec", def.Mail.PollIntervalSec)
	v.SetDefault("display.theme", def.Display.Theme)
	v.SetDefault("display.group_by", def.Display.GroupBy)
	v.SetDefault("log.level", def.Log.Level)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later in confusing ways.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.User.ID) == "" {
		return errors.New("user.id must not be empty")
	}
	if strings.ContainsAny(c.User.ID, `/\`) {
		return fmt.Errorf("user.id %q must not contain path separators", c.User.ID)
	}
	if _, err := ParsePriority(c.DND.Threshold); err != nil {
		return fmt.Errorf("dnd.threshold: %w", err)
	}
	if c.Icons.Size <= 0 {
		return fmt.Errorf("icons.size must be positive, got %d", c.Icons.Size)
	}
	if c.Capture.MaxInFlight <= 0 {
		return fmt.Errorf("capture.max_in_flight must be positive, got %d", c.Capture.MaxInFlight)
	}
	switch c.Display.GroupBy {
	case "app", "space":
	default:
		return fmt.Errorf("display.group_by must be app or space, got %q", c.Display.GroupBy)
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("user", cfg.User)
	v.Set("storage", cfg.Storage)
	v.Set("icons", cfg.Icons)
	v.Set("capture", cfg.Capture)
	v.Set("dnd", cfg.DND)
	v.Set("spaces", cfg.Spaces)
	v.Set("mail", cfg.Mail)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
