package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults match the layout of a stock OpenVPN host
const (
	DefaultStoreDir        = "/etc/openvpn/clients"
	DefaultProvisionScript = "~/server.sh"
	DefaultInterpreter     = "bash"
	DefaultTimeout         = 2 * time.Minute
	DefaultDateFormat      = "2006-01-02 15:04"
	DefaultAction          = "list"
	DefaultHistoryLimit    = 20
	DefaultWatchDebounceMS = 300
)

type Config struct {
	// Store
	StoreDir string `yaml:"store_dir"`

	// Provisioning
	ProvisionScript      string        `yaml:"provision_script"`
	ProvisionInterpreter string        `yaml:"provision_interpreter"`
	ProvisionTimeout     time.Duration `yaml:"provision_timeout"`
	TrustProvisionerExit bool          `yaml:"trust_provisioner_exit"`

	// Journal
	JournalEnabled bool `yaml:"journal_enabled"`
	HistoryLimit   int  `yaml:"history_limit"`

	// UI Settings
	DateFormat    string `yaml:"date_format"`
	ColorTheme    string `yaml:"color_theme"`
	DefaultAction string `yaml:"default_action"`

	// Performance
	WatchDebounceMS int `yaml:"watch_debounce_ms"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		StoreDir:             DefaultStoreDir,
		ProvisionScript:      DefaultProvisionScript,
		ProvisionInterpreter: DefaultInterpreter,
		ProvisionTimeout:     DefaultTimeout,
		TrustProvisionerExit: false,
		JournalEnabled:       true,
		HistoryLimit:         DefaultHistoryLimit,
		DateFormat:           DefaultDateFormat,
		ColorTheme:           "auto",
		DefaultAction:        DefaultAction,
		WatchDebounceMS:      DefaultWatchDebounceMS,
	}
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	// Start with default config
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config (not an error)
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// applyDefaults fills in essential values left empty by the file
func (c *Config) applyDefaults() {
	if c.StoreDir == "" {
		c.StoreDir = DefaultStoreDir
	}
	if c.ProvisionScript == "" {
		c.ProvisionScript = DefaultProvisionScript
	}
	if c.ProvisionTimeout == 0 {
		c.ProvisionTimeout = DefaultTimeout
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if c.DateFormat == "" {
		c.DateFormat = DefaultDateFormat
	}
	if c.ColorTheme == "" {
		c.ColorTheme = "auto"
	}
	if c.WatchDebounceMS <= 0 {
		c.WatchDebounceMS = DefaultWatchDebounceMS
	}
	if !isValidDefaultAction(c.DefaultAction) {
		c.DefaultAction = DefaultAction
	}
}

// Validate rejects settings the lifecycle manager cannot work with
func (c *Config) Validate() error {
	if !filepath.IsAbs(expandHome(c.StoreDir)) {
		return fmt.Errorf("store_dir must be an absolute path, got %q", c.StoreDir)
	}
	if script := expandHome(c.ProvisionScript); !strings.HasPrefix(script, "~") && !filepath.IsAbs(script) {
		return fmt.Errorf("provision_script must be an absolute path, got %q", c.ProvisionScript)
	}
	if c.ProvisionTimeout <= 0 {
		return fmt.Errorf("provision_timeout must be positive, got %s", c.ProvisionTimeout)
	}
	switch c.ColorTheme {
	case "auto", "dark", "light":
	default:
		return fmt.Errorf("color_theme must be one of auto, dark, light, got %q", c.ColorTheme)
	}
	return nil
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Set updates a single setting by its yaml key, parsing value as needed
func (c *Config) Set(key, value string) error {
	switch key {
	case "store_dir":
		c.StoreDir = value
	case "provision_script":
		c.ProvisionScript = value
	case "provision_interpreter":
		c.ProvisionInterpreter = value
	case "provision_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		c.ProvisionTimeout = d
	case "trust_provisioner_exit":
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		c.TrustProvisionerExit = b
	case "journal_enabled":
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		c.JournalEnabled = b
	case "history_limit":
		n, err := parsePositive(value)
		if err != nil {
			return err
		}
		c.HistoryLimit = n
	case "watch_debounce_ms":
		n, err := parsePositive(value)
		if err != nil {
			return err
		}
		c.WatchDebounceMS = n
	case "date_format":
		c.DateFormat = value
	case "color_theme":
		c.ColorTheme = value
	case "default_action":
		if !isValidDefaultAction(value) {
			return fmt.Errorf("invalid default_action %q (valid: %s)", value, strings.Join(validActions, ", "))
		}
		c.DefaultAction = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return c.Validate()
}

// ScriptPath returns the provisioning script path with ~ expanded
func (c *Config) ScriptPath() string {
	return expandHome(c.ProvisionScript)
}

// StorePath returns the store directory with ~ expanded
func (c *Config) StorePath() string {
	return expandHome(c.StoreDir)
}

// WatchDebounce returns the debounce window for the watch command
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}

var validActions = []string{"list", "dashboard", "watch"}

// isValidDefaultAction checks if the default action is valid
func isValidDefaultAction(action string) bool {
	for _, valid := range validActions {
		if action == valid {
			return true
		}
	}
	return false
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", value)
}

func parsePositive(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid positive integer %q", value)
	}
	return n, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
