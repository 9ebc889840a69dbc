package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/telekom/doc-reminder/pkg/document"
)

const (
	DefaultConfigPath = "./config.yaml"
	DefaultSMTPHost   = "smtp.gmail.com"
	DefaultSMTPPort   = 587
	DefaultSenderName = "Document Reminder"

	defaultDialTimeout = 30 * time.Second
)

// Environment variables recognised by ApplyEnv.
const (
	EnvSenderAddress = "EMAIL_ADDRESS"
	EnvSenderSecret  = "EMAIL_PASSWORD"
	EnvSMTPHost      = "DOCREMINDER_SMTP_HOST"
	EnvSMTPPort      = "DOCREMINDER_SMTP_PORT"
	EnvStorePath     = "DOCREMINDER_STORE"
	EnvMetricsFile   = "DOCREMINDER_METRICS_FILE"
	EnvDebug         = "DOCREMINDER_DEBUG"
	EnvConfigPath    = "DOCREMINDER_CONFIG"
)

type Mail struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	SenderAddress string `yaml:"senderAddress"`
	SenderName    string `yaml:"senderName"`
	// Username defaults to SenderAddress.
	Username           string `yaml:"username"`
	Password           string `yaml:"password"`
	InsecureSkipVerify bool   `yaml:"insecureSkipVerify"`
	// DialTimeout bounds the whole SMTP exchange (e.g. "30s").
	DialTimeout string `yaml:"dialTimeout"`
	// SendInterval is the minimum pause between two relay connections
	// (e.g. "2s"). Empty means no pacing.
	SendInterval string `yaml:"sendInterval"`
}

type Store struct {
	Path string `yaml:"path"`
}

type Metrics struct {
	// TextfilePath, when set, receives the check metrics in Prometheus text
	// format after every check (node-exporter textfile collector).
	TextfilePath string `yaml:"textfilePath"`
}

type Config struct {
	Mail    Mail    `yaml:"mail"`
	Store   Store   `yaml:"store"`
	Metrics Metrics `yaml:"metrics"`
	Debug   bool    `yaml:"debug"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Mail: Mail{
			Host:       DefaultSMTPHost,
			Port:       DefaultSMTPPort,
			SenderName: DefaultSenderName,
		},
		Store: Store{Path: document.DefaultPath},
	}
}

// Load builds the configuration from defaults, the YAML file, a .env file in
// the working directory and the environment, in that order of precedence.
// If configPath is empty the path is taken from DOCREMINDER_CONFIG or
// defaults to "./config.yaml"; only an explicitly requested file must exist.
func Load(configPath ...string) (Config, error) {
	cfg := Default()

	path := ""
	explicit := false
	if len(configPath) > 0 && configPath[0] != "" {
		path, explicit = configPath[0], true
	} else if env := os.Getenv(EnvConfigPath); env != "" {
		path, explicit = env, true
	} else {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return cfg, fmt.Errorf("error unmarshaling YAML %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("trying to open config file %s: %w", path, err)
	}

	// A missing .env is the normal case outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// ApplyEnv overrides fields with any environment variables that are set.
func (c *Config) ApplyEnv() error {
	c.Mail.SenderAddress = getEnvString(EnvSenderAddress, c.Mail.SenderAddress)
	c.Mail.Password = getEnvString(EnvSenderSecret, c.Mail.Password)
	c.Mail.Host = getEnvString(EnvSMTPHost, c.Mail.Host)
	if v, ok := os.LookupEnv(EnvSMTPPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvSMTPPort, v, err)
		}
		c.Mail.Port = port
	}
	c.Store.Path = getEnvString(EnvStorePath, c.Store.Path)
	c.Metrics.TextfilePath = getEnvString(EnvMetricsFile, c.Metrics.TextfilePath)
	c.Debug = getEnvBool(EnvDebug, c.Debug)
	return nil
}

func (c *Config) applyDefaults() {
	if c.Mail.Host == "" {
		c.Mail.Host = DefaultSMTPHost
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = DefaultSMTPPort
	}
	if c.Mail.SenderName == "" {
		c.Mail.SenderName = DefaultSenderName
	}
	if c.Store.Path == "" {
		c.Store.Path = document.DefaultPath
	}
}

// Validate reports the settings a reminder run cannot work without. A missing
// credential is not one of them: every send fails on its own instead.
func (m Mail) Validate() error {
	var missing []string
	if m.Host == "" {
		missing = append(missing, "mail host")
	}
	if m.Port <= 0 || m.Port > 65535 {
		missing = append(missing, "mail port")
	}
	if m.SenderAddress == "" {
		missing = append(missing, "sender address ("+EnvSenderAddress+")")
	}
	if len(missing) > 0 {
		return fmt.Errorf("incomplete mail configuration: missing %s", strings.Join(missing, ", "))
	}
	if _, err := m.Timeout(); err != nil {
		return err
	}
	if _, err := m.Interval(); err != nil {
		return err
	}
	return nil
}

// HasCredential reports whether a sender credential is set.
func (m Mail) HasCredential() bool {
	return m.Password != ""
}

// User returns the SMTP login name.
func (m Mail) User() string {
	if m.Username != "" {
		return m.Username
	}
	return m.SenderAddress
}

// Timeout parses DialTimeout, falling back to 30s when unset.
func (m Mail) Timeout() (time.Duration, error) {
	if m.DialTimeout == "" {
		return defaultDialTimeout, nil
	}
	d, err := time.ParseDuration(m.DialTimeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid mail dialTimeout %q", m.DialTimeout)
	}
	return d, nil
}

// Interval parses SendInterval. Zero means sends are not paced.
func (m Mail) Interval() (time.Duration, error) {
	if m.SendInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(m.SendInterval)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid mail sendInterval %q", m.SendInterval)
	}
	return d, nil
}

// getEnvString returns the value of an environment variable or defaultVal if not set.
func getEnvString(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvBool returns the value of an environment variable as a bool, or the provided default if not set.
// Valid true values are "true", "1", "yes" (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}
