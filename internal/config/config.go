package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".config/pdfmcp"
	envPrefix  = "PDFMCP"
)

const (
	KeyPort              = "port"
	KeyAPIBaseURL        = "api.base_url"
	KeyAPITimeout        = "api.timeout"
	KeyPollMaxAttempts   = "poll.max_attempts"
	KeyPollInitialDelay  = "poll.initial_delay"
	KeyPollMaxDelay      = "poll.max_delay"
	KeyPollFactor        = "poll.factor"
	KeyPollJitter        = "poll.jitter"
	KeySessionPendingTTL = "session.pending_ttl"
	KeyCORSOrigins       = "cors.allowed_origins"
	KeyLogLevel          = "log.level"
	KeyLogFormat         = "log.format"
)

type Config struct {
	Port    int
	API     APIConfig
	Poll    PollConfig
	Session SessionConfig
	CORS    CORSConfig
	Log     LogConfig

	// File is the config file that was read, empty when none was found.
	File string
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type PollConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Factor       float64
	Jitter       float64
}

type SessionConfig struct {
	PendingTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

type LoadOptions struct {
	// ConfigFile overrides the default ~/.config/pdfmcp/config.toml lookup.
	ConfigFile string
	HomeDir    string
}

func SetDefaults(cfg *viper.Viper) {
	cfg.SetDefault(KeyPort, 3000)
	cfg.SetDefault(KeyAPIBaseURL, "https://api.pdfnoodle.com/v1/")
	cfg.SetDefault(KeyAPITimeout, 60*time.Second)
	cfg.SetDefault(KeyPollMaxAttempts, 20)
	cfg.SetDefault(KeyPollInitialDelay, 2*time.Second)
	cfg.SetDefault(KeyPollMaxDelay, 10*time.Second)
	cfg.SetDefault(KeyPollFactor, 1.5)
	cfg.SetDefault(KeyPollJitter, 0.0)
	cfg.SetDefault(KeySessionPendingTTL, 30*time.Second)
	cfg.SetDefault(KeyCORSOrigins, []string{"*"})
	cfg.SetDefault(KeyLogLevel, "info")
	cfg.SetDefault(KeyLogFormat, "text")
}

// Load resolves the configuration from defaults, the TOML file, the
// environment, and any flags already bound to cfg, in increasing priority.
func Load(cfg *viper.Viper, opts LoadOptions) (Config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	SetDefaults(cfg)
	if err := bindEnv(cfg); err != nil {
		return Config{}, err
	}

	homeDir, err := resolveHomeDir(opts)
	if err != nil {
		return Config{}, err
	}

	file, err := readConfigFile(cfg, opts.ConfigFile, homeDir)
	if err != nil {
		return Config{}, err
	}

	loaded := Config{
		Port: cfg.GetInt(KeyPort),
		API: APIConfig{
			BaseURL: strings.TrimSpace(cfg.GetString(KeyAPIBaseURL)),
			Timeout: cfg.GetDuration(KeyAPITimeout),
		},
		Poll: PollConfig{
			MaxAttempts:  cfg.GetInt(KeyPollMaxAttempts),
			InitialDelay: cfg.GetDuration(KeyPollInitialDelay),
			MaxDelay:     cfg.GetDuration(KeyPollMaxDelay),
			Factor:       cfg.GetFloat64(KeyPollFactor),
			Jitter:       cfg.GetFloat64(KeyPollJitter),
		},
		Session: SessionConfig{
			PendingTTL: cfg.GetDuration(KeySessionPendingTTL),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(cfg.GetStringSlice(KeyCORSOrigins)),
		},
		Log: LogConfig{
			Level:  strings.ToLower(strings.TrimSpace(cfg.GetString(KeyLogLevel))),
			Format: strings.ToLower(strings.TrimSpace(cfg.GetString(KeyLogFormat))),
		},
		File: file,
	}

	if err := loaded.Validate(); err != nil {
		return Config{}, err
	}

	return loaded, nil
}

func bindEnv(cfg *viper.Viper) error {
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	if err := cfg.BindEnv(KeyPort, envPrefix+"_PORT", "PORT"); err != nil {
		return fmt.Errorf("bind port env: %w", err)
	}
	if err := cfg.BindEnv(KeyAPIBaseURL, envPrefix+"_API_BASE_URL", "PDF_API_BASE_URL"); err != nil {
		return fmt.Errorf("bind api base url env: %w", err)
	}
	return nil
}

func resolveHomeDir(opts LoadOptions) (string, error) {
	if opts.HomeDir != "" {
		return opts.HomeDir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return homeDir, nil
}

func readConfigFile(cfg *viper.Viper, configFile, homeDir string) (string, error) {
	cfg.SetConfigType(configType)

	if configFile != "" {
		cfg.SetConfigFile(configFile)
		if err := cfg.ReadInConfig(); err != nil {
			return "", fmt.Errorf("read config file %s: %w", configFile, err)
		}
		return cfg.ConfigFileUsed(), nil
	}

	cfg.SetConfigName(configName)
	cfg.AddConfigPath(filepath.Join(homeDir, configDir))

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if errors.As(err, &configNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("read config file: %w", err)
	}

	return cfg.ConfigFileUsed(), nil
}

func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", KeyPort, c.Port)
	}

	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("parse %s: %w", KeyAPIBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" || parsed.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) url, got %q", KeyAPIBaseURL, c.API.BaseURL)
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("%s must be positive", KeyAPITimeout)
	}
	if c.Poll.MaxAttempts < 1 {
		return fmt.Errorf("%s must be at least 1", KeyPollMaxAttempts)
	}
	if c.Poll.InitialDelay <= 0 || c.Poll.MaxDelay <= 0 {
		return fmt.Errorf("%s and %s must be positive", KeyPollInitialDelay, KeyPollMaxDelay)
	}
	if c.Poll.Factor < 1 {
		return fmt.Errorf("%s must be at least 1, got %v", KeyPollFactor, c.Poll.Factor)
	}
	if c.Poll.Jitter < 0 || c.Poll.Jitter >= 1 {
		return fmt.Errorf("%s must be in [0, 1), got %v", KeyPollJitter, c.Poll.Jitter)
	}
	if c.Session.PendingTTL <= 0 {
		return fmt.Errorf("%s must be positive", KeySessionPendingTTL)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%s must be text or json, got %q", KeyLogFormat, c.Log.Format)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
