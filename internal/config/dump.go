package config

import (
	"fmt"

	toml "github.com/pelletier/go-toml/v2"
)

type fileSchema struct {
	Port    int           `toml:"port,omitempty"`
	API     apiSchema     `toml:"api,omitempty"`
	Poll    pollSchema    `toml:"poll,omitempty"`
	Session sessionSchema `toml:"session,omitempty"`
	CORS    corsSchema    `toml:"cors,omitempty"`
	Log     logSchema     `toml:"log,omitempty"`
}

type apiSchema struct {
	BaseURL string `toml:"base_url,omitempty"`
	Timeout string `toml:"timeout,omitempty"`
}

type pollSchema struct {
	MaxAttempts  int     `toml:"max_attempts,omitempty"`
	InitialDelay string  `toml:"initial_delay,omitempty"`
	MaxDelay     string  `toml:"max_delay,omitempty"`
	Factor       float64 `toml:"factor,omitempty"`
	Jitter       float64 `toml:"jitter,omitempty"`
}

type sessionSchema struct {
	PendingTTL string `toml:"pending_ttl,omitempty"`
}

type corsSchema struct {
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
}

type logSchema struct {
	Level  string `toml:"level,omitempty"`
	Format string `toml:"format,omitempty"`
}

// EncodeTOML renders c in the config file format, so the output can be
// saved as config.toml and read back unchanged.
func (c Config) EncodeTOML() ([]byte, error) {
	encoded, err := toml.Marshal(fileSchema{
		Port: c.Port,
		API: apiSchema{
			BaseURL: c.API.BaseURL,
			Timeout: c.API.Timeout.String(),
		},
		Poll: pollSchema{
			MaxAttempts:  c.Poll.MaxAttempts,
			InitialDelay: c.Poll.InitialDelay.String(),
			MaxDelay:     c.Poll.MaxDelay.String(),
			Factor:       c.Poll.Factor,
			Jitter:       c.Poll.Jitter,
		},
		Session: sessionSchema{PendingTTL: c.Session.PendingTTL.String()},
		CORS:    corsSchema{AllowedOrigins: c.CORS.AllowedOrigins},
		Log:     logSchema{Level: c.Log.Level, Format: c.Log.Format},
	})
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return encoded, nil
}
