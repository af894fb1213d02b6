package config

import (
	"fmt"
	"time"
)

// AppConfig is the root configuration container, loaded once at startup.
type AppConfig struct {
	Name        string      `json:"name" yaml:"name"`
	Debug       bool        `json:"debug" yaml:"debug"`
	Server      Server      `json:"server" yaml:"server"`
	Auth        Auth        `json:"auth" yaml:"auth"`
	Persistence Persistence `json:"persistence" yaml:"persistence"`
}

func (a AppConfig) Validate() error {
	if a.Auth.SigningKey == "" {
		return fmt.Errorf("config: auth.signing_key is required")
	}

	if a.Server.Address == "" {
		return fmt.Errorf("config: server.address is required")
	}

	return nil
}

// Server holds the HTTP listener options.
type Server struct {
	Address string `json:"address" yaml:"address"`
}

// Auth holds the token signing options. TokenExpiration is in hours.
type Auth struct {
	SigningKey      string   `json:"signing_key" yaml:"signing_key"`
	TokenExpiration int      `json:"token_expiration" yaml:"token_expiration"`
	Issuer          string   `json:"issuer" yaml:"issuer"`
	Audience        []string `json:"audience" yaml:"audience"`
	ContextKey      string   `json:"context_key" yaml:"context_key"`
}

// Persistence holds the database options.
type Persistence struct {
	Driver                string `json:"driver" yaml:"driver"`
	DSN                   string `json:"dsn" yaml:"dsn"`
	Server                string `json:"server" yaml:"server"`
	Database              string `json:"database" yaml:"database"`
	Username              string `json:"username" yaml:"username"`
	Password              string `json:"password" yaml:"password"`
	SSLMode               string `json:"ssl_mode" yaml:"ssl_mode"`
	Debug                 bool   `json:"debug" yaml:"debug"`
	PingTimeoutExpression string `json:"ping_timeout" yaml:"ping_timeout"`
}

func (p Persistence) GetPingTimeout() time.Duration {
	if p.PingTimeoutExpression == "" {
		return 5 * time.Second
	}

	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", p.PingTimeoutExpression),
		)
	}
	return dur
}
