package config

import "time"

type Config interface {
	EnvConfig
	ClientConfig
	FakeBackendConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

// ClientConfig is what the screens and the request gateway need.
type ClientConfig interface {
	GetBackendURL() string
	GetSessionFile() string
}

// FakeBackendConfig configures the in-memory backend used for local runs.
type FakeBackendConfig interface {
	GetPort() string
	GetJWTSecret() string
	GetTokenExpiry() time.Duration
	GetMasterUsername() string
	GetMasterPassword() string
}

type mainConfig struct {
	settings
}

var _ Config = mainConfig{}

// New loads the configuration from the working directory, the user's
// ~/.finance-client directory and the environment. A .env file in the working
// directory is applied to the environment first.
func New() (Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	return Load(".", "$HOME/.finance-client")
}

// Load reads an optional finance.yaml from the given directories, then
// applies environment overrides on top of the defaults.
func Load(configPaths ...string) (Config, error) {
	s, err := loadSettings(configPaths...)
	if err != nil {
		return nil, err
	}
	return mainConfig{settings: s}, nil
}
