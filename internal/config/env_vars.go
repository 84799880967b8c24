package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	appNameKey        = "app_name"
	envKey            = "env"
	logLevelKey       = "log_level"
	backendURLKey     = "backend_url"
	sessionFileKey    = "session_file"
	portKey           = "port"
	jwtSecretKey      = "jwt_secret"
	tokenExpiryKey    = "token_expiry"
	masterUsernameKey = "master_username"
	masterPasswordKey = "master_password"
)

type settings struct {
	AppName        string        `mapstructure:"app_name"`
	Env            string        `mapstructure:"env"`
	LogLevel       string        `mapstructure:"log_level"`
	BackendURL     string        `mapstructure:"backend_url"`
	SessionFile    string        `mapstructure:"session_file"`
	Port           string        `mapstructure:"port"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	TokenExpiry    time.Duration `mapstructure:"token_expiry"`
	MasterUsername string        `mapstructure:"master_username"`
	MasterPassword string        `mapstructure:"master_password"`
}

func loadSettings(configPaths ...string) (settings, error) {
	v := viper.New()
	v.SetConfigName("finance")
	v.SetConfigType("yaml")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	v.AutomaticEnv()
	// The mobile build reads its backend from EXPO_PUBLIC_BACKEND_URL
	if err := v.BindEnv(backendURLKey, "BACKEND_URL", "EXPO_PUBLIC_BACKEND_URL"); err != nil {
		return settings{}, fmt.Errorf("bind backend url: %w", err)
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return settings{}, fmt.Errorf("load config file: %w", err)
		}
	}

	var s settings
	if err := v.Unmarshal(&s, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		)
	}); err != nil {
		return settings{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return s, nil
}

// LoadDotEnv copies the variables of each existing file into the process
// environment. Variables that are already set win; missing files are skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("stat %s: %w", f, err)
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(appNameKey, "Finance Client")
	v.SetDefault(envKey, "DEV")
	v.SetDefault(logLevelKey, "info")
	v.SetDefault(backendURLKey, "http://localhost:8000")
	v.SetDefault(sessionFileKey, defaultSessionFile())
	v.SetDefault(portKey, "8000")
	v.SetDefault(jwtSecretKey, "change-me-in-production")
	v.SetDefault(tokenExpiryKey, "24h")
	v.SetDefault(masterUsernameKey, "")
	v.SetDefault(masterPasswordKey, "")
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "session.json"
	}
	return filepath.Join(home, ".finance-client", "session.json")
}

func (s settings) GetAppName() string {
	return s.AppName
}

func (s settings) GetEnv() string {
	return strings.ToUpper(s.Env)
}

func (s settings) GetLogLevel() string {
	return s.LogLevel
}

// GetBackendURL returns the API base URL without a trailing slash.
func (s settings) GetBackendURL() string {
	return strings.TrimRight(s.BackendURL, "/")
}

func (s settings) GetSessionFile() string {
	return s.SessionFile
}

func (s settings) GetPort() string {
	port := s.Port
	if port != "" && port[0] != ':' {
		port = ":" + port
	}
	return port
}

func (s settings) GetJWTSecret() string {
	return s.JWTSecret
}

func (s settings) GetTokenExpiry() time.Duration {
	return s.TokenExpiry
}

func (s settings) GetMasterUsername() string {
	return s.MasterUsername
}

func (s settings) GetMasterPassword() string {
	return s.MasterPassword
}
