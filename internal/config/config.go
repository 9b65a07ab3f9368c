package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix                = "MARGINALIA"
	defaultBackendURL        = "http://127.0.0.1:8000"
	defaultLogLevel          = "info"
	defaultSessionCookieName = "sessionid"
	defaultHeatmapPath       = "heatmap.png"
)

// AppConfig captures runtime configuration for the editor CLI.
type AppConfig struct {
	BackendURL        string
	SessionCookie     string
	SessionCookieName string
	LogLevel          string
	HeatmapPath       string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("backend.url", defaultBackendURL)
	configViper.SetDefault("session.cookie", "")
	configViper.SetDefault("session.cookie_name", defaultSessionCookieName)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("heatmap.path", defaultHeatmapPath)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		BackendURL:        configViper.GetString("backend.url"),
		SessionCookie:     configViper.GetString("session.cookie"),
		SessionCookieName: configViper.GetString("session.cookie_name"),
		LogLevel:          configViper.GetString("log.level"),
		HeatmapPath:       configViper.GetString("heatmap.path"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.BackendURL) == "" {
		return fmt.Errorf("backend.url is required")
	}
	if strings.TrimSpace(c.HeatmapPath) == "" {
		return fmt.Errorf("heatmap.path is required")
	}
	return nil
}
