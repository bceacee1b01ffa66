// Package cliconfig loads the unleash-eval command's settings from environment variables and an
// optional .env file.
package cliconfig

import (
	"fmt"
	"net/url"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/spf13/viper"

	unleash "github.com/toggleworks/unleash-client-go"
	"github.com/toggleworks/unleash-client-go/unleashfile"
	"github.com/toggleworks/unleash-client-go/unleashhttp"
)

// Environment variable names.
const (
	KeyURL             = "UNLEASH_URL"
	KeyAppName         = "UNLEASH_APP_NAME"
	KeyInstanceID      = "UNLEASH_INSTANCE_ID"
	KeyEnvironment     = "UNLEASH_ENVIRONMENT"
	KeyAPIToken        = "UNLEASH_API_TOKEN" //nolint:gosec // name, not a credential
	KeyRefreshInterval = "UNLEASH_REFRESH_INTERVAL"
	KeyBackupFile      = "UNLEASH_BACKUP_FILE"
	KeyBootstrapFile   = "UNLEASH_BOOTSTRAP_FILE"
	KeyProject         = "UNLEASH_PROJECT"
	KeyProxyURL        = "UNLEASH_PROXY_URL"
	KeyProxyUser       = "UNLEASH_PROXY_USER"
	KeyProxyPassword   = "UNLEASH_PROXY_PASSWORD" //nolint:gosec // name, not a credential
	KeyProxyDomain     = "UNLEASH_PROXY_DOMAIN"
)

// Settings are the values read from the environment.
type Settings struct {
	URL             string
	AppName         string
	InstanceID      string
	Environment     string
	APIToken        string
	RefreshInterval time.Duration
	BackupFile      string
	BootstrapFile   string
	Project         string
	ProxyURL        string
	ProxyUser       string
	ProxyPassword   string
	ProxyDomain     string
}

// ValidationError describes a setting that cannot be used.
type ValidationError struct {
	Key     string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid setting %s: %s", e.Key, e.Message)
}

// Load reads settings from v. If envFile is not empty it is read first; a missing file is not an
// error. Environment variables take precedence over the file.
func Load(v *viper.Viper, envFile string) (Settings, error) {
	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		_ = v.ReadInConfig()
	}
	v.AutomaticEnv()
	v.SetDefault(KeyAppName, "unleash-eval")
	v.SetDefault(KeyRefreshInterval, unleash.DefaultRefreshInterval)

	s := Settings{
		URL:             v.GetString(KeyURL),
		AppName:         v.GetString(KeyAppName),
		InstanceID:      v.GetString(KeyInstanceID),
		Environment:     v.GetString(KeyEnvironment),
		APIToken:        v.GetString(KeyAPIToken),
		RefreshInterval: v.GetDuration(KeyRefreshInterval),
		BackupFile:      v.GetString(KeyBackupFile),
		BootstrapFile:   v.GetString(KeyBootstrapFile),
		Project:         v.GetString(KeyProject),
		ProxyURL:        v.GetString(KeyProxyURL),
		ProxyUser:       v.GetString(KeyProxyUser),
		ProxyPassword:   v.GetString(KeyProxyPassword),
		ProxyDomain:     v.GetString(KeyProxyDomain),
	}
	return s, s.Validate()
}

// Validate checks the settings that NewClient cannot check itself.
func (s Settings) Validate() error {
	if s.URL == "" {
		return ValidationError{Key: KeyURL, Message: "must be set"}
	}
	if s.RefreshInterval <= 0 {
		return ValidationError{Key: KeyRefreshInterval, Message: "must be a positive duration"}
	}
	if s.ProxyUser != "" && s.ProxyURL == "" {
		return ValidationError{Key: KeyProxyURL, Message: "must be set when " + KeyProxyUser + " is set"}
	}
	return nil
}

// ClientConfig converts the settings into a client configuration.
func (s Settings) ClientConfig(loggers ldlog.Loggers) (unleash.Config, error) {
	config := unleash.Config{
		AppName:                          s.AppName,
		InstanceID:                       s.InstanceID,
		Environment:                      s.Environment,
		URL:                              s.URL,
		ProjectName:                      s.Project,
		RefreshInterval:                  s.RefreshInterval,
		BackupFile:                       s.BackupFile,
		DisableBackup:                    s.BackupFile == "",
		SynchronousFetchOnInitialisation: true,
		Loggers:                          loggers,
	}
	if s.APIToken != "" {
		config.CustomHeaders = map[string]string{"Authorization": s.APIToken}
	}
	if s.BootstrapFile != "" {
		config.BootstrapProvider = unleashfile.NewProvider(s.BootstrapFile)
	}
	factory, err := s.httpClientFactory()
	if err != nil {
		return config, err
	}
	config.HTTPClientFactory = factory
	return config, nil
}

func (s Settings) httpClientFactory() (unleashhttp.HTTPClientFactory, error) {
	if s.ProxyURL == "" {
		return nil, nil
	}
	if s.ProxyUser != "" {
		return unleashhttp.NewNTLMProxyHTTPClientFactory(s.ProxyURL, s.ProxyUser, s.ProxyPassword, s.ProxyDomain)
	}
	proxy, err := url.Parse(s.ProxyURL)
	if err != nil {
		return nil, ValidationError{Key: KeyProxyURL, Message: err.Error()}
	}
	return unleashhttp.NewHTTPClientFactory(unleashhttp.ProxyOption(*proxy))
}
