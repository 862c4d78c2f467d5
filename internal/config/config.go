// Package config loads kconsole settings from KCONSOLE_* environment variables.
// Command line flags are applied on top by the cobra commands.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/errors"
)

// Data source modes
const (
	// ModeAPI reads everything through the console REST API
	ModeAPI = "api"
	// ModeDirect reads clusters straight from kubeconfig contexts
	ModeDirect = "direct"
)

// Config holds every runtime setting
type Config struct {
	APIURL             string        `env:"KCONSOLE_API_URL" envDefault:"http://localhost:8080"`
	Token              string        `env:"KCONSOLE_TOKEN"`
	Mode               string        `env:"KCONSOLE_MODE" envDefault:"api"`
	Kubeconfig         string        `env:"KCONSOLE_KUBECONFIG"`
	RequestTimeout     time.Duration `env:"KCONSOLE_REQUEST_TIMEOUT" envDefault:"15s"`
	RefreshInterval    time.Duration `env:"KCONSOLE_REFRESH_INTERVAL" envDefault:"10s"`
	StaleTime          time.Duration `env:"KCONSOLE_STALE_TIME" envDefault:"5s"`
	CacheTime          time.Duration `env:"KCONSOLE_CACHE_TIME" envDefault:"5m"`
	PageSize           int           `env:"KCONSOLE_PAGE_SIZE" envDefault:"20"`
	Concurrency        int           `env:"KCONSOLE_CONCURRENCY" envDefault:"8"`
	RetryAttempts      int           `env:"KCONSOLE_RETRY_ATTEMPTS" envDefault:"2"`
	InsecureSkipVerify bool          `env:"KCONSOLE_INSECURE_SKIP_VERIFY"`
	Theme              string        `env:"KCONSOLE_THEME" envDefault:"dark"`
	MetricsAddr        string        `env:"KCONSOLE_METRICS_ADDR"`
	Debug              bool          `env:"KCONSOLE_DEBUG"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.NewConfigError("failed to parse environment", err)
	}
	return cfg, nil
}

// LoadFrom parses the given environment instead of the process environment
func LoadFrom(environment map[string]string) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environment})
	if err != nil {
		return Config{}, errors.NewConfigError("failed to parse environment", err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting
func (c Config) Validate() error {
	switch c.Mode {
	case ModeAPI:
		if c.APIURL == "" {
			return errors.NewConfigError("api url is required in api mode", nil)
		}
		u, err := url.Parse(c.APIURL)
		if err != nil {
			return errors.NewConfigError("invalid api url", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return errors.NewConfigError(fmt.Sprintf("api url scheme must be http or https, got %q", u.Scheme), nil)
		}
	case ModeDirect:
	default:
		return errors.NewConfigError(fmt.Sprintf("unknown mode %q (want %s or %s)", c.Mode, ModeAPI, ModeDirect), nil)
	}

	if c.PageSize <= 0 {
		return errors.NewConfigError("page size must be positive", nil)
	}
	if c.Concurrency <= 0 {
		return errors.NewConfigError("concurrency must be positive", nil)
	}
	if c.RetryAttempts < 0 {
		return errors.NewConfigError("retry attempts cannot be negative", nil)
	}
	if c.RefreshInterval < constants.MinRefreshInterval {
		return errors.NewConfigError(fmt.Sprintf("refresh interval must be at least %s", constants.MinRefreshInterval), nil)
	}
	if c.RequestTimeout <= 0 {
		return errors.NewConfigError("request timeout must be positive", nil)
	}
	if c.StaleTime > c.CacheTime {
		return errors.NewConfigError("stale time cannot exceed cache time", nil)
	}
	return nil
}

// KubeconfigPath resolves the kubeconfig file: explicit setting, then
// $KUBECONFIG, then ~/.kube/config
func (c Config) KubeconfigPath() (string, error) {
	if c.Kubeconfig != "" {
		return c.Kubeconfig, nil
	}
	if p := os.Getenv("KUBECONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewConfigError(constants.ErrNoKubeconfigPath, err)
	}
	return filepath.Join(home, constants.KubeConfigDir, constants.KubeConfigFile), nil
}

// Dir returns ~/.kconsole
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, constants.ConfigDir), nil
}
