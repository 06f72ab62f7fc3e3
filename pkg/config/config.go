// config is the package containing configuration for stookd, shared
// so it can be used by stookd itself as well as stookctl.
package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	ConfigType = "yaml"

	ModeRedeploy = "redeploy"
	ModeForward  = "forward"

	LogFormatFmt  = "fmt"
	LogFormatJSON = "json"
)

var (
	Modes      = []string{ModeRedeploy, ModeForward}
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{LogFormatFmt, LogFormatJSON}
)

type Config struct {
	LogFormat string `mapstructure:"logFormat"`
	LogLevel  string `mapstructure:"logLevel"`

	ListenPort int `mapstructure:"listenPort"`

	CacheTTLSecs      int           `mapstructure:"cacheTtlSecs"`
	CacheWarmInterval time.Duration `mapstructure:"cacheWarmInterval"`

	Mode              string        `mapstructure:"mode"`
	PortainerURL      string        `mapstructure:"portainerUrl"`
	PortainerAPIKey   string        `mapstructure:"portainerApiKey"`
	PortainerInsecure bool          `mapstructure:"portainerInsecure"`
	HTTPTimeout       time.Duration `mapstructure:"httpTimeout"`

	IncludeRepository []string `mapstructure:"includeRepository"`
	ExcludeRepository []string `mapstructure:"excludeRepository"`
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSecs) * time.Second
}

func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.ListenPort)
}

// Validate checks the config makes sense as a whole; e.g., that
// everything needed for the mode chosen is present.
func (c Config) Validate() error {
	if !oneOf(c.Mode, Modes) {
		return fmt.Errorf("mode must be one of {%s}, got %q", strings.Join(Modes, ","), c.Mode)
	}
	if c.Mode == ModeRedeploy {
		if c.PortainerURL == "" {
			return fmt.Errorf("a Portainer URL must be given in %s mode", ModeRedeploy)
		}
		if c.PortainerAPIKey == "" {
			return fmt.Errorf("a Portainer API key must be given in %s mode", ModeRedeploy)
		}
	}
	if c.ListenPort <= 0 || c.ListenPort > 65535 {
		return fmt.Errorf("listen port must be between 1 and 65535, got %d", c.ListenPort)
	}
	if c.CacheTTLSecs < 0 {
		return fmt.Errorf("cache TTL must not be negative, got %d", c.CacheTTLSecs)
	}
	if c.CacheWarmInterval < 0 {
		return fmt.Errorf("cache warm interval must not be negative, got %s", c.CacheWarmInterval)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP timeout must be positive, got %s", c.HTTPTimeout)
	}
	if !oneOf(c.LogLevel, LogLevels) {
		return fmt.Errorf("log level must be one of {%s}, got %q", strings.Join(LogLevels, ","), c.LogLevel)
	}
	if !oneOf(c.LogFormat, LogFormats) {
		return fmt.Errorf("log format must be one of {%s}, got %q", strings.Join(LogFormats, ","), c.LogFormat)
	}
	return nil
}

func oneOf(s string, values []string) bool {
	for _, v := range values {
		if s == v {
			return true
		}
	}
	return false
}
