package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func valid() Config {
	return Config{
		LogFormat:       LogFormatFmt,
		LogLevel:        "info",
		ListenPort:      3000,
		CacheTTLSecs:    60,
		Mode:            ModeRedeploy,
		PortainerURL:    "https://portainer.local:9443",
		PortainerAPIKey: "ptr_secret",
		HTTPTimeout:     30 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, valid().Validate())

	forward := valid()
	forward.Mode = ModeForward
	forward.PortainerURL = ""
	forward.PortainerAPIKey = ""
	assert.NoError(t, forward.Validate())

	noCache := valid()
	noCache.CacheTTLSecs = 0
	assert.NoError(t, noCache.Validate())

	for name, mutate := range map[string]func(*Config){
		"unknown mode":       func(c *Config) { c.Mode = "restart" },
		"no Portainer URL":   func(c *Config) { c.PortainerURL = "" },
		"no API key":         func(c *Config) { c.PortainerAPIKey = "" },
		"zero port":          func(c *Config) { c.ListenPort = 0 },
		"port too big":       func(c *Config) { c.ListenPort = 70000 },
		"negative TTL":       func(c *Config) { c.CacheTTLSecs = -1 },
		"negative warm":      func(c *Config) { c.CacheWarmInterval = -time.Second },
		"negative timeout":   func(c *Config) { c.HTTPTimeout = -time.Second },
		"no timeout":         func(c *Config) { c.HTTPTimeout = 0 },
		"unknown log level":  func(c *Config) { c.LogLevel = "trace" },
		"unknown log format": func(c *Config) { c.LogFormat = "xml" },
	} {
		c := valid()
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
}

func TestDerived(t *testing.T) {
	c := valid()
	assert.Equal(t, time.Minute, c.CacheTTL())
	assert.Equal(t, ":3000", c.ListenAddr())
}
