package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxcd/stook/pkg/config"
)

func TestDefineEverything(t *testing.T) {
	flags := pflag.NewFlagSet("testflags", pflag.ContinueOnError)
	defineConfigFlags(flags, viper.New(), func(err error) {
		t.Error(err)
	})
}

func define(t *testing.T) (*pflag.FlagSet, *viper.Viper) {
	flags := pflag.NewFlagSet("testflags", pflag.ContinueOnError)
	v := viper.New()
	defineConfigFlags(flags, v, func(err error) {
		t.Fatal(err)
	})
	return flags, v
}

func setenv(t *testing.T, key, value string) {
	old, had := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestDefaults(t *testing.T) {
	flags, v := define(t)
	require.NoError(t, flags.Parse([]string{"--mode", "forward"}))

	conf, err := loadConfig(v, "")
	require.NoError(t, err)
	assert.Equal(t, 3000, conf.ListenPort)
	assert.Equal(t, 60, conf.CacheTTLSecs)
	assert.Equal(t, time.Duration(0), conf.CacheWarmInterval)
	assert.Equal(t, 30*time.Second, conf.HTTPTimeout)
	assert.Equal(t, "info", conf.LogLevel)
	assert.Equal(t, config.LogFormatFmt, conf.LogFormat)
	assert.False(t, conf.PortainerInsecure)
}

func TestRedeployNeedsPortainer(t *testing.T) {
	flags, v := define(t)
	require.NoError(t, flags.Parse(nil))

	_, err := loadConfig(v, "")
	assert.Error(t, err)
}

func TestEnvironment(t *testing.T) {
	setenv(t, "LISTEN_PORT", "8080")
	setenv(t, "CACHE_TTL_SECS", "5")
	setenv(t, "PORTAINER_URL", "https://portainer.local:9443")
	setenv(t, "PORTAINER_API_KEY", "ptr_secret")
	setenv(t, "LOG_LEVEL", "debug")

	flags, v := define(t)
	require.NoError(t, flags.Parse(nil))

	conf, err := loadConfig(v, "")
	require.NoError(t, err)
	assert.Equal(t, 8080, conf.ListenPort)
	assert.Equal(t, 5*time.Second, conf.CacheTTL())
	assert.Equal(t, config.ModeRedeploy, conf.Mode)
	assert.Equal(t, "https://portainer.local:9443", conf.PortainerURL)
	assert.Equal(t, "ptr_secret", conf.PortainerAPIKey)
	assert.Equal(t, "debug", conf.LogLevel)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	setenv(t, "LISTEN_PORT", "8080")

	flags, v := define(t)
	require.NoError(t, flags.Parse([]string{"--mode=forward", "--listen-port=9090"}))

	conf, err := loadConfig(v, "")
	require.NoError(t, err)
	assert.Equal(t, 9090, conf.ListenPort)
}

func TestConfigFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "stookd-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "stook.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(`
mode: forward
listenPort: 4000
cacheWarmInterval: 30s
excludeRepository:
- sandbox/*
- "*-ci"
`), 0600))

	setenv(t, "LISTEN_PORT", "5000")
	flags, v := define(t)
	require.NoError(t, flags.Parse(nil))

	conf, err := loadConfig(v, path)
	require.NoError(t, err)
	assert.Equal(t, config.ModeForward, conf.Mode)
	// the environment wins over the file
	assert.Equal(t, 5000, conf.ListenPort)
	assert.Equal(t, 30*time.Second, conf.CacheWarmInterval)
	assert.Equal(t, []string{"sandbox/*", "*-ci"}, conf.ExcludeRepository)
}

func TestMissingConfigFile(t *testing.T) {
	flags, v := define(t)
	require.NoError(t, flags.Parse([]string{"--mode=forward"}))

	_, err := loadConfig(v, "/nonexistent/stook.yaml")
	assert.Error(t, err)
}
