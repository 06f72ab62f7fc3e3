package main

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fluxcd/stook/pkg/config"
)

// defineConfigFlags defines the flags that can also be set in a
// config file or the environment. These need special treatment,
// because some care must be taken to match them ("bind") with config
// file field names and environment variables.
func defineConfigFlags(fs *pflag.FlagSet, v *viper.Viper, bail func(error)) {

	bind := func(fieldName, flagName, envName string) error {
		configStruct := reflect.TypeOf(config.Config{})
		field, ok := configStruct.FieldByName(fieldName)
		if !ok {
			return fmt.Errorf("attempt to bind a flag to a field not present in config.Config, %q", fieldName)
		}
		tag := field.Tag
		// this parallels the logic in
		// github.com/mitchellh/mapstructure, except that we want to
		// bail if a field is mentioned that is marked ignore, like
		// this: `mapstructure:"-"`
		mappedName := field.Name
		mapstructureTagParts := strings.Split(tag.Get("mapstructure"), ",")
		if namePart := mapstructureTagParts[0]; namePart != "" {
			if namePart == "-" { // means ignore this field
				return fmt.Errorf(`attempt to bind a flag to a config field tagged as ignored, %q`, field.Name)
			}
			mappedName = namePart
		}
		if err := v.BindPFlag(mappedName, fs.Lookup(flagName)); err != nil {
			return err
		}
		return v.BindEnv(mappedName, envName)
	}

	bindOrBail := func(fieldName, flagName, envName string) {
		if err := bind(fieldName, flagName, envName); err != nil {
			bail(err)
		}
	}

	defineString := func(fieldName, flagName, envName, def, desc string) {
		fs.String(flagName, def, desc)
		bindOrBail(fieldName, flagName, envName)
	}

	defineStringSlice := func(fieldName, flagName, envName string, def []string, desc string) {
		fs.StringSlice(flagName, def, desc)
		bindOrBail(fieldName, flagName, envName)
	}

	defineBool := func(fieldName, flagName, envName string, def bool, desc string) {
		fs.Bool(flagName, def, desc)
		bindOrBail(fieldName, flagName, envName)
	}

	defineDuration := func(fieldName, flagName, envName string, def time.Duration, desc string) {
		fs.Duration(flagName, def, desc)
		bindOrBail(fieldName, flagName, envName)
	}

	defineInt := func(fieldName, flagName, envName string, def int, desc string) {
		fs.Int(flagName, def, desc)
		bindOrBail(fieldName, flagName, envName)
	}

	defineString("LogFormat", "log-format", "STOOK_LOG_FORMAT", config.LogFormatFmt, fmt.Sprintf("change the log format (one of {%s})", strings.Join(config.LogFormats, ",")))
	defineString("LogLevel", "log-level", "LOG_LEVEL", "info", fmt.Sprintf("least severe level of log message to output (one of {%s})", strings.Join(config.LogLevels, ",")))
	defineInt("ListenPort", "listen-port", "LISTEN_PORT", 3000, "port on which the webhook, API and /metrics are served")

	// discovery
	defineInt("CacheTTLSecs", "cache-ttl-secs", "CACHE_TTL_SECS", 60, "seconds for which container labels are trusted before they are listed again")
	defineDuration("CacheWarmInterval", "cache-warm-interval", "STOOK_CACHE_WARM_INTERVAL", 0, "if non-zero, refresh container labels this often, in the background")
	defineStringSlice("IncludeRepository", "include-repository", "STOOK_INCLUDE_REPOSITORY", nil, "act only on pushes to repositories matching these glob expressions; if not supplied, all repositories not excluded are acted on")
	defineStringSlice("ExcludeRepository", "exclude-repository", "STOOK_EXCLUDE_REPOSITORY", nil, "never act on pushes to repositories matching these glob expressions")

	// actions
	defineString("Mode", "mode", "STOOK_MODE", config.ModeRedeploy, fmt.Sprintf("what to do about a push (one of {%s}); %q redeploys the container's stack through Portainer, %q POSTs to the URL in the container's %q label", strings.Join(config.Modes, ","), config.ModeRedeploy, config.ModeForward, "stook.webhook"))
	defineString("PortainerURL", "portainer-url", "PORTAINER_URL", "", "base URL of the Portainer API; required in redeploy mode")
	defineString("PortainerAPIKey", "portainer-api-key", "PORTAINER_API_KEY", "", "Portainer access token; required in redeploy mode")
	defineBool("PortainerInsecure", "portainer-insecure", "PORTAINER_INSECURE", false, "do not verify Portainer's TLS certificate; this allows man-in-the-middle attacks, so use with caution")
	defineDuration("HTTPTimeout", "http-timeout", "STOOK_HTTP_TIMEOUT", 30*time.Second, "maximum time for each outgoing HTTP request")
}

// loadConfig reads the config file, if one is given, under the flags
// and environment already bound to v.
func loadConfig(v *viper.Viper, configFile string) (config.Config, error) {
	var conf config.Config
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType(config.ConfigType)
		if err := v.ReadInConfig(); err != nil {
			return conf, fmt.Errorf("reading config file %s: %v", configFile, err)
		}
	}
	if err := v.Unmarshal(&conf); err != nil {
		return conf, fmt.Errorf("decoding config: %v", err)
	}
	return conf, conf.Validate()
}
