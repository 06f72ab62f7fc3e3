package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/docker/docker/client"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fluxcd/stook/pkg/action"
	"github.com/fluxcd/stook/pkg/config"
	"github.com/fluxcd/stook/pkg/discovery"
	"github.com/fluxcd/stook/pkg/dispatch"
	relayhttp "github.com/fluxcd/stook/pkg/http/relay"
	"github.com/fluxcd/stook/pkg/portainer"
	"github.com/fluxcd/stook/pkg/relay"
)

var version = "unversioned"

func main() {
	// Flag domain.
	fs := pflag.NewFlagSet("default", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "DESCRIPTION\n")
		fmt.Fprintf(os.Stderr, "  stookd redeploys containers when their images are pushed.\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "  Point a registry's notifications at POST /webhook.\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "FLAGS\n")
		fs.PrintDefaults()
	}

	v := viper.New()
	var (
		configFile  = fs.String("config", "", "path to a YAML config file; flags and environment variables take precedence over it")
		versionFlag = fs.Bool("version", false, "get version number")
	)
	// if we bail while defining flags, it's a programming error
	defineConfigFlags(fs, v, func(err error) {
		fmt.Fprintf(os.Stderr, "error defining flags: %s\n", err.Error())
		os.Exit(1)
	})

	err := fs.Parse(os.Args[1:])
	switch {
	case err == pflag.ErrHelp:
		os.Exit(0)
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %s\n\nRun 'stookd --help' for usage.\n", err.Error())
		os.Exit(2)
	case *versionFlag:
		fmt.Println(version)
		os.Exit(0)
	}

	conf, confErr := loadConfig(v, *configFile)

	// Logger component.
	var logger log.Logger
	{
		switch conf.LogFormat {
		case config.LogFormatJSON:
			logger = log.NewJSONLogger(log.NewSyncWriter(os.Stderr))
		default:
			logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
		}
		logger = level.NewFilter(logger, logLevel(conf.LogLevel))
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}
	logger.Log("version", version)

	if confErr != nil {
		logger.Log("err", confErr)
		os.Exit(1)
	}
	logger.Log("mode", conf.Mode, "cache-ttl", conf.CacheTTL(), "listen", conf.ListenAddr())

	// Docker engine, for container labels.
	var docker *client.Client
	{
		logger := log.With(logger, "component", "docker")
		docker, err = client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if err != nil {
			logger.Log("err", err)
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), conf.HTTPTimeout)
		ping, err := docker.Ping(ctx)
		cancel()
		if err != nil {
			logger.Log("err", err)
			os.Exit(1)
		}
		logger.Log("host", docker.DaemonHost(), "api-version", ping.APIVersion)
	}

	// Discovery component.
	var cache *discovery.Cache
	{
		logger := log.With(logger, "component", "discovery")
		scheme := discovery.RedeployScheme()
		if conf.Mode == config.ModeForward {
			scheme = discovery.ForwardScheme()
		}
		cache = discovery.NewCache(docker, scheme, conf.CacheTTL(), logger)

		// An unreachable engine isn't fatal here; lookups will try
		// again.
		ctx, cancel := context.WithTimeout(context.Background(), conf.HTTPTimeout)
		cache.Refresh(ctx)
		cancel()
	}

	// Action component.
	var executor action.Executor
	{
		logger := log.With(logger, "component", "action")
		switch conf.Mode {
		case config.ModeForward:
			executor = action.NewForwarder(&http.Client{Timeout: conf.HTTPTimeout}, logger)
		case config.ModeRedeploy:
			httpClient := portainer.NewHTTPClient(conf.HTTPTimeout, conf.PortainerInsecure)
			api := portainer.NewInstrumentedAPI(portainer.New(httpClient, conf.PortainerURL, conf.PortainerAPIKey))
			executor = action.NewRedeployer(api, logger)
			if conf.PortainerInsecure {
				logger.Log("warning", "not verifying Portainer's TLS certificate")
			}
		}
		executor = action.Instrument(conf.Mode, executor)
	}

	// Dispatch component.
	dispatcher := &dispatch.Dispatcher{
		Lookup:   cache,
		Executor: executor,
		Includer: dispatch.ExcludeIncludeGlob{
			Include: conf.IncludeRepository,
			Exclude: conf.ExcludeRepository,
		},
		Logger: log.With(logger, "component", "dispatch"),
	}

	server := &relay.Relay{
		Dispatcher: dispatcher,
		Routing:    cache,
		Logger:     log.With(logger, "component", "relay"),
	}

	// Mechanical stuff.
	errc := make(chan error)

	// shutdown triggers
	shutdown := make(chan struct{})
	shutdownWg := &sync.WaitGroup{}

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errc <- fmt.Errorf("%s", <-c)
	}()

	if conf.CacheWarmInterval > 0 {
		shutdownWg.Add(1)
		go cache.Loop(shutdown, shutdownWg, conf.CacheWarmInterval)
	}

	shutdownWg.Add(1)
	go relayhttp.ListenAndServe(conf.ListenAddr(), server, log.With(logger, "component", "http"), shutdown, errc, shutdownWg)

	// Go!
	shutdownErr := <-errc
	logger.Log("exiting", shutdownErr)
	close(shutdown)

	done := make(chan struct{})
	go func() {
		shutdownWg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		logger.Log("warning", "timed out waiting for components to stop")
	}
}

func logLevel(l string) level.Option {
	switch l {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}
