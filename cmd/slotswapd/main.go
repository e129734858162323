package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/slotswap/slotswap/cmd/slotswapd/handlers"
	"github.com/slotswap/slotswap/pkg/api/binderr"
	"github.com/slotswap/slotswap/pkg/buildtime"
	"github.com/slotswap/slotswap/pkg/cluster"
	"github.com/slotswap/slotswap/pkg/configs"
	"github.com/slotswap/slotswap/pkg/domain"
	"github.com/slotswap/slotswap/pkg/kubeutil"
	"github.com/slotswap/slotswap/pkg/metrics"
	"github.com/slotswap/slotswap/pkg/notify"
	"github.com/slotswap/slotswap/pkg/orchestrator"
	"github.com/slotswap/slotswap/pkg/probe"
	"github.com/slotswap/slotswap/pkg/registry"
	"github.com/slotswap/slotswap/pkg/utils/echoutil"
	"github.com/slotswap/slotswap/pkg/utils/filewatch"
)

const defaultConfigPath = "/etc/slotswap/config.yaml"

func main() {

	configPath := flag.String("config", "", "config file path (default: $SLOTSWAP_CONFIG, then "+defaultConfigPath+")")
	loglevel := flag.String("loglevel", "", "log level. debug|info|warn|error|off (default: server.loglevel in config)")
	pcert := flag.String("cert", "", "certification file for TLS")
	pkey := flag.String("certkey", "", "key of certification file for TLS")
	kubeconfig := flag.String("kubeconfig", "", "kubeconfig file path (default: $KUBECONFIG, ~/.kube/config or in-cluster)")
	flag.Parse()

	logger := newLogger("info")

	path := *configPath
	if path == "" {
		path = os.Getenv("SLOTSWAP_CONFIG")
	}
	if path == "" {
		path = defaultConfigPath
	}

	conf, err := configs.Load(path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", path).Msg("cannot read configuration")
	}

	level := conf.Server.LogLevel
	if *loglevel != "" {
		level = *loglevel
	}
	logger = newLogger(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// restart (by the process supervisor) on config change
	ctx, cancelWatch, err := filewatch.UntilModifyContext(ctx, path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", path).Msg("cannot watch configuration")
	}
	defer cancelWatch()

	searchPath := []string{}
	if *kubeconfig != "" {
		searchPath = append(searchPath, *kubeconfig)
	}
	clientset, err := kubeutil.Connect(searchPath...)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to the cluster")
	}
	client := cluster.WrapClientset(clientset)

	gateway := cluster.NewGateway(
		client,
		conf.App.Name, conf.App.Namespace,
		cluster.WorkloadTemplate{
			Container:  conf.Workload.Container,
			Port:       conf.Workload.Port,
			Replicas:   conf.Workload.Replicas,
			HealthPath: conf.Workload.HealthPath,
		},
		conf.Retry.Policy(), conf.Rollout.PollInterval.Duration(),
		logger.With().Str("component", "cluster").Logger(),
	)
	reg := registry.New(
		client, conf.App.Name, conf.App.Namespace, conf.Retry.Policy(),
		logger.With().Str("component", "registry").Logger(),
	)
	prober := probe.New(
		conf.Probe.ExpectedStatus, conf.Probe.Timeout.Duration(),
		logger.With().Str("component", "probe").Logger(),
	)

	runner := orchestrator.NewRunner(ctx, logger.With().Str("component", "runner").Logger())

	// the runner listens too: phase snapshots become visible on GET /api/releases
	// while the run is still going.
	notifier := notify.Multi{runner}
	if 0 < len(conf.Notify.Webhooks) {
		notifier = append(notifier, notify.NewWeb(conf.Notify.Webhooks))
	}

	orc := orchestrator.New(
		reg, gateway, prober, notifier,
		orchestrator.Params{
			RolloutTimeout: conf.Rollout.Timeout.Duration(),
			ProbeAttempts:  conf.Probe.Attempts,
			ProbeInterval:  conf.Probe.Interval.Duration(),
			TargetReplicas: conf.Workload.Replicas,
			SlotEndpoint: func(slot domain.SlotName) string {
				return conf.SlotHealthURL(string(slot))
			},
			PublicEndpoint: conf.Probe.PublicURL,
		},
		logger.With().Str("component", "orchestrator").Logger(),
	)
	runner.Deploy = orc.Deploy

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())

	// set log
	echoutil.SetLevel(e, level)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)

	context.AfterFunc(ctx, func() {
		logger.Info().Msg("shutting down")
		graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := e.Shutdown(graceful); err != nil {
			logger.Error().Err(err).Msg("error on shutdown")
		}
	})

	// handlers
	api := e.Group("/api")
	if key := conf.Server.APIKey; key != "" {
		api.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			Validator: func(got string, c echo.Context) (bool, error) {
				return subtle.ConstantTimeCompare([]byte(got), []byte(key)) == 1, nil
			},
			ErrorHandler: func(err error, c echo.Context) error {
				return binderr.Unauthorized("set Authorization: Bearer <api-key>")
			},
		}))
	}

	api.POST("/releases", handlers.PostReleaseHandler(runner))
	api.GET("/releases", handlers.FindReleasesHandler(runner))
	api.GET("/releases/:runId", handlers.GetReleaseHandler(runner, "runId"))
	api.GET("/environments", handlers.GetEnvironmentsHandler(orc.Status))

	e.GET("/health", handlers.HealthHandler())
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	for _, r := range e.Routes() {
		logger.Debug().Str("method", r.Method).Str("path", r.Path).Msg("registered route")
	}

	logger.Info().
		Str("version", buildtime.VersionString()).
		Str("app", conf.App.Name).
		Str("namespace", conf.App.Namespace).
		Msg("slotswapd starting")

	addr := ":" + strconv.Itoa(int(conf.Server.Port))
	cert, certkey := *pcert, *pkey
	if cert != "" && certkey != "" {
		err = e.StartTLS(addr, cert, certkey)
	} else {
		err = e.Start(addr)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server stopped")
	}
	logger.Info().Msg("slotswapd stopped")
}

func newLogger(level string) zerolog.Logger {
	lv := zerolog.InfoLevel
	switch level {
	case "debug":
		lv = zerolog.DebugLevel
	case "info", "":
		lv = zerolog.InfoLevel
	case "warn":
		lv = zerolog.WarnLevel
	case "error":
		lv = zerolog.ErrorLevel
	case "off":
		lv = zerolog.Disabled
	}
	return zerolog.New(os.Stderr).Level(lv).With().Timestamp().Logger()
}
