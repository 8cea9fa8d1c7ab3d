// Command broker runs the zeitop message broker: it loads
// configuration, wires the broker core to a WebSocket listener, starts
// the ambient HTTP surface and the bundled default services, and shuts
// everything down gracefully on SIGINT/SIGTERM. Wiring style follows
// streamspace-dev-streamspace/api/cmd/api's main, generalized to this
// repository's two listeners (protocol + ambient HTTP) and default
// service bundle.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/z3phyrl/zeitop/internal/apperrors"
	"github.com/z3phyrl/zeitop/internal/broker"
	"github.com/z3phyrl/zeitop/internal/config"
	"github.com/z3phyrl/zeitop/internal/defaultservices/eventbridge"
	"github.com/z3phyrl/zeitop/internal/defaultservices/page"
	"github.com/z3phyrl/zeitop/internal/defaultservices/sysinfo"
	"github.com/z3phyrl/zeitop/internal/device"
	"github.com/z3phyrl/zeitop/internal/httpapi"
	"github.com/z3phyrl/zeitop/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (defaults to $XDG_CONFIG_HOME/zeitop/config.toml)")
	flag.Parse()

	path := *configPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		panic(apperrors.ConfigInvalid(err))
	}

	logger.Initialize(cfg.LogLevel, cfg.LogPretty)
	log := logger.Broker()

	b := broker.New(*log)
	wsURL := "ws://" + cfg.ListenAddr

	wsServer := &http.Server{Addr: cfg.ListenAddr, Handler: b}
	httpServer := &http.Server{Addr: cfg.MetricsAddr, Handler: httpapi.New(b)}

	go func() {
		if err := wsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(apperrors.ListenFailed(cfg.ListenAddr, err)).Msg("broker listener failed")
		}
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(apperrors.ListenFailed(cfg.MetricsAddr, err)).Msg("ambient http listener failed")
		}
	}()

	sweeper := startSweeper(b)

	bringupCtx, stopBringup := context.WithCancel(context.Background())
	go startBringup(bringupCtx)

	startDefaultServices(cfg, wsURL)

	log.Info().
		Str("listen_addr", cfg.ListenAddr).
		Str("metrics_addr", cfg.MetricsAddr).
		Msg("zeitop broker started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutting down")
	sweeper.Stop()
	stopBringup()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("broker listener shutdown error")
	}
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("ambient http listener shutdown error")
	}
}

// startSweeper schedules the registry-wide size logging sweep as
// a robfig/cron/v3 job, distinct from the per-connection keepalive
// ticker that internal/broker/connection.go runs on its own hot path.
func startSweeper(b *broker.Broker) *cron.Cron {
	log := logger.Broker()
	c := cron.New()
	_, err := c.AddFunc("@every 1m", func() {
		cmap := b.ConnectionMap()
		log.Info().
			Int("clients", cmap.Clients.Count()).
			Strs("services", cmap.Services.Names()).
			Msg("registry sweep")
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to schedule registry sweep")
	}
	c.Start()
	return c
}

// startBringup runs the device bring-up collaborator for the lifetime
// of ctx. No real USB pipeline is wired in here (out of scope per
// spec.md, see internal/device), so this runs device.Noop, keeping the
// Bringup seam reachable from process startup the way a real
// implementation's Watch loop would be.
func startBringup(ctx context.Context) {
	var bringup device.Bringup = device.Noop{}
	if err := bringup.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Broker().Error().Err(err).Msg("device bring-up exited")
	}
}

// startDefaultServices launches the bundled default services as
// ordinary embedding-API clients of the broker that was just started.
// Each runs for the lifetime of the process, reconnecting is left
// unimplemented: a crashed default service is a startup-time concern
// logged via apperrors, not retried (these are examples, not
// guaranteed-available infrastructure).
func startDefaultServices(cfg config.Config, wsURL string) {
	go runDefaultService("sysinfo", func() error { return sysinfo.Run(wsURL) })
	go runDefaultService("page", func() error { return page.Run(wsURL) })
	if cfg.NATSURL != "" {
		go runDefaultService("eventbridge", func() error {
			return eventbridge.Run(wsURL, cfg.NATSURL, "zeitop.events")
		})
	}
}

func runDefaultService(name string, run func() error) {
	log := logger.DefaultService(name)
	// Give the broker's listener a moment to come up before dialing it.
	time.Sleep(100 * time.Millisecond)
	if err := run(); err != nil {
		log.Error().Err(apperrors.ServiceStartup(name, err)).Msg("default service exited")
	}
}
