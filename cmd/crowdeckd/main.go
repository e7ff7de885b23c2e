package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/NoobyNull/crowdisplay/internal/action"
	"github.com/NoobyNull/crowdisplay/internal/hostconfig"
	"github.com/NoobyNull/crowdisplay/internal/logging"
	"github.com/NoobyNull/crowdisplay/internal/mqttpub"
	"github.com/NoobyNull/crowdisplay/internal/observability"
	"github.com/NoobyNull/crowdisplay/internal/report"
	"github.com/NoobyNull/crowdisplay/internal/server"
	"github.com/NoobyNull/crowdisplay/internal/statsfeed"
	"github.com/NoobyNull/crowdisplay/internal/tools"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "crowdeckd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "daemon config file (TOML)")
	flag.Parse()

	logging.ConfigureRuntime()
	logger := observability.InitLogger("crowdeckd")
	observability.RegisterMetrics()

	cfg := hostconfig.Default()
	if *configPath != "" {
		var err error
		cfg, err = hostconfig.Load(*configPath)
		if err != nil {
			return err
		}
	}

	dev, err := openReportDevice(cfg, logger)
	if err != nil {
		return err
	}
	reports := report.NewChannel(dev)
	defer reports.Close()

	runner := tools.ExecRunner{}
	dispatcher := action.NewDispatcher(runner, runner, logger).
		WithActionLog(cfg.ActionLogPath)

	table, err := action.LoadTable(cfg.BindingsPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.BindingsPath).
			Msg("binding table unavailable, starting empty")
	} else {
		dispatcher.ReloadTable(table)
	}

	if cfg.MQTTBroker != "" {
		pub, err := mqttpub.Connect(mqttpub.Config{
			Broker:   cfg.MQTTBroker,
			Topic:    cfg.MQTTTopic,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
		}, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("mqtt unavailable, continuing without")
		} else {
			defer pub.Close()
			dispatcher.WithPressHook(func(id action.Identity, b action.Binding) {
				pub.Publish(mqttpub.Event{
					Identity: id.String(),
					Action:   string(b.Action),
					At:       time.Now(),
				})
			})
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 4)

	listener := action.NewListener(reports, dispatcher, logger)
	go func() { errc <- listener.Run(ctx) }()

	watcher := action.NewWatcher(cfg.BindingsPath, dispatcher, logger)
	go func() { errc <- watcher.Run(ctx) }()

	if len(cfg.StatsMetrics) > 0 {
		streamer := statsfeed.NewStreamer(reports, statsfeed.NewCollector(logger),
			cfg.StatsMetrics, cfg.StatsInterval, logger)
		go func() { errc <- streamer.Run(ctx) }()
	}

	srv := server.New(cfg.HTTPAddr, cfg.CORSOrigins, dispatcher, logger)
	go func() { errc <- srv.Run(ctx) }()

	err = <-errc
	stop()
	dispatcher.Wait()
	if err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info().Msg("crowdeckd stopped")
	return nil
}

// openReportDevice resolves the configured report endpoint. An empty
// setting discovers the bridge by its USB id.
func openReportDevice(cfg hostconfig.Config, logger zerolog.Logger) (report.Device, error) {
	spec := strings.TrimSpace(cfg.ReportDevice)
	switch {
	case spec == "":
		logger.Info().
			Str("vendor", fmt.Sprintf("%04x", cfg.VendorID)).
			Str("product", fmt.Sprintf("%04x", cfg.ProductID)).
			Msg("discovering bridge hidraw node")
		return report.DiscoverHidraw(cfg.VendorID, cfg.ProductID)
	case strings.HasPrefix(spec, "hidraw:"):
		return report.OpenHidraw(strings.TrimPrefix(spec, "hidraw:"))
	case strings.HasPrefix(spec, "unix:"):
		return report.DialSocket(strings.TrimPrefix(spec, "unix:"))
	default:
		return report.OpenHidraw(spec)
	}
}
