// bridgesim runs the bridge unit's relay loop on a workstation: the
// display side attaches over a serial port and the host daemon attaches
// over a unix datagram socket instead of the hidraw node, e.g.
//
//	bridgesim -port /dev/ttyACM0 -socket /tmp/crowdeck.sock
//	crowdeckd -config <cfg with report_device = "unix:/tmp/crowdeck.sock">
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/NoobyNull/crowdisplay/internal/link"
	"github.com/NoobyNull/crowdisplay/internal/logging"
	"github.com/NoobyNull/crowdisplay/internal/observability"
	"github.com/NoobyNull/crowdisplay/internal/report"
	"github.com/NoobyNull/crowdisplay/internal/unit/bridge"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bridgesim: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	port := flag.String("port", "", "serial port to the display unit")
	baud := flag.Int("baud", link.DefaultBaud, "serial baud rate")
	socket := flag.String("socket", "/tmp/crowdeck.sock", "unix socket standing in for the hidraw node")
	flag.Parse()

	logging.ConfigureRuntime()
	logger := observability.InitLogger("bridgesim")

	if *port == "" {
		return fmt.Errorf("-port required")
	}
	l, err := link.OpenSerial(*port, *baud)
	if err != nil {
		return err
	}

	dev, err := report.ListenSocket(*socket)
	if err != nil {
		_ = l.Close()
		return err
	}
	defer os.Remove(*socket)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	unit := bridge.New(l, report.NewChannel(dev), logger)
	logger.Info().Str("port", *port).Str("socket", *socket).Msg("bridge relay running")
	if err := unit.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
