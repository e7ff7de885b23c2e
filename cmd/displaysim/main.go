// displaysim drives the display unit's protocol from a terminal so the
// host stack can be exercised without hardware. Commands on stdin:
//
//	press <page> <widget>
//	hw <input>
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/NoobyNull/crowdisplay/internal/link"
	"github.com/NoobyNull/crowdisplay/internal/logging"
	"github.com/NoobyNull/crowdisplay/internal/observability"
	"github.com/NoobyNull/crowdisplay/internal/protocol/message"
	"github.com/NoobyNull/crowdisplay/internal/protocol/tlv"
	"github.com/NoobyNull/crowdisplay/internal/unit/display"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "displaysim: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	port := flag.String("port", "", "serial port to the bridge")
	baud := flag.Int("baud", link.DefaultBaud, "serial baud rate")
	flag.Parse()

	logging.ConfigureRuntime()
	logger := observability.InitLogger("displaysim")

	if *port == "" {
		ports, err := link.ListSerialPorts()
		if err == nil && len(ports) > 0 {
			return fmt.Errorf("-port required, available: %s", strings.Join(ports, ", "))
		}
		return fmt.Errorf("-port required")
	}

	l, err := link.OpenSerial(*port, *baud)
	if err != nil {
		return err
	}

	unit := display.New(l, nil, logger)
	unit.OnStats(func(metrics []tlv.Metric) {
		for _, m := range metrics {
			fmt.Printf("stats: %s\n", formatMetric(m))
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		_ = unit.Run(ctx)
		stop()
	}()

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		if ctx.Err() != nil {
			break
		}
		if err := handle(unit, sc.Text()); err != nil {
			fmt.Fprintf(os.Stderr, "displaysim: %v\n", err)
		}
	}
	stop()
	return sc.Err()
}

func handle(unit *display.Unit, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "press":
		if len(fields) != 3 {
			return fmt.Errorf("usage: press <page> <widget>")
		}
		page, err := parseUint8(fields[1])
		if err != nil {
			return err
		}
		widget, err := parseUint8(fields[2])
		if err != nil {
			return err
		}
		if page == message.HardwarePage {
			return fmt.Errorf("page %d is reserved for hardware inputs", page)
		}
		return unit.SendPress(page, widget)
	case "hw":
		if len(fields) != 2 {
			return fmt.Errorf("usage: hw <input>")
		}
		in, err := parseUint8(fields[1])
		if err != nil {
			return err
		}
		return unit.SendHardware(in, 1)
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

func parseUint8(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("bad value %q", s)
	}
	return uint8(v), nil
}

func formatMetric(m tlv.Metric) string {
	switch m.Type {
	case tlv.TypeCPUPercent:
		if v, err := tlv.U16FromBytes(m.Value); err == nil {
			return fmt.Sprintf("cpu %d%%", v)
		}
	case tlv.TypeMemPercent:
		if v, err := tlv.U16FromBytes(m.Value); err == nil {
			return fmt.Sprintf("mem %d%%", v)
		}
	case tlv.TypeUptime:
		if v, err := tlv.U32FromBytes(m.Value); err == nil {
			return fmt.Sprintf("uptime %ds", v)
		}
	case tlv.TypeTempMilliC:
		if v, err := tlv.U32FromBytes(m.Value); err == nil {
			return fmt.Sprintf("temp %.1fC", float64(v)/1000)
		}
	}
	return fmt.Sprintf("metric %d: %x", m.Type, m.Value)
}
