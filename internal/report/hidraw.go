package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

var ErrDeviceNotFound = errors.New("report: no matching hidraw device")

// HidrawDevice is the production report endpoint: the bridge unit's raw
// HID interface on the host.
type HidrawDevice struct {
	fd   int
	path string
}

// OpenHidraw opens a hidraw node directly.
func OpenHidraw(path string) (*HidrawDevice, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("report: open %s: %w", path, err)
	}
	return &HidrawDevice{fd: fd, path: path}, nil
}

// DiscoverHidraw finds the bridge unit's hidraw node by USB vendor and
// product id via sysfs.
func DiscoverHidraw(vendor, product uint16) (*HidrawDevice, error) {
	want := fmt.Sprintf("%04X:0000%04X", vendor, product)
	nodes, err := filepath.Glob("/sys/class/hidraw/hidraw*")
	if err != nil {
		return nil, err
	}
	for _, node := range nodes {
		uevent, err := os.ReadFile(filepath.Join(node, "device", "uevent"))
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(uevent), "\n") {
			if id, ok := strings.CutPrefix(line, "HID_ID="); ok &&
				strings.HasSuffix(strings.TrimSpace(id), want) {
				return OpenHidraw(filepath.Join("/dev", filepath.Base(node)))
			}
		}
	}
	return nil, fmt.Errorf("%w: %04x:%04x", ErrDeviceNotFound, vendor, product)
}

// ReadTimeout reads one report, waiting at most timeout. Returns (0, nil)
// when nothing arrived.
func (d *HidrawDevice) ReadTimeout(p []byte, timeout time.Duration) (int, error) {
	fds := []unix.PollFd{{Fd: int32(d.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, nil
		}
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	rn, err := unix.Read(d.fd, p)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return 0, nil
		}
		return 0, err
	}
	return rn, nil
}

func (d *HidrawDevice) Write(p []byte) (int, error) {
	return unix.Write(d.fd, p)
}

func (d *HidrawDevice) Close() error {
	return unix.Close(d.fd)
}

func (d *HidrawDevice) Path() string { return d.path }
