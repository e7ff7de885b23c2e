package report

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"
)

var ErrNoPeer = errors.New("report: no peer connected yet")

// SocketDevice carries reports over a unix datagram socket. The bridge
// simulator exposes this so the host daemon can run without hardware;
// datagram boundaries stand in for HID report boundaries.
type SocketDevice struct {
	conn *net.UnixConn

	mu   sync.Mutex
	peer *net.UnixAddr
}

// DialSocket connects the host side to a simulator's report socket. The
// local address is bound so the simulator can write back.
func DialSocket(path string) (*SocketDevice, error) {
	local, err := net.ResolveUnixAddr("unixgram", path+".host")
	if err != nil {
		return nil, err
	}
	_ = os.Remove(local.Name)
	remote, err := net.ResolveUnixAddr("unixgram", path)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUnix("unixgram", local, remote)
	if err != nil {
		return nil, fmt.Errorf("report: dial %s: %w", path, err)
	}
	return &SocketDevice{conn: conn}, nil
}

// ListenSocket binds a simulator-side report socket, replacing any stale
// socket file. Writes go to whichever peer wrote last.
func ListenSocket(path string) (*SocketDevice, error) {
	_ = os.Remove(path)
	addr, err := net.ResolveUnixAddr("unixgram", path)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUnixgram("unixgram", addr)
	if err != nil {
		return nil, fmt.Errorf("report: listen %s: %w", path, err)
	}
	return &SocketDevice{conn: conn}, nil
}

func (d *SocketDevice) ReadTimeout(p []byte, timeout time.Duration) (int, error) {
	if err := d.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	n, addr, err := d.conn.ReadFromUnix(p)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return 0, nil
		}
		return 0, err
	}
	if addr != nil {
		d.mu.Lock()
		d.peer = addr
		d.mu.Unlock()
	}
	return n, nil
}

func (d *SocketDevice) Write(p []byte) (int, error) {
	if d.conn.RemoteAddr() != nil {
		return d.conn.Write(p)
	}
	d.mu.Lock()
	peer := d.peer
	d.mu.Unlock()
	if peer == nil {
		return 0, ErrNoPeer
	}
	return d.conn.WriteToUnix(p, peer)
}

func (d *SocketDevice) Close() error { return d.conn.Close() }
