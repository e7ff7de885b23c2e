package link

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaud matches the bridge unit's wired-link configuration.
const DefaultBaud = 115200

// SerialLink is the wired point-to-point channel.
type SerialLink struct {
	port serial.Port
	name string
}

// OpenSerial opens the wired link on the named port.
func OpenSerial(portName string, baud int) (*SerialLink, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	mode := &serial.Mode{BaudRate: baud}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("link: open serial port %s: %w", portName, err)
	}
	return &SerialLink{port: port, name: portName}, nil
}

func (l *SerialLink) Read(p []byte) (int, error)  { return l.port.Read(p) }
func (l *SerialLink) Write(p []byte) (int, error) { return l.port.Write(p) }
func (l *SerialLink) Close() error                { return l.port.Close() }
func (l *SerialLink) Name() string                { return l.name }

// ListSerialPorts enumerates candidate ports for the wired link.
func ListSerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("link: list serial ports: %w", err)
	}
	return ports, nil
}
