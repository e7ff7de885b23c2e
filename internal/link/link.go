// Package link abstracts the physical device-to-device channels: the
// short-range radio and the wired serial line. A link is an ordered byte
// stream with no message boundaries; corruption is detected one layer up
// by the frame checksum.
package link

import "io"

// Link is one physical channel. Reads block until bytes arrive or the
// link closes; writes are atomic only at the byte level, framing is the
// caller's problem.
type Link interface {
	io.ReadWriteCloser
	Name() string
}
