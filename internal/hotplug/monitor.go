//go:build linux

// Package hotplug implements scanbd's hot-plug front-end: a background
// watcher on the kernel's USB device event stream that runs an
// insert/remove hook script and restarts the fleet.
//
// The netlink uevent monitor is adapted almost verbatim from an
// other_examples reference (a pure-Go, cgo-free AF_NETLINK/
// NETLINK_KOBJECT_UEVENT listener) — no udev binding exists anywhere in
// the retrieved pack, and this is the only non-cgo way to observe kernel
// device events from Go, so stdlib syscall is used deliberately here (see
// DESIGN.md).
package hotplug

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"syscall"
)

const netlinkKobjectUEvent = 15

// Event is a parsed kernel uevent.
type Event struct {
	Action    string
	Subsystem string
	DevType   string
	DevName   string
}

// monitor is a netlink socket subscribed to the kernel's uevent broadcast
// group.
type monitor struct {
	fd int
}

func newMonitor() (*monitor, error) {
	fd, err := syscall.Socket(syscall.AF_NETLINK, syscall.SOCK_DGRAM|syscall.SOCK_CLOEXEC, netlinkKobjectUEvent)
	if err != nil {
		return nil, err
	}

	addr := &syscall.SockaddrNetlink{Family: syscall.AF_NETLINK, Groups: 1}
	if err := syscall.Bind(fd, addr); err != nil {
		syscall.Close(fd)
		return nil, err
	}

	return &monitor{fd: fd}, nil
}

func (m *monitor) Close() error {
	return syscall.Close(m.fd)
}

// next receives one uevent, blocking up to one second: if none is
// available, it returns after that window rather than blocking forever.
// A nil event with a nil error means the one-second window elapsed with
// nothing received.
func (m *monitor) next() (*Event, error) {
	tv := syscall.Timeval{Sec: 1}
	if err := syscall.SetsockoptTimeval(m.fd, syscall.SOL_SOCKET, syscall.SO_RCVTIMEO, &tv); err != nil {
		return nil, err
	}

	buf := make([]byte, 8192)
	n, _, err := syscall.Recvfrom(m.fd, buf, 0)
	if err != nil {
		if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EINTR) {
			return nil, nil
		}
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	return parseUEvent(buf[:n]), nil
}

// parseUEvent parses a kernel uevent message of the form
// "ACTION@KOBJ\0KEY=VALUE\0KEY=VALUE\0...". Exported behavior is covered
// by tests in this package using literal byte sequences.
func parseUEvent(data []byte) *Event {
	if len(data) == 0 {
		return nil
	}

	if bytes.HasPrefix(data, []byte("libudev")) {
		for i := 0; i < len(data)-1; i++ {
			if data[i] != 0 {
				continue
			}
			rest := data[i+1:]
			if idx := bytes.IndexByte(rest, '@'); idx > 0 && idx < 20 {
				data = rest
				break
			}
		}
	}

	parts := bytes.Split(data, []byte{0})
	if len(parts) == 0 || len(parts[0]) == 0 {
		return nil
	}

	header := string(parts[0])
	atIdx := strings.Index(header, "@")
	if atIdx < 1 {
		return nil
	}

	event := &Event{Action: header[:atIdx]}

	for _, part := range parts[1:] {
		if len(part) == 0 {
			continue
		}
		kv := string(part)
		eqIdx := strings.Index(kv, "=")
		if eqIdx < 1 {
			continue
		}
		key, value := kv[:eqIdx], kv[eqIdx+1:]
		switch key {
		case "SUBSYSTEM":
			event.Subsystem = value
		case "DEVTYPE":
			event.DevType = value
		case "DEVNAME":
			event.DevName = value
		}
	}

	return event
}

// run polls the monitor until ctx is canceled, sending every parsed event
// to events.
func (m *monitor) run(ctx context.Context, events chan<- Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		ev, err := m.next()
		if err != nil {
			return err
		}
		if ev == nil {
			continue
		}

		select {
		case events <- *ev:
		case <-ctx.Done():
			return nil
		}
	}
}
