package ipcpipe

import (
	"fmt"
	"os"
	"syscall"
)

// Write opens the FIFO at path write-only non-blocking and delivers
// "device,action" as a single atomic write of payload+NUL. A payload
// whose encoded form (including the NUL terminator) exceeds PIPE_BUF is
// rejected outright rather than attempted, since a partial write would
// corrupt the reader's framing.
func Write(path, device, action string) error {
	payload := device + "," + action
	if len(payload)+1 > pipeBufSize {
		return fmt.Errorf("ipcpipe: payload %d bytes exceeds PIPE_BUF-1", len(payload))
	}

	file, err := os.OpenFile(path, os.O_WRONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		return fmt.Errorf("ipcpipe: open %q for write: %w", path, err)
	}
	defer file.Close()

	buf := make([]byte, len(payload)+1)
	copy(buf, payload)
	// buf[len(payload)] is already the zero byte NUL terminator.

	n, err := file.Write(buf)
	if err != nil {
		return fmt.Errorf("ipcpipe: write %q: %w", path, err)
	}
	if n != len(buf) {
		return fmt.Errorf("ipcpipe: short write (%d of %d bytes), atomicity violated", n, len(buf))
	}
	return nil
}
