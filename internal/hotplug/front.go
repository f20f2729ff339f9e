package hotplug

import (
	"context"
	"log/slog"
	"sync"

	"github.com/scanbd/scanbd/internal/scriptrun"
)

// Callbacks are supplied by the caller (cmd/scanbd) so this package never
// depends on the supervisor package directly. Restart performs the
// stop+start of the fleet required after either hook runs.
type Callbacks struct {
	Restart func(ctx context.Context)

	InsertScript string
	RemoveScript string

	// DeviceEnvName, ActionEnvName override SCANBD_DEVICE/SCANBD_ACTION,
	// matching the rest of the core: the hook script runs with its own
	// environment including SCANBD_DEVICE=dbus device.
	DeviceEnvName string
	ActionEnvName string
}

// Front is the hot-plug watcher. Start/Stop follow the same cooperative,
// flag-driven, mutex-guarded scoped pattern as internal/supervisor; a
// dedicated Handle type was not duplicated here because this front-end
// has exactly one caller.
type Front struct {
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	logger *slog.Logger
}

// New creates a hot-plug front-end.
func New(logger *slog.Logger) *Front {
	if logger == nil {
		logger = slog.Default()
	}
	return &Front{logger: logger}
}

// Start opens the netlink monitor and begins dispatching events to cb.
// Idempotent while already running.
func (f *Front) Start(cb Callbacks) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return nil
	}

	mon, err := newMonitor()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	f.cancel = cancel
	f.done = done
	f.running = true

	go func() {
		defer close(done)
		defer mon.Close()
		f.dispatch(ctx, mon, cb)
	}()

	return nil
}

// Stop signals the watcher to terminate and joins it. Idempotent while
// already stopped.
func (f *Front) Stop() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}
	cancel := f.cancel
	done := f.done
	f.running = false
	f.mu.Unlock()

	cancel()
	<-done
}

func (f *Front) dispatch(ctx context.Context, mon *monitor, cb Callbacks) {
	events := make(chan Event)
	go func() {
		if err := mon.run(ctx, events); err != nil {
			f.logger.Error("hotplug: monitor loop exited", "error", err.Error())
		}
		close(events)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			f.handle(ctx, ev, cb)
		}
	}
}

func (f *Front) handle(ctx context.Context, ev Event, cb Callbacks) {
	if ev.DevType != "usb_device" {
		return
	}

	switch ev.Action {
	case "add":
		f.logger.Info("hotplug: usb_device added", "device", ev.DevName)
		f.runHook(ctx, cb.InsertScript, "insert", cb)
		if cb.Restart != nil {
			cb.Restart(ctx)
		}
	case "remove":
		f.logger.Info("hotplug: usb_device removed", "device", ev.DevName)
		f.runHook(ctx, cb.RemoveScript, "remove", cb)
		if cb.Restart != nil {
			cb.Restart(ctx)
		}
	}
}

func (f *Front) runHook(ctx context.Context, script, action string, cb Callbacks) {
	if script == "" {
		return
	}
	if !scriptrun.Exists(script) {
		f.logger.Warn("hotplug: hook script does not exist, skipping", "script", script, "action", action)
		return
	}

	deviceVar := nonEmpty(cb.DeviceEnvName, "SCANBD_DEVICE")
	actionVar := nonEmpty(cb.ActionEnvName, "SCANBD_ACTION")
	env := scriptrun.BuildEnviron(deviceVar, "dbus device", actionVar, action, nil, f.logger)

	if _, err := scriptrun.Run(ctx, script, env, f.logger); err != nil {
		f.logger.Error("hotplug: hook script exec failed", "script", script, "error", err.Error())
	}
}

func nonEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
