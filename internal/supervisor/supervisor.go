// Package supervisor implements scanbd's device fleet lifecycle: start
// all pollers, stop all pollers, route an external trigger to one poller.
// Operations are safe to call repeatedly from the signal/hot-plug/pipe
// front-ends that drive it.
//
// Shaped like an app.App Start/Stop lifecycle: enumerate targets, spawn
// one worker goroutine per target, cancel-and-join on Stop. The
// scoped fleet-handle idiom is implemented here as an explicit Handle type
// (see handle.go) rather than Go destructors, which do not exist.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/scanbd/scanbd/internal/devworker"
	"github.com/scanbd/scanbd/internal/sane"
	"github.com/scanbd/scanbd/internal/scanbdconfig"
)

type entry struct {
	worker *devworker.Worker
	cancel context.CancelFunc
	done   chan struct{}
}

// Supervisor owns the fleet of device workers. The state machine is
// Empty -> Running on Start, Running -> Empty on Stop; both are idempotent
// in their already-reached state.
//
// A single mutex serializes every state transition. A caller that issues
// Stop then Start as two sequential calls (e.g. SIGHUP's reload) never
// holds the lock across both — Reload below does exactly that, so a
// plain, non-reentrant sync.Mutex is sufficient; nothing here ever
// re-enters Start or Stop while already holding mu.
type Supervisor struct {
	mu      sync.Mutex
	running bool
	workers map[string]*entry
	refs    int

	lib    sane.Library
	doc    *scanbdconfig.Document
	logger *slog.Logger

	configPath string
	cfgDir     string
}

// New creates a Supervisor bound to lib. Call SetConfig before the first
// Start/Acquire.
func New(lib sane.Library, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{lib: lib, logger: logger}
}

// SetConfig installs the configuration Start and Reload use to enumerate
// devices and set up workers. Safe to call before Start or from within
// Reload.
func (s *Supervisor) SetConfig(doc *scanbdconfig.Document, configPath, cfgDir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.configPath = configPath
	s.cfgDir = cfgDir
}

// ─────────────────────────────────────────────────────────────────────────────
// Fleet lifecycle
// ─────────────────────────────────────────────────────────────────────────────

// Start, if the fleet is empty, enumerates devices and creates/starts one
// worker per device. Idempotent when already running.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked(ctx)
}

func (s *Supervisor) startLocked(ctx context.Context) error {
	if s.running {
		return nil
	}
	if s.doc == nil {
		return fmt.Errorf("supervisor: Start called before SetConfig")
	}

	infos, err := s.lib.Enumerate(ctx, s.doc.Global.LocalOnly)
	if err != nil {
		return fmt.Errorf("supervisor: enumerate devices: %w", err)
	}

	workers := make(map[string]*entry, len(infos))
	for _, info := range infos {
		w, err := devworker.Setup(ctx, s.lib, info, s.doc, s.configPath, s.cfgDir, s.logger)
		if err != nil {
			s.logger.Error("supervisor: failed to set up worker, skipping device", "device", info.Name, "error", err.Error())
			continue
		}

		workerCtx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		workers[info.Name] = &entry{worker: w, cancel: cancel, done: done}

		go func(w *devworker.Worker, workerCtx context.Context, done chan struct{}) {
			defer close(done)
			if err := w.Run(workerCtx); err != nil {
				s.logger.Error("supervisor: worker terminated", "device", w.Name(), "error", err.Error())
			}
			w.Close()
		}(w, workerCtx, done)
	}

	s.workers = workers
	s.running = true
	s.logger.Info("supervisor: fleet started", "workers", len(workers))
	return nil
}

// Stop signals every worker to terminate and joins each one. Idempotent
// when already empty.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	workers := s.workers
	s.workers = nil
	s.running = false
	s.mu.Unlock()

	for _, e := range workers {
		e.cancel()
	}
	for _, e := range workers {
		<-e.done
	}
	s.logger.Info("supervisor: fleet stopped", "workers", len(workers))
}

// Reload installs a new config, then drops and rebuilds the fleet for a
// SIGHUP reload. The lock is released between the config swap, Stop and
// Start, matching the "plain mutex is enough" reasoning above, so the
// three steps are not one atomic transition: between Stop and Start the
// fleet is empty, and a TriggerAction arriving then finds no worker and
// is logged as an unknown device.
func (s *Supervisor) Reload(ctx context.Context, doc *scanbdconfig.Document, configPath, cfgDir string) error {
	s.SetConfig(doc, configPath, cfgDir)
	s.Stop()
	return s.Start(ctx)
}

// TriggerAction forwards to the worker bound to device, which sets the
// flag on the Action named actionName. Logs a warning, never an error,
// when device or actionName is unknown.
func (s *Supervisor) TriggerAction(device, actionName string) {
	s.mu.Lock()
	e, ok := s.workers[device]
	s.mu.Unlock()

	if !ok {
		s.logger.Warn("supervisor: trigger_action for unknown device", "device", device, "action", actionName)
		return
	}
	if !e.worker.TriggerAction(actionName) {
		s.logger.Warn("supervisor: trigger_action for unknown action", "device", device, "action", actionName)
	}
}

// Running reports whether the fleet is currently started.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// DeviceNames returns the names of currently running workers, for
// diagnostics and tests.
func (s *Supervisor) DeviceNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.workers))
	for name := range s.workers {
		names = append(names, name)
	}
	return names
}
