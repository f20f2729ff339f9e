// Package devworker implements scanbd's per-device poller: one worker per
// device that resolves its actions/functions once at setup, then runs the
// poll/compare/fire loop until its context is canceled.
//
// Shaped like a poller.worker goroutine (one loop per polled target,
// config-driven setup, context-cancellable run), adapted from a shared
// worker pool pulling jobs off a queue to one goroutine exclusively
// owning one device for its lifetime — required here because at most one
// worker may exist per device and the device handle must be closed around
// every script fork, neither of which a shared pool can honor.
//
// Installing a full signal mask for the polling thread, as the reference
// daemon does, has no analogue here: Go delivers OS signals to a single
// dedicated channel via signal.Notify regardless of which goroutine is
// running, so there is no per-goroutine mask to install.
// internal/signalfront is the only consumer of os/signal in this
// repository, which already gives worker goroutines the isolation that
// masking was meant to provide.
package devworker

import (
	"context"
	"log/slog"
	"time"

	"github.com/scanbd/scanbd/internal/action"
	"github.com/scanbd/scanbd/internal/sane"
	"github.com/scanbd/scanbd/internal/scanbdconfig"
)

// Worker polls one device.
type Worker struct {
	lib    sane.Library
	device sane.Device
	info   sane.DeviceInfo

	actions   []*action.Action
	functions []*action.Function

	timeout time.Duration

	deviceEnvName string
	actionEnvName string

	logger *slog.Logger
}

// Setup opens the device, resolves actions/functions against the global
// section and every matching device section, and reads the poll cadence.
func Setup(
	ctx context.Context,
	lib sane.Library,
	info sane.DeviceInfo,
	doc *scanbdconfig.Document,
	configFilePath, cfgDir string,
	logger *slog.Logger,
) (*Worker, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dev, err := lib.Open(ctx, info.Name)
	if err != nil {
		return nil, err
	}

	opts, err := dev.Options(ctx)
	if err != nil {
		dev.Close()
		return nil, err
	}

	w := &Worker{
		lib:           lib,
		device:        dev,
		info:          info,
		timeout:       time.Duration(doc.Global.Timeout) * time.Millisecond,
		deviceEnvName: nonEmpty(doc.Global.EnvDeviceName, "SCANBD_DEVICE"),
		actionEnvName: nonEmpty(doc.Global.EnvActionName, "SCANBD_ACTION"),
		logger:        logger,
	}

	w.actions = action.FindMatchingOptions(ctx, dev, opts, doc.Global.Actions, nil,
		doc.Global.MultipleActions, doc, configFilePath, cfgDir, logger)
	w.functions = action.FindMatchingFunctions(opts, doc.Global.Functions, nil, logger)

	for _, section := range doc.Devices {
		matches, err := deviceMatchesFilter(section.Filter, info.Name)
		if err != nil {
			logger.Warn("devworker: device section filter failed to compile, skipping",
				"title", section.Title, "filter", section.Filter, "error", err.Error())
			continue
		}
		if !matches {
			continue
		}
		w.actions = action.FindMatchingOptions(ctx, dev, opts, section.Actions, w.actions,
			doc.Global.MultipleActions, doc, configFilePath, cfgDir, logger)
		w.functions = action.FindMatchingFunctions(opts, section.Functions, w.functions, logger)
	}

	return w, nil
}

// Name returns the bound device's identifier, used by the supervisor for
// lookup and to enforce that at most one worker exists per device.
func (w *Worker) Name() string { return w.info.Name }

// Close releases the worker's open device handle. Call only after Run has
// returned.
func (w *Worker) Close() error {
	if w.device == nil {
		return nil
	}
	return w.device.Close()
}

// TriggerAction sets the Triggered flag on the Action named actionName.
// Safe to call from any goroutine — the Triggered field is the only part
// of a bound Action the worker goroutine and outside callers both touch,
// and it is atomic.
func (w *Worker) TriggerAction(actionName string) bool {
	for _, a := range w.actions {
		if a.ActionName == actionName {
			a.Triggered.Store(true)
			return true
		}
	}
	return false
}

func nonEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func deviceMatchesFilter(filter, name string) (bool, error) {
	re, err := compileAnchored(filter)
	if err != nil {
		return false, err
	}
	return re.MatchString(name), nil
}
