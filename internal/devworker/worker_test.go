package devworker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/scanbd/scanbd/internal/sane"
	"github.com/scanbd/scanbd/internal/scanbdconfig"
	"github.com/scanbd/scanbd/models"
)

func writeScript(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func testDoc(timeoutMillis int, actions []scanbdconfig.ActionSection) *scanbdconfig.Document {
	return &scanbdconfig.Document{
		Global: scanbdconfig.GlobalConfig{
			Timeout:         timeoutMillis,
			EnvDeviceName:   "SCANBD_DEVICE",
			EnvActionName:   "SCANBD_ACTION",
			MultipleActions: false,
			Actions:         actions,
		},
	}
}

func TestWorkerFiresOnButtonPress(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "s.sh")

	buttonOpt := models.OptionInfo{Name: "button", Index: 0}
	opts := []models.OptionInfo{buttonOpt}
	state := sane.NewFakeDeviceState("scanner0", opts)
	lib := sane.NewFakeLibrary(state)

	doc := testDoc(0, []scanbdconfig.ActionSection{
		{Title: "scan", Filter: "^button$", Script: script},
	})

	ctx := context.Background()
	w, err := Setup(ctx, lib, sane.DeviceInfo{Name: "scanner0"}, doc, "/cfg/scanbd.conf", "/etc/scanbd.d", nil)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if len(w.actions) != 1 {
		t.Fatalf("expected 1 bound action, got %d", len(w.actions))
	}

	// Tick 1: value 0. The baseline (last=0) was already taken at setup,
	// so there is no transition and nothing fires.
	if err := w.pollOnce(ctx); err != nil {
		t.Fatalf("pollOnce 1: %v", err)
	}
	if w.actions[0].LastValue == nil {
		t.Fatal("expected baseline to be set after first poll")
	}

	// Tick 2: value transitions to 1, should fire and clear last_value.
	state.Set(buttonOpt, models.Int(1))
	if err := w.pollOnce(ctx); err != nil {
		t.Fatalf("pollOnce 2: %v", err)
	}
	if w.actions[0].LastValue != nil {
		t.Error("expected last_value to be cleared after firing")
	}
}

func TestWorkerExternalTriggerFiresOnce(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "s.sh")

	opt := models.OptionInfo{Name: "button", Index: 0}
	opts := []models.OptionInfo{opt}
	state := sane.NewFakeDeviceState("scanner0", opts)
	lib := sane.NewFakeLibrary(state)

	doc := testDoc(0, []scanbdconfig.ActionSection{
		{Title: "scan", Filter: "^button$", Script: script},
	})

	ctx := context.Background()
	w, err := Setup(ctx, lib, sane.DeviceInfo{Name: "scanner0"}, doc, "", "", nil)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	if ok := w.TriggerAction("scan"); !ok {
		t.Fatal("expected TriggerAction to find the scan action")
	}

	// The baseline was taken at setup, so the first poll goes straight to
	// the transition check and fires because triggered is independent of
	// value_changed.
	if err := w.pollOnce(ctx); err != nil {
		t.Fatalf("pollOnce: %v", err)
	}
	if w.actions[0].Triggered.Load() {
		t.Error("expected triggered flag to be cleared after consumption")
	}
	if w.actions[0].LastValue != nil {
		t.Error("expected last_value to be cleared after firing from an external trigger")
	}
}

func TestWorkerReopenFailureTerminates(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "s.sh")

	opt := models.OptionInfo{Name: "button", Index: 0}
	opts := []models.OptionInfo{opt}
	state := sane.NewFakeDeviceState("scanner0", opts)
	state.ReopenFails = true
	lib := sane.NewFakeLibrary(state)

	doc := testDoc(0, []scanbdconfig.ActionSection{
		{Title: "scan", Filter: "^button$", Script: script},
	})

	ctx := context.Background()
	w, err := Setup(ctx, lib, sane.DeviceInfo{Name: "scanner0"}, doc, "", "", nil)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	state.Set(opt, models.Int(1))
	w.TriggerAction("scan")

	if err := w.pollOnce(ctx); err == nil {
		t.Fatal("expected pollOnce to report the reopen failure as a fatal error")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "s.sh")

	opt := models.OptionInfo{Name: "button", Index: 0}
	opts := []models.OptionInfo{opt}
	state := sane.NewFakeDeviceState("scanner0", opts)
	lib := sane.NewFakeLibrary(state)

	doc := testDoc(1, []scanbdconfig.ActionSection{
		{Title: "scan", Filter: "^button$", Script: script},
	})

	ctx, cancel := context.WithCancel(context.Background())
	w, err := Setup(ctx, lib, sane.DeviceInfo{Name: "scanner0"}, doc, "", "", nil)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned an error after cancellation: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
