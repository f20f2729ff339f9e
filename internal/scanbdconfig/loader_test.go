package scanbdconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scanbd.conf", `
global:
  debug: true
`)

	doc, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Global.MultipleActions != false {
		t.Error("expected multiple_actions to default to false")
	}
	if doc.Global.LocalOnly != true {
		t.Error("expected local_only to default to true")
	}
	if doc.Global.EnvDeviceName != "SCANBD_DEVICE" {
		t.Errorf("expected default device env name, got %q", doc.Global.EnvDeviceName)
	}
	if doc.Global.Timeout != defaultTimeoutMillis {
		t.Errorf("expected default timeout %d, got %d", defaultTimeoutMillis, doc.Global.Timeout)
	}
}

func TestLoadParsesActionsAndDevices(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scanbd.conf", `
global:
  timeout: 250
  action:
    - title: scan
      filter: "^button$"
      script: scan.sh
      numerical-trigger:
        from-value: 0
        to-value: 1
device:
  - title: scanner0
    filter: "scanner0"
    action:
      - title: override
        filter: "^resolution$"
        script: res.sh
`)

	doc, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Global.Actions) != 1 || doc.Global.Actions[0].Title != "scan" {
		t.Fatalf("expected one global action named scan, got %+v", doc.Global.Actions)
	}
	if doc.Global.Actions[0].NumericalTrigger == nil || *doc.Global.Actions[0].NumericalTrigger.ToValue != 1 {
		t.Fatalf("expected numerical trigger to-value 1, got %+v", doc.Global.Actions[0].NumericalTrigger)
	}
	if len(doc.Devices) != 1 || doc.Devices[0].Title != "scanner0" {
		t.Fatalf("expected one device section, got %+v", doc.Devices)
	}
	if len(doc.Devices[0].Actions) != 1 || doc.Devices[0].Actions[0].Title != "override" {
		t.Fatalf("expected one per-device action, got %+v", doc.Devices[0].Actions)
	}
}

func TestLoadResolvesIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "extra.conf", `
global:
  action:
    - title: extra
      filter: "^button$"
      script: extra.sh
`)
	path := writeFile(t, dir, "scanbd.conf", `
include:
  - extra.conf
global:
  timeout: 100
`)

	doc, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Global.Timeout != 100 {
		t.Errorf("expected including file's timeout to win, got %d", doc.Global.Timeout)
	}
	if len(doc.Global.Actions) != 1 || doc.Global.Actions[0].Title != "extra" {
		t.Fatalf("expected the included action to be merged in, got %+v", doc.Global.Actions)
	}
}

func TestLoadDetectsIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.conf", "include:\n  - b.conf\n")
	path := writeFile(t, dir, "b.conf", "include:\n  - a.conf\n")

	if _, err := Load(path, nil); err == nil {
		t.Fatal("expected an include cycle to be reported as an error")
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := Load("/nonexistent/scanbd.conf", nil); err == nil {
		t.Fatal("expected an error loading a missing file")
	}
}

func TestLoadParseFailureReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.conf", "global: [this is not a mapping")

	if _, err := Load(path, nil); err == nil {
		t.Fatal("expected a syntactically invalid file to fail to load")
	}
}
