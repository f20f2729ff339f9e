package scanbdconfig

import "testing"

func TestResolveScriptPathAbsolute(t *testing.T) {
	doc := &Document{tree: map[string]interface{}{}}
	got := ResolveScriptPath(doc, "/etc/scanbd.conf", DefaultCfgDir, "/opt/scripts/scan.sh")
	if got != "/opt/scripts/scan.sh" {
		t.Fatalf("expected the absolute path unchanged, got %q", got)
	}
}

func TestResolveScriptPathMissingScriptdirUsesConfigDir(t *testing.T) {
	doc := &Document{tree: map[string]interface{}{}}
	got := ResolveScriptPath(doc, "/etc/scanbd/scanbd.conf", DefaultCfgDir, "scan.sh")
	if got != "/etc/scanbd/scan.sh" {
		t.Fatalf("expected config-file-dir + script, got %q", got)
	}
}

func TestResolveScriptPathEmptyScriptdirUsesCfgDir(t *testing.T) {
	doc := &Document{tree: map[string]interface{}{
		"global": map[string]interface{}{"scriptdir": ""},
	}}
	got := ResolveScriptPath(doc, "/etc/scanbd/scanbd.conf", DefaultCfgDir, "scan.sh")
	if got != DefaultCfgDir+"/scan.sh" {
		t.Fatalf("expected cfgDir + script, got %q", got)
	}
}

func TestResolveScriptPathAbsoluteScriptdir(t *testing.T) {
	doc := &Document{tree: map[string]interface{}{
		"global": map[string]interface{}{"scriptdir": "/opt/scripts"},
	}}
	got := ResolveScriptPath(doc, "/etc/scanbd/scanbd.conf", DefaultCfgDir, "scan.sh")
	if got != "/opt/scripts/scan.sh" {
		t.Fatalf("expected scriptdir + script, got %q", got)
	}
}

func TestResolveScriptPathRelativeScriptdir(t *testing.T) {
	doc := &Document{tree: map[string]interface{}{
		"global": map[string]interface{}{"scriptdir": "scripts.d"},
	}}
	got := ResolveScriptPath(doc, "/etc/scanbd/scanbd.conf", DefaultCfgDir, "scan.sh")
	if got != DefaultCfgDir+"/scripts.d/scan.sh" {
		t.Fatalf("expected cfgDir + scriptdir + script, got %q", got)
	}
}
