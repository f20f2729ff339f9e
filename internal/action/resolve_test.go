package action

import (
	"context"
	"testing"

	"github.com/scanbd/scanbd/internal/sane"
	"github.com/scanbd/scanbd/internal/scanbdconfig"
	"github.com/scanbd/scanbd/internal/scanval"
	"github.com/scanbd/scanbd/models"
)

func openFake(t *testing.T, name string, opts []models.OptionInfo, values map[models.OptionInfo]models.OptionValue) sane.Device {
	t.Helper()
	state := sane.NewFakeDeviceState(name, opts)
	for opt, v := range values {
		state.Set(opt, v)
	}
	lib := sane.NewFakeLibrary(state)
	dev, err := lib.Open(context.Background(), name)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return dev
}

func TestFindMatchingOptionsBindsDataKindsOnly(t *testing.T) {
	buttonOpt := models.OptionInfo{Name: "button", Index: 0}
	groupOpt := models.OptionInfo{Name: "group", Index: 1}
	opts := []models.OptionInfo{buttonOpt, groupOpt}
	dev := openFake(t, "dev0", opts, map[models.OptionInfo]models.OptionValue{
		buttonOpt: models.Bool(false),
		groupOpt:  models.Group(),
	})
	defer dev.Close()

	sections := []scanbdconfig.ActionSection{
		{Title: "scan", Filter: ".*", Script: "scan.script"},
	}
	doc := &scanbdconfig.Document{}

	actions := FindMatchingOptions(context.Background(), dev, opts, sections, nil, false, doc, "/etc/scanbd.conf", "/etc/scanbd.d", nil)

	if len(actions) != 1 {
		t.Fatalf("expected 1 bound action (group excluded), got %d", len(actions))
	}
	if actions[0].Option != buttonOpt {
		t.Fatalf("expected binding to button option, got %+v", actions[0].Option)
	}
}

func TestFindMatchingOptionsSkipsSectionWithoutScript(t *testing.T) {
	opt := models.OptionInfo{Name: "button", Index: 0}
	opts := []models.OptionInfo{opt}
	dev := openFake(t, "dev0", opts, map[models.OptionInfo]models.OptionValue{opt: models.Bool(true)})
	defer dev.Close()

	sections := []scanbdconfig.ActionSection{{Title: "scan", Filter: ".*"}}
	doc := &scanbdconfig.Document{}

	actions := FindMatchingOptions(context.Background(), dev, opts, sections, nil, false, doc, "", "", nil)
	if len(actions) != 0 {
		t.Fatalf("expected no actions bound without a script, got %d", len(actions))
	}
}

func TestFindMatchingOptionsMultipleActionsFalseOverwrites(t *testing.T) {
	opt := models.OptionInfo{Name: "button", Index: 0}
	opts := []models.OptionInfo{opt}
	dev := openFake(t, "dev0", opts, map[models.OptionInfo]models.OptionValue{opt: models.Bool(true)})
	defer dev.Close()

	doc := &scanbdconfig.Document{}
	first := []scanbdconfig.ActionSection{{Title: "first", Filter: "button", Script: "a.sh"}}
	second := []scanbdconfig.ActionSection{{Title: "second", Filter: "button", Script: "b.sh"}}

	actions := FindMatchingOptions(context.Background(), dev, opts, first, nil, false, doc, "", "", nil)
	actions = FindMatchingOptions(context.Background(), dev, opts, second, actions, false, doc, "", "", nil)

	if len(actions) != 1 {
		t.Fatalf("expected a single overwritten action, got %d", len(actions))
	}
	if actions[0].ActionName != "second" {
		t.Fatalf("expected overwrite to win, got action name %q", actions[0].ActionName)
	}
}

func TestFindMatchingOptionsMultipleActionsTrueAppends(t *testing.T) {
	opt := models.OptionInfo{Name: "button", Index: 0}
	opts := []models.OptionInfo{opt}
	dev := openFake(t, "dev0", opts, map[models.OptionInfo]models.OptionValue{opt: models.Bool(true)})
	defer dev.Close()

	doc := &scanbdconfig.Document{}
	first := []scanbdconfig.ActionSection{{Title: "first", Filter: "button", Script: "a.sh"}}
	second := []scanbdconfig.ActionSection{{Title: "second", Filter: "button", Script: "b.sh"}}

	actions := FindMatchingOptions(context.Background(), dev, opts, first, nil, true, doc, "", "", nil)
	actions = FindMatchingOptions(context.Background(), dev, opts, second, actions, true, doc, "", "", nil)

	if len(actions) != 2 {
		t.Fatalf("expected two actions bound to the same option, got %d", len(actions))
	}
}

func TestFindMatchingFunctionsRebindReplaces(t *testing.T) {
	opt := models.OptionInfo{Name: "resolution", Index: 0}
	opts := []models.OptionInfo{opt}

	sections1 := []scanbdconfig.FunctionSection{{Title: "res", Filter: "resolution", Env: "SCANBD_RES"}}
	sections2 := []scanbdconfig.FunctionSection{{Title: "res2", Filter: "resolution", Env: "SCANBD_RESOLUTION"}}

	funcs := FindMatchingFunctions(opts, sections1, nil, nil)
	funcs = FindMatchingFunctions(opts, sections2, funcs, nil)

	if len(funcs) != 1 {
		t.Fatalf("expected single rebound function, got %d", len(funcs))
	}
	if funcs[0].Env != "SCANBD_RESOLUTION" {
		t.Fatalf("expected env to be replaced, got %q", funcs[0].Env)
	}
}

func TestResolveStringTriggerAnchorsConfiguredPattern(t *testing.T) {
	toValue := "scan"
	st := &scanbdconfig.StringTriggerConfig{ToValue: &toValue}

	_, to := resolveStringTrigger(st, nil)

	if !scanval.Equal(to, models.Str("scan"), nil) {
		t.Error("expected the configured to-value to match an exact value")
	}
	if scanval.Equal(to, models.Str("rescan"), nil) {
		t.Error("expected the configured to-value to require a full match, not a substring match")
	}
}

func TestFindMatchingOptionsBadFilterSkipped(t *testing.T) {
	opt := models.OptionInfo{Name: "button", Index: 0}
	opts := []models.OptionInfo{opt}
	dev := openFake(t, "dev0", opts, map[models.OptionInfo]models.OptionValue{opt: models.Bool(true)})
	defer dev.Close()

	doc := &scanbdconfig.Document{}
	sections := []scanbdconfig.ActionSection{{Title: "bad", Filter: "(", Script: "a.sh"}}

	actions := FindMatchingOptions(context.Background(), dev, opts, sections, nil, false, doc, "", "", nil)
	if len(actions) != 0 {
		t.Fatalf("expected no actions from an unparseable filter, got %d", len(actions))
	}
}
