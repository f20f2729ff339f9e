package scanbdconfig

// rawDocument is the direct YAML decoding target. Field names match the
// scanbd config vocabulary.
type rawDocument struct {
	Global  rawGlobal   `yaml:"global"`
	Device  []rawDevice `yaml:"device"`
	Include []string    `yaml:"include"`
}

type rawGlobal struct {
	Debug           bool  `yaml:"debug"`
	DebugLevel      int   `yaml:"debug-level"`
	Timeout         int   `yaml:"timeout"`
	MultipleActions *bool `yaml:"multiple_actions"`
	LocalOnly       *bool `yaml:"local_only"`

	ScriptDir string `yaml:"scriptdir"`
	PidFile   string `yaml:"pidfile"`
	User      string `yaml:"user"`
	Group     string `yaml:"group"`

	DeviceInsertScript string `yaml:"device_insert_script"`
	DeviceRemoveScript string `yaml:"device_remove_script"`

	Environment rawEnvironment `yaml:"environment"`

	Saned    bool   `yaml:"saned"`
	SanedOpt string `yaml:"saned_opt"`
	SanedEnv string `yaml:"saned_env"`

	Action   []rawAction   `yaml:"action"`
	Function []rawFunction `yaml:"function"`
}

type rawEnvironment struct {
	Device string `yaml:"device"`
	Action string `yaml:"action"`
}

type rawAction struct {
	Title  string `yaml:"title"`
	Filter string `yaml:"filter"`
	Desc   string `yaml:"desc"`
	Script string `yaml:"script"`

	NumericalTrigger *rawNumericalTrigger `yaml:"numerical-trigger"`
	StringTrigger    *rawStringTrigger    `yaml:"string-trigger"`
}

type rawNumericalTrigger struct {
	FromValue *int `yaml:"from-value"`
	ToValue   *int `yaml:"to-value"`
}

type rawStringTrigger struct {
	FromValue *string `yaml:"from-value"`
	ToValue   *string `yaml:"to-value"`
}

type rawFunction struct {
	Title  string `yaml:"title"`
	Filter string `yaml:"filter"`
	Desc   string `yaml:"desc"`
	Env    string `yaml:"env"`
}

type rawDevice struct {
	Title  string `yaml:"title"`
	Filter string `yaml:"filter"`
	Desc   string `yaml:"desc"`

	Action   []rawAction   `yaml:"action"`
	Function []rawFunction `yaml:"function"`
}

// defaultTimeoutMillis is the default poll cadence.
const defaultTimeoutMillis = 500

// resolve converts the raw decoded tree into the typed Document, applying
// defaults for any field left unset.
func (r *rawDocument) resolve() Document {
	g := GlobalConfig{
		Debug:              r.Global.Debug,
		DebugLevel:         r.Global.DebugLevel,
		Timeout:            r.Global.Timeout,
		MultipleActions:    boolOr(r.Global.MultipleActions, false),
		LocalOnly:          boolOr(r.Global.LocalOnly, true),
		ScriptDir:          r.Global.ScriptDir,
		PidFile:            r.Global.PidFile,
		User:               r.Global.User,
		Group:              r.Global.Group,
		DeviceInsertScript: r.Global.DeviceInsertScript,
		DeviceRemoveScript: r.Global.DeviceRemoveScript,
		EnvDeviceName:      stringOr(r.Global.Environment.Device, "SCANBD_DEVICE"),
		EnvActionName:      stringOr(r.Global.Environment.Action, "SCANBD_ACTION"),
		Saned:              r.Global.Saned,
		SanedOpt:           r.Global.SanedOpt,
		SanedEnv:           r.Global.SanedEnv,
		Actions:            convertActions(r.Global.Action),
		Functions:          convertFunctions(r.Global.Function),
	}
	if g.Timeout <= 0 {
		g.Timeout = defaultTimeoutMillis
	}

	devices := make([]DeviceSection, 0, len(r.Device))
	for _, d := range r.Device {
		devices = append(devices, DeviceSection{
			Title:     d.Title,
			Filter:    d.Filter,
			Desc:      d.Desc,
			Actions:   convertActions(d.Action),
			Functions: convertFunctions(d.Function),
		})
	}

	return Document{Global: g, Devices: devices}
}

func convertActions(raw []rawAction) []ActionSection {
	out := make([]ActionSection, 0, len(raw))
	for _, a := range raw {
		sec := ActionSection{
			Title:  a.Title,
			Filter: a.Filter,
			Desc:   a.Desc,
			Script: a.Script,
		}
		if a.NumericalTrigger != nil {
			sec.NumericalTrigger = &NumericalTrigger{
				FromValue: a.NumericalTrigger.FromValue,
				ToValue:   a.NumericalTrigger.ToValue,
			}
		}
		if a.StringTrigger != nil {
			sec.StringTrigger = &StringTriggerConfig{
				FromValue: a.StringTrigger.FromValue,
				ToValue:   a.StringTrigger.ToValue,
			}
		}
		out = append(out, sec)
	}
	return out
}

func convertFunctions(raw []rawFunction) []FunctionSection {
	out := make([]FunctionSection, 0, len(raw))
	for _, f := range raw {
		out = append(out, FunctionSection{
			Title:  f.Title,
			Filter: f.Filter,
			Desc:   f.Desc,
			Env:    f.Env,
		})
	}
	return out
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func stringOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
