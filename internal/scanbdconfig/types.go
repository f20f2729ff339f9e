// Package scanbdconfig loads scanbd's hierarchical configuration file and
// exposes it to the rest of the core two ways: as typed, ergonomic structs
// (Document, GlobalConfig, DeviceSection, ActionSection, FunctionSection)
// for normal call sites, and as a generic path-based typed accessor
// (get<T>(path) returning present/absent) for the handful of scalar global
// settings the core looks up by dotted path.
//
// Shaped like a config.Load / config.DeviceConfig split
// (directory-of-YAML-files → resolved struct, raw-entry-with-yaml-tags →
// defaults-applied struct), generalized from a flat per-host schema to
// scanbd's nested global/device/action/function schema and from a
// directory of files to a single file plus an `include` directive.
package scanbdconfig

// Document is the fully parsed and defaulted scanbd configuration.
type Document struct {
	Global  GlobalConfig
	Devices []DeviceSection

	// tree is the generic path-accessible form of the same configuration,
	// built alongside Global/Devices during Load. See accessor.go.
	tree map[string]interface{}
}

// GlobalConfig is the resolved `global` section.
type GlobalConfig struct {
	Debug      bool
	DebugLevel int

	// Timeout is the poll cadence in milliseconds. Default 500.
	Timeout int

	// MultipleActions controls whether two action sections may bind the
	// same option. Default false.
	MultipleActions bool

	// LocalOnly restricts device enumeration to directly attached
	// (non-network) devices when true. Default true.
	LocalOnly bool

	ScriptDir string
	PidFile   string
	User      string
	Group     string

	DeviceInsertScript string
	DeviceRemoveScript string

	// EnvDeviceName, EnvActionName override the SCANBD_DEVICE / SCANBD_ACTION
	// environment variable names.
	EnvDeviceName string
	EnvActionName string

	// Saned, SanedOpt, SanedEnv are manager-mode settings. Parsed for
	// fidelity with the configuration schema but never consulted by the
	// core — manager mode is out of scope here.
	Saned    bool
	SanedOpt string
	SanedEnv string

	Actions   []ActionSection
	Functions []FunctionSection
}

// ActionSection is one `global.action[*]` or `device[*].action[*]` entry.
type ActionSection struct {
	Title  string
	Filter string
	Desc   string
	Script string

	NumericalTrigger *NumericalTrigger
	StringTrigger    *StringTriggerConfig
}

// NumericalTrigger is a `numerical-trigger` subsection.
type NumericalTrigger struct {
	FromValue *int
	ToValue   *int
}

// StringTriggerConfig is a `string-trigger` subsection.
type StringTriggerConfig struct {
	FromValue *string
	ToValue   *string
}

// FunctionSection is one `global.function[*]` or `device[*].function[*]`
// entry.
type FunctionSection struct {
	Title  string
	Filter string
	Desc   string
	Env    string
}

// DeviceSection is one `device[*]` multisection entry.
type DeviceSection struct {
	Title  string
	Filter string
	Desc   string

	Actions   []ActionSection
	Functions []FunctionSection
}
