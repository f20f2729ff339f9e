package models

import "fmt"

// ValueKind tags the dynamic type carried by an OptionValue: Int, Fixed,
// Bool, String are data kinds; Group and Button are non-data kinds filtered
// out during action resolution.
type ValueKind int

const (
	// KindInt is a signed integer option value.
	KindInt ValueKind = iota
	// KindFixed is a scanner-library fixed-point scalar, carried here as a
	// float64: it renders as a decimal string and is compared in numeric
	// triggers as its truncated integer representation.
	KindFixed
	// KindBool is a boolean option value.
	KindBool
	// KindString is a free-form string option value.
	KindString
	// KindGroup is a non-data option (a UI grouping node). Never compared.
	KindGroup
	// KindButton is a non-data option (a momentary control). Never compared.
	KindButton
)

// String renders the kind name for logging.
func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFixed:
		return "fixed"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindGroup:
		return "group"
	case KindButton:
		return "button"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// OptionValue is a tagged value read from a device option. Exactly one of
// the typed fields is meaningful, selected by Kind; construct values with
// the Int/Fixed/Bool/String/Group/Button helpers rather than setting fields
// directly.
type OptionValue struct {
	Kind ValueKind

	intVal    int32
	fixedVal  float64
	boolVal   bool
	stringVal string
}

// Int constructs an integer OptionValue.
func Int(v int32) OptionValue { return OptionValue{Kind: KindInt, intVal: v} }

// Fixed constructs a fixed-point OptionValue from its floating value.
func Fixed(v float64) OptionValue { return OptionValue{Kind: KindFixed, fixedVal: v} }

// Bool constructs a boolean OptionValue.
func Bool(v bool) OptionValue { return OptionValue{Kind: KindBool, boolVal: v} }

// Str constructs a string OptionValue.
func Str(v string) OptionValue { return OptionValue{Kind: KindString, stringVal: v} }

// Group constructs a non-data Group OptionValue.
func Group() OptionValue { return OptionValue{Kind: KindGroup} }

// Button constructs a non-data Button OptionValue.
func Button() OptionValue { return OptionValue{Kind: KindButton} }

// IntValue returns the integer payload. Only meaningful when Kind == KindInt.
func (v OptionValue) IntValue() int32 { return v.intVal }

// FixedValue returns the fixed-point payload as a float64. Only meaningful
// when Kind == KindFixed.
func (v OptionValue) FixedValue() float64 { return v.fixedVal }

// BoolValue returns the boolean payload. Only meaningful when Kind == KindBool.
func (v OptionValue) BoolValue() bool { return v.boolVal }

// StringValue returns the string payload. Only meaningful when Kind == KindString.
func (v OptionValue) StringValue() string { return v.stringVal }

// AsInt64 returns the value's integer representation for numeric trigger
// comparison: Int as itself, Fixed truncated to its integer part, Bool as
// 0/1. ok is false for String/Group/Button.
func (v OptionValue) AsInt64() (int64, bool) {
	switch v.Kind {
	case KindInt:
		return int64(v.intVal), true
	case KindFixed:
		return int64(v.fixedVal), true
	case KindBool:
		if v.boolVal {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// FixedString renders a Fixed value as its decimal string, used for the
// environment values exported to scripts (see EnvString).
func (v OptionValue) FixedString() string {
	return fmt.Sprintf("%g", v.fixedVal)
}

// EnvString renders any data-kind value the way it is serialized into a
// script's environment: Int/Bool as decimal, Fixed as its decimal string,
// String as-is. Group/Button return ("", false).
func (v OptionValue) EnvString() (string, bool) {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.intVal), true
	case KindFixed:
		return v.FixedString(), true
	case KindBool:
		if v.boolVal {
			return "1", true
		}
		return "0", true
	case KindString:
		return v.stringVal, true
	default:
		return "", false
	}
}

// IsData reports whether the value is one of the comparable data kinds
// (Int, Fixed, Bool, String) as opposed to Group/Button.
func (v OptionValue) IsData() bool {
	switch v.Kind {
	case KindInt, KindFixed, KindBool, KindString:
		return true
	default:
		return false
	}
}
