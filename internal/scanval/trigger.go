// Package scanval implements the value-matching engine: a TriggerValue sum
// type (integer equality or POSIX-extended-regex full match) compared
// against an OptionValue read from a device.
//
// Go has no first-class sum types, so this is expressed as a Kind-tagged
// struct with typed accessors instead of an open interface{} hierarchy,
// matching models.OptionValue's shape.
package scanval

import (
	"fmt"
	"log/slog"
	"regexp"
)

// TriggerKind selects which comparison a TriggerValue performs.
type TriggerKind int

const (
	// KindIntTrigger matches by integer equality against Int/Fixed/Bool.
	KindIntTrigger TriggerKind = iota
	// KindStringTrigger matches by full regex match against String.
	KindStringTrigger
)

// TriggerValue is either an integer-equality pattern or a compiled regular
// expression pattern.
type TriggerValue struct {
	Kind TriggerKind

	intPattern int32
	re         *regexp.Regexp
}

// IntTrigger constructs an integer-equality TriggerValue.
func IntTrigger(n int32) TriggerValue {
	return TriggerValue{Kind: KindIntTrigger, intPattern: n}
}

// StringTrigger constructs a regex TriggerValue from an already-compiled
// expression. Use CompileStringTrigger to compile from source text.
func StringTrigger(re *regexp.Regexp) TriggerValue {
	return TriggerValue{Kind: KindStringTrigger, re: re}
}

// CompileStringTrigger compiles pattern as a POSIX-extended regular
// expression and returns a string TriggerValue. Go's regexp package (RE2)
// is used as the nearest available engine — see DESIGN.md for why no
// third-party POSIX-ERE engine is wired in instead; RE2 is a superset of
// POSIX ERE for the anchored full-match usage this package needs.
//
// A compile failure is never fatal: it is logged and the caller is expected
// to substitute a default trigger.
func CompileStringTrigger(pattern string, logger *slog.Logger) (TriggerValue, error) {
	re, err := regexp.CompilePOSIX(anchor(pattern))
	if err != nil {
		if logger != nil {
			logger.Warn("scanval: trigger regex compile failed", "pattern", pattern, "error", err.Error())
		}
		return TriggerValue{}, fmt.Errorf("scanval: compile %q: %w", pattern, err)
	}
	return StringTrigger(re), nil
}

// IntPattern returns the integer pattern. Only meaningful when
// Kind == KindIntTrigger.
func (t TriggerValue) IntPattern() int32 { return t.intPattern }

// Regexp returns the compiled pattern. Only meaningful when
// Kind == KindStringTrigger.
func (t TriggerValue) Regexp() *regexp.Regexp { return t.re }
