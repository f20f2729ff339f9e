package scanval

import (
	"log/slog"
	"regexp"

	"github.com/scanbd/scanbd/models"
)

// defaultIntFrom, defaultIntTo are the numeric trigger defaults (int 0→1).
const (
	defaultIntFrom int32 = 0
	defaultIntTo   int32 = 1
)

// defaultStringFromPattern, defaultStringToPattern are the string trigger
// defaults (string ""→".+").
const (
	defaultStringFromPattern = ""
	defaultStringToPattern   = ".+"
)

// DefaultIntTriggers returns the default int 0→1 trigger pair.
func DefaultIntTriggers() (from, to TriggerValue) {
	return IntTrigger(defaultIntFrom), IntTrigger(defaultIntTo)
}

// DefaultStringTriggers returns the default ""→".+" trigger pair. The
// patterns are anchored POSIX EREs so compilation can never fail.
func DefaultStringTriggers() (from, to TriggerValue) {
	fromRe := regexp.MustCompilePOSIX(anchor(regexp.QuoteMeta(defaultStringFromPattern)))
	toRe := regexp.MustCompilePOSIX(anchor(defaultStringToPattern))
	return StringTrigger(fromRe), StringTrigger(toRe)
}

// anchor wraps a pattern so CompilePOSIX performs a full match: a string
// trigger is equal to a value iff its regex fully matches the value.
func anchor(pattern string) string {
	return "^(" + pattern + ")$"
}

// Equal compares a TriggerValue against an observed OptionValue: an int
// trigger matches Int/Fixed/Bool by numeric equality, a string trigger
// matches String by full regex match. Any other pairing is defined unequal
// and logged.
func Equal(t TriggerValue, v models.OptionValue, logger *slog.Logger) bool {
	switch t.Kind {
	case KindIntTrigger:
		n, ok := v.AsInt64()
		if !ok {
			logUnmatchedPairing(logger, t, v)
			return false
		}
		return int64(t.intPattern) == n

	case KindStringTrigger:
		if v.Kind != models.KindString {
			logUnmatchedPairing(logger, t, v)
			return false
		}
		if t.re == nil {
			return false
		}
		return t.re.MatchString(v.StringValue())

	default:
		logUnmatchedPairing(logger, t, v)
		return false
	}
}

func logUnmatchedPairing(logger *slog.Logger, t TriggerValue, v models.OptionValue) {
	if logger == nil {
		return
	}
	triggerKind := "int"
	if t.Kind == KindStringTrigger {
		triggerKind = "string"
	}
	logger.Debug("scanval: trigger/value kind pairing is never equal",
		"trigger_kind", triggerKind,
		"value_kind", v.Kind.String(),
	)
}
