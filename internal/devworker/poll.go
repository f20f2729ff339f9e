package devworker

import (
	"context"
	"regexp"
	"time"

	"github.com/scanbd/scanbd/internal/scanval"
	"github.com/scanbd/scanbd/models"
)

// compileAnchored compiles a device-section filter as an anchored
// POSIX-extended regular expression (full match).
func compileAnchored(pattern string) (*regexp.Regexp, error) {
	return regexp.CompilePOSIX("^(" + pattern + ")$")
}

// ─────────────────────────────────────────────────────────────────────────────
// Poll loop
// ─────────────────────────────────────────────────────────────────────────────

// Run executes the poll loop until ctx is canceled or a fatal error occurs
// (currently only a failed device reopen after firing, which terminates
// the worker).
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := w.pollOnce(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.timeout):
		}
	}
}

// pollOnce runs one poll iteration over every Action in deterministic
// insertion order, applying a "first use wins" de-duplication rule across
// repeated reads of the same option within the iteration.
func (w *Worker) pollOnce(ctx context.Context) error {
	reads := make(map[models.OptionInfo]models.OptionValue)

	for _, a := range w.actions {
		// ── read, de-duplicated against this iteration's cache ──────────
		current, ok := w.readOnce(ctx, a.Option, reads)
		if !ok {
			continue
		}

		if a.LastValue == nil {
			lv := current
			a.LastValue = &lv
			continue
		}

		// ── transition check, then fire on a match or an external trigger ──
		changed := w.valueChanged(*a.LastValue, current, a.FromValue, a.ToValue)
		lv := current
		a.LastValue = &lv

		triggered := a.ConsumeTriggered()
		if changed || triggered {
			if err := w.fire(ctx, a, reads); err != nil {
				return err
			}
		}
	}

	return nil
}

// readOnce reads opt's current value, reusing a value already read this
// iteration — some backends mutate state on read, so double-reads of the
// same option within one iteration must be avoided. ok is false on a read
// failure, which is logged and the caller skips this action for this
// iteration.
func (w *Worker) readOnce(ctx context.Context, opt models.OptionInfo, reads map[models.OptionInfo]models.OptionValue) (models.OptionValue, bool) {
	if v, ok := reads[opt]; ok {
		return v, true
	}
	v, err := w.device.ReadOption(ctx, opt)
	if err != nil {
		w.logger.Warn("devworker: failed to read option value", "device", w.info.Name, "option", opt.Name, "error", err.Error())
		return models.OptionValue{}, false
	}
	reads[opt] = v
	return v, true
}

// valueChanged computes whether an action should fire: true iff the new
// value matches to_value and the previous value matched from_value. A
// kind mismatch between last and current should never happen in practice
// (a device's option kinds do not change between reads); it is logged and
// treated as unchanged rather than panicking, since no error should ever
// escape a worker goroutine's loop uncontrolled.
func (w *Worker) valueChanged(last, current models.OptionValue, from, to scanval.TriggerValue) bool {
	if last.Kind != current.Kind {
		w.logger.Error("devworker: option value kind changed across poll iterations, invariant violated",
			"device", w.info.Name, "last_kind", last.Kind.String(), "current_kind", current.Kind.String())
		return false
	}
	return scanval.Equal(to, current, w.logger) && scanval.Equal(from, last, w.logger)
}
