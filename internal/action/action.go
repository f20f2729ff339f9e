// Package action implements the per-device bound state (Action, Function)
// and the resolution algorithms (find_matching_options,
// find_matching_functions) that bind configured action/function sections
// to concrete device options.
//
// Shaped like a scheduler.ResolveJobs walk: walk a config hierarchy,
// filter against a device's live inventory, dedupe, produce a flat bound
// list — the same shape, generalized from "config hierarchy → PollJob" to
// "config sections → Action/Function bound to an OptionInfo".
package action

import (
	"sync/atomic"

	"github.com/scanbd/scanbd/internal/scanval"
	"github.com/scanbd/scanbd/models"
)

// Action binds one configured action section to one concrete device
// option.
type Action struct {
	Option     models.OptionInfo
	ActionName string
	Script     string

	FromValue scanval.TriggerValue
	ToValue   scanval.TriggerValue

	// LastValue is the value observed on the previous poll iteration.
	// nil means "first observation".
	LastValue *models.OptionValue

	// CurrentValue is not populated by the poll loop: devworker keeps each
	// iteration's reads in a per-iteration cache instead. Resolution leaves
	// it nil.
	CurrentValue *models.OptionValue

	// Triggered is set by an external trigger_action call and consumed
	// (read-and-cleared) on the next poll iteration.
	Triggered atomic.Bool
}

// ConsumeTriggered atomically reads and clears Triggered.
func (a *Action) ConsumeTriggered() bool {
	return a.Triggered.CompareAndSwap(true, false)
}

// Function exports a bound option's current value into a script's
// environment whenever any action on the same device fires.
type Function struct {
	Option models.OptionInfo
	Env    string
}
