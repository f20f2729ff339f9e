package devworker

import (
	"context"
	"fmt"
	"time"

	"github.com/scanbd/scanbd/internal/action"
	"github.com/scanbd/scanbd/internal/scriptrun"
	"github.com/scanbd/scanbd/models"
)

// fire runs the firing sequence for a changed or externally triggered
// action: build the script environment, close the device, run the
// script, reopen the device. reads is the current iteration's
// first-use-wins cache, shared with pollOnce so a Function bound to an
// option an Action already read this iteration does not trigger a second
// read.
func (w *Worker) fire(ctx context.Context, a *action.Action, reads map[models.OptionInfo]models.OptionValue) error {
	funcVars := w.buildFunctionVars(ctx, reads)

	env := scriptrun.BuildEnviron(w.deviceEnvName, w.info.Name, w.actionEnvName, a.ActionName, funcVars, w.logger)

	if err := w.device.Close(); err != nil {
		w.logger.Warn("devworker: failed to close device before script fork", "device", w.info.Name, "error", err.Error())
	}

	if !scriptrun.Exists(a.Script) {
		w.logger.Warn("devworker: script does not exist, skipping exec", "device", w.info.Name, "script", a.Script)
	} else {
		time.Sleep(w.timeout)

		result, err := scriptrun.Run(ctx, a.Script, env, w.logger)
		if err != nil {
			w.logger.Error("devworker: script exec failed", "device", w.info.Name, "script", a.Script, "error", err.Error())
		} else if result.Signaled {
			w.logger.Info("devworker: script fired", "device", w.info.Name, "action", a.ActionName, "signal", result.Signal)
		} else {
			w.logger.Info("devworker: script fired", "device", w.info.Name, "action", a.ActionName, "exit_code", result.ExitCode)
		}
	}

	dev, err := w.lib.Open(ctx, w.info.Name)
	if err != nil {
		return fmt.Errorf("devworker: reopen %q after firing %q: %w", w.info.Name, a.ActionName, err)
	}
	w.device = dev

	a.LastValue = nil
	return nil
}

// buildFunctionVars reads every bound Function's current value (reusing
// reads already taken this iteration under the same first-use-wins rule)
// and serializes it for the environment. FindMatchingFunctions binds
// options of any kind, so a Function may be bound to a Group or Button
// option; such values have no environment form and are skipped.
func (w *Worker) buildFunctionVars(ctx context.Context, reads map[models.OptionInfo]models.OptionValue) []scriptrun.EnvPair {
	vars := make([]scriptrun.EnvPair, 0, len(w.functions))
	for _, f := range w.functions {
		v, ok := w.readOnce(ctx, f.Option, reads)
		if !ok {
			continue
		}
		s, ok := v.EnvString()
		if !ok {
			continue
		}
		vars = append(vars, scriptrun.EnvPair{Key: f.Env, Value: s})
	}
	return vars
}
