package action

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/scanbd/scanbd/internal/sane"
	"github.com/scanbd/scanbd/internal/scanbdconfig"
	"github.com/scanbd/scanbd/internal/scanval"
	"github.com/scanbd/scanbd/models"
)

// FindMatchingOptions binds every configured action section in sections to
// every live device option
// whose name fully matches the section's filter and whose current value is
// a data kind (not Group/Button). existing is the worker's accumulated
// Action list so far this Setup call (global sections are resolved first,
// then the owning device section); when multipleActions is false a new
// binding to an already-bound option overwrites the existing *Action in
// place rather than appending a second one.
func FindMatchingOptions(
	ctx context.Context,
	dev sane.Device,
	options []models.OptionInfo,
	sections []scanbdconfig.ActionSection,
	existing []*Action,
	multipleActions bool,
	doc *scanbdconfig.Document,
	configFilePath, cfgDir string,
	logger *slog.Logger,
) []*Action {
	if logger == nil {
		logger = slog.Default()
	}

	for _, sec := range sections {
		if sec.Script == "" {
			logger.Warn("action: action section has no script, skipping", "title", sec.Title)
			continue
		}

		filter, err := compileFilter(sec.Filter)
		if err != nil {
			logger.Warn("action: action filter failed to compile, skipping",
				"title", sec.Title, "filter", sec.Filter, "error", err.Error())
			continue
		}

		resolvedScript := scanbdconfig.ResolveScriptPath(doc, configFilePath, cfgDir, sec.Script)

		for _, opt := range options {
			if !filter.MatchString(opt.Name) {
				continue
			}

			val, err := dev.ReadOption(ctx, opt)
			if err != nil {
				logger.Debug("action: failed to read option while matching, skipping",
					"option", opt.Name, "error", err.Error())
				continue
			}
			if !val.IsData() {
				continue
			}

			from, to := resolveTriggers(val.Kind, sec, logger)
			lastValue := val

			if idx := indexOfOption(existing, opt); idx >= 0 && !multipleActions {
				a := existing[idx]
				a.ActionName = sec.Title
				a.Script = resolvedScript
				a.FromValue = from
				a.ToValue = to
				a.LastValue = &lastValue
				a.CurrentValue = nil
				logger.Debug("action: overwrote existing binding", "option", opt.Name, "action", sec.Title)
				continue
			}

			existing = append(existing, &Action{
				Option:     opt,
				ActionName: sec.Title,
				Script:     resolvedScript,
				FromValue:  from,
				ToValue:    to,
				LastValue:  &lastValue,
			})
		}
	}

	return existing
}

// FindMatchingFunctions binds every configured function section to every
// device option whose name
// fully matches its filter. Unlike actions, a function needs no read at
// match time — it only records which option to export and under what
// environment variable name; the value is read when an action fires
// (devworker). A second binding to the same option replaces the first.
func FindMatchingFunctions(
	options []models.OptionInfo,
	sections []scanbdconfig.FunctionSection,
	existing []*Function,
	logger *slog.Logger,
) []*Function {
	if logger == nil {
		logger = slog.Default()
	}

	for _, sec := range sections {
		filter, err := compileFilter(sec.Filter)
		if err != nil {
			logger.Warn("action: function filter failed to compile, skipping",
				"title", sec.Title, "filter", sec.Filter, "error", err.Error())
			continue
		}

		for _, opt := range options {
			if !filter.MatchString(opt.Name) {
				continue
			}

			if idx := indexOfFunctionOption(existing, opt); idx >= 0 {
				logger.Debug("action: function rebinds already-bound option",
					"option", opt.Name, "env", sec.Env)
				existing[idx].Env = sec.Env
				continue
			}

			existing = append(existing, &Function{Option: opt, Env: sec.Env})
		}
	}

	return existing
}

// compileFilter compiles a config filter as a POSIX-extended regular
// expression, anchored for a full match against an option or device name.
func compileFilter(pattern string) (*regexp.Regexp, error) {
	return regexp.CompilePOSIX("^(" + pattern + ")$")
}

func resolveTriggers(kind models.ValueKind, sec scanbdconfig.ActionSection, logger *slog.Logger) (from, to scanval.TriggerValue) {
	if kind == models.KindString {
		return resolveStringTrigger(sec.StringTrigger, logger)
	}
	return resolveNumericalTrigger(sec.NumericalTrigger)
}

func resolveNumericalTrigger(nt *scanbdconfig.NumericalTrigger) (from, to scanval.TriggerValue) {
	defFrom, defTo := scanval.DefaultIntTriggers()
	if nt == nil {
		return defFrom, defTo
	}
	if nt.FromValue != nil {
		from = scanval.IntTrigger(int32(*nt.FromValue))
	} else {
		from = defFrom
	}
	if nt.ToValue != nil {
		to = scanval.IntTrigger(int32(*nt.ToValue))
	} else {
		to = defTo
	}
	return from, to
}

func resolveStringTrigger(st *scanbdconfig.StringTriggerConfig, logger *slog.Logger) (from, to scanval.TriggerValue) {
	defFrom, defTo := scanval.DefaultStringTriggers()
	from, to = defFrom, defTo
	if st == nil {
		return from, to
	}
	if st.FromValue != nil {
		if compiled, err := scanval.CompileStringTrigger(*st.FromValue, logger); err == nil {
			from = compiled
		}
	}
	if st.ToValue != nil {
		if compiled, err := scanval.CompileStringTrigger(*st.ToValue, logger); err == nil {
			to = compiled
		}
	}
	return from, to
}

func indexOfOption(actions []*Action, opt models.OptionInfo) int {
	for i, a := range actions {
		if a.Option == opt {
			return i
		}
	}
	return -1
}

func indexOfFunctionOption(functions []*Function, opt models.OptionInfo) int {
	for i, f := range functions {
		if f.Option == opt {
			return i
		}
	}
	return -1
}
