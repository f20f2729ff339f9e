// Command scanbd is the scanner-button daemon: it loads its configuration,
// brings up the device supervisor and the signal/hot-plug/pipe front-ends,
// and runs until a shutdown signal arrives.
//
// Structured as flag parsing, logger construction, wiring collaborators,
// then a context-cancellable run loop, generalized to scanbd's three
// front-ends and GNU-style flags via github.com/spf13/pflag.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/scanbd/scanbd/internal/hotplug"
	"github.com/scanbd/scanbd/internal/ipcpipe"
	"github.com/scanbd/scanbd/internal/scanbdconfig"
	"github.com/scanbd/scanbd/internal/signalfront"
	"github.com/scanbd/scanbd/internal/supervisor"
)

const defaultConfigPath = "/etc/scanbd.conf"
const defaultPipePath = "/var/run/scanbd.pipe"

type cliFlags struct {
	manager    bool
	signal     string
	debugLevel int
	foreground bool
	configPath string
	trigger    string
	action     string
}

func parseFlags(args []string) (*cliFlags, error) {
	fs := pflag.NewFlagSet("scanbd", pflag.ContinueOnError)
	f := &cliFlags{}
	fs.BoolVarP(&f.manager, "manager", "m", false, "run in manager mode (out of scope, logs and exits)")
	fs.StringVarP(&f.signal, "signal", "s", "", "send a signal to a running daemon and exit")
	fs.IntVarP(&f.debugLevel, "debug", "d", 0, "debug verbosity level")
	fs.BoolVarP(&f.foreground, "foreground", "f", false, "stay in the foreground (always true; daemonizing is out of scope)")
	fs.StringVarP(&f.configPath, "config", "c", defaultConfigPath, "path to the configuration file")
	fs.StringVarP(&f.trigger, "trigger", "t", "", "device name to trigger synthetically, paired with --action")
	fs.StringVarP(&f.action, "action", "a", "", "action name to trigger synthetically, paired with --trigger")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if (f.trigger == "") != (f.action == "") {
		return nil, fmt.Errorf("scanbd: -t/--trigger and -a/--action must be set together")
	}
	return f, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	level := slog.LevelInfo
	if flags.debugLevel > 0 {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if flags.manager {
		logger.Info("scanbd: manager mode requested but is out of scope, exiting")
		return 1
	}
	if flags.signal != "" {
		logger.Info("scanbd: -s/--signal is out of scope (daemonize/pidfile handling is an external front-end concern), exiting")
		return 1
	}

	doc, err := scanbdconfig.Load(flags.configPath, logger)
	if err != nil {
		logger.Error("scanbd: failed to load configuration", "path", flags.configPath, "error", err.Error())
		return 1
	}

	pipePath := defaultPipePath

	if flags.trigger != "" {
		if err := ipcpipe.Write(pipePath, flags.trigger, flags.action); err != nil {
			logger.Error("scanbd: failed to write trigger message", "error", err.Error())
			return 1
		}
		return 0
	}

	return runDaemon(doc, flags.configPath, pipePath, logger)
}

// ─────────────────────────────────────────────────────────────────────────────
// Daemon wiring and run loop
// ─────────────────────────────────────────────────────────────────────────────

func runDaemon(doc *scanbdconfig.Document, configPath, pipePath string, logger *slog.Logger) int {
	lib, err := newSaneLibrary(logger)
	if err != nil {
		logger.Error("scanbd: no scanner library backend available", "error", err.Error())
		return 1
	}

	sup := supervisor.New(lib, logger)
	sup.SetConfig(doc, configPath, scanbdconfig.DefaultCfgDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handle, err := supervisor.Acquire(ctx, sup)
	if err != nil {
		logger.Error("scanbd: failed to start device supervisor", "error", err.Error())
		return 1
	}

	hp := hotplug.New(logger)
	if err := hp.Start(hotplug.Callbacks{
		Restart:       func(ctx context.Context) { sup.Stop(); sup.Start(ctx) },
		InsertScript:  doc.Global.DeviceInsertScript,
		RemoveScript:  doc.Global.DeviceRemoveScript,
		DeviceEnvName: doc.Global.EnvDeviceName,
		ActionEnvName: doc.Global.EnvActionName,
	}); err != nil {
		logger.Warn("scanbd: hot-plug front-end unavailable", "error", err.Error())
	}

	pipe := ipcpipe.New(pipePath, logger)
	if err := pipe.Start(ipcpipe.Callbacks{TriggerAction: sup.TriggerAction}); err != nil {
		logger.Warn("scanbd: pipe front-end unavailable", "error", err.Error())
	}

	sig := signalfront.New(logger)
	sig.Run(ctx, signalfront.Callbacks{
		Reload: func() {
			fresh, err := scanbdconfig.Load(configPath, logger)
			if err != nil {
				logger.Error("scanbd: config reload failed, keeping previous configuration", "error", err.Error())
				return
			}
			if err := sup.Reload(ctx, fresh, configPath, scanbdconfig.DefaultCfgDir); err != nil {
				logger.Error("scanbd: fleet reload failed", "error", err.Error())
			}
		},
		Stop:  sup.Stop,
		Start: func() { sup.Start(ctx) },
	})

	logger.Info("scanbd: shutting down")
	pipe.Stop()
	hp.Stop()
	handle.Release()
	sig.Stop()
	return 0
}
