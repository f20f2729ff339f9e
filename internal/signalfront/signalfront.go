// Package signalfront implements scanbd's signal front-end: maps
// SIGHUP/SIGUSR1/SIGUSR2 to supervisor operations and SIGTERM/SIGINT to
// graceful shutdown.
//
// Built on the context.Context + signal.NotifyContext shutdown pattern,
// generalized to the multi-signal dispatch table scanbd needs. The classic Unix-daemon advice — signal handlers only write to a
// self-pipe or an atomic word, the main thread reads it — is already
// satisfied by Go's buffered os/signal channel: signal.Notify delivers to
// a channel from the runtime's signal-handling goroutine, never from
// inside a restricted handler context, so the reload/stop/start callbacks
// below run on an ordinary goroutine and may freely take the supervisor's
// lock.
package signalfront

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// Callbacks are the supervisor operations signal delivery drives. Reload
// is SIGHUP (reload config, then stop+start); Stop is SIGUSR1; Start is
// SIGUSR2. SIGTERM and SIGINT invoke no callback: Run returns, and the
// caller performs the shutdown.
type Callbacks struct {
	Reload func()
	Stop   func()
	Start  func()
}

// Front is the running signal listener. Installation is idempotent:
// calling Run twice concurrently on the same Front is not supported, but
// constructing multiple Fronts is harmless since each uses its own
// channel.
type Front struct {
	logger *slog.Logger
	ch     chan os.Signal
}

// New installs signal handling for SIGHUP, SIGUSR1, SIGUSR2, SIGTERM, and
// SIGINT. Call Run to start dispatching.
func New(logger *slog.Logger) *Front {
	if logger == nil {
		logger = slog.Default()
	}
	ch := make(chan os.Signal, 8)
	signal.Notify(ch, syscall.SIGHUP, syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGTERM, syscall.SIGINT)
	return &Front{logger: logger, ch: ch}
}

// Stop uninstalls signal handling.
func (f *Front) Stop() {
	signal.Stop(f.ch)
}

// Run dispatches signals to cb until ctx is canceled or SIGTERM/SIGINT is
// received, whichever comes first. It returns once a shutdown signal has
// been observed and dispatched; the caller then performs the orderly
// shutdown of the supervisor and the hot-plug and pipe front-ends.
func (f *Front) Run(ctx context.Context, cb Callbacks) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-f.ch:
			switch sig {
			case syscall.SIGHUP:
				f.logger.Info("signalfront: SIGHUP received, reloading")
				if cb.Reload != nil {
					cb.Reload()
				}
			case syscall.SIGUSR1:
				f.logger.Info("signalfront: SIGUSR1 received, stopping fleet")
				if cb.Stop != nil {
					cb.Stop()
				}
			case syscall.SIGUSR2:
				f.logger.Info("signalfront: SIGUSR2 received, starting fleet")
				if cb.Start != nil {
					cb.Start()
				}
			case syscall.SIGTERM, syscall.SIGINT:
				f.logger.Info("signalfront: shutdown signal received", "signal", sig.String())
				return
			}
		}
	}
}
