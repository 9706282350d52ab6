// Package lifecycle coordinates process-level shutdown and pre-mutation
// backups for a single CLI invocation (spec §4.6 "Lifecycle & Backup").
// Signal handling and ordered cleanup are grounded on the teacher's
// cmd/bd/daemon_server.go runEventLoop (signal.Notify + select-based
// shutdown with a deadline), adapted from a long-running daemon's event
// loop to a single command's deferred cleanup path.
package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/n8n-cli/wf/internal/logging"
)

// shutdownSignals mirrors the teacher's daemonSignals set (SIGINT, SIGTERM).
var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// ExitCode maps a signal to the POSIX-standard exit code spec §4.6 requires
// (SIGINT -> 130, SIGTERM -> 143). Any other signal falls back to 1.
func ExitCode(sig os.Signal) int {
	switch sig {
	case syscall.SIGINT:
		return 130
	case syscall.SIGTERM:
		return 143
	default:
		return 1
	}
}

// Coordinator owns the root cancellation context for one CLI invocation and
// the ordered set of cleanup steps registered against it.
type Coordinator struct {
	ctx      context.Context
	cancel   context.CancelFunc
	log      *logging.Logger
	deadline time.Duration

	sigChan chan os.Signal
	caught  chan os.Signal
	done    chan struct{}

	steps []func(context.Context) error
}

// New builds a Coordinator, ignores SIGPIPE (spec §4.6: "so that piping to
// head does not crash"), and begins watching for SIGINT/SIGTERM. deadline
// bounds how long cleanup is given before the process is forced to exit;
// callers source it from config.Config.CleanupTimeoutMs.
func New(parent context.Context, deadline time.Duration, log *logging.Logger) *Coordinator {
	signal.Ignore(syscall.SIGPIPE)

	ctx, cancel := context.WithCancel(parent)
	if log == nil {
		log = logging.Discard()
	}
	c := &Coordinator{
		ctx:      ctx,
		cancel:   cancel,
		log:      log,
		deadline: deadline,
		sigChan:  make(chan os.Signal, 1),
		caught:   make(chan os.Signal, 1),
		done:     make(chan struct{}),
	}
	signal.Notify(c.sigChan, shutdownSignals...)
	go c.watch()
	return c
}

// Context is the root cancellation context; child I/O (HTTP requests,
// catalog queries, backup writes) should derive from it.
func (c *Coordinator) Context() context.Context { return c.ctx }

func (c *Coordinator) watch() {
	select {
	case sig := <-c.sigChan:
		c.log.Info("received signal, shutting down", "signal", sig)
		c.caught <- sig
		c.cancel()
	case <-c.done:
	}
}

// RegisterCleanup appends a cleanup step to run, in registration order, when
// Shutdown is called (spec §4.6: "cancel any outstanding HTTP contexts,
// flush debug output, close the local store" — each such action is one
// registered step).
func (c *Coordinator) RegisterCleanup(step func(context.Context) error) {
	c.steps = append(c.steps, step)
}

// Shutdown runs every registered cleanup step in order, bounded by the
// configured deadline. It always cancels the root context first so
// in-flight operations observe cancellation before cleanup begins. Returns
// the first cleanup error encountered, if any; it keeps running the
// remaining steps regardless (best-effort, spec §4.6 "Backups are
// best-effort").
func (c *Coordinator) Shutdown() error {
	close(c.done)
	c.cancel()
	signal.Stop(c.sigChan)

	cleanupCtx, cancel := context.WithTimeout(context.Background(), c.deadline)
	defer cancel()

	var firstErr error
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for _, step := range c.steps {
			if err := step(cleanupCtx); err != nil {
				c.log.Error("cleanup step failed", "error", err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}()

	select {
	case <-finished:
	case <-cleanupCtx.Done():
		c.log.Warn("cleanup deadline exceeded, forcing termination", "deadline", c.deadline)
	}
	return firstErr
}

// CaughtSignal returns the signal that triggered shutdown, if any, and
// whether one was caught. Callers use this after Shutdown to decide the
// process exit code via ExitCode.
func (c *Coordinator) CaughtSignal() (os.Signal, bool) {
	select {
	case sig := <-c.caught:
		return sig, true
	default:
		return nil, false
	}
}
