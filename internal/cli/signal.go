package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// signalContext is cancelled on SIGINT or SIGTERM and remembers which one arrived.
type signalContext struct {
	context.Context
	cancel context.CancelFunc

	mu  sync.Mutex
	sig os.Signal
}

func notifySignals(parent context.Context) *signalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &signalContext{Context: ctx, cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			sc.mu.Lock()
			sc.sig = sig
			sc.mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// received returns the signal that cancelled the context, or nil.
func (sc *signalContext) received() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sig
}

// reportExit tells the user where the session ended. Headless runs stay quiet.
func reportExit(w io.Writer, path string, err error, sig os.Signal, headless bool) {
	switch {
	case headless:
	case err == nil:
		fmt.Fprintf(w, ">>> Finished at '%s'.\n", path)
	case sig == os.Interrupt:
		fmt.Fprintf(w, "[CTRL+C]\n>>> Interrupted at '%s'.\n", path)
	case sig != nil:
		fmt.Fprintf(w, ">>> Stopped by %s at '%s'.\n", sig, path)
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

// handleExecutionError maps interruptions to a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
