// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
)

// shutdownRequestChannel is used to initiate shutdown from one of the
// subsystems using the same code paths as when an interrupt signal is received.
var (
	shutdownRequestChannel = make(chan struct{})
	shutdownRequestOnce    sync.Once
)

// interruptSignals defines the default signals to catch in order to do a proper
// shutdown.
var interruptSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// requestShutdown asks the interrupt listener to stop the simulator.
func requestShutdown() {
	shutdownRequestOnce.Do(func() { close(shutdownRequestChannel) })
}

// withInterrupt returns a context that is cancelled on SIGINT, SIGTERM or a
// call to requestShutdown. Repeated signals are only logged until the returned
// cancel function is called.
func withInterrupt(parent context.Context, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stopped := make(chan struct{})
	var stopOnce sync.Once

	go interruptListener(ctx, cancel, stopped, log)

	return ctx, func() {
		stopOnce.Do(func() { close(stopped) })
		cancel()
	}
}

// interruptListener cancels ctx on the first interrupt or shutdown request and
// then logs further signals until stopped is closed. It returns at once when
// ctx ends first.
func interruptListener(ctx context.Context, cancel context.CancelFunc, stopped <-chan struct{}, log zerolog.Logger) {
	interruptChannel := make(chan os.Signal, 1)
	signal.Notify(interruptChannel, interruptSignals...)
	defer signal.Stop(interruptChannel)

	select {
	case sig := <-interruptChannel:
		log.Info().Msg("Received signal " + sig.String() + ". Shutting down...")
	case <-shutdownRequestChannel:
		log.Info().Msg("Shutdown requested. Shutting down...")
	case <-ctx.Done():
		return
	}
	cancel()

	for {
		select {
		case sig := <-interruptChannel:
			log.Info().Msg("Received signal " + sig.String() + ". Already shutting down...")
		case <-stopped:
			return
		}
	}
}
