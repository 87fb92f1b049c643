// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()

	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		require.FailNow(t, what)
	}
}

func runListener(ctx context.Context, cancel context.CancelFunc, stopped <-chan struct{}) <-chan struct{} {
	finished := make(chan struct{})
	go func() {
		interruptListener(ctx, cancel, stopped, zerolog.Nop())
		close(finished)
	}()
	return finished
}

// Both cases share shutdownRequestChannel, so they run in order in one test.
func TestInterruptListenerExits(t *testing.T) {
	t.Run("cancelled before any request", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		finished := runListener(ctx, cancel, make(chan struct{}))

		cancel()
		waitClosed(t, finished, "listener still running after its context ended")
	})

	t.Run("shutdown request", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		stopped := make(chan struct{})
		finished := runListener(ctx, cancel, stopped)

		requestShutdown()
		waitClosed(t, ctx.Done(), "context not cancelled by the shutdown request")

		select {
		case <-finished:
			assert.Fail(t, "listener returned before it was stopped")
		default:
		}

		close(stopped)
		waitClosed(t, finished, "listener still running after it was stopped")
	})
}
