// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"gitlab.com/jaxnet/chainsim/config"
	"gitlab.com/jaxnet/chainsim/node/metrics"
)

func main() {
	// Work around defer not working after os.Exit()
	if err := chainsimMain(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}
}

// chainsimMain is the real main function for chainsim.  It is necessary to
// work around the fact that deferred functions do not run when os.Exit() is
// called.
func chainsimMain(args []string) error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	cfg, _, err := config.LoadConfig(args)
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			return nil
		}
		return err
	}

	if cfg.ShowVersion {
		fmt.Println("chainsim version", config.Version)
		return nil
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", config.SupportedSubsystems())
		return nil
	}

	log := config.Logger(config.LogUnitSIMR)
	defer log.Info().Msg("Shutdown complete")
	log.Info().Msgf("Version %s", config.Version)

	ctx, cancel := withInterrupt(context.Background(), log.With().Str("ctx", "interruptListener").Logger())
	defer cancel()

	sim := newSimulator(cfg, os.Stdout, log)
	if err := sim.build(ctx); err != nil {
		return err
	}

	if cfg.Metrics.Enable {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			prometheus.NewGoCollector(),
			prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		)

		metricsLog := config.Logger(config.LogUnitMETR)
		manager := metrics.Metrics(ctx, cfg.Metrics.IntervalDuration(), registry)
		manager.Add(metrics.NetworkMetrics(sim.net, registry, metricsLog))

		go func() {
			metricsLog.Info().Uint16("port", cfg.Metrics.Port).Str("route", cfg.Metrics.Route).
				Msg("serving metrics")
			if err := manager.Listen(ctx, cfg.Metrics.Route, cfg.Metrics.Port); err != nil {
				metricsLog.Error().Err(err).Msg("metrics endpoint failed")
				requestShutdown()
			}
		}()
	}

	if err := sim.run(ctx); err != nil {
		return err
	}

	if cfg.SnapshotDir != "" {
		if err := sim.saveSnapshots(cfg.SnapshotDir); err != nil {
			log.Error().Err(err).Str("path", cfg.SnapshotDir).Msg("can't save snapshots")
			return err
		}
	}

	if cfg.Metrics.Enable {
		log.Info().Msg("Scenario finished, serving metrics until interrupted")
		<-ctx.Done()
	}
	return nil
}
