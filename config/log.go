// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2017 The Decred developers
// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gitlab.com/jaxnet/chainsim/corelog"
	"gitlab.com/jaxnet/chainsim/network"
	"gitlab.com/jaxnet/chainsim/node/blockchain"
	"gitlab.com/jaxnet/chainsim/node/snapshot"
	"gitlab.com/jaxnet/chainsim/types/wire"
)

const (
	LogUnitCHAN = "CHAN"
	LogUnitMETR = "METR"
	LogUnitMINR = "MINR"
	LogUnitNETW = "NETW"
	LogUnitSIMR = "SIMR"
	LogUnitSNAP = "SNAP"
)

// unitLogs maps each subsystem identifier to the function installing its
// package logger. Units without a package logger are handed out by Logger.
var unitLogs = map[string]func(zerolog.Logger){
	LogUnitCHAN: blockchain.UseLogger,
	LogUnitMETR: nil,
	LogUnitMINR: wire.UseLogger,
	LogUnitNETW: network.UseLogger,
	LogUnitSIMR: nil,
	LogUnitSNAP: snapshot.UseLogger,
}

var (
	loggersMtx       sync.RWMutex
	subsystemLoggers = map[string]zerolog.Logger{}
)

// Logger returns the logger of the subsystem. It is disabled until
// SetLogLevels configures the unit.
func Logger(unit string) zerolog.Logger {
	loggersMtx.RLock()
	defer loggersMtx.RUnlock()

	logger, ok := subsystemLoggers[unit]
	if !ok {
		return corelog.Disabled
	}
	return logger
}

// SupportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func SupportedSubsystems() []string {
	subsystems := make([]string, 0, len(unitLogs))
	for subsysID := range unitLogs {
		subsystems = append(subsystems, subsysID)
	}

	sort.Strings(subsystems)
	return subsystems
}

// setLogLevel sets the logging level for provided subsystem.  Invalid
// subsystems are ignored.
func setLogLevel(subsystemID string, level zerolog.Level, logConfig corelog.Config) {
	useLogger, ok := unitLogs[subsystemID]
	if !ok {
		return
	}

	logger := corelog.New(subsystemID, level, logConfig)

	loggersMtx.Lock()
	subsystemLoggers[subsystemID] = logger
	loggersMtx.Unlock()

	if useLogger != nil {
		useLogger(logger)
	}
}

// SetLogLevels attempts to parse the specified debug level and set the
// levels accordingly. debugLevel is either a single level applied to every
// subsystem or a comma separated list of <subsystem>=<level> pairs.
func SetLogLevels(debugLevel string, logConfig corelog.Config) error {
	// When the specified string doesn't have any delimiters, treat it as
	// the log level for all subsystems.
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		level, ok := corelog.ParseLevel(debugLevel)
		if !ok {
			return errors.Errorf("the specified debug level [%v] is invalid", debugLevel)
		}

		for subsystemID := range unitLogs {
			setLogLevel(subsystemID, level, logConfig)
		}
		return nil
	}

	type unitLevel struct {
		unit  string
		level zerolog.Level
	}

	// Validate every pair before touching any logger.
	pairs := make([]unitLevel, 0, len(unitLogs))
	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		fields := strings.Split(logLevelPair, "=")
		if len(fields) != 2 {
			return errors.Errorf("the specified debug level contains an invalid "+
				"subsystem/level pair [%v]", logLevelPair)
		}

		subsysID, logLevel := strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1])
		if _, exists := unitLogs[subsysID]; !exists {
			return errors.Errorf("the specified subsystem [%v] is invalid -- "+
				"supported subsystems %v", subsysID, SupportedSubsystems())
		}

		level, ok := corelog.ParseLevel(logLevel)
		if !ok {
			return errors.Errorf("the specified debug level [%v] is invalid", logLevel)
		}
		pairs = append(pairs, unitLevel{unit: subsysID, level: level})
	}

	for _, p := range pairs {
		setLogLevel(p.unit, p.level, logConfig)
	}
	return nil
}
