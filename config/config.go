// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"gitlab.com/jaxnet/chainsim/corelog"
	"gitlab.com/jaxnet/chainsim/network"
	"gitlab.com/jaxnet/chainsim/types/pow"
	"gopkg.in/yaml.v3"
)

const (
	// Version of the simulator binaries.
	Version = "0.1.0"

	defaultLogLevel        = "info"
	defaultMetricsPort     = 9100
	defaultMetricsRoute    = "/metrics"
	defaultMetricsInterval = 5
	defaultSnapshotDirname = "snapshots"
)

// Config is the full set of simulator options. Every option can be set in
// a yaml or toml file and overridden on the command line.
type Config struct {
	ConfigFile  string `toml:"-" yaml:"-" short:"C" long:"configfile" description:"Path to configuration file (.yaml, .yml or .toml)"`
	ShowVersion bool   `toml:"-" yaml:"-" short:"V" long:"version" description:"Display version information and exit"`

	Nodes         int    `yaml:"nodes" toml:"nodes" short:"n" long:"nodes" description:"Number of replicas, must be odd"`
	Difficulty    int    `yaml:"difficulty" toml:"difficulty" long:"difficulty" description:"Number of leading zero hex characters a block hash must carry"`
	Blocks        int    `yaml:"blocks" toml:"blocks" short:"b" long:"blocks" description:"Number of payload blocks mined on top of genesis"`
	StrictGenesis bool   `yaml:"strict_genesis" toml:"strict_genesis" long:"strictgenesis" description:"Check the genesis block during validation"`
	MaxAttempts   uint64 `yaml:"max_attempts" toml:"max_attempts" long:"maxattempts" description:"Give up mining a block after this many nonces, 0 is unbounded"`
	Workers       int    `yaml:"workers" toml:"workers" long:"workers" description:"Replicas mined or validated at once, 0 is one per replica"`
	SnapshotDir   string `yaml:"snapshot_dir" toml:"snapshot_dir" long:"snapshotdir" description:"Save the final replicas into a badger store at this path"`
	DebugLevel    string `yaml:"debug_level" toml:"debug_level" short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical, off} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`

	LogConfig corelog.Config `yaml:"log_config" toml:"log_config" group:"Logging Options"`
	Metrics   MetricsConfig  `yaml:"metrics" toml:"metrics" group:"Metrics Options" namespace:"metrics"`
}

type MetricsConfig struct {
	Enable   bool   `yaml:"enable" toml:"enable" long:"enable" description:"Serve prometheus metrics"`
	Interval int    `yaml:"interval" toml:"interval" long:"interval" description:"Seconds between metric reads"`
	Port     uint16 `yaml:"port" toml:"port" long:"port" description:"Port of the metrics endpoint"`
	Route    string `yaml:"route" toml:"route" long:"route" description:"HTTP route of the metrics endpoint"`
}

// IntervalDuration returns the read interval as a time.Duration.
func (cfg MetricsConfig) IntervalDuration() time.Duration {
	return time.Duration(cfg.Interval) * time.Second
}

// Default returns a config with the reference scenario settings.
func Default() Config {
	return Config{
		Nodes:      network.DefaultNodeCount,
		Difficulty: network.DefaultDifficulty,
		Blocks:     network.DefaultBlockCount,
		DebugLevel: defaultLogLevel,
		LogConfig:  corelog.Config{}.Default(),
		Metrics: MetricsConfig{
			Interval: defaultMetricsInterval,
			Port:     defaultMetricsPort,
			Route:    defaultMetricsRoute,
		},
	}
}

// NetworkConfig converts the options into the configuration of a replica
// network.
func (cfg *Config) NetworkConfig() network.Config {
	return network.Config{
		NodeCount:     cfg.Nodes,
		Difficulty:    cfg.Difficulty,
		Payloads:      network.DefaultPayloads(cfg.Blocks),
		StrictGenesis: cfg.StrictGenesis,
		MaxAttempts:   cfg.MaxAttempts,
		Workers:       cfg.Workers,
	}
}

// Validate checks option ranges that the flag parser can not express.
func (cfg *Config) Validate() error {
	switch {
	case cfg.Nodes <= 0 || cfg.Nodes%2 == 0:
		return errors.Errorf("the nodes option must be odd and positive -- parsed [%d]", cfg.Nodes)
	case cfg.Difficulty < 0 || cfg.Difficulty > pow.MaxDifficulty:
		return errors.Errorf("the difficulty option must be in between 0 and %d -- parsed [%d]",
			pow.MaxDifficulty, cfg.Difficulty)
	case cfg.Blocks < 0:
		return errors.Errorf("the blocks option may not be less than 0 -- parsed [%d]", cfg.Blocks)
	case cfg.Workers < 0:
		return errors.Errorf("the workers option may not be less than 0 -- parsed [%d]", cfg.Workers)
	}

	if cfg.Metrics.Enable {
		if cfg.Metrics.Port == 0 {
			return errors.New("the metrics.port option must be set when metrics are enabled")
		}
		if cfg.Metrics.Interval <= 0 {
			return errors.Errorf("the metrics.interval option must be positive -- parsed [%d]", cfg.Metrics.Interval)
		}
		if !strings.HasPrefix(cfg.Metrics.Route, "/") {
			return errors.Errorf("the metrics.route option must start with / -- parsed [%s]", cfg.Metrics.Route)
		}
	}
	return nil
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			path = strings.Replace(path, "~", homeDir, 1)
		}
	}

	return filepath.Clean(os.ExpandEnv(path))
}

// loadConfigFile decodes path into cfg, choosing the decoder by extension.
func loadConfigFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "unable to open config file")
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.NewDecoder(file).Decode(cfg)
	case ".toml":
		err = toml.NewDecoder(file).Decode(cfg)
	default:
		return errors.Errorf("invalid config file extension [%s], must be .yaml, .yml or .toml", filepath.Ext(path))
	}

	return errors.Wrapf(err, "unable to decode config file %s", path)
}

// LoadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
// 	1) Start with a default config with sane settings
// 	2) Pre-parse the command line to check for an alternative config file
// 	3) Load configuration file overwriting defaults with any specified options
// 	4) Parse CLI options and overwrite/add any specified options
//
// Command line options always take precedence. Unless the debug level is
// "show", the subsystem loggers are configured before returning.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := Default()

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.  Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	if _, err := preParser.ParseArgs(args); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			return nil, nil, err
		}
	}

	if preCfg.ShowVersion {
		return &preCfg, nil, nil
	}

	if preCfg.ConfigFile != "" {
		if err := loadConfigFile(cleanAndExpandPath(preCfg.ConfigFile), &cfg); err != nil {
			return nil, nil, err
		}
	}

	// Parse command line options again to ensure they take precedence.
	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		return nil, nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "LoadConfig")
	}

	cfg.SnapshotDir = cleanAndExpandPath(cfg.SnapshotDir)
	cfg.LogConfig.Directory = cleanAndExpandPath(cfg.LogConfig.Directory)
	if cfg.LogConfig.Filename == "" {
		cfg.LogConfig.Filename = corelog.DefaultLogFile
	}

	if cfg.DebugLevel == "show" {
		return &cfg, remainingArgs, nil
	}

	if err := SetLogLevels(cfg.DebugLevel, cfg.LogConfig); err != nil {
		return nil, nil, errors.Wrap(err, "LoadConfig")
	}

	return &cfg, remainingArgs, nil
}

// DefaultSnapshotDir is used by the tools when no store path is given.
func DefaultSnapshotDir() string {
	return filepath.Join(".", defaultSnapshotDirname)
}
