// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/jaxnet/chainsim/network"
)

// quiet keeps the loggers configured by LoadConfig off the test output.
var quiet = []string{"--noconsolelog", "--debuglevel=off"}

func args(a ...string) []string {
	return append(a, quiet...)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, rest, err := LoadConfig(args())
	require.NoError(t, err)
	assert.Empty(t, rest)

	assert.Equal(t, network.DefaultNodeCount, cfg.Nodes)
	assert.Equal(t, network.DefaultDifficulty, cfg.Difficulty)
	assert.Equal(t, network.DefaultBlockCount, cfg.Blocks)
	assert.False(t, cfg.Metrics.Enable)
	assert.Equal(t, "/metrics", cfg.Metrics.Route)

	netCfg := cfg.NetworkConfig()
	assert.Equal(t, network.DefaultConfig().Payloads, netCfg.Payloads)
	assert.Equal(t, cfg.Nodes, netCfg.NodeCount)
}

func TestLoadConfigFlags(t *testing.T) {
	cfg, rest, err := LoadConfig(args("-n", "7", "--difficulty=2", "--blocks=3",
		"--strictgenesis", "--maxattempts=1000", "--workers=2",
		"--metrics.enable", "--metrics.port=9999", "extra"))
	require.NoError(t, err)

	assert.Equal(t, []string{"extra"}, rest)
	assert.Equal(t, 7, cfg.Nodes)
	assert.Equal(t, 2, cfg.Difficulty)
	assert.Equal(t, 3, cfg.Blocks)
	assert.True(t, cfg.StrictGenesis)
	assert.Equal(t, uint64(1000), cfg.MaxAttempts)
	assert.Equal(t, 2, cfg.Workers)
	assert.True(t, cfg.Metrics.Enable)
	assert.Equal(t, uint16(9999), cfg.Metrics.Port)

	netCfg := cfg.NetworkConfig()
	assert.Equal(t, []string{"Data #1", "Data #2", "Data #3"}, netCfg.Payloads)
	assert.True(t, netCfg.StrictGenesis)
}

func TestLoadConfigFiles(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "chainsim.yaml",
			content: `
nodes: 3
difficulty: 1
blocks: 2
strict_genesis: true
metrics:
  enable: true
  port: 8080
  interval: 1
  route: /stats
`,
		},
		{
			name: "toml",
			file: "chainsim.toml",
			content: `
nodes = 3
difficulty = 1
blocks = 2
strict_genesis = true

[metrics]
enable = true
port = 8080
interval = 1
route = "/stats"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)

			cfg, _, err := LoadConfig(args("-C", path))
			require.NoError(t, err)
			assert.Equal(t, 3, cfg.Nodes)
			assert.Equal(t, 1, cfg.Difficulty)
			assert.Equal(t, 2, cfg.Blocks)
			assert.True(t, cfg.StrictGenesis)
			assert.Equal(t, MetricsConfig{Enable: true, Port: 8080, Interval: 1, Route: "/stats"}, cfg.Metrics)

			// Command line wins over the file.
			cfg, _, err = LoadConfig(args("-C", path, "--nodes=9"))
			require.NoError(t, err)
			assert.Equal(t, 9, cfg.Nodes)
			assert.Equal(t, 1, cfg.Difficulty)
		})
	}
}

func TestLoadSampleConfig(t *testing.T) {
	cfg, _, err := LoadConfig(args("--configfile=sample-chainsim.toml"))
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want.Nodes, cfg.Nodes)
	assert.Equal(t, want.Difficulty, cfg.Difficulty)
	assert.Equal(t, want.Blocks, cfg.Blocks)
	assert.Equal(t, want.Metrics, cfg.Metrics)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"even nodes", args("--nodes=4")},
		{"zero nodes", args("--nodes=0")},
		{"difficulty too high", args("--difficulty=65")},
		{"negative difficulty", args("--difficulty=-1")},
		{"negative blocks", args("--blocks=-2")},
		{"negative workers", args("--workers=-1")},
		{"metrics without port", args("--metrics.enable", "--metrics.port=0")},
		{"metrics bad route", args("--metrics.enable", "--metrics.route=metrics")},
		{"unknown flag", args("--bogus")},
		{"bad extension", args("-C", "chainsim.ini")},
		{"missing file", args("-C", "does-not-exist.toml")},
		{"bad level", []string{"--noconsolelog", "--debuglevel=loud"}},
		{"bad unit", []string{"--noconsolelog", "--debuglevel=FOO=info"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadConfig(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigHelpAndVersion(t *testing.T) {
	_, _, err := LoadConfig([]string{"--help"})
	require.Error(t, err)
	flagsErr, ok := err.(*flags.Error)
	require.True(t, ok)
	assert.Equal(t, flags.ErrHelp, flagsErr.Type)

	cfg, _, err := LoadConfig([]string{"-V"})
	require.NoError(t, err)
	assert.True(t, cfg.ShowVersion)
}

func TestSetLogLevels(t *testing.T) {
	logCfg := Default().LogConfig
	logCfg.DisableConsoleLog = true

	require.NoError(t, SetLogLevels("debug", logCfg))
	for _, unit := range SupportedSubsystems() {
		assert.Equal(t, zerolog.DebugLevel, Logger(unit).GetLevel(), unit)
	}

	require.NoError(t, SetLogLevels("CHAN=trace, NETW=error", logCfg))
	assert.Equal(t, zerolog.TraceLevel, Logger(LogUnitCHAN).GetLevel())
	assert.Equal(t, zerolog.ErrorLevel, Logger(LogUnitNETW).GetLevel())
	assert.Equal(t, zerolog.DebugLevel, Logger(LogUnitMINR).GetLevel())

	// A bad pair leaves every unit untouched.
	assert.Error(t, SetLogLevels("CHAN=info,NETW", logCfg))
	assert.Equal(t, zerolog.TraceLevel, Logger(LogUnitCHAN).GetLevel())

	assert.Equal(t, []string{"CHAN", "METR", "MINR", "NETW", "SIMR", "SNAP"}, SupportedSubsystems())
	assert.Equal(t, zerolog.Disabled, Logger("NOPE").GetLevel())
}
