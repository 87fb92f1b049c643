// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.
package main

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"gitlab.com/jaxnet/chainsim/config"
	"gitlab.com/jaxnet/chainsim/corelog"
)

type App struct {
	out io.Writer
}

func main() {
	app := &App{out: os.Stdout}
	if err := app.cliApp().Run(os.Args); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func (app *App) cliApp() *cli.App {
	return &cli.App{
		Name:     "chainsim-tools",
		Usage:    "inspect and export chainsim replica snapshots",
		Version:  config.Version,
		Writer:   app.out,
		Flags:    []cli.Flag{standardFlags[flagDebugLevel]},
		Before:   app.InitLogs,
		Commands: app.getCommands(),

		// main reports the error and sets the exit code.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func (app *App) getCommands() cli.Commands {
	return []*cli.Command{
		{
			Name:   "inspect",
			Usage:  "validate every stored replica and print the vote",
			Flags:  []cli.Flag{standardFlags[flagStore], standardFlags[flagShowBlocks]},
			Action: app.InspectCmd,
		},
		{
			Name:   "dump",
			Usage:  "dump one stored block with all its fields",
			Flags:  []cli.Flag{standardFlags[flagStore], standardFlags[flagReplica], standardFlags[flagBlock]},
			Action: app.DumpCmd,
		},
		{
			Name:   "export-findings",
			Usage:  "write the validation findings of the stored replicas to CSV",
			Flags:  []cli.Flag{standardFlags[flagStore], standardFlags[flagOut]},
			Action: app.ExportFindingsCmd,
		},
		{
			Name:      "merkle-root",
			Usage:     "compute the merkle root of hex-encoded hashes",
			ArgsUsage: "<hash> [hash...]",
			Flags:     []cli.Flag{standardFlags[flagProof]},
			Action:    app.MerkleRootCmd,
		},
		{
			Name:   "survey",
			Usage:  "mine nine chains, falsify them in different patterns and report what validation finds",
			Flags:  []cli.Flag{standardFlags[flagDifficulty]},
			Action: app.SurveyCmd,
		},
	}
}

// InitLogs routes the library loggers to stderr at the requested level.
func (app *App) InitLogs(c *cli.Context) error {
	logConfig := corelog.Config{}.Default()
	if err := config.SetLogLevels(c.String(flagDebugLevel), logConfig); err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}
