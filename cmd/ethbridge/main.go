// Copyright 2017 The go-probeum Authors
// This file is part of go-probeum.
//
// go-probeum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-probeum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-probeum. If not, see <http://www.gnu.org/licenses/>.

// Command ethbridge is a reference host runtime for package bridge: it
// plays the role the spec's "host ledger" plays in production, driving
// Init/AddBlockHeader/the query operations from the command line instead
// of from another chain's execution environment.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/probeum/ethbridge/bridge"
	"github.com/probeum/ethbridge/chainstore"
	"github.com/probeum/ethbridge/chainstore/leveldbstore"
	"github.com/probeum/ethbridge/config"
	"github.com/probeum/ethbridge/log"
	"github.com/probeum/ethbridge/metrics"
	"gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for the leveldb chain store and bridge state",
		Value: "./ethbridge-data",
	}
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	memoryFlag = cli.BoolFlag{
		Name:  "memory",
		Usage: "Use an in-memory chain store instead of leveldb (state does not survive the process)",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "ethbridge"
	app.Usage = "Probeum Ethash light-client bridge reference host runtime"
	app.Flags = []cli.Flag{dataDirFlag, configFileFlag, memoryFlag}
	app.Commands = []cli.Command{
		initCommand,
		submitCommand,
		statusCommand,
		serveCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadedConfig merges config.Defaults with the optional --config file.
func loadedConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Defaults
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := config.Load(file, &cfg); err != nil {
			return cfg, fmt.Errorf("loading config: %w", err)
		}
	}
	return cfg, nil
}

// session bundles everything a subcommand needs: the store, the bridge
// reconstructed from its last saved state, and a close function that
// persists the inline state record back to disk and releases the store.
type session struct {
	Bridge *bridge.Bridge
	Store  chainstore.Store
	Logger log.Logger

	statePath string
}

func statePath(datadir string) string {
	return filepath.Join(datadir, "state.bin")
}

func openSession(ctx *cli.Context) (*session, error) {
	cfg, err := loadedConfig(ctx)
	if err != nil {
		return nil, err
	}
	logger := log.Root()

	// --memory/--datadir, when passed explicitly, override the config
	// file's [Store] section; otherwise [Store] decides.
	backend := cfg.Store.Backend
	if ctx.GlobalIsSet(memoryFlag.Name) {
		if ctx.GlobalBool(memoryFlag.Name) {
			backend = "memory"
		} else {
			backend = "leveldb"
		}
	}
	datadir := cfg.Store.Path
	if datadir == "" || ctx.GlobalIsSet(dataDirFlag.Name) {
		datadir = ctx.GlobalString(dataDirFlag.Name)
	}

	var store chainstore.Store
	if backend == "memory" {
		store = chainstore.NewMemStore()
	} else {
		if err := os.MkdirAll(datadir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		db, err := leveldbstore.Open(filepath.Join(datadir, "chaindata"))
		if err != nil {
			return nil, fmt.Errorf("opening chain store: %w", err)
		}
		store = db
	}

	b := bridge.New(store, logger)
	b.SetRecorder(metrics.PromRecorder{})

	sp := statePath(datadir)
	if data, err := os.ReadFile(sp); err == nil {
		if err := b.DecodeState(data); err != nil {
			return nil, fmt.Errorf("decoding saved bridge state: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading saved bridge state: %w", err)
	}

	return &session{Bridge: b, Store: store, Logger: logger, statePath: sp}, nil
}

// Close persists the bridge's inline state and releases the store. It is
// a no-op for the in-memory backend beyond the state file write, since
// MemStore holds nothing worth releasing.
func (s *session) Close() error {
	if s.statePath != "" {
		if err := os.WriteFile(s.statePath, s.Bridge.EncodeState(), 0o644); err != nil {
			return fmt.Errorf("saving bridge state: %w", err)
		}
	}
	return s.Store.Close()
}
