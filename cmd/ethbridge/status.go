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

package main

import (
	"fmt"

	"github.com/probeum/ethbridge/wire"
	"gopkg.in/urfave/cli.v1"
)

var (
	heightFlag = cli.Uint64Flag{
		Name:  "height",
		Usage: "If set, also print the canonical hash at this height",
	}

	statusCommand = cli.Command{
		Name:      "status",
		Usage:     "Print whether the bridge is initialized and its current tip",
		ArgsUsage: " ",
		Flags:     []cli.Flag{heightFlag},
		Action:    runStatus,
	}
)

func runStatus(ctx *cli.Context) error {
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	initializedOut, err := sess.Bridge.DispatchInitialized(nil)
	if err != nil {
		return err
	}
	initialized, err := wire.NewReader(initializedOut).Bool()
	if err != nil {
		return err
	}
	fmt.Printf("initialized: %t\n", initialized)

	lastBlockOut, err := sess.Bridge.DispatchLastBlockNumber(nil)
	if err != nil {
		return err
	}
	lastBlockNumber, err := wire.NewReader(lastBlockOut).Uint64()
	if err != nil {
		return err
	}
	fmt.Printf("last_block_number: %d\n", lastBlockNumber)

	if ctx.IsSet(heightFlag.Name) {
		height := ctx.Uint64(heightFlag.Name)
		w := wire.NewWriter()
		w.PutUint64(height)
		blockHashOut, err := sess.Bridge.DispatchBlockHash(w.Bytes())
		if err != nil {
			return err
		}
		r := wire.NewReader(blockHashOut)
		present, err := r.Bool()
		if err != nil {
			return err
		}
		if present {
			hash, err := r.Hash256()
			if err != nil {
				return err
			}
			fmt.Printf("block_hash(%d): %s\n", height, hash)
		} else {
			fmt.Printf("block_hash(%d): <none>\n", height)
		}
	}
	return nil
}
