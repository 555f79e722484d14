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
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/probeum/ethbridge/common"
	"github.com/probeum/ethbridge/wire"
	"gopkg.in/urfave/cli.v1"
)

var (
	dagsStartEpochFlag = cli.Uint64Flag{
		Name:  "dags-start-epoch",
		Usage: "First epoch for which a DAG Merkle root is known",
	}
	rootsFileFlag = cli.StringFlag{
		Name:  "roots-file",
		Usage: "Path to a file with one 0x-prefixed Hash128 DAG Merkle root per line, in epoch order",
	}

	initCommand = cli.Command{
		Name:      "init",
		Usage:     "Pin the epoch DAG Merkle root table and prepare the bridge for submissions",
		ArgsUsage: " ",
		Flags:     []cli.Flag{dagsStartEpochFlag, rootsFileFlag},
		Action:    runInit,
	}
)

func readRootsFile(path string) ([]common.Hash128, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var roots []common.Hash128
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		roots = append(roots, common.HexToHash128(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return roots, nil
}

func runInit(ctx *cli.Context) error {
	if !ctx.IsSet(rootsFileFlag.Name) {
		return fmt.Errorf("--%s is required", rootsFileFlag.Name)
	}
	roots, err := readRootsFile(ctx.String(rootsFileFlag.Name))
	if err != nil {
		return fmt.Errorf("reading roots file: %w", err)
	}
	if len(roots) == 0 {
		return fmt.Errorf("roots file %q contains no roots", ctx.String(rootsFileFlag.Name))
	}

	sess, err := openSession(ctx)
	if err != nil {
		return err
	}

	w := wire.NewWriter()
	w.PutUint64(ctx.Uint64(dagsStartEpochFlag.Name))
	w.PutHash128Seq(roots)
	if _, err := sess.Bridge.DispatchInit(w.Bytes()); err != nil {
		return err
	}

	if err := sess.Close(); err != nil {
		return err
	}
	fmt.Println("Initialized with " + strconv.Itoa(len(roots)) + " epoch root(s) starting at epoch " + strconv.FormatUint(ctx.Uint64(dagsStartEpochFlag.Name), 10))
	return nil
}
