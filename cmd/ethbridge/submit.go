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
	"encoding/json"
	"fmt"
	"os"

	"github.com/probeum/ethbridge/common"
	"github.com/probeum/ethbridge/merkle"
	"github.com/probeum/ethbridge/wire"
	"gopkg.in/urfave/cli.v1"
)

var (
	headerFlag = cli.StringFlag{
		Name:  "header",
		Usage: "0x-prefixed RLP-encoded header bytes",
	}
	witnessFileFlag = cli.StringFlag{
		Name:  "witness-file",
		Usage: "Path to a JSON array of DAG Merkle witnesses (omit for the bootstrap header)",
	}

	submitCommand = cli.Command{
		Name:      "submit",
		Usage:     "Decode and submit one header to the acceptance state machine",
		ArgsUsage: " ",
		Flags:     []cli.Flag{headerFlag, witnessFileFlag},
		Action:    runSubmit,
	}
)

// jsonWitness mirrors merkle.DoubleNodeWithMerkleProof field-for-field;
// common.Hash128/Hash512 already implement encoding.TextMarshaler, so a
// plain struct decodes hex strings without any custom UnmarshalJSON.
type jsonWitness struct {
	DAGNodes [2]common.Hash512 `json:"dag_nodes"`
	Proof    []common.Hash128  `json:"proof"`
}

func readWitnesses(path string) ([]merkle.DoubleNodeWithMerkleProof, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var decoded []jsonWitness
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("parsing witness file: %w", err)
	}
	out := make([]merkle.DoubleNodeWithMerkleProof, len(decoded))
	for i, w := range decoded {
		out[i] = merkle.DoubleNodeWithMerkleProof{DAGNodes: w.DAGNodes, Proof: w.Proof}
	}
	return out, nil
}

func runSubmit(ctx *cli.Context) error {
	if !ctx.IsSet(headerFlag.Name) {
		return fmt.Errorf("--%s is required", headerFlag.Name)
	}
	raw := common.FromHex(ctx.String(headerFlag.Name))
	if raw == nil {
		return fmt.Errorf("--%s is not valid hex", headerFlag.Name)
	}
	witnesses, err := readWitnesses(ctx.String(witnessFileFlag.Name))
	if err != nil {
		return err
	}

	sess, err := openSession(ctx)
	if err != nil {
		return err
	}

	w := wire.NewWriter()
	w.PutBytes(raw)
	w.PutWitnesses(witnesses)
	if _, err := sess.Bridge.DispatchAddBlockHeader(w.Bytes()); err != nil {
		return fmt.Errorf("rejected: %w", err)
	}

	out, err := sess.Bridge.DispatchLastBlockNumber(nil)
	if err != nil {
		return err
	}
	lastBlockNumber, err := wire.NewReader(out).Uint64()
	if err != nil {
		return err
	}

	if err := sess.Close(); err != nil {
		return err
	}
	fmt.Printf("accepted; last_block_number=%d\n", lastBlockNumber)
	return nil
}
