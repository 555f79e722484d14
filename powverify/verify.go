// Copyright 2015 The go-probeum Authors
// This file is part of the go-probeum library.
//
// The go-probeum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probeum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probeum library. If not, see <http://www.gnu.org/licenses/>.

// Package powverify bridges the relayer-submitted Merkle witnesses to
// package ethash's Hashimoto loop: every dataset word the mix needs is
// pulled from the witness list and checked against the epoch's pinned
// Merkle root before it is handed to the mixer.
package powverify

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/probeum/ethbridge/common"
	"github.com/probeum/ethbridge/ethash"
	"github.com/probeum/ethbridge/merkle"
)

// ErrMerkleRoot is returned when a witness pair does not fold up to the
// epoch's pinned Merkle root.
var ErrMerkleRoot = errors.New("powverify: merkle proof does not match epoch root")

// ErrWitnessExhausted is returned when the Hashimoto loop asks for more
// dataset words than the relayer supplied witnesses for.
var ErrWitnessExhausted = errors.New("powverify: not enough witnesses for this header")

// HashimotoMerkle verifies a header's proof-of-work using Merkle-witnessed
// DAG lookups in place of a locally generated dataset. witnesses must be
// supplied in the exact order the Hashimoto loop will consume them; each
// entry packs two adjacent 64-byte dataset nodes together with the sibling
// path needed to fold them up to epochRoot.
func HashimotoMerkle(partialHash common.Hash256, nonce common.Hash64, blockNumber uint64, witnesses []merkle.DoubleNodeWithMerkleProof, epochRoot common.Hash128) (mixHash, result common.Hash256, err error) {
	datasetSize := ethash.GetFullSize(ethash.Epoch(blockNumber))

	cursor := 0
	lookup := func(index uint32) ([16]uint32, error) {
		pairIdx := cursor / 2
		slot := cursor % 2
		cursor++

		if pairIdx >= len(witnesses) {
			return [16]uint32{}, fmt.Errorf("%w: need pair %d, have %d", ErrWitnessExhausted, pairIdx, len(witnesses))
		}
		w := &witnesses[pairIdx]

		if slot == 0 {
			got := w.ApplyMerkleProof(uint64(index / 2))
			if got != epochRoot {
				return [16]uint32{}, fmt.Errorf("%w: pair %d", ErrMerkleRoot, pairIdx)
			}
		}

		// Ethash dataset words are little-endian on the wire but the raw
		// witness node is stored big-endian-first; reverse each 32 byte
		// half before reinterpreting as little-endian uint32 words.
		node := w.DAGNodes[slot]
		var reversed [64]byte
		reverseInto(reversed[:32], node[:32])
		reverseInto(reversed[32:], node[32:])

		var words [16]uint32
		for i := range words {
			words[i] = binary.LittleEndian.Uint32(reversed[i*4:])
		}
		return words, nil
	}

	mixHash, result, err = ethash.Hashimoto(partialHash, nonce, datasetSize, lookup)
	if err != nil {
		return common.Hash256{}, common.Hash256{}, err
	}
	return mixHash, result, nil
}

func reverseInto(dst, src []byte) {
	for i := range src {
		dst[i] = src[len(src)-1-i]
	}
}
