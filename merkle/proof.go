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

// Package merkle implements the relayer-witnessed DAG node proofs: a pair
// of 64-byte Ethash dataset nodes plus the sibling path needed to fold them
// up to a pinned per-epoch Hash128 root, without ever holding the dataset
// itself in memory.
package merkle

import (
	"github.com/probeum/ethbridge/common"
	"github.com/probeum/ethbridge/crypto"
)

// DoubleNodeWithMerkleProof is the witness a relayer submits for one pair of
// adjacent Ethash dataset items: the two raw 64-byte nodes, and the ordered
// sibling hashes needed to fold them up to the epoch's Merkle root.
type DoubleNodeWithMerkleProof struct {
	// DAGNodes holds exactly two 64-byte dataset items.
	DAGNodes [2]common.Hash512
	// Proof holds the sibling path, ordered leaf to root. Its length equals
	// log2(epoch_leaf_count); callers must not assume a fixed depth.
	Proof []common.Hash128
}

// truncateToHash128 keeps the low 16 bytes of a 32 byte digest.
func truncateToHash128(h [32]byte) common.Hash128 {
	var out common.Hash128
	copy(out[:], h[16:])
	return out
}

func hashHash128Pair(left, right common.Hash128) common.Hash128 {
	var data [64]byte
	copy(data[16:32], left[:])
	copy(data[48:64], right[:])
	return truncateToHash128(crypto.SHA256(data[:]))
}

// ApplyMerkleProof folds the two DAG nodes up through the sibling path and
// returns the resulting root. leafIndex selects, bit by bit from the least
// significant bit, whether the accumulator is hashed as the left or right
// child at each level: an even bit means the running hash is the left
// operand, odd means it is the right operand.
func (p *DoubleNodeWithMerkleProof) ApplyMerkleProof(leafIndex uint64) common.Hash128 {
	var data [128]byte
	copy(data[0:64], p.DAGNodes[0][:])
	copy(data[64:128], p.DAGNodes[1][:])

	leaf := truncateToHash128(crypto.SHA256(data[:]))

	for i, sibling := range p.Proof {
		if (leafIndex>>uint(i))%2 == 0 {
			leaf = hashHash128Pair(leaf, sibling)
		} else {
			leaf = hashHash128Pair(sibling, leaf)
		}
	}
	return leaf
}
