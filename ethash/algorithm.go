// Copyright 2017 The go-probeum Authors
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

// Package ethash implements the Hashimoto mixing function of the source
// ledger's proof-of-work, plus the epoch/dataset-size bookkeeping needed to
// run it. It never materializes the gigabyte-scale DAG: the dataset items
// the mix loop needs are supplied by a caller-provided lookup function, so
// that package powverify can satisfy every lookup from a relayer-submitted
// Merkle witness instead of a local dataset.
package ethash

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/probeum/ethbridge/common"
	"github.com/probeum/ethbridge/crypto"
)

// EpochLength is the number of blocks per DAG epoch.
const EpochLength = 30000

const (
	mixBytes     = 128
	hashBytes    = 64
	hashWords    = hashBytes / 4
	loopAccesses = 64

	datasetInitBytes   = 1 << 30
	datasetGrowthBytes = 1 << 23
)

// ErrLookupFailed is available for a LookupFunc to wrap when the dataset
// item it was asked for cannot be produced. Hashimoto returns a lookup
// error unchanged; package powverify's lookup reports its own ErrMerkleRoot
// and ErrWitnessExhausted rather than this value.
var ErrLookupFailed = errors.New("ethash: dataset lookup failed")

// Epoch returns the DAG epoch a block at the given height belongs to.
func Epoch(blockNumber uint64) uint64 { return blockNumber / EpochLength }

// GetFullSize returns the size in bytes of the full dataset for the given
// epoch. The dataset itself is never built; only its size matters:
// Hashimoto reduces each dataset index modulo the resulting row count.
func GetFullSize(epoch uint64) uint64 {
	size := uint64(datasetInitBytes) + uint64(datasetGrowthBytes)*epoch
	size -= mixBytes
	for !new(big.Int).SetUint64(size / mixBytes).ProbablyPrime(1) {
		size -= 2 * mixBytes
	}
	return size
}

// LookupFunc returns the 64-byte dataset item at the given row index,
// already reduced to 16 little-endian uint32 words.
type LookupFunc func(index uint32) ([hashWords]uint32, error)

func fnv(a, b uint32) uint32 { return a*0x01000193 ^ b }

func fnvHash(mix, data []uint32) {
	for i := range mix {
		mix[i] = fnv(mix[i], data[i])
	}
}

// Hashimoto runs the Ethash mixing loop against a header's partial hash and
// nonce, pulling every dataset item it needs through lookup. It returns the
// mix digest and the final result hash; CrossBoundary compares the result
// against the difficulty-derived boundary.
func Hashimoto(partialHash common.Hash256, nonce common.Hash64, datasetSize uint64, lookup LookupFunc) (mixDigest, result common.Hash256, err error) {
	rows := uint32(datasetSize / mixBytes)

	seedInput := make([]byte, common.Hash256Length+common.Hash64Length)
	copy(seedInput, partialHash[:])
	copy(seedInput[common.Hash256Length:], nonce[:])
	seed := crypto.Keccak512(seedInput)

	seedHead := binary.LittleEndian.Uint32(seed)

	mix := make([]uint32, mixBytes/4)
	for i := range mix {
		mix[i] = binary.LittleEndian.Uint32(seed[(i%hashWords)*4:])
	}

	temp := make([]uint32, len(mix))
	for i := 0; i < loopAccesses; i++ {
		parent := fnv(uint32(i)^seedHead, mix[i%len(mix)]) % rows
		for j := uint32(0); j < mixBytes/hashBytes; j++ {
			item, lerr := lookup(2*parent + j)
			if lerr != nil {
				return common.Hash256{}, common.Hash256{}, lerr
			}
			copy(temp[int(j)*hashWords:], item[:])
		}
		fnvHash(mix, temp)
	}

	for i := 0; i < len(mix); i += 4 {
		mix[i/4] = fnv(fnv(fnv(mix[i], mix[i+1]), mix[i+2]), mix[i+3])
	}
	mix = mix[:len(mix)/4]

	digest := make([]byte, common.Hash256Length)
	for i, val := range mix {
		binary.LittleEndian.PutUint32(digest[i*4:], val)
	}
	mixDigest = common.BytesToHash256(digest)

	resultInput := make([]byte, len(seed)+len(digest))
	copy(resultInput, seed)
	copy(resultInput[len(seed):], digest)
	result = crypto.Keccak256Hash(resultInput)
	return mixDigest, result, nil
}

var two256 = new(big.Int).Lsh(big.NewInt(1), 256)

var maxU256Bytes = []byte{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

// CrossBoundary computes floor(2**256 / difficulty), the threshold a
// Hashimoto result hash must fall under to satisfy the proof-of-work target
// at the given difficulty. A zero difficulty, and a difficulty of exactly
// one (whose true quotient is 2**256 and so does not fit in 256 bits
// either), both return the maximal U256 so that the comparison degrades to
// "any result passes" rather than silently wrapping to zero.
func CrossBoundary(difficulty common.U256) common.U256 {
	if difficulty.IsZero() {
		return common.U256FromBytes(maxU256Bytes)
	}
	quotient := new(big.Int).Div(two256, difficulty.Big())
	if quotient.BitLen() > 256 {
		return common.U256FromBytes(maxU256Bytes)
	}
	return common.U256FromBig(quotient)
}
