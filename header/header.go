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

// Package header decodes the source ledger's RLP-encoded block headers and
// derives the two digests the rest of the bridge needs: the full header
// hash, used as the chain-store key, and the partial hash that excludes the
// mix digest and nonce, which is the Hashimoto input.
package header

import (
	"errors"
	"fmt"

	"github.com/probeum/ethbridge/common"
	"github.com/probeum/ethbridge/crypto"
	"github.com/probeum/ethbridge/rlp"
)

// Header is the decoded form of a source-ledger block header, trimmed to
// the fields the bridge's consensus and PoW checks actually consume.
type Header struct {
	ParentHash common.Hash256
	Number     uint64
	Difficulty common.U256
	GasLimit   common.U256
	GasUsed    common.U256
	Timestamp  uint64
	MixDigest  common.Hash256
	Nonce      common.Hash64

	// Hash is the keccak256 of the full RLP-encoded header. It doubles as
	// the chain-store key.
	Hash common.Hash256
	// PartialHash is the keccak256 of the RLP-encoded header with
	// MixDigest and Nonce omitted: the Hashimoto input.
	PartialHash common.Hash256
}

// HeaderInfo is the derived metadata the chain store keeps alongside each
// accepted header. Its zero value has every field zero.
type HeaderInfo struct {
	TotalDifficulty common.U256
	ParentHash      common.Hash256
	Number          uint64
}

var (
	// ErrMalformedHeader is returned when raw header bytes are not a
	// well-formed RLP list of exactly the expected field count.
	ErrMalformedHeader = errors.New("header: malformed RLP encoding")
	// ErrOversizedField is returned by SanityCheck when a field's
	// magnitude cannot plausibly come from a real source-ledger header.
	ErrOversizedField = errors.New("header: field exceeds sane bound")
)

const fieldCount = 8

// Decode parses raw as an RLP-encoded header and computes its Hash and
// PartialHash. It does not run SanityCheck; callers that accept headers
// from an untrusted relayer must call SanityCheck separately before using
// the decoded fields in a consensus or PoW check.
func Decode(raw []byte) (*Header, error) {
	content, rest, err := rlp.SplitList(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: trailing data after header", ErrMalformedHeader)
	}
	n, err := rlp.CountValues(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	if n != fieldCount {
		return nil, fmt.Errorf("%w: got %d fields, want %d", ErrMalformedHeader, n, fieldCount)
	}

	h := new(Header)
	var s []byte

	if s, content, err = rlp.SplitString(content); err != nil {
		return nil, fmt.Errorf("%w: parentHash: %v", ErrMalformedHeader, err)
	}
	h.ParentHash = common.BytesToHash256(s)

	if s, content, err = rlp.SplitString(content); err != nil {
		return nil, fmt.Errorf("%w: number: %v", ErrMalformedHeader, err)
	}
	if h.Number, err = rlp.Uint64FromString(s); err != nil {
		return nil, fmt.Errorf("%w: number: %v", ErrMalformedHeader, err)
	}

	if s, content, err = rlp.SplitString(content); err != nil {
		return nil, fmt.Errorf("%w: difficulty: %v", ErrMalformedHeader, err)
	}
	diff, err := rlp.BigIntFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: difficulty: %v", ErrMalformedHeader, err)
	}
	h.Difficulty = common.U256FromBig(diff)

	if s, content, err = rlp.SplitString(content); err != nil {
		return nil, fmt.Errorf("%w: gasLimit: %v", ErrMalformedHeader, err)
	}
	gasLimit, err := rlp.BigIntFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: gasLimit: %v", ErrMalformedHeader, err)
	}
	h.GasLimit = common.U256FromBig(gasLimit)

	if s, content, err = rlp.SplitString(content); err != nil {
		return nil, fmt.Errorf("%w: gasUsed: %v", ErrMalformedHeader, err)
	}
	gasUsed, err := rlp.BigIntFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: gasUsed: %v", ErrMalformedHeader, err)
	}
	h.GasUsed = common.U256FromBig(gasUsed)

	if s, content, err = rlp.SplitString(content); err != nil {
		return nil, fmt.Errorf("%w: timestamp: %v", ErrMalformedHeader, err)
	}
	if h.Timestamp, err = rlp.Uint64FromString(s); err != nil {
		return nil, fmt.Errorf("%w: timestamp: %v", ErrMalformedHeader, err)
	}

	if s, content, err = rlp.SplitString(content); err != nil {
		return nil, fmt.Errorf("%w: mixDigest: %v", ErrMalformedHeader, err)
	}
	h.MixDigest = common.BytesToHash256(s)

	if s, content, err = rlp.SplitString(content); err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", ErrMalformedHeader, err)
	}
	h.Nonce = common.BytesToHash64(s)

	if len(content) != 0 {
		return nil, fmt.Errorf("%w: trailing field data", ErrMalformedHeader)
	}

	h.PartialHash = crypto.Keccak256Hash(h.partialPayload())
	h.Hash = crypto.Keccak256Hash(h.fullPayload())
	return h, nil
}

func (h *Header) partialPayload() []byte {
	return rlp.EncodeList(
		rlp.EncodeBytes(h.ParentHash.Bytes()),
		rlp.EncodeUint64(h.Number),
		rlp.EncodeBigInt(h.Difficulty.Big()),
		rlp.EncodeBigInt(h.GasLimit.Big()),
		rlp.EncodeBigInt(h.GasUsed.Big()),
		rlp.EncodeUint64(h.Timestamp),
	)
}

func (h *Header) fullPayload() []byte {
	return rlp.EncodeList(
		rlp.EncodeBytes(h.ParentHash.Bytes()),
		rlp.EncodeUint64(h.Number),
		rlp.EncodeBigInt(h.Difficulty.Big()),
		rlp.EncodeBigInt(h.GasLimit.Big()),
		rlp.EncodeBigInt(h.GasUsed.Big()),
		rlp.EncodeUint64(h.Timestamp),
		rlp.EncodeBytes(h.MixDigest.Bytes()),
		rlp.EncodeBytes(h.Nonce.Bytes()),
	)
}

// Encode returns the canonical RLP encoding of h. It is the inverse of
// Decode; tests use it to build header payloads, and leveldbstore uses it
// to serialize the headers it stores.
func (h *Header) Encode() []byte {
	return h.fullPayload()
}

// maxSaneDifficultyBits bounds Difficulty the way the teacher's
// (*types.Header).SanityCheck bounds mainnet difficulty: no real Ethash
// chain has ever needed more than 80 bits of difficulty.
const maxSaneDifficultyBits = 80

// SanityCheck rejects headers whose numeric fields are too large to have
// come from a real source-ledger header, before they ever reach the
// consensus or PoW checker. Untrusted relayer input must pass this before
// anything else looks at the decoded fields.
func (h *Header) SanityCheck() error {
	if bitLen := h.Difficulty.Big().BitLen(); bitLen > maxSaneDifficultyBits {
		return fmt.Errorf("%w: difficulty has %d bits, want <= %d", ErrOversizedField, bitLen, maxSaneDifficultyBits)
	}
	if h.GasUsed.Cmp(h.GasLimit) > 0 {
		return fmt.Errorf("%w: gasUsed %s exceeds gasLimit %s", ErrOversizedField, h.GasUsed, h.GasLimit)
	}
	return nil
}
