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

package rlp

import "math/big"

// EncodeBytes returns the RLP string encoding of b.
func EncodeBytes(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return []byte{b[0]}
	}
	return appendString(nil, b)
}

// EncodeUint64 returns the RLP string encoding of x's minimal big-endian
// representation, with zero encoding as the empty string per RLP's integer
// convention.
func EncodeUint64(x uint64) []byte {
	if x == 0 {
		return []byte{0x80}
	}
	return EncodeBytes(minimalBigEndian(x))
}

// EncodeBigInt returns the RLP string encoding of x's minimal big-endian
// representation. A nil or negative x encodes as zero; the bridge never
// carries negative quantities.
func EncodeBigInt(x *big.Int) []byte {
	if x == nil || x.Sign() <= 0 {
		return []byte{0x80}
	}
	return EncodeBytes(x.Bytes())
}

// EncodeList wraps the concatenation of already-encoded items in an RLP
// list header.
func EncodeList(items ...[]byte) []byte {
	var payload []byte
	for _, it := range items {
		payload = append(payload, it...)
	}
	return appendList(nil, payload)
}

func minimalBigEndian(x uint64) []byte {
	b := make([]byte, 8)
	b[0] = byte(x >> 56)
	b[1] = byte(x >> 48)
	b[2] = byte(x >> 40)
	b[3] = byte(x >> 32)
	b[4] = byte(x >> 24)
	b[5] = byte(x >> 16)
	b[6] = byte(x >> 8)
	b[7] = byte(x)
	i := 0
	for i < len(b)-1 && b[i] == 0 {
		i++
	}
	return b[i:]
}

func appendString(buf, s []byte) []byte {
	switch {
	case len(s) == 0:
		return append(buf, 0x80)
	case len(s) == 1 && s[0] < 0x80:
		return append(buf, s[0])
	case len(s) <= 55:
		buf = append(buf, 0x80+byte(len(s)))
		return append(buf, s...)
	default:
		buf = appendSizeHeader(buf, 0xB7, uint64(len(s)))
		return append(buf, s...)
	}
}

func appendList(buf, payload []byte) []byte {
	if len(payload) <= 55 {
		buf = append(buf, 0xC0+byte(len(payload)))
		return append(buf, payload...)
	}
	buf = appendSizeHeader(buf, 0xF7, uint64(len(payload)))
	return append(buf, payload...)
}

func appendSizeHeader(buf []byte, baseTag byte, size uint64) []byte {
	sizeBytes := minimalBigEndian(size)
	buf = append(buf, baseTag+byte(len(sizeBytes)))
	return append(buf, sizeBytes...)
}
