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

// Package common holds the fixed-width byte quantities shared by every
// layer of the bridge: nonces and short digests (Hash64), Merkle witness
// nodes (Hash128), header and block hashes (Hash256), and DAG dataset
// items (Hash512).
package common

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/probeum/ethbridge/common/hexutil"
)

// Lengths of the fixed-width quantities, in bytes.
const (
	Hash64Length  = 8
	Hash128Length = 16
	Hash256Length = 32
	Hash512Length = 64
)

// Hash64 is an 8 byte quantity, used for the Ethash nonce.
type Hash64 [Hash64Length]byte

// Hash128 is a 16 byte quantity, used for DAG Merkle proof siblings and
// per-epoch Merkle roots.
type Hash128 [Hash128Length]byte

// Hash256 is a 32 byte quantity, used for header hashes and DAG Merkle
// leaves before folding.
type Hash256 [Hash256Length]byte

// Hash512 is a 64 byte quantity, used for raw Ethash DAG dataset items.
type Hash512 [Hash512Length]byte

// BytesToHash64 sets b to a Hash64, cropping from the left if oversized.
func BytesToHash64(b []byte) (h Hash64) {
	setBytes(h[:], b)
	return h
}

// BytesToHash128 sets b to a Hash128, cropping from the left if oversized.
func BytesToHash128(b []byte) (h Hash128) {
	setBytes(h[:], b)
	return h
}

// BytesToHash256 sets b to a Hash256, cropping from the left if oversized.
func BytesToHash256(b []byte) (h Hash256) {
	setBytes(h[:], b)
	return h
}

// BytesToHash512 sets b to a Hash512, cropping from the left if oversized.
func BytesToHash512(b []byte) (h Hash512) {
	setBytes(h[:], b)
	return h
}

// HexToHash256 sets the byte representation of s, a 0x-prefixed hex string,
// to a Hash256.
func HexToHash256(s string) Hash256 { return BytesToHash256(FromHex(s)) }

// HexToHash128 sets the byte representation of s, a 0x-prefixed hex string,
// to a Hash128.
func HexToHash128(s string) Hash128 { return BytesToHash128(FromHex(s)) }

// HexToHash512 sets the byte representation of s, a 0x-prefixed hex string,
// to a Hash512.
func HexToHash512(s string) Hash512 { return BytesToHash512(FromHex(s)) }

func setBytes(dst, src []byte) {
	if len(src) > len(dst) {
		src = src[len(src)-len(dst):]
	}
	copy(dst[len(dst)-len(src):], src)
}

// FromHex returns the bytes represented by the 0x-prefixed (or bare) hex
// string s. Malformed input decodes to nil.
func FromHex(s string) []byte {
	if len(s) >= 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

// Bytes returns the byte slice backing h.
func (h Hash64) Bytes() []byte { return h[:] }

// Hex returns the 0x-prefixed hex encoding of h.
func (h Hash64) Hex() string { return hexutil.Encode(h[:]) }

// String implements fmt.Stringer.
func (h Hash64) String() string { return h.Hex() }

// IsZero reports whether h is the zero value.
func (h Hash64) IsZero() bool { return h == Hash64{} }

// MarshalText implements encoding.TextMarshaler.
func (h Hash64) MarshalText() ([]byte, error) { return []byte(h.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash64) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Hash64", input, h[:])
}

// Bytes returns the byte slice backing h.
func (h Hash128) Bytes() []byte { return h[:] }

// Hex returns the 0x-prefixed hex encoding of h.
func (h Hash128) Hex() string { return hexutil.Encode(h[:]) }

// String implements fmt.Stringer.
func (h Hash128) String() string { return h.Hex() }

// IsZero reports whether h is the zero value.
func (h Hash128) IsZero() bool { return h == Hash128{} }

// MarshalText implements encoding.TextMarshaler.
func (h Hash128) MarshalText() ([]byte, error) { return []byte(h.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash128) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Hash128", input, h[:])
}

// Bytes returns the byte slice backing h.
func (h Hash256) Bytes() []byte { return h[:] }

// Hex returns the 0x-prefixed hex encoding of h.
func (h Hash256) Hex() string { return hexutil.Encode(h[:]) }

// String implements fmt.Stringer.
func (h Hash256) String() string { return h.Hex() }

// IsZero reports whether h is the zero value.
func (h Hash256) IsZero() bool { return h == Hash256{} }

// Format implements fmt.Formatter. Hash256 supports the %v, %s, %q, %x and
// %X format verbs.
func (h Hash256) Format(s fmt.State, c rune) {
	hexb := make([]byte, 2+len(h)*2)
	copy(hexb, "0x")
	hex.Encode(hexb[2:], h[:])

	switch c {
	case 'x', 'X':
		if !s.Flag('#') {
			hexb = hexb[2:]
		}
		if c == 'X' {
			hexb = bytes.ToUpper(hexb)
		}
		fallthrough
	case 'v', 's':
		s.Write(hexb)
	case 'q':
		q := []byte{'"'}
		s.Write(q)
		s.Write(hexb)
		s.Write(q)
	default:
		fmt.Fprintf(s, "%%!%c(hash=%x)", c, h)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash256) MarshalText() ([]byte, error) { return []byte(h.Hex()), nil }

// MarshalJSON implements json.Marshaler.
func (h Hash256) MarshalJSON() ([]byte, error) { return json.Marshal(h.Hex()) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash256) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Hash256", input, h[:])
}

// SetBytes sets the hash to the value of b, cropping from the left if
// oversized.
func (h *Hash256) SetBytes(b []byte) {
	var z Hash256
	setBytes(z[:], b)
	*h = z
}

// Bytes returns the byte slice backing h.
func (h Hash512) Bytes() []byte { return h[:] }

// Hex returns the 0x-prefixed hex encoding of h.
func (h Hash512) Hex() string { return hexutil.Encode(h[:]) }

// String implements fmt.Stringer.
func (h Hash512) String() string { return h.Hex() }

// IsZero reports whether h is the zero value.
func (h Hash512) IsZero() bool { return h == Hash512{} }

// MarshalText implements encoding.TextMarshaler.
func (h Hash512) MarshalText() ([]byte, error) { return []byte(h.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash512) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Hash512", input, h[:])
}
