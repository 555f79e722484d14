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

// Package rlp implements the recursive-length-prefix encoding the source
// ledger uses for its block headers. Only the subset header.Decode needs is
// implemented: splitting and reassembling byte strings and lists.
package rlp

import (
	"errors"
	"math/big"
)

// Kind identifies the shape of the next RLP value.
type Kind int

const (
	// KindByte is a single byte in [0x00, 0x7f], which RLP represents as
	// itself with no header.
	KindByte Kind = iota
	// KindString is a byte string.
	KindString
	// KindList is an RLP list.
	KindList
)

var (
	ErrExpectedString = errors.New("rlp: expected String or Byte")
	ErrExpectedList   = errors.New("rlp: expected List")
	ErrCanonInt       = errors.New("rlp: non-canonical integer format")
	ErrCanonSize      = errors.New("rlp: non-canonical size information")
	ErrElemTooLarge   = errors.New("rlp: element is larger than containing list")
	ErrValueTooLarge  = errors.New("rlp: value size exceeds available input length")
	ErrTrailingData   = errors.New("rlp: trailing data after RLP value")
)

// readKind inspects the first byte of b and reports the shape and size of
// the value it starts, along with how many header bytes precede the
// payload.
func readKind(b []byte) (k Kind, tagsize, size uint64, err error) {
	if len(b) == 0 {
		return 0, 0, 0, errNoData
	}
	switch first := b[0]; {
	case first < 0x80:
		return KindByte, 0, 1, nil
	case first < 0xB8:
		return KindString, 1, uint64(first - 0x80), nil
	case first < 0xC0:
		size, err = readSize(b[1:], first-0xB7)
		return KindString, uint64(first-0xB7) + 1, size, err
	case first < 0xF8:
		return KindList, 1, uint64(first - 0xC0), nil
	default:
		size, err = readSize(b[1:], first-0xF7)
		return KindList, uint64(first-0xF7) + 1, size, err
	}
}

var errNoData = errors.New("rlp: no more data")

func readSize(b []byte, slen byte) (uint64, error) {
	if int(slen) > len(b) {
		return 0, ErrValueTooLarge
	}
	var s uint64
	switch slen {
	case 1:
		s = uint64(b[0])
	case 2:
		s = uint64(b[0])<<8 | uint64(b[1])
	case 3:
		s = uint64(b[0])<<16 | uint64(b[1])<<8 | uint64(b[2])
	case 4:
		s = uint64(b[0])<<24 | uint64(b[1])<<16 | uint64(b[2])<<8 | uint64(b[3])
	default:
		// size of size > 4 bytes never happens for data that fits in memory.
		for i := byte(0); i < slen; i++ {
			s = s<<8 | uint64(b[i])
		}
	}
	if s < 56 {
		return 0, ErrCanonSize
	}
	return s, nil
}

// SplitString splits b into the content of an RLP string and any remaining
// bytes after it.
func SplitString(b []byte) (content, rest []byte, err error) {
	k, tagsize, size, err := readKind(b)
	if err != nil {
		return nil, b, err
	}
	if k == KindList {
		return nil, b, ErrExpectedString
	}
	if k == KindByte {
		return b[:1], b[1:], nil
	}
	return splitTagged(b, tagsize, size)
}

// SplitList splits b into the content of an RLP list and any remaining
// bytes after it.
func SplitList(b []byte) (content, rest []byte, err error) {
	k, tagsize, size, err := readKind(b)
	if err != nil {
		return nil, b, err
	}
	if k != KindList {
		return nil, b, ErrExpectedList
	}
	return splitTagged(b, tagsize, size)
}

func splitTagged(b []byte, tagsize, size uint64) (content, rest []byte, err error) {
	end := tagsize + size
	if end < tagsize || uint64(len(b)) < end {
		return nil, b, ErrValueTooLarge
	}
	return b[tagsize:end], b[end:], nil
}

// CountValues counts the number of encoded values in b, treating b as the
// content of a list.
func CountValues(b []byte) (int, error) {
	i := 0
	for ; len(b) > 0; i++ {
		_, tagsize, size, err := readKind(b)
		if err != nil {
			return 0, err
		}
		b = b[tagsize+size:]
	}
	return i, nil
}

// Uint64FromString decodes the RLP string content (as produced by
// SplitString) into a uint64, enforcing the canonical "no leading zero
// bytes" rule.
func Uint64FromString(content []byte) (uint64, error) {
	if len(content) > 8 {
		return 0, errors.New("rlp: uint64 overflow")
	}
	if len(content) > 0 && content[0] == 0 {
		return 0, ErrCanonInt
	}
	var v uint64
	for _, b := range content {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

// BigIntFromString decodes the RLP string content into a big.Int, enforcing
// the same canonical encoding rule as Uint64FromString.
func BigIntFromString(content []byte) (*big.Int, error) {
	if len(content) > 0 && content[0] == 0 {
		return nil, ErrCanonInt
	}
	return new(big.Int).SetBytes(content), nil
}
