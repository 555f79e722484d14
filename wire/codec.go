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

// Package wire implements the length-prefixed little-endian binary envelope
// the host runtime uses to pass entrypoint arguments and return values
// across the process boundary. It plays the same role for that boundary
// that package rlp plays for source-ledger header bytes: a small, explicit
// codec with no reflection and no schema beyond "read these fields in this
// order."
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/probeum/ethbridge/common"
	"github.com/probeum/ethbridge/merkle"
)

// ErrUnexpectedEOF is returned whenever a Reader method needs more bytes
// than remain in the buffer.
var ErrUnexpectedEOF = errors.New("wire: unexpected end of input")

// ErrTrailingData is returned by Reader.Done when bytes remain after every
// expected field has been consumed.
var ErrTrailingData = errors.New("wire: trailing data after last field")

// Reader decodes a sequence of fields from a single byte buffer in
// declaration order, matching the "every byte must be consumed" discipline
// the binary input envelope requires.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential decoding. buf is not copied; callers
// must not mutate it while decoding is in progress.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, ErrUnexpectedEOF
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Uint64 reads a little-endian 8 byte unsigned integer.
func (r *Reader) Uint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, fmt.Errorf("wire: uint64: %w", err)
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Bool reads a single byte, 0 for false and any other value for true.
func (r *Reader) Bool() (bool, error) {
	b, err := r.take(1)
	if err != nil {
		return false, fmt.Errorf("wire: bool: %w", err)
	}
	return b[0] != 0, nil
}

// Hash128 reads a fixed 16 byte field.
func (r *Reader) Hash128() (common.Hash128, error) {
	b, err := r.take(common.Hash128Length)
	if err != nil {
		return common.Hash128{}, fmt.Errorf("wire: hash128: %w", err)
	}
	return common.BytesToHash128(b), nil
}

// Hash256 reads a fixed 32 byte field.
func (r *Reader) Hash256() (common.Hash256, error) {
	b, err := r.take(common.Hash256Length)
	if err != nil {
		return common.Hash256{}, fmt.Errorf("wire: hash256: %w", err)
	}
	return common.BytesToHash256(b), nil
}

// Hash512 reads a fixed 64 byte field.
func (r *Reader) Hash512() (common.Hash512, error) {
	b, err := r.take(common.Hash512Length)
	if err != nil {
		return common.Hash512{}, fmt.Errorf("wire: hash512: %w", err)
	}
	return common.BytesToHash512(b), nil
}

// Bytes reads a u64-length-prefixed byte slice.
func (r *Reader) Bytes() ([]byte, error) {
	n, err := r.Uint64()
	if err != nil {
		return nil, fmt.Errorf("wire: bytes length: %w", err)
	}
	b, err := r.take(int(n))
	if err != nil {
		return nil, fmt.Errorf("wire: bytes: %w", err)
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// Hash128Seq reads a u64-length-prefixed sequence of Hash128 values.
func (r *Reader) Hash128Seq() ([]common.Hash128, error) {
	n, err := r.Uint64()
	if err != nil {
		return nil, fmt.Errorf("wire: seq<Hash128> length: %w", err)
	}
	out := make([]common.Hash128, n)
	for i := range out {
		if out[i], err = r.Hash128(); err != nil {
			return nil, fmt.Errorf("wire: seq<Hash128>[%d]: %w", i, err)
		}
	}
	return out, nil
}

// Witnesses reads a u64-length-prefixed sequence of
// DoubleNodeWithMerkleProof values: two Hash512 dataset nodes followed by a
// u64-length-prefixed sequence of Hash128 proof siblings.
func (r *Reader) Witnesses() ([]merkle.DoubleNodeWithMerkleProof, error) {
	n, err := r.Uint64()
	if err != nil {
		return nil, fmt.Errorf("wire: seq<witness> length: %w", err)
	}
	out := make([]merkle.DoubleNodeWithMerkleProof, n)
	for i := range out {
		var w merkle.DoubleNodeWithMerkleProof
		if w.DAGNodes[0], err = r.Hash512(); err != nil {
			return nil, fmt.Errorf("wire: witness[%d].node0: %w", i, err)
		}
		if w.DAGNodes[1], err = r.Hash512(); err != nil {
			return nil, fmt.Errorf("wire: witness[%d].node1: %w", i, err)
		}
		if w.Proof, err = r.Hash128Seq(); err != nil {
			return nil, fmt.Errorf("wire: witness[%d].proof: %w", i, err)
		}
		out[i] = w
	}
	return out, nil
}

// Done reports an error if any bytes remain unconsumed, enforcing the
// binary envelope's "every byte must be consumed" rule.
func (r *Reader) Done() error {
	if r.pos != len(r.buf) {
		return fmt.Errorf("%w: %d bytes remaining", ErrTrailingData, len(r.buf)-r.pos)
	}
	return nil
}

// Writer encodes a sequence of fields into a single growing byte buffer, the
// inverse of Reader.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the encoded buffer built so far.
func (w *Writer) Bytes() []byte { return w.buf }

// PutUint64 appends a little-endian 8 byte unsigned integer.
func (w *Writer) PutUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// PutBool appends a single byte, 1 for true and 0 for false.
func (w *Writer) PutBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// PutHash128 appends a fixed 16 byte field.
func (w *Writer) PutHash128(h common.Hash128) { w.buf = append(w.buf, h[:]...) }

// PutHash256 appends a fixed 32 byte field.
func (w *Writer) PutHash256(h common.Hash256) { w.buf = append(w.buf, h[:]...) }

// PutHash512 appends a fixed 64 byte field.
func (w *Writer) PutHash512(h common.Hash512) { w.buf = append(w.buf, h[:]...) }

// PutBytes appends a u64-length-prefixed byte slice.
func (w *Writer) PutBytes(b []byte) {
	w.PutUint64(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

// PutHash128Seq appends a u64-length-prefixed sequence of Hash128 values.
func (w *Writer) PutHash128Seq(hs []common.Hash128) {
	w.PutUint64(uint64(len(hs)))
	for _, h := range hs {
		w.PutHash128(h)
	}
}

// PutWitnesses appends a u64-length-prefixed sequence of
// DoubleNodeWithMerkleProof values, the inverse of Reader.Witnesses.
func (w *Writer) PutWitnesses(witnesses []merkle.DoubleNodeWithMerkleProof) {
	w.PutUint64(uint64(len(witnesses)))
	for _, wit := range witnesses {
		w.PutHash512(wit.DAGNodes[0])
		w.PutHash512(wit.DAGNodes[1])
		w.PutHash128Seq(wit.Proof)
	}
}

// PutOptionalHash256 appends a presence byte followed by the hash when
// present, for "optional Hash256" return values like block_hash.
func (w *Writer) PutOptionalHash256(h *common.Hash256) {
	w.PutBool(h != nil)
	if h != nil {
		w.PutHash256(*h)
	}
}
