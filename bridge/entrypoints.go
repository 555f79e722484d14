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

package bridge

import (
	"fmt"

	"github.com/probeum/ethbridge/wire"
)

// The six Dispatch* methods are the binary input envelope named above each
// one: a host runtime that only speaks bytes across a process or FFI
// boundary decodes its call into one of these instead of calling the typed
// Bridge methods directly. Every byte of the argument buffer must be
// consumed; Reader.Done enforces that before any state is touched.

// DispatchInit handles `init(dags_start_epoch: u64, dags_merkle_roots:
// seq<Hash128>) -> ()`.
func (b *Bridge) DispatchInit(args []byte) ([]byte, error) {
	r := wire.NewReader(args)
	dagsStartEpoch, err := r.Uint64()
	if err != nil {
		return nil, fmt.Errorf("bridge: decode init args: %w", err)
	}
	dagsMerkleRoots, err := r.Hash128Seq()
	if err != nil {
		return nil, fmt.Errorf("bridge: decode init args: %w", err)
	}
	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("bridge: decode init args: %w", err)
	}
	if err := b.Init(dagsStartEpoch, dagsMerkleRoots); err != nil {
		return nil, err
	}
	return wire.NewWriter().Bytes(), nil
}

// DispatchInitialized handles `initialized() -> bool`.
func (b *Bridge) DispatchInitialized(args []byte) ([]byte, error) {
	if err := wire.NewReader(args).Done(); err != nil {
		return nil, fmt.Errorf("bridge: decode initialized args: %w", err)
	}
	w := wire.NewWriter()
	w.PutBool(b.Initialized())
	return w.Bytes(), nil
}

// DispatchLastBlockNumber handles `last_block_number() -> u64`.
func (b *Bridge) DispatchLastBlockNumber(args []byte) ([]byte, error) {
	if err := wire.NewReader(args).Done(); err != nil {
		return nil, fmt.Errorf("bridge: decode last_block_number args: %w", err)
	}
	w := wire.NewWriter()
	w.PutUint64(b.LastBlockNumber())
	return w.Bytes(), nil
}

// DispatchDagMerkleRoot handles `dag_merkle_root(epoch: u64) -> Hash128`.
func (b *Bridge) DispatchDagMerkleRoot(args []byte) ([]byte, error) {
	r := wire.NewReader(args)
	epoch, err := r.Uint64()
	if err != nil {
		return nil, fmt.Errorf("bridge: decode dag_merkle_root args: %w", err)
	}
	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("bridge: decode dag_merkle_root args: %w", err)
	}
	root, err := b.DagMerkleRoot(epoch)
	if err != nil {
		return nil, err
	}
	w := wire.NewWriter()
	w.PutHash128(root)
	return w.Bytes(), nil
}

// DispatchBlockHash handles `block_hash(height: u64) -> optional Hash256`.
func (b *Bridge) DispatchBlockHash(args []byte) ([]byte, error) {
	r := wire.NewReader(args)
	height, err := r.Uint64()
	if err != nil {
		return nil, fmt.Errorf("bridge: decode block_hash args: %w", err)
	}
	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("bridge: decode block_hash args: %w", err)
	}
	w := wire.NewWriter()
	if hash, ok := b.BlockHash(height); ok {
		w.PutOptionalHash256(&hash)
	} else {
		w.PutOptionalHash256(nil)
	}
	return w.Bytes(), nil
}

// DispatchAddBlockHeader handles `add_block_header(header_bytes: seq<u8>,
// witnesses: seq<DoubleNodeWithMerkleProof>) -> ()`.
func (b *Bridge) DispatchAddBlockHeader(args []byte) ([]byte, error) {
	r := wire.NewReader(args)
	headerBytes, err := r.Bytes()
	if err != nil {
		return nil, fmt.Errorf("bridge: decode add_block_header args: %w", err)
	}
	witnesses, err := r.Witnesses()
	if err != nil {
		return nil, fmt.Errorf("bridge: decode add_block_header args: %w", err)
	}
	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("bridge: decode add_block_header args: %w", err)
	}
	if err := b.AddBlockHeader(headerBytes, witnesses); err != nil {
		return nil, err
	}
	return wire.NewWriter().Bytes(), nil
}
