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

// Package bridge orchestrates the header-acceptance state machine: decode,
// verify, insert, possibly reorganize the canonical index, and garbage
// collect headers that fall below the finality window. It is the only
// package in the module that mutates chain state; everything it calls
// into (ethash, merkle, powverify, consensus, header) is pure.
package bridge

import (
	"fmt"

	"github.com/probeum/ethbridge/chainstore"
	"github.com/probeum/ethbridge/common"
	"github.com/probeum/ethbridge/consensus"
	"github.com/probeum/ethbridge/header"
	"github.com/probeum/ethbridge/log"
	"github.com/probeum/ethbridge/merkle"
	"github.com/probeum/ethbridge/powverify"
	"github.com/probeum/ethbridge/wire"
)

// FinalityDepth is the number of blocks a fork may trail the canonical tip
// by before it is pruned from the chain store.
const FinalityDepth = 30

// EpochLength is the number of source-ledger blocks per Ethash epoch, used
// to resolve which pinned Merkle root a header's proof-of-work is checked
// against.
const EpochLength = 30000

// Recorder observes acceptance-path outcomes for external metrics
// collection. Implementations need not handle a nil receiver; Bridge itself
// guards against a nil Recorder field and simply skips recording.
type Recorder interface {
	// Accepted is called once a header is written to the chain store,
	// tagged with its path: "bootstrap", "extend" or "reorg" when it became
	// canonical, "stored_non_canonical" when it was stored without becoming
	// the tip.
	Accepted(path string)
	// Rejected is called when a header is refused or silently dropped,
	// tagged with the reason.
	Rejected(reason string)
	// Reorg is called once per reorg. depthBlocks is 1 when the new tip is
	// at or above the old tip's height, and otherwise the old tip height
	// minus the new tip height plus one; it is not a count of the
	// canonical-index entries the walk-back rewrote.
	Reorg(depthBlocks int)
	// BestBlock reports the canonical tip height after it changes.
	BestBlock(number uint64)
}

// Bridge holds the entire persisted core described by the acceptance state
// machine: the pinned per-epoch DAG Merkle roots plus everything in store.
// The zero value is not usable; construct with New.
type Bridge struct {
	store    chainstore.Store
	log      log.Logger
	recorder Recorder

	dagsStartEpoch  uint64
	dagsMerkleRoots []common.Hash128
	bestHeaderHash  common.Hash256
}

// New returns a Bridge persisting to store and logging through logger.
// Call Init before submitting any headers.
func New(store chainstore.Store, logger log.Logger) *Bridge {
	return &Bridge{store: store, log: logger}
}

// SetRecorder attaches a Recorder that observes subsequent acceptance-path
// outcomes. Passing nil disables recording again.
func (b *Bridge) SetRecorder(r Recorder) {
	b.recorder = r
}

func (b *Bridge) recordAccepted(path string) {
	if b.recorder != nil {
		b.recorder.Accepted(path)
	}
}

func (b *Bridge) recordRejected(reason string) {
	if b.recorder != nil {
		b.recorder.Rejected(reason)
	}
}

func (b *Bridge) recordReorg(depthBlocks int) {
	if b.recorder != nil {
		b.recorder.Reorg(depthBlocks)
	}
}

func (b *Bridge) recordBestBlock(number uint64) {
	if b.recorder != nil {
		b.recorder.BestBlock(number)
	}
}

// Init pins the epoch Merkle root table the bridge will verify every
// header's proof-of-work against. It may be called exactly once.
func (b *Bridge) Init(dagsStartEpoch uint64, dagsMerkleRoots []common.Hash128) error {
	if b.Initialized() {
		return ErrAlreadyInitialized
	}
	b.dagsStartEpoch = dagsStartEpoch
	b.dagsMerkleRoots = append([]common.Hash128(nil), dagsMerkleRoots...)
	return nil
}

// Initialized reports whether the epoch root table is non-empty.
func (b *Bridge) Initialized() bool {
	return len(b.dagsMerkleRoots) > 0
}

// LastBlockNumber returns the canonical tip's height, or 0 before the
// first header is accepted.
func (b *Bridge) LastBlockNumber() uint64 {
	info, ok := b.bestInfo()
	if !ok {
		return 0
	}
	return info.Number
}

// DagMerkleRoot returns the pinned Merkle root for epoch. It is a fatal
// failure to ask for an epoch outside the pinned table.
func (b *Bridge) DagMerkleRoot(epoch uint64) (common.Hash128, error) {
	if epoch < b.dagsStartEpoch {
		return common.Hash128{}, fmt.Errorf("%w: epoch %d before start epoch %d", ErrDagMerkleRootOutOfRange, epoch, b.dagsStartEpoch)
	}
	idx := epoch - b.dagsStartEpoch
	if idx >= uint64(len(b.dagsMerkleRoots)) {
		return common.Hash128{}, fmt.Errorf("%w: epoch %d", ErrDagMerkleRootOutOfRange, epoch)
	}
	return b.dagsMerkleRoots[idx], nil
}

// BlockHash returns the canonical header hash at height, and whether one
// is recorded. A missing entry is not an error: it may be below the
// retention horizon or simply never have been reached.
func (b *Bridge) BlockHash(height uint64) (common.Hash256, bool) {
	hash, err := b.store.ReadCanonicalHash(height)
	if err != nil {
		return common.Hash256{}, false
	}
	return hash, true
}

// bestInfo returns infos[best_header_hash], or (zero value, false) if the
// bridge has not accepted a header yet.
func (b *Bridge) bestInfo() (*header.HeaderInfo, bool) {
	if b.bestHeaderHash.IsZero() {
		return &header.HeaderInfo{}, false
	}
	info, err := b.store.ReadInfo(b.bestHeaderHash)
	if err != nil {
		return &header.HeaderInfo{}, false
	}
	return info, true
}

// AddBlockHeader is the acceptance state machine's single entry point. The
// first header ever submitted is trusted unconditionally (the bootstrap
// path); every subsequent header runs the full PoW and consensus checks
// before anything is written, so a header that fails decoding or
// verification leaves the store untouched. The writes themselves are issued
// one at a time with no rollback: a store error partway through leaves the
// earlier writes of that call in place.
func (b *Bridge) AddBlockHeader(rawBytes []byte, witnesses []merkle.DoubleNodeWithMerkleProof) error {
	h, err := header.Decode(rawBytes)
	if err != nil {
		return err
	}
	if err := h.SanityCheck(); err != nil {
		return err
	}

	if b.bestHeaderHash.IsZero() {
		return b.bootstrap(h)
	}
	return b.acceptSteadyState(h, witnesses)
}

// bootstrap trusts the very first header unconditionally: it is stored
// with no verification and immediately becomes canonical. This asymmetry
// is intentional, not an oversight: the bridge has no prior state to check
// the first header against.
func (b *Bridge) bootstrap(h *header.Header) error {
	info := &header.HeaderInfo{
		TotalDifficulty: h.Difficulty,
		ParentHash:      h.ParentHash,
		Number:          h.Number,
	}
	if err := b.store.WriteHeader(h); err != nil {
		return err
	}
	if err := b.store.WriteInfo(h.Hash, info); err != nil {
		return err
	}
	if err := b.store.AppendRecentHash(h.Number, h.Hash); err != nil {
		return err
	}
	if err := b.store.WriteCanonicalHash(h.Number, h.Hash); err != nil {
		return err
	}
	b.bestHeaderHash = h.Hash
	b.log.Warn("Accepting bootstrap header with no verification", "number", h.Number, "hash", h.Hash)
	b.recordAccepted("bootstrap")
	b.recordBestBlock(h.Number)
	return nil
}

func (b *Bridge) acceptSteadyState(h *header.Header, witnesses []merkle.DoubleNodeWithMerkleProof) error {
	// Step 2: idempotence. A header already known is a silent no-op, not
	// an error.
	if _, err := b.store.ReadInfo(h.Hash); err == nil {
		return nil
	}

	// Step 3: parent lookup.
	prev, err := b.store.ReadHeader(h.ParentHash)
	if err != nil {
		b.recordRejected("unknown_parent")
		return fmt.Errorf("%w: %s", ErrUnknownParent, h.ParentHash)
	}

	// Step 4: PoW verification, then consensus rules.
	epoch := h.Number / EpochLength
	epochRoot, err := b.DagMerkleRoot(epoch)
	if err != nil {
		b.recordRejected("epoch_root_out_of_range")
		return err
	}
	_, result, err := powverify.HashimotoMerkle(h.PartialHash, h.Nonce, h.Number, witnesses, epochRoot)
	if err != nil {
		b.recordRejected("pow_verification")
		return err
	}
	mixResult := common.U256FromBytes(result[:])
	if err := consensus.CheckHeader(h, prev, mixResult); err != nil {
		b.recordRejected("consensus_rule")
		return err
	}

	// Step 5: store-if-recent.
	bestInfo, haveBest := b.bestInfo()
	if haveBest && bestInfo.Number > h.Number+FinalityDepth {
		b.recordRejected("below_finality_window")
		return nil
	}

	// Step 6: write header, info, and the recent-hash set.
	parentInfo, err := b.store.ReadInfo(h.ParentHash)
	parentTotalDifficulty := common.U256FromUint64(0)
	if err == nil {
		parentTotalDifficulty = parentInfo.TotalDifficulty
	}
	info := &header.HeaderInfo{
		TotalDifficulty: parentTotalDifficulty.Add(h.Difficulty),
		ParentHash:      h.ParentHash,
		Number:          h.Number,
	}
	if err := b.store.WriteHeader(h); err != nil {
		return err
	}
	if err := b.store.WriteInfo(h.Hash, info); err != nil {
		return err
	}
	if err := b.store.AppendRecentHash(h.Number, h.Hash); err != nil {
		return err
	}

	// Step 7: canonical decision.
	wins := info.TotalDifficulty.Cmp(bestInfo.TotalDifficulty) > 0 ||
		(info.TotalDifficulty.Cmp(bestInfo.TotalDifficulty) == 0 && isEven(h.Difficulty))
	if !wins {
		b.recordAccepted("stored_non_canonical")
		return nil
	}

	oldBestNumber := bestInfo.Number
	oldBestHash := b.bestHeaderHash
	if err := b.reorg(h, oldBestNumber); err != nil {
		return err
	}

	// Step 9: GC, only once the tip actually advanced.
	if haveBest {
		b.garbageCollect(oldBestNumber, h.Number)
	}

	if haveBest && h.ParentHash != oldBestHash {
		depth := 1
		if oldBestNumber > h.Number {
			depth = int(oldBestNumber-h.Number) + 1
		}
		b.recordReorg(depth)
		b.recordAccepted("reorg")
	} else {
		b.recordAccepted("extend")
	}
	b.recordBestBlock(h.Number)
	return nil
}

// reorg implements §4.5 step 8: it installs h as the new tip, clears any
// canonical entries stranded above it if the new tip is shorter, then
// walks back through ancestors rewriting the canonical index until the two
// forks converge, height 0 is reached, or the walk runs into the pruned
// region.
func (b *Bridge) reorg(h *header.Header, oldBestNumber uint64) error {
	if h.Number < oldBestNumber {
		for n := h.Number + 1; n <= oldBestNumber; n++ {
			if err := b.store.DeleteCanonicalHash(n); err != nil {
				return err
			}
		}
	}

	b.bestHeaderHash = h.Hash
	if err := b.store.WriteCanonicalHash(h.Number, h.Hash); err != nil {
		return err
	}

	if h.Number == 0 {
		return nil
	}
	n := h.Number - 1
	hash := h.ParentHash
	for {
		prevValue, err := b.store.ReadCanonicalHash(n)
		hadPrevValue := err == nil

		if err := b.store.WriteCanonicalHash(n, hash); err != nil {
			return err
		}

		if n == 0 {
			return nil
		}
		if hadPrevValue && prevValue == hash {
			return nil
		}
		info, err := b.store.ReadInfo(hash)
		if err != nil {
			return nil
		}
		hash = info.ParentHash
		n--
	}
}

// garbageCollect deletes every header, info, and recent-hash set that has
// fallen below the retention horizon as a result of the tip advancing from
// oldBestNumber to newBestNumber. It is a no-op unless the chain had
// already reached FinalityDepth, matching §4.5 step 9's guard.
func (b *Bridge) garbageCollect(oldBestNumber, newBestNumber uint64) {
	if oldBestNumber < FinalityDepth {
		return
	}
	oldHorizon := oldBestNumber - FinalityDepth
	var newHorizon uint64
	if newBestNumber >= FinalityDepth {
		newHorizon = newBestNumber - FinalityDepth
	}
	for n := oldHorizon; n < newHorizon; n++ {
		hashes, err := b.store.ReadRecentHashes(n)
		if err != nil {
			continue
		}
		if len(hashes) == 0 {
			continue
		}
		b.log.Info(fmt.Sprintf("Going to GC headers for block number #%d", n))
		for _, hash := range hashes {
			_ = b.store.DeleteHeader(hash)
			_ = b.store.DeleteInfo(hash)
		}
		_ = b.store.DeleteRecentHashes(n)
	}
}

func isEven(u common.U256) bool {
	return u.Big().Bit(0) == 0
}

// EncodeState serializes the inline (dags_start_epoch, dags_merkle_roots,
// best_header_hash) record spec.md §6 names, using the same binary
// envelope the host-runtime argument boundary uses. The four keyed
// sub-stores (headers, infos, canonical hashes, recent-hash sets) are
// chainstore's concern and are not part of this record.
func (b *Bridge) EncodeState() []byte {
	w := wire.NewWriter()
	w.PutUint64(b.dagsStartEpoch)
	w.PutHash128Seq(b.dagsMerkleRoots)
	w.PutHash256(b.bestHeaderHash)
	return w.Bytes()
}

// DecodeState restores the inline record EncodeState produced, typically
// right after New, before any header is submitted. It does not touch the
// chain store.
func (b *Bridge) DecodeState(data []byte) error {
	r := wire.NewReader(data)
	epoch, err := r.Uint64()
	if err != nil {
		return fmt.Errorf("bridge: decode state: %w", err)
	}
	roots, err := r.Hash128Seq()
	if err != nil {
		return fmt.Errorf("bridge: decode state: %w", err)
	}
	best, err := r.Hash256()
	if err != nil {
		return fmt.Errorf("bridge: decode state: %w", err)
	}
	if err := r.Done(); err != nil {
		return fmt.Errorf("bridge: decode state: %w", err)
	}
	b.dagsStartEpoch = epoch
	b.dagsMerkleRoots = roots
	b.bestHeaderHash = best
	return nil
}
