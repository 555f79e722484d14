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

// Package consensus checks a candidate header against its parent and its
// own proof-of-work result: parent linkage, height succession, the gas
// window, timestamp monotonicity, and a PoW-boundary comparison against a
// Hashimoto result the caller has already computed.
package consensus

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/probeum/ethbridge/common"
	"github.com/probeum/ethbridge/ethash"
	"github.com/probeum/ethbridge/header"
)

var (
	ErrParentMismatch  = errors.New("consensus: header's parent hash does not match the stored parent")
	ErrHeightSuccessor = errors.New("consensus: number is not parent's number plus one")
	ErrTimestamp       = errors.New("consensus: timestamp does not strictly advance on the parent's")
	ErrGasUsedLimit    = errors.New("consensus: gasUsed exceeds gasLimit")
	ErrGasLimitFloor   = errors.New("consensus: gasLimit is below the protocol floor")
	ErrGasLimitWindow  = errors.New("consensus: gasLimit moved outside the allowed window of the parent's")
	ErrPoWBoundary     = errors.New("consensus: Hashimoto result does not clear the difficulty boundary")
)

// minGasLimit is the protocol floor below which a chain cannot run any
// meaningful computation; headers claiming less are rejected outright.
const minGasLimit = 5000

// gasLimitUpperNum/Den and gasLimitLowerNum/Den bound how far gasLimit may
// drift from the parent's in a single block: gasLimit must stay strictly
// inside (prev.gasLimit * 1023/1024, prev.gasLimit * 1025/1024).
const (
	gasLimitUpperNum, gasLimitUpperDen = 1025, 1024
	gasLimitLowerNum, gasLimitLowerDen = 1023, 1024
)

// CheckHeader validates h against its parent and the already-computed
// Hashimoto result, running every conjunct by name in an order that fails
// fast on the cheapest checks first.
//
// checkDifficultyWindow is deliberately a no-op today: the window the
// original rule intended to enforce was self-referential (it compared
// header.Difficulty against bounds derived from header.Difficulty itself)
// and never rejected anything. A real difficulty-retarget check belongs
// here once the bridge needs to verify difficulty adjustment against the
// parent rather than trusting the relayer's claimed value.
func CheckHeader(h, prev *header.Header, mixResult common.U256) error {
	if h.ParentHash != prev.Hash {
		return fmt.Errorf("%w: got %s, want %s", ErrParentMismatch, h.ParentHash, prev.Hash)
	}
	if h.Number != prev.Number+1 {
		return fmt.Errorf("%w: got %d, parent is %d", ErrHeightSuccessor, h.Number, prev.Number)
	}
	if h.Timestamp <= prev.Timestamp {
		return fmt.Errorf("%w: got %d, parent is %d", ErrTimestamp, h.Timestamp, prev.Timestamp)
	}
	if h.GasUsed.Cmp(h.GasLimit) > 0 {
		return fmt.Errorf("%w: gasUsed %s, gasLimit %s", ErrGasUsedLimit, h.GasUsed, h.GasLimit)
	}
	if h.GasLimit.Cmp(common.U256FromUint64(minGasLimit)) < 0 {
		return fmt.Errorf("%w: gasLimit %s, floor %d", ErrGasLimitFloor, h.GasLimit, minGasLimit)
	}
	if err := checkGasLimitWindow(h, prev); err != nil {
		return err
	}
	if err := checkDifficultyWindow(h, prev); err != nil {
		return err
	}
	boundary := ethash.CrossBoundary(h.Difficulty)
	if mixResult.Cmp(boundary) >= 0 {
		return fmt.Errorf("%w: result %s, boundary %s", ErrPoWBoundary, mixResult, boundary)
	}
	return nil
}

// checkGasLimitWindow enforces prev.gasLimit*1023/1024 < gasLimit <
// prev.gasLimit*1025/1024, exactly as spec'd, rather than an equivalent
// absolute-difference approximation.
func checkGasLimitWindow(h, prev *header.Header) error {
	parent := prev.GasLimit.Big()
	limit := h.GasLimit.Big()

	upper := new(big.Int).Mul(parent, big.NewInt(gasLimitUpperNum))
	upper.Div(upper, big.NewInt(gasLimitUpperDen))

	lower := new(big.Int).Mul(parent, big.NewInt(gasLimitLowerNum))
	lower.Div(lower, big.NewInt(gasLimitLowerDen))

	if limit.Cmp(upper) >= 0 || limit.Cmp(lower) <= 0 {
		return fmt.Errorf("%w: parent %s, got %s", ErrGasLimitWindow, prev.GasLimit, h.GasLimit)
	}
	return nil
}

// checkDifficultyWindow is the explicit home for a future difficulty
// retarget rule. See CheckHeader's doc comment for why it is a no-op.
func checkDifficultyWindow(h, prev *header.Header) error {
	_ = h
	_ = prev
	return nil
}
