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

import "errors"

// Preconditions: fatal, caller-facing, rejected before any state is read
// for verification purposes.
var (
	// ErrAlreadyInitialized is returned by Init when the bridge already
	// holds a non-empty epoch root table.
	ErrAlreadyInitialized = errors.New("bridge: already initialized")
	// ErrUnknownParent is returned when a submitted header's parent hash
	// does not match any header currently held in the chain store.
	ErrUnknownParent = errors.New("bridge: unknown parent header")
	// ErrDagMerkleRootOutOfRange is returned by DagMerkleRoot when epoch
	// falls outside [dags_start_epoch, dags_start_epoch+len(roots)).
	ErrDagMerkleRootOutOfRange = errors.New("bridge: epoch has no known DAG merkle root")
)
