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

// Package chainstore defines the persistence interface the bridge's
// acceptance state machine runs against: headers and their derived info
// keyed by hash, the canonical hash at a height, and the set of every
// header hash ever seen at a height (needed to garbage-collect a height
// once it falls out of the finality window). Package leveldbstore supplies
// a durable implementation; MemStore here is the in-process one used by
// tests and by short-lived verifier processes.
package chainstore

import (
	"errors"
	"sync"

	"github.com/probeum/ethbridge/common"
	"github.com/probeum/ethbridge/header"
)

// ErrNotFound is returned by the Read* methods when the requested key is
// absent. Callers that tolerate a missing value (e.g. BlockHash for an
// unrecorded height) check for it with errors.Is rather than propagating it.
var ErrNotFound = errors.New("chainstore: not found")

// Store is the full read/write surface the bridge package needs. It makes
// no transactional guarantees of its own; the caller (bridge.Bridge) is
// responsible for only calling the Write* methods once a header has fully
// cleared verification, per the single-writer, no-partial-mutation model.
type Store interface {
	ReadHeader(hash common.Hash256) (*header.Header, error)
	WriteHeader(h *header.Header) error
	DeleteHeader(hash common.Hash256) error

	ReadInfo(hash common.Hash256) (*header.HeaderInfo, error)
	WriteInfo(hash common.Hash256, info *header.HeaderInfo) error
	DeleteInfo(hash common.Hash256) error

	ReadCanonicalHash(number uint64) (common.Hash256, error)
	WriteCanonicalHash(number uint64, hash common.Hash256) error
	DeleteCanonicalHash(number uint64) error

	// ReadRecentHashes returns every header hash ever observed at number,
	// in the order they were appended. An absent height returns an empty,
	// nil slice and no error.
	ReadRecentHashes(number uint64) ([]common.Hash256, error)
	// AppendRecentHash records hash as having been seen at number. It is
	// a no-op if hash is already present for that height.
	AppendRecentHash(number uint64, hash common.Hash256) error
	DeleteRecentHashes(number uint64) error

	Close() error
}

// MemStore is an in-process Store backed by plain Go maps, guarded by a
// single mutex. It is the Store used by unit tests and by verifier runs
// that do not need to persist state across process restarts.
type MemStore struct {
	mu sync.RWMutex

	headers    map[common.Hash256]*header.Header
	infos      map[common.Hash256]*header.HeaderInfo
	canonical  map[uint64]common.Hash256
	recentSeen map[uint64][]common.Hash256
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		headers:    make(map[common.Hash256]*header.Header),
		infos:      make(map[common.Hash256]*header.HeaderInfo),
		canonical:  make(map[uint64]common.Hash256),
		recentSeen: make(map[uint64][]common.Hash256),
	}
}

func (m *MemStore) ReadHeader(hash common.Hash256) (*header.Header, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.headers[hash]
	if !ok {
		return nil, ErrNotFound
	}
	return h, nil
}

func (m *MemStore) WriteHeader(h *header.Header) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.headers[h.Hash] = h
	return nil
}

func (m *MemStore) DeleteHeader(hash common.Hash256) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.headers, hash)
	return nil
}

func (m *MemStore) ReadInfo(hash common.Hash256) (*header.HeaderInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.infos[hash]
	if !ok {
		return nil, ErrNotFound
	}
	return info, nil
}

func (m *MemStore) WriteInfo(hash common.Hash256, info *header.HeaderInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos[hash] = info
	return nil
}

func (m *MemStore) DeleteInfo(hash common.Hash256) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.infos, hash)
	return nil
}

func (m *MemStore) ReadCanonicalHash(number uint64) (common.Hash256, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.canonical[number]
	if !ok {
		return common.Hash256{}, ErrNotFound
	}
	return h, nil
}

func (m *MemStore) WriteCanonicalHash(number uint64, hash common.Hash256) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.canonical[number] = hash
	return nil
}

func (m *MemStore) DeleteCanonicalHash(number uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.canonical, number)
	return nil
}

func (m *MemStore) ReadRecentHashes(number uint64) ([]common.Hash256, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]common.Hash256(nil), m.recentSeen[number]...), nil
}

func (m *MemStore) AppendRecentHash(number uint64, hash common.Hash256) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.recentSeen[number] {
		if h == hash {
			return nil
		}
	}
	m.recentSeen[number] = append(m.recentSeen[number], hash)
	return nil
}

func (m *MemStore) DeleteRecentHashes(number uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.recentSeen, number)
	return nil
}

func (m *MemStore) Close() error { return nil }
