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

// Package leveldbstore is the durable chainstore.Store backing the bridge's
// persisted state: headers and infos keyed by hash, the canonical hash
// index keyed by height, and the per-height set of every header hash ever
// accepted, so the acceptance path can garbage-collect a height once it
// falls out of the finality window. An in-memory LRU sits in front of
// header/info reads, since the acceptance path re-reads the same parent
// header and info repeatedly while walking a reorg.
package leveldbstore

import (
	"encoding/binary"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/probeum/ethbridge/chainstore"
	"github.com/probeum/ethbridge/common"
	"github.com/probeum/ethbridge/header"
	"github.com/probeum/ethbridge/rlp"
)

// Key prefixes, matching the persisted-state layout: "c" for the canonical
// hash index, "h" for headers, "i" for infos, and "rs" for the per-height
// recent-hash sets (the sub-store prefix "r" followed by the per-height set
// key prefix "s").
const (
	prefixCanonical    = 'c'
	prefixHeader       = 'h'
	prefixInfo         = 'i'
	prefixRecentSet    = "rs"
	headerCacheSize    = 512
	infoCacheSize      = 512
	recentSetCacheSize = 128
)

func canonicalKey(number uint64) []byte {
	key := make([]byte, 1+8)
	key[0] = prefixCanonical
	binary.LittleEndian.PutUint64(key[1:], number)
	return key
}

func headerKey(hash common.Hash256) []byte {
	key := make([]byte, 1+common.Hash256Length)
	key[0] = prefixHeader
	copy(key[1:], hash[:])
	return key
}

func infoKey(hash common.Hash256) []byte {
	key := make([]byte, 1+common.Hash256Length)
	key[0] = prefixInfo
	copy(key[1:], hash[:])
	return key
}

func recentSetKey(number uint64) []byte {
	key := make([]byte, len(prefixRecentSet)+8)
	copy(key, prefixRecentSet)
	binary.LittleEndian.PutUint64(key[len(prefixRecentSet):], number)
	return key
}

// Store is a chainstore.Store backed by a goleveldb database.
type Store struct {
	db *leveldb.DB

	headerCache *lru.Cache
	infoCache   *lru.Cache
	recentCache *lru.Cache
}

var _ chainstore.Store = (*Store)(nil)

// Open opens (creating if absent) a leveldb database at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("leveldbstore: open %s: %w", path, err)
	}
	return newStore(db)
}

func newStore(db *leveldb.DB) (*Store, error) {
	headerCache, err := lru.New(headerCacheSize)
	if err != nil {
		return nil, err
	}
	infoCache, err := lru.New(infoCacheSize)
	if err != nil {
		return nil, err
	}
	recentCache, err := lru.New(recentSetCacheSize)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, headerCache: headerCache, infoCache: infoCache, recentCache: recentCache}, nil
}

func (s *Store) ReadHeader(hash common.Hash256) (*header.Header, error) {
	if v, ok := s.headerCache.Get(hash); ok {
		return v.(*header.Header), nil
	}
	raw, err := s.db.Get(headerKey(hash), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, chainstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("leveldbstore: read header %s: %w", hash, err)
	}
	h, err := header.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("leveldbstore: decode stored header %s: %w", hash, err)
	}
	s.headerCache.Add(hash, h)
	return h, nil
}

func (s *Store) WriteHeader(h *header.Header) error {
	if err := s.db.Put(headerKey(h.Hash), h.Encode(), nil); err != nil {
		return fmt.Errorf("leveldbstore: write header %s: %w", h.Hash, err)
	}
	s.headerCache.Add(h.Hash, h)
	return nil
}

func (s *Store) DeleteHeader(hash common.Hash256) error {
	if err := s.db.Delete(headerKey(hash), nil); err != nil {
		return fmt.Errorf("leveldbstore: delete header %s: %w", hash, err)
	}
	s.headerCache.Remove(hash)
	return nil
}

func (s *Store) ReadInfo(hash common.Hash256) (*header.HeaderInfo, error) {
	if v, ok := s.infoCache.Get(hash); ok {
		return v.(*header.HeaderInfo), nil
	}
	raw, err := s.db.Get(infoKey(hash), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, chainstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("leveldbstore: read info %s: %w", hash, err)
	}
	info, err := decodeInfo(raw)
	if err != nil {
		return nil, fmt.Errorf("leveldbstore: decode stored info %s: %w", hash, err)
	}
	s.infoCache.Add(hash, info)
	return info, nil
}

func (s *Store) WriteInfo(hash common.Hash256, info *header.HeaderInfo) error {
	if err := s.db.Put(infoKey(hash), encodeInfo(info), nil); err != nil {
		return fmt.Errorf("leveldbstore: write info %s: %w", hash, err)
	}
	s.infoCache.Add(hash, info)
	return nil
}

func (s *Store) DeleteInfo(hash common.Hash256) error {
	if err := s.db.Delete(infoKey(hash), nil); err != nil {
		return fmt.Errorf("leveldbstore: delete info %s: %w", hash, err)
	}
	s.infoCache.Remove(hash)
	return nil
}

func (s *Store) ReadCanonicalHash(number uint64) (common.Hash256, error) {
	raw, err := s.db.Get(canonicalKey(number), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return common.Hash256{}, chainstore.ErrNotFound
	}
	if err != nil {
		return common.Hash256{}, fmt.Errorf("leveldbstore: read canonical hash at %d: %w", number, err)
	}
	return common.BytesToHash256(raw), nil
}

func (s *Store) WriteCanonicalHash(number uint64, hash common.Hash256) error {
	if err := s.db.Put(canonicalKey(number), hash.Bytes(), nil); err != nil {
		return fmt.Errorf("leveldbstore: write canonical hash at %d: %w", number, err)
	}
	return nil
}

func (s *Store) DeleteCanonicalHash(number uint64) error {
	if err := s.db.Delete(canonicalKey(number), nil); err != nil {
		return fmt.Errorf("leveldbstore: delete canonical hash at %d: %w", number, err)
	}
	return nil
}

func (s *Store) ReadRecentHashes(number uint64) ([]common.Hash256, error) {
	if v, ok := s.recentCache.Get(number); ok {
		return append([]common.Hash256(nil), v.([]common.Hash256)...), nil
	}
	raw, err := s.db.Get(recentSetKey(number), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leveldbstore: read recent hashes at %d: %w", number, err)
	}
	set, err := decodeHashSet(raw)
	if err != nil {
		return nil, fmt.Errorf("leveldbstore: decode recent hashes at %d: %w", number, err)
	}
	s.recentCache.Add(number, set)
	return append([]common.Hash256(nil), set...), nil
}

func (s *Store) AppendRecentHash(number uint64, hash common.Hash256) error {
	existing, err := s.ReadRecentHashes(number)
	if err != nil {
		return err
	}
	for _, h := range existing {
		if h == hash {
			return nil
		}
	}
	existing = append(existing, hash)
	if err := s.db.Put(recentSetKey(number), encodeHashSet(existing), nil); err != nil {
		return fmt.Errorf("leveldbstore: write recent hashes at %d: %w", number, err)
	}
	s.recentCache.Add(number, existing)
	return nil
}

func (s *Store) DeleteRecentHashes(number uint64) error {
	if err := s.db.Delete(recentSetKey(number), nil); err != nil {
		return fmt.Errorf("leveldbstore: delete recent hashes at %d: %w", number, err)
	}
	s.recentCache.Remove(number)
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// encodeInfo/decodeInfo use the RLP codec rather than a bespoke format:
// HeaderInfo is exactly the shape RLP already handles well, and reusing it
// avoids a second serialization scheme for three uint-shaped fields.
func encodeInfo(info *header.HeaderInfo) []byte {
	return rlp.EncodeList(
		rlp.EncodeBigInt(info.TotalDifficulty.Big()),
		rlp.EncodeBytes(info.ParentHash.Bytes()),
		rlp.EncodeUint64(info.Number),
	)
}

func decodeInfo(raw []byte) (*header.HeaderInfo, error) {
	content, rest, err := rlp.SplitList(raw)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("trailing data after info")
	}
	var s []byte
	info := new(header.HeaderInfo)

	if s, content, err = rlp.SplitString(content); err != nil {
		return nil, err
	}
	td, err := rlp.BigIntFromString(s)
	if err != nil {
		return nil, err
	}
	info.TotalDifficulty = common.U256FromBig(td)

	if s, content, err = rlp.SplitString(content); err != nil {
		return nil, err
	}
	info.ParentHash = common.BytesToHash256(s)

	if s, content, err = rlp.SplitString(content); err != nil {
		return nil, err
	}
	if info.Number, err = rlp.Uint64FromString(s); err != nil {
		return nil, err
	}
	if len(content) != 0 {
		return nil, fmt.Errorf("trailing field data in info")
	}
	return info, nil
}

func encodeHashSet(hashes []common.Hash256) []byte {
	items := make([][]byte, len(hashes))
	for i, h := range hashes {
		items[i] = rlp.EncodeBytes(h.Bytes())
	}
	return rlp.EncodeList(items...)
}

func decodeHashSet(raw []byte) ([]common.Hash256, error) {
	content, rest, err := rlp.SplitList(raw)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("trailing data after hash set")
	}
	var out []common.Hash256
	for len(content) != 0 {
		var s []byte
		s, content, err = rlp.SplitString(content)
		if err != nil {
			return nil, err
		}
		out = append(out, common.BytesToHash256(s))
	}
	return out, nil
}
