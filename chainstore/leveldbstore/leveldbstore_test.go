package leveldbstore

import (
	"errors"
	"testing"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/probeum/ethbridge/chainstore"
	"github.com/probeum/ethbridge/common"
	"github.com/probeum/ethbridge/header"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		t.Fatalf("leveldb.Open: %v", err)
	}
	s, err := newStore(db)
	if err != nil {
		t.Fatalf("newStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleHeader() *header.Header {
	h := &header.Header{
		ParentHash: common.HexToHash256("0xaa"),
		Number:     42,
		Difficulty: common.U256FromUint64(123456),
		GasLimit:   common.U256FromUint64(8_000_000),
		GasUsed:    common.U256FromUint64(1_000_000),
		Timestamp:  1_700_000_000,
		MixDigest:  common.HexToHash256("0xbb"),
		Nonce:      common.BytesToHash64([]byte{1, 2, 3, 4, 5, 6, 7, 8}),
	}
	decoded, err := header.Decode(h.Encode())
	if err != nil {
		panic(err)
	}
	return decoded
}

func TestStoreHeaderRoundTrip(t *testing.T) {
	s := newTestStore(t)
	h := sampleHeader()

	if _, err := s.ReadHeader(h.Hash); !errors.Is(err, chainstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.WriteHeader(h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	got, err := s.ReadHeader(h.Hash)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if got.Number != h.Number || got.Hash != h.Hash {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, h)
	}
	if err := s.DeleteHeader(h.Hash); err != nil {
		t.Fatalf("DeleteHeader: %v", err)
	}
	if _, err := s.ReadHeader(h.Hash); !errors.Is(err, chainstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStoreInfoRoundTrip(t *testing.T) {
	s := newTestStore(t)
	hash := common.HexToHash256("0xcc")
	info := &header.HeaderInfo{
		TotalDifficulty: common.U256FromUint64(999),
		ParentHash:      common.HexToHash256("0xdd"),
		Number:          7,
	}
	if err := s.WriteInfo(hash, info); err != nil {
		t.Fatalf("WriteInfo: %v", err)
	}
	got, err := s.ReadInfo(hash)
	if err != nil {
		t.Fatalf("ReadInfo: %v", err)
	}
	if !got.TotalDifficulty.Eq(info.TotalDifficulty) || got.ParentHash != info.ParentHash || got.Number != info.Number {
		t.Fatalf("info round trip mismatch: got %+v want %+v", got, info)
	}
}

func TestStoreCanonicalHash(t *testing.T) {
	s := newTestStore(t)
	hash := common.HexToHash256("0xee")
	if err := s.WriteCanonicalHash(10, hash); err != nil {
		t.Fatalf("WriteCanonicalHash: %v", err)
	}
	got, err := s.ReadCanonicalHash(10)
	if err != nil {
		t.Fatalf("ReadCanonicalHash: %v", err)
	}
	if got != hash {
		t.Fatalf("got %s, want %s", got, hash)
	}
}

func TestStoreRecentHashesDedupAndCache(t *testing.T) {
	s := newTestStore(t)
	a := common.HexToHash256("0x01")
	b := common.HexToHash256("0x02")

	for _, h := range []common.Hash256{a, b, a} {
		if err := s.AppendRecentHash(5, h); err != nil {
			t.Fatalf("AppendRecentHash: %v", err)
		}
	}
	got, err := s.ReadRecentHashes(5)
	if err != nil {
		t.Fatalf("ReadRecentHashes: %v", err)
	}
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("expected deduplicated [a b], got %v", got)
	}

	if err := s.DeleteRecentHashes(5); err != nil {
		t.Fatalf("DeleteRecentHashes: %v", err)
	}
	got, err = s.ReadRecentHashes(5)
	if err != nil {
		t.Fatalf("ReadRecentHashes after delete: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty after delete, got %v", got)
	}
}
