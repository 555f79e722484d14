package bridge

import (
	"testing"

	"github.com/probeum/ethbridge/chainstore"
	"github.com/probeum/ethbridge/common"
	"github.com/probeum/ethbridge/log"
	"github.com/probeum/ethbridge/wire"
)

func TestDispatchInitAndInitialized(t *testing.T) {
	b := New(chainstore.NewMemStore(), log.NewNop())

	argW := wire.NewWriter()
	argW.PutUint64(7)
	roots := []common.Hash128{common.HexToHash128("0xaa"), common.HexToHash128("0xbb")}
	argW.PutHash128Seq(roots)
	if _, err := b.DispatchInit(argW.Bytes()); err != nil {
		t.Fatalf("DispatchInit: %v", err)
	}

	out, err := b.DispatchInitialized(nil)
	if err != nil {
		t.Fatalf("DispatchInitialized: %v", err)
	}
	initialized, err := wire.NewReader(out).Bool()
	if err != nil {
		t.Fatalf("decode bool: %v", err)
	}
	if !initialized {
		t.Fatalf("expected initialized=true after DispatchInit")
	}

	rootOut, err := b.DispatchDagMerkleRoot(func() []byte {
		w := wire.NewWriter()
		w.PutUint64(8)
		return w.Bytes()
	}())
	if err != nil {
		t.Fatalf("DispatchDagMerkleRoot: %v", err)
	}
	root, err := wire.NewReader(rootOut).Hash128()
	if err != nil {
		t.Fatalf("decode hash128: %v", err)
	}
	if root != roots[1] {
		t.Fatalf("got root %s, want %s", root, roots[1])
	}
}

func TestDispatchInitRejectsTrailingBytes(t *testing.T) {
	b := New(chainstore.NewMemStore(), log.NewNop())
	w := wire.NewWriter()
	w.PutUint64(0)
	w.PutHash128Seq(nil)
	buf := append(w.Bytes(), 0xff)
	if _, err := b.DispatchInit(buf); err == nil {
		t.Fatalf("expected an error for trailing bytes")
	}
}

func TestDispatchAddBlockHeaderRoundTrip(t *testing.T) {
	witnesses := testWitnesses(0x09)
	root := testEpochRoot(witnesses)
	b := New(chainstore.NewMemStore(), log.NewNop())
	if _, err := b.DispatchInit(func() []byte {
		w := wire.NewWriter()
		w.PutUint64(0)
		w.PutHash128Seq([]common.Hash128{root})
		return w.Bytes()
	}()); err != nil {
		t.Fatalf("DispatchInit: %v", err)
	}

	genesis := buildRaw(common.Hash256{}, 1, 1_700_000_000, 1)
	genesisArgs := wire.NewWriter()
	genesisArgs.PutBytes(genesis)
	genesisArgs.PutWitnesses(nil)
	if _, err := b.DispatchAddBlockHeader(genesisArgs.Bytes()); err != nil {
		t.Fatalf("DispatchAddBlockHeader(genesis): %v", err)
	}

	child := buildRaw(hashOf(genesis), 2, 1_700_000_015, 2)
	childArgs := wire.NewWriter()
	childArgs.PutBytes(child)
	childArgs.PutWitnesses(witnesses)
	if _, err := b.DispatchAddBlockHeader(childArgs.Bytes()); err != nil {
		t.Fatalf("DispatchAddBlockHeader(child): %v", err)
	}

	lastOut, err := b.DispatchLastBlockNumber(nil)
	if err != nil {
		t.Fatalf("DispatchLastBlockNumber: %v", err)
	}
	last, err := wire.NewReader(lastOut).Uint64()
	if err != nil {
		t.Fatalf("decode uint64: %v", err)
	}
	if last != 2 {
		t.Fatalf("last_block_number = %d, want 2", last)
	}

	blockHashArgs := wire.NewWriter()
	blockHashArgs.PutUint64(2)
	blockHashOut, err := b.DispatchBlockHash(blockHashArgs.Bytes())
	if err != nil {
		t.Fatalf("DispatchBlockHash: %v", err)
	}
	r := wire.NewReader(blockHashOut)
	present, err := r.Bool()
	if err != nil || !present {
		t.Fatalf("expected block_hash(2) present, got %v %v", present, err)
	}
	hash, err := r.Hash256()
	if err != nil || hash != hashOf(child) {
		t.Fatalf("block_hash(2) = %s, want %s", hash, hashOf(child))
	}

	missingArgs := wire.NewWriter()
	missingArgs.PutUint64(99)
	missingOut, err := b.DispatchBlockHash(missingArgs.Bytes())
	if err != nil {
		t.Fatalf("DispatchBlockHash(missing): %v", err)
	}
	missingPresent, err := wire.NewReader(missingOut).Bool()
	if err != nil || missingPresent {
		t.Fatalf("expected block_hash(99) absent, got %v %v", missingPresent, err)
	}
}
