package bridge

import (
	"errors"
	"testing"

	"github.com/probeum/ethbridge/chainstore"
	"github.com/probeum/ethbridge/common"
	"github.com/probeum/ethbridge/header"
	"github.com/probeum/ethbridge/log"
	"github.com/probeum/ethbridge/merkle"
	"github.com/probeum/ethbridge/powverify"
)

// witnessCount is loopAccesses*(mixBytes/hashBytes)/2 = 64*2/2 = 64: the
// number of witness pairs a full Hashimoto run consumes.
const witnessCount = 64

// testWitnesses returns a uniform witness list: every pair carries the same
// two DAG nodes and an empty sibling proof, so ApplyMerkleProof returns the
// same root regardless of leaf index. This lets a single pinned root back
// every lookup the Hashimoto loop makes, without hand-computing a real
// epoch dataset.
func testWitnesses(fill byte) []merkle.DoubleNodeWithMerkleProof {
	var node0, node1 common.Hash512
	for i := range node0 {
		node0[i] = fill
	}
	for i := range node1 {
		node1[i] = fill + 1
	}
	out := make([]merkle.DoubleNodeWithMerkleProof, witnessCount)
	for i := range out {
		out[i] = merkle.DoubleNodeWithMerkleProof{DAGNodes: [2]common.Hash512{node0, node1}}
	}
	return out
}

func testEpochRoot(witnesses []merkle.DoubleNodeWithMerkleProof) common.Hash128 {
	return witnesses[0].ApplyMerkleProof(0)
}

// buildRaw returns the RLP encoding of a header with difficulty 1: per the
// CrossBoundary overflow fix, difficulty 1 always produces the maximal PoW
// boundary, so any Hashimoto result clears it and the PoW check passes
// deterministically regardless of the witness content.
func buildRaw(parentHash common.Hash256, number, timestamp uint64, nonceSeed byte) []byte {
	h := &header.Header{
		ParentHash: parentHash,
		Number:     number,
		Difficulty: common.U256FromUint64(1),
		GasLimit:   common.U256FromUint64(8_000_000),
		GasUsed:    common.U256FromUint64(0),
		Timestamp:  timestamp,
		MixDigest:  common.Hash256{},
		Nonce:      common.BytesToHash64([]byte{nonceSeed}),
	}
	return h.Encode()
}

func hashOf(raw []byte) common.Hash256 {
	h, err := header.Decode(raw)
	if err != nil {
		panic(err)
	}
	return h.Hash
}

// recordingLogger captures Warn messages so tests can assert on the
// bootstrap path's log output without parsing text from a real sink.
type recordingLogger struct {
	log.Logger
	warnings []string
}

func (r *recordingLogger) Warn(msg string, ctx ...interface{}) {
	r.warnings = append(r.warnings, msg)
	r.Logger.Warn(msg, ctx...)
}

func (r *recordingLogger) With(ctx ...interface{}) log.Logger { return r }

func newTestBridge(t *testing.T, root common.Hash128) (*Bridge, *chainstore.MemStore) {
	t.Helper()
	store := chainstore.NewMemStore()
	b := New(store, log.NewNop())
	if err := b.Init(0, []common.Hash128{root}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return b, store
}

func TestBridgeGenesisBootstrap(t *testing.T) {
	witnesses := testWitnesses(0x01)
	root := testEpochRoot(witnesses)
	store := chainstore.NewMemStore()
	recorder := &recordingLogger{Logger: log.NewNop()}
	b := New(store, recorder)
	if err := b.Init(0, []common.Hash128{root}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	genesis := buildRaw(common.Hash256{}, 1, 1_700_000_000, 1)
	if err := b.AddBlockHeader(genesis, nil); err != nil {
		t.Fatalf("AddBlockHeader(genesis): %v", err)
	}

	if !b.Initialized() {
		t.Fatalf("expected bridge to be initialized")
	}
	if got := b.LastBlockNumber(); got != 1 {
		t.Fatalf("LastBlockNumber() = %d, want 1", got)
	}
	hash, ok := b.BlockHash(1)
	if !ok || hash != hashOf(genesis) {
		t.Fatalf("BlockHash(1) = (%s, %v), want (%s, true)", hash, ok, hashOf(genesis))
	}
	if len(recorder.warnings) != 1 {
		t.Fatalf("expected exactly one Warn call from bootstrap, got %d: %v", len(recorder.warnings), recorder.warnings)
	}
}

func TestBridgeLinearExtension(t *testing.T) {
	witnesses := testWitnesses(0x02)
	root := testEpochRoot(witnesses)
	b, _ := newTestBridge(t, root)

	genesis := buildRaw(common.Hash256{}, 1, 1_700_000_000, 1)
	if err := b.AddBlockHeader(genesis, nil); err != nil {
		t.Fatalf("AddBlockHeader(genesis): %v", err)
	}
	genesisHash := hashOf(genesis)

	child := buildRaw(genesisHash, 2, 1_700_000_015, 2)
	if err := b.AddBlockHeader(child, witnesses); err != nil {
		t.Fatalf("AddBlockHeader(child): %v", err)
	}
	childHash := hashOf(child)

	if got := b.LastBlockNumber(); got != 2 {
		t.Fatalf("LastBlockNumber() = %d, want 2", got)
	}
	if hash, ok := b.BlockHash(2); !ok || hash != childHash {
		t.Fatalf("BlockHash(2) = (%s, %v), want (%s, true)", hash, ok, childHash)
	}
	if hash, ok := b.BlockHash(1); !ok || hash != genesisHash {
		t.Fatalf("BlockHash(1) changed unexpectedly: (%s, %v)", hash, ok)
	}
}

func TestBridgeAddBlockHeaderIsIdempotent(t *testing.T) {
	witnesses := testWitnesses(0x03)
	root := testEpochRoot(witnesses)
	b, _ := newTestBridge(t, root)

	genesis := buildRaw(common.Hash256{}, 1, 1_700_000_000, 1)
	if err := b.AddBlockHeader(genesis, nil); err != nil {
		t.Fatalf("AddBlockHeader(genesis): %v", err)
	}
	genesisHash := hashOf(genesis)

	child := buildRaw(genesisHash, 2, 1_700_000_015, 2)
	if err := b.AddBlockHeader(child, witnesses); err != nil {
		t.Fatalf("AddBlockHeader(child) first submission: %v", err)
	}
	if err := b.AddBlockHeader(child, witnesses); err != nil {
		t.Fatalf("AddBlockHeader(child) resubmission should be a silent no-op, got: %v", err)
	}
	if got := b.LastBlockNumber(); got != 2 {
		t.Fatalf("LastBlockNumber() = %d, want 2", got)
	}
}

func TestBridgeRejectsUnknownParent(t *testing.T) {
	witnesses := testWitnesses(0x04)
	root := testEpochRoot(witnesses)
	b, _ := newTestBridge(t, root)

	genesis := buildRaw(common.Hash256{}, 1, 1_700_000_000, 1)
	if err := b.AddBlockHeader(genesis, nil); err != nil {
		t.Fatalf("AddBlockHeader(genesis): %v", err)
	}

	orphan := buildRaw(common.HexToHash256("0xdeadbeef"), 2, 1_700_000_015, 2)
	err := b.AddBlockHeader(orphan, witnesses)
	if !errors.Is(err, ErrUnknownParent) {
		t.Fatalf("expected ErrUnknownParent, got %v", err)
	}
}

func TestBridgeRejectsMerkleRootMismatch(t *testing.T) {
	setupWitnesses := testWitnesses(0x05)
	root := testEpochRoot(setupWitnesses)
	b, _ := newTestBridge(t, root)

	genesis := buildRaw(common.Hash256{}, 1, 1_700_000_000, 1)
	if err := b.AddBlockHeader(genesis, nil); err != nil {
		t.Fatalf("AddBlockHeader(genesis): %v", err)
	}
	genesisHash := hashOf(genesis)

	wrongWitnesses := testWitnesses(0x99) // folds to a different root
	child := buildRaw(genesisHash, 2, 1_700_000_015, 2)
	err := b.AddBlockHeader(child, wrongWitnesses)
	if !errors.Is(err, powverify.ErrMerkleRoot) {
		t.Fatalf("expected ErrMerkleRoot, got %v", err)
	}
}

func TestBridgeReorgToHigherTotalDifficulty(t *testing.T) {
	witnesses := testWitnesses(0x06)
	root := testEpochRoot(witnesses)
	b, store := newTestBridge(t, root)

	genesis := buildRaw(common.Hash256{}, 1, 1_700_000_000, 1)
	if err := b.AddBlockHeader(genesis, nil); err != nil {
		t.Fatalf("AddBlockHeader(genesis): %v", err)
	}
	genesisHash := hashOf(genesis)

	mainChild := buildRaw(genesisHash, 2, 1_700_000_015, 2)
	if err := b.AddBlockHeader(mainChild, witnesses); err != nil {
		t.Fatalf("AddBlockHeader(mainChild): %v", err)
	}
	mainChildHash := hashOf(mainChild)
	if hash, ok := b.BlockHash(2); !ok || hash != mainChildHash {
		t.Fatalf("expected main chain canonical at height 2, got (%s, %v)", hash, ok)
	}

	// A two-block side chain forking from genesis accumulates total
	// difficulty 3 (1 per block including genesis) against the main
	// chain's 2, so it must take over as canonical once its tip lands.
	side1 := buildRaw(genesisHash, 2, 1_700_000_020, 3)
	if err := b.AddBlockHeader(side1, witnesses); err != nil {
		t.Fatalf("AddBlockHeader(side1): %v", err)
	}
	side1Hash := hashOf(side1)
	if hash, _ := b.BlockHash(2); hash != mainChildHash {
		t.Fatalf("side1 alone ties the main chain's total difficulty with an odd difficulty and must not overturn it, canonical(2) = %s", hash)
	}

	side2 := buildRaw(side1Hash, 3, 1_700_000_025, 4)
	if err := b.AddBlockHeader(side2, witnesses); err != nil {
		t.Fatalf("AddBlockHeader(side2): %v", err)
	}
	side2Hash := hashOf(side2)

	if got := b.LastBlockNumber(); got != 3 {
		t.Fatalf("LastBlockNumber() = %d, want 3", got)
	}
	if hash, ok := b.BlockHash(3); !ok || hash != side2Hash {
		t.Fatalf("BlockHash(3) = (%s, %v), want (%s, true)", hash, ok, side2Hash)
	}
	if hash, ok := b.BlockHash(2); !ok || hash != side1Hash {
		t.Fatalf("expected canonical(2) rewritten to side1 %s, got %s", side1Hash, hash)
	}
	if hash, ok := b.BlockHash(1); !ok || hash != genesisHash {
		t.Fatalf("genesis canonical entry must survive the reorg, got (%s, %v)", hash, ok)
	}

	// The abandoned main-chain header is still retained (within the
	// finality window), just no longer canonical.
	if _, err := store.ReadHeader(mainChildHash); err != nil {
		t.Fatalf("expected abandoned fork header to remain stored, got %v", err)
	}
}

func TestBridgeGarbageCollectsBelowFinalityDepth(t *testing.T) {
	witnesses := testWitnesses(0x07)
	root := testEpochRoot(witnesses)
	b, store := newTestBridge(t, root)

	genesis := buildRaw(common.Hash256{}, 1, 1_700_000_000, 1)
	if err := b.AddBlockHeader(genesis, nil); err != nil {
		t.Fatalf("AddBlockHeader(genesis): %v", err)
	}
	genesisHash := hashOf(genesis)

	parentHash := genesisHash
	var tipHash common.Hash256
	var midHash common.Hash256
	const lastHeight = 40
	for n := uint64(2); n <= lastHeight; n++ {
		raw := buildRaw(parentHash, n, 1_700_000_000+n*15, byte(n))
		if err := b.AddBlockHeader(raw, witnesses); err != nil {
			t.Fatalf("AddBlockHeader(height %d): %v", n, err)
		}
		h := hashOf(raw)
		if n == 5 {
			midHash = h
		}
		parentHash = h
		tipHash = h
	}

	if got := b.LastBlockNumber(); got != lastHeight {
		t.Fatalf("LastBlockNumber() = %d, want %d", got, lastHeight)
	}

	if _, err := store.ReadHeader(genesisHash); !errors.Is(err, chainstore.ErrNotFound) {
		t.Fatalf("expected genesis header to be garbage collected, got %v", err)
	}
	if _, err := store.ReadHeader(midHash); !errors.Is(err, chainstore.ErrNotFound) {
		t.Fatalf("expected height-5 header to be garbage collected, got %v", err)
	}
	if _, err := store.ReadHeader(tipHash); err != nil {
		t.Fatalf("expected tip header to still be stored, got %v", err)
	}

	recent, err := store.ReadRecentHashes(1)
	if err != nil {
		t.Fatalf("ReadRecentHashes(1): %v", err)
	}
	if len(recent) != 0 {
		t.Fatalf("expected recent hash set at height 1 to be collected, got %v", recent)
	}
}

func TestBridgeAlreadyInitializedRejectsSecondInit(t *testing.T) {
	witnesses := testWitnesses(0x08)
	root := testEpochRoot(witnesses)
	b, _ := newTestBridge(t, root)

	if err := b.Init(0, []common.Hash128{root}); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestBridgeStateRoundTrip(t *testing.T) {
	witnesses := testWitnesses(0x0a)
	root := testEpochRoot(witnesses)
	b, store := newTestBridge(t, root)

	genesis := buildRaw(common.Hash256{}, 1, 1_700_000_000, 1)
	if err := b.AddBlockHeader(genesis, nil); err != nil {
		t.Fatalf("AddBlockHeader(genesis): %v", err)
	}

	encoded := b.EncodeState()

	restored := New(store, log.NewNop())
	if err := restored.DecodeState(encoded); err != nil {
		t.Fatalf("DecodeState: %v", err)
	}
	if !restored.Initialized() {
		t.Fatalf("expected restored bridge to be initialized")
	}
	if got := restored.LastBlockNumber(); got != 1 {
		t.Fatalf("LastBlockNumber() = %d, want 1", got)
	}
	gotRoot, err := restored.DagMerkleRoot(0)
	if err != nil || gotRoot != root {
		t.Fatalf("DagMerkleRoot(0) = (%s, %v), want (%s, nil)", gotRoot, err, root)
	}
}

func TestBridgeDagMerkleRootOutOfRange(t *testing.T) {
	witnesses := testWitnesses(0x09)
	root := testEpochRoot(witnesses)
	b, _ := newTestBridge(t, root)

	if _, err := b.DagMerkleRoot(1); !errors.Is(err, ErrDagMerkleRootOutOfRange) {
		t.Fatalf("expected ErrDagMerkleRootOutOfRange, got %v", err)
	}
	got, err := b.DagMerkleRoot(0)
	if err != nil {
		t.Fatalf("DagMerkleRoot(0): %v", err)
	}
	if got != root {
		t.Fatalf("DagMerkleRoot(0) = %s, want %s", got, root)
	}
}
