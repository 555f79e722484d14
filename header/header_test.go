package header

import (
	"testing"

	"github.com/probeum/ethbridge/common"
)

func sampleHeader() *Header {
	return &Header{
		ParentHash: common.HexToHash256("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		Number:     12345,
		Difficulty: common.U256FromUint64(17_000_000_000),
		GasLimit:   common.U256FromUint64(8_000_000),
		GasUsed:    common.U256FromUint64(7_900_000),
		Timestamp:  1_600_000_000,
		MixDigest:  common.HexToHash256("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"),
		Nonce:      common.BytesToHash64([]byte{1, 2, 3, 4, 5, 6, 7, 8}),
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	h := sampleHeader()
	raw := h.Encode()

	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if got.ParentHash != h.ParentHash || got.Number != h.Number || !got.Difficulty.Eq(h.Difficulty) ||
		!got.GasLimit.Eq(h.GasLimit) || !got.GasUsed.Eq(h.GasUsed) || got.Timestamp != h.Timestamp ||
		got.MixDigest != h.MixDigest || got.Nonce != h.Nonce {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, h)
	}
}

func TestDecodeComputesConsistentHashes(t *testing.T) {
	h := sampleHeader()
	raw := h.Encode()
	decoded, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if decoded.Hash.IsZero() {
		t.Fatalf("decoded Hash is zero")
	}
	if decoded.PartialHash.IsZero() {
		t.Fatalf("decoded PartialHash is zero")
	}
	if decoded.Hash == decoded.PartialHash {
		t.Fatalf("Hash and PartialHash must differ once MixDigest/Nonce are populated")
	}

	again, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode error on second pass: %v", err)
	}
	if again.Hash != decoded.Hash || again.PartialHash != decoded.PartialHash {
		t.Fatalf("hash computation is not deterministic across decodes")
	}
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	h := sampleHeader()
	raw := h.Encode()
	if _, err := Decode(raw[:len(raw)-1]); err == nil {
		t.Fatalf("expected an error decoding truncated header bytes")
	}
}

func TestDecodeRejectsWrongFieldCount(t *testing.T) {
	// A well-formed two-element list is not a valid header encoding.
	notAHeader := []byte{0xc2, 0x01, 0x02}
	if _, err := Decode(notAHeader); err == nil {
		t.Fatalf("expected an error decoding a list with the wrong field count")
	}
}

func TestSanityCheckRejectsOversizedDifficulty(t *testing.T) {
	h := sampleHeader()
	huge := make([]byte, 11) // 81 bits, just over the 80 bit bound
	huge[0] = 0x01
	h.Difficulty = common.U256FromBytes(huge)
	if err := h.SanityCheck(); err == nil {
		t.Fatalf("expected SanityCheck to reject an oversized difficulty")
	}
}

func TestSanityCheckRejectsGasUsedAboveLimit(t *testing.T) {
	h := sampleHeader()
	h.GasUsed = h.GasLimit.Add(common.U256FromUint64(1))
	if err := h.SanityCheck(); err == nil {
		t.Fatalf("expected SanityCheck to reject gasUsed > gasLimit")
	}
}

func TestSanityCheckAcceptsSampleHeader(t *testing.T) {
	h := sampleHeader()
	if err := h.SanityCheck(); err != nil {
		t.Fatalf("unexpected SanityCheck error: %v", err)
	}
}
