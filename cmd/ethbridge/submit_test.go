package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadWitnessesEmptyPath(t *testing.T) {
	witnesses, err := readWitnesses("")
	if err != nil {
		t.Fatalf("readWitnesses(\"\"): %v", err)
	}
	if witnesses != nil {
		t.Fatalf("expected nil witnesses for an empty path, got %v", witnesses)
	}
}

func TestReadWitnessesParsesHexFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "witnesses.json")
	node := "0x" + repeatHex("ab", 64)
	sibling := "0x" + repeatHex("cd", 16)
	contents := `[{"dag_nodes":["` + node + `","` + node + `"],"proof":["` + sibling + `"]}]`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	witnesses, err := readWitnesses(path)
	if err != nil {
		t.Fatalf("readWitnesses: %v", err)
	}
	if len(witnesses) != 1 {
		t.Fatalf("got %d witnesses, want 1", len(witnesses))
	}
	if len(witnesses[0].Proof) != 1 {
		t.Fatalf("got %d proof siblings, want 1", len(witnesses[0].Proof))
	}
}

func repeatHex(pair string, n int) string {
	out := make([]byte, 0, len(pair)*n)
	for i := 0; i < n; i++ {
		out = append(out, pair...)
	}
	return string(out)
}
