package batch

import (
	"strings"
	"testing"
)

func TestByBytesRespectsBudget(t *testing.T) {
	texts := []string{"aaaa", "bbbb", "cccc", "dddd", "ee"}

	batches := ByBytes(texts, 8)

	for i, b := range batches {
		size := 0
		for _, s := range b {
			size += len(s)
		}
		if size > 8 {
			t.Errorf("batch %d has %d bytes, budget is 8: %v", i, size, b)
		}
	}

	// Concatenation must reproduce the input exactly, in order.
	var flat []string
	for _, b := range batches {
		flat = append(flat, b...)
	}
	if len(flat) != len(texts) {
		t.Fatalf("flattened %d texts, want %d", len(flat), len(texts))
	}
	for i := range texts {
		if flat[i] != texts[i] {
			t.Errorf("position %d = %q, want %q", i, flat[i], texts[i])
		}
	}
}

func TestByBytesOversizedTextShipsAlone(t *testing.T) {
	big := strings.Repeat("x", 100)
	texts := []string{"aa", big, "bb"}

	batches := ByBytes(texts, 10)

	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3: %v", len(batches), batches)
	}
	if len(batches[1]) != 1 || batches[1][0] != big {
		t.Errorf("oversized text not alone in its batch: %v", batches[1])
	}
}

func TestByBytesCountsUTF8Bytes(t *testing.T) {
	// Cyrillic: 2 bytes per rune, so each word is 8 bytes.
	texts := []string{"пока", "пока", "пока"}

	batches := ByBytes(texts, 16)
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2 (8-byte words, 16-byte budget)", len(batches))
	}
	if len(batches[0]) != 2 || len(batches[1]) != 1 {
		t.Errorf("unexpected packing: %v", batches)
	}
}

func TestByBytesEmptyInput(t *testing.T) {
	if got := ByBytes(nil, 100); got != nil {
		t.Errorf("ByBytes(nil) = %v, want nil", got)
	}
}

func TestTextBudget(t *testing.T) {
	if got := TextBudget(0, 0); got != DefaultMaxRequestBytes-DefaultOverheadBytes {
		t.Errorf("TextBudget(0, 0) = %d, want %d", got, DefaultMaxRequestBytes-DefaultOverheadBytes)
	}
	if got := TextBudget(131072, 2048); got != 129024 {
		t.Errorf("TextBudget = %d, want 129024", got)
	}
	if got := TextBudget(10, 20); got != 1 {
		t.Errorf("TextBudget underflow = %d, want 1", got)
	}
}
