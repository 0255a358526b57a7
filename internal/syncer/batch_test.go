package syncer

import (
	"reflect"
	"testing"
)

func TestSplitBatches(t *testing.T) {
	got, err := SplitBatches(5, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Span{{Start: 0, End: 2}, {Start: 2, End: 4}, {Start: 4, End: 5}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("spans mismatch: %+v != %+v", got, want)
	}
}

func TestSplitBatchesExactAndEmpty(t *testing.T) {
	got, err := SplitBatches(4, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []Span{{Start: 0, End: 4}}) {
		t.Fatalf("unexpected spans: %+v", got)
	}

	got, err = SplitBatches(0, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no spans, got %+v", got)
	}
}

func TestSplitBatchesInvalid(t *testing.T) {
	if _, err := SplitBatches(10, 0); err == nil {
		t.Fatalf("expected error for zero batch size")
	}
	if _, err := SplitBatches(-1, 2); err == nil {
		t.Fatalf("expected error for negative total")
	}
}
