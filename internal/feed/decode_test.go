package feed

import (
	"errors"
	"testing"
)

func TestDecodePoolsShapes(t *testing.T) {
	cases := map[string]int{
		`[{"id":"a"},{"id":"b"}]`:          2,
		`[{"id":"a"}, 5, "x", null]`:       1,
		`{"data":[{"id":"a"}]}`:            1,
		`{"pools":[],"data":[{"id":"a"}]}`: 0,
		`{"id":"solo"}`:                    1,
		"{\"id\":\"a\"}\n{\"id\":\"b\"}":   2,
	}
	for input, want := range cases {
		pools, err := DecodePools([]byte(input))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", input, err)
		}
		if len(pools) != want {
			t.Fatalf("%s: got %d pools, want %d", input, len(pools), want)
		}
	}
}

func TestDecodePoolsRejects(t *testing.T) {
	for _, input := range []string{"", "   ", "42", `"pools"`, `[1,`, `{"id":`} {
		if _, err := DecodePools([]byte(input)); !errors.Is(err, ErrUnrecognizedFeed) {
			t.Fatalf("%q: expected ErrUnrecognizedFeed, got %v", input, err)
		}
	}
}
