// SPDX-License-Identifier: MIT
package board

import (
	"bytes"
	"strings"
	"testing"
)

const sample4x4 = "1,0,0,0\n0,4,0,0\n0,2,0,0\n3,0,0,0\n"

func TestParseCSV(t *testing.T) {
	b, err := ParseCSV(strings.NewReader(sample4x4))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if b.Rows() != 4 || b.Cols() != 4 || b.UnitHeight() != 2 {
		t.Fatalf("unexpected geometry %dx%d unit %d", b.Rows(), b.Cols(), b.UnitHeight())
	}

	givens := b.Givens()
	want := map[int]int{0: 1, 5: 4, 9: 2, 12: 3}
	if len(givens) != len(want) {
		t.Fatalf("Givens = %v, want %v", givens, want)
	}
	for idx, v := range want {
		if givens[idx] != v {
			t.Fatalf("Givens[%d] = %d, want %d", idx, givens[idx], v)
		}
	}
}

func TestParseCSVErrors(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"not square":     "1,0\n0,1\n0,0\n",
		"ragged row":     "1,0,0,0\n0,4\n0,2,0,0\n3,0,0,0\n",
		"non-numeric":    "1,x,0,0\n0,4,0,0\n0,2,0,0\n3,0,0,0\n",
		"value too high": "9,0,0,0\n0,4,0,0\n0,2,0,0\n3,0,0,0\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseCSV(strings.NewReader(input)); err == nil {
				t.Fatal("invalid input accepted")
			}
		})
	}
}

func TestCSVRoundTrip(t *testing.T) {
	b, err := ParseCSV(strings.NewReader(sample4x4))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := b.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if buf.String() != sample4x4 {
		t.Fatalf("round trip mismatch:\n%s", buf.String())
	}
}
