// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package align

import (
	"sort"
	"testing"
)

func TestScoreAlignment(t *testing.T) {
	tests := []struct {
		up, down string
		score    int
	}{
		{"", "", 0},
		{"GCATG-CU", "G-ATTACA", 0},
		{"---", "ABC", -3},
		{"ACGT", "ACGT", 4},
		{"ACGT", "TGCA", -4},
		{"A-", "-A", -2},
	}
	for _, test := range tests {
		if s := ScoreAlignment([]byte(test.up), []byte(test.down)); s != test.score {
			t.Errorf("%s/%s: score expected %d, returned %d", test.up, test.down, test.score, s)
		}
	}
}

func TestStats(t *testing.T) {
	aln := &Alignment{Up: []byte("GCATG-CU"), Down: []byte("G-ATTACA")}
	matches, gaps := aln.Stats()
	if matches != 4 || gaps != 2 {
		t.Errorf("4 matches and 2 gaps expected, returned %d and %d", matches, gaps)
	}
}

func TestFingerprint(t *testing.T) {
	alns := []*Alignment{
		{Up: []byte("AA"), Down: []byte("A-")},
		{Up: []byte("AA"), Down: []byte("-A")},
		{Up: []byte("A-A"), Down: []byte("-AA")},
	}
	reversed := []*Alignment{alns[2], alns[1], alns[0]}

	if Fingerprint(alns) != Fingerprint(reversed) {
		t.Errorf("fingerprints should not depend on the order")
	}
	if Fingerprint(alns) == Fingerprint(alns[:2]) {
		t.Errorf("fingerprints of different sets should differ")
	}

	// same columns but split differently
	if alns[0].Hash() == (&Alignment{Up: []byte("AAA"), Down: []byte("-")}).Hash() {
		t.Errorf("hashes should differ")
	}

	if n := Distinct(append(alns, alns[1])); n != 3 {
		t.Errorf("3 distinct alignments expected, %d returned", n)
	}
}

func TestSortAlignments(t *testing.T) {
	alns := Alignments{
		{Up: []byte("AC"), Down: []byte("AG")},
		{Up: []byte("A-C"), Down: []byte("AG-")},
		{Up: []byte("AC"), Down: []byte("A-")},
	}
	sort.Sort(alns)

	expected := []string{"A-C\nAG-", "AC\nA-", "AC\nAG"}
	for i, aln := range alns {
		if aln.String() != expected[i] {
			t.Errorf("#%d: expected %q, returned %q", i+1, expected[i], aln.String())
		}
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		m    Move
		ties int
		s    string
	}{
		{MoveNone, 0, "×"},
		{MoveTop, 1, "↓"},
		{MoveLeft, 1, "→"},
		{MoveTopLeft, 1, "↘"},
		{MoveTop | MoveLeft, 2, "⇲"},
		{MoveTop | MoveLeft | MoveTopLeft, 3, "■"},
	}
	for _, test := range tests {
		if test.m.Ties() != test.ties || test.m.String() != test.s {
			t.Errorf("move %d: %d ties and %s expected, returned %d and %s",
				test.m, test.ties, test.s, test.m.Ties(), test.m)
		}
	}
}
