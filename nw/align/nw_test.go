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
	"bytes"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/tim-napoli/nw/nw/util"
)

func randomPairs(n, maxLen int, letters string, seed int64) [][2][]byte {
	r := rand.New(rand.NewSource(seed))
	pairs := make([][2][]byte, n)
	for i := range pairs {
		pairs[i][0] = util.RandomSeq(r, r.Intn(maxLen+1), []byte(letters))
		pairs[i][1] = util.RandomSeq(r, r.Intn(maxLen+1), []byte(letters))
	}
	return pairs
}

func alignmentStrings(alns []*Alignment) []string {
	s := make([]string, len(alns))
	for i, a := range alns {
		s[i] = a.String()
	}
	return s
}

func sortedAlignmentStrings(alns []*Alignment) []string {
	s := alignmentStrings(alns)
	sort.Strings(s)
	return s
}

// bruteForce enumerates every global alignment and keeps the best ones.
func bruteForce(a, b []byte) (int, []string) {
	var all [][2]string
	var walk func(i, j int, up, down string)
	walk = func(i, j int, up, down string) {
		if i == len(a) && j == len(b) {
			all = append(all, [2]string{up, down})
			return
		}
		if i < len(a) && j < len(b) {
			walk(i+1, j+1, up+string(a[i]), down+string(b[j]))
		}
		if i < len(a) {
			walk(i+1, j, up+string(a[i]), down+"-")
		}
		if j < len(b) {
			walk(i, j+1, up+"-", down+string(b[j]))
		}
	}
	walk(0, 0, "", "")

	best := -len(a) - len(b) - 1
	var alns []string
	var s int
	for _, p := range all {
		s = ScoreAlignment([]byte(p[0]), []byte(p[1]))
		if s > best {
			best = s
			alns = alns[:0]
		}
		if s == best {
			alns = append(alns, p[0]+"\n"+p[1])
		}
	}
	sort.Strings(alns)
	return best, alns
}

func TestBoundary(t *testing.T) {
	alg := NewAligner(nil)

	tests := []struct {
		a, b     string
		score    int
		up, down string
	}{
		{"", "ABC", -3, "---", "ABC"},
		{"ABC", "", -3, "ABC", "---"},
		{"A", "A", 1, "A", "A"},
		{"A", "C", -1, "A", "C"},
	}

	for _, test := range tests {
		score, alns, err := alg.Global([]byte(test.a), []byte(test.b), -1)
		if err != nil {
			t.Errorf("%q vs %q: %s", test.a, test.b, err)
			return
		}
		if score != test.score {
			t.Errorf("%q vs %q: score expected %d, returned %d", test.a, test.b, test.score, score)
		}
		if len(alns) != 1 {
			t.Errorf("%q vs %q: one alignment expected, %d returned", test.a, test.b, len(alns))
			continue
		}
		if string(alns[0].Up) != test.up || string(alns[0].Down) != test.down {
			t.Errorf("%q vs %q: unexpected alignment:\n%s", test.a, test.b, alns[0])
		}
		if alns[0].Score() != test.score {
			t.Errorf("%q vs %q: alignment score %d != %d", test.a, test.b, alns[0].Score(), test.score)
		}
	}
}

func TestEmpty(t *testing.T) {
	score, alns, err := NewAligner(nil).Global(nil, nil, -1)
	if err != nil {
		t.Error(err)
		return
	}
	if score != 0 || len(alns) != 1 || alns[0].Len() != 0 {
		t.Errorf("empty sequences: score %d, %d alignments", score, len(alns))
	}
}

func TestExample(t *testing.T) {
	a, b := []byte("GATTACA"), []byte("GCATGCU")
	alg := NewAligner(nil)

	score, alns, err := alg.Global(a, b, 1)
	if err != nil {
		t.Error(err)
		return
	}
	if score != 0 {
		t.Errorf("score expected 0, returned %d", score)
	}
	if len(alns) != 1 {
		t.Errorf("one alignment expected, %d returned", len(alns))
		return
	}
	aln := alns[0]
	if aln.Score() != 0 {
		t.Errorf("alignment score expected 0, returned %d:\n%s", aln.Score(), aln)
	}
	if !bytes.Equal(Ungap(aln.Up), a) || !bytes.Equal(Ungap(aln.Down), b) {
		t.Errorf("sequences can not be rebuilt from the alignment:\n%s", aln)
	}

	score, alns, err = alg.Global(a, b, 0)
	if err != nil {
		t.Errorf("bound 0: %s", err)
		return
	}
	if score != 0 {
		t.Errorf("bound 0: score expected 0, returned %d", score)
	}
	if len(alns) != 0 {
		t.Errorf("bound 0: no alignment expected, %d returned", len(alns))
	}
}

func TestIdentical(t *testing.T) {
	for _, s := range []string{"A", "ACGT", "ACGTACGTTTGA", strings.Repeat("GATTACA", 20)} {
		score, alns, err := NewAligner(nil).Global([]byte(s), []byte(s), -1)
		if err != nil {
			t.Error(err)
			return
		}
		if score != len(s) {
			t.Errorf("%s: score expected %d, returned %d", s, len(s), score)
		}
		if len(alns) != 1 {
			t.Errorf("%s: one alignment expected, %d returned", s, len(alns))
			continue
		}
		if matches, gaps := alns[0].Stats(); gaps != 0 || matches != len(s) {
			t.Errorf("%s: %d matches and %d gaps", s, matches, gaps)
		}
	}
}

func TestInvalidThreads(t *testing.T) {
	_, err := NewAligner(&Options{Threads: 0}).Fill([]byte("A"), []byte("A"))
	if !errors.Is(err, ErrInvalidThreads) {
		t.Errorf("ErrInvalidThreads expected, returned %v", err)
	}
}

// compares the moves of every cell and the score with the full-matrix version.
func checkFill(t *testing.T, opt *Options, pairs [][2][]byte) {
	alg := NewAligner(opt)
	fm := NewFullMatrixAligner()

	for _, p := range pairs {
		a, b := p[0], p[1]

		r, err := alg.Fill(a, b)
		if err != nil {
			t.Errorf("%s vs %s: %s", a, b, err)
			return
		}
		ref := fm.Global(a, b, false)

		if r.Score != ref.Score {
			t.Errorf("%s vs %s: score %d != %d", a, b, r.Score, ref.Score)
		}
	CELLS:
		for y := 0; y <= len(b); y++ {
			for x := 0; x <= len(a); x++ {
				if r.Move(x, y) != fm.Move(x, y) {
					t.Errorf("%s vs %s: move of (%d, %d): %s != %s", a, b, x, y, r.Move(x, y), fm.Move(x, y))
					break CELLS
				}
			}
		}

		RecycleFullMatrixResult(ref)
		if err = r.Close(); err != nil {
			t.Error(err)
		}
	}
}

func TestFill(t *testing.T) {
	checkFill(t, nil, randomPairs(200, 40, "ACGT", 1))
}

func TestFillParallel(t *testing.T) {
	checkFill(t, &Options{Threads: 4, MinCellsPerJob: 1}, randomPairs(200, 40, "ACGT", 2))
	checkFill(t, &Options{Threads: 3, MinCellsPerJob: 7}, randomPairs(20, 300, "ACGT", 3))
}

func TestFillOnDisk(t *testing.T) {
	checkFill(t, &Options{Threads: 2, MinCellsPerJob: 8, OnDisk: true, TmpDir: t.TempDir()},
		randomPairs(50, 100, "AB", 4))
}

func TestProgress(t *testing.T) {
	for _, p := range randomPairs(20, 600, "ACGT", 5) {
		var n int
		opt := DefaultOptions
		opt.Progress = func(k int) { n += k }

		r, err := NewAligner(&opt).Fill(p[0], p[1])
		if err != nil {
			t.Error(err)
			return
		}
		if n != r.Moves.Diagonals() {
			t.Errorf("%d diagonals reported, %d expected", n, r.Moves.Diagonals())
		}
		r.Close()
	}
}

func TestBruteForce(t *testing.T) {
	alg := NewAligner(nil)
	for _, p := range randomPairs(100, 5, "AB", 6) {
		a, b := p[0], p[1]
		best, expected := bruteForce(a, b)

		score, alns, err := alg.Global(a, b, -1)
		if err != nil {
			t.Error(err)
			return
		}
		if score != best {
			t.Errorf("%s vs %s: score %d != %d", a, b, score, best)
		}
		if diff := cmp.Diff(expected, sortedAlignmentStrings(alns)); diff != "" {
			t.Errorf("%s vs %s: alignments mismatch (-want +got):\n%s", a, b, diff)
		}
	}
}

func TestAlignments(t *testing.T) {
	opt := &Options{Threads: 2, MinCellsPerJob: 4}
	alg := NewAligner(opt)

	for _, p := range randomPairs(50, 30, "ACGT", 7) {
		a, b := p[0], p[1]
		score, alns, err := alg.Global(a, b, 1000)
		if err != nil {
			t.Error(err)
			return
		}
		if len(alns) == 0 {
			t.Errorf("%s vs %s: no alignments", a, b)
			continue
		}

		for _, aln := range alns {
			if len(aln.Up) != len(aln.Down) {
				t.Errorf("%s vs %s: unequal lengths:\n%s", a, b, aln)
			}
			if aln.Score() != score {
				t.Errorf("%s vs %s: alignment score %d != %d:\n%s", a, b, aln.Score(), score, aln)
			}
			if !bytes.Equal(Ungap(aln.Up), a) || !bytes.Equal(Ungap(aln.Down), b) {
				t.Errorf("%s vs %s: sequences can not be rebuilt:\n%s", a, b, aln)
			}
		}
		if n := Distinct(alns); n != len(alns) {
			t.Errorf("%s vs %s: %d distinct alignments out of %d", a, b, n, len(alns))
		}
	}
}

func TestBound(t *testing.T) {
	// C(6, 3) alignments
	a, b := []byte("AAAAAA"), []byte("AAA")

	r, err := NewAligner(nil).Fill(a, b)
	if err != nil {
		t.Error(err)
		return
	}
	defer r.Close()

	all, err := r.Alignments(-1)
	if err != nil {
		t.Error(err)
		return
	}
	if len(all) != 20 {
		t.Errorf("20 alignments expected, %d returned", len(all))
		return
	}

	for _, bound := range []int{1, 2, len(all) - 1, len(all), len(all) + 10} {
		alns, err := r.Alignments(bound)
		if err != nil {
			t.Error(err)
			return
		}
		n := min(bound, len(all))
		if len(alns) != n {
			t.Errorf("bound %d: %d alignments expected, %d returned", bound, n, len(alns))
			continue
		}
		// the tree is built in the same order
		if diff := cmp.Diff(alignmentStrings(all[:n]), alignmentStrings(alns)); diff != "" {
			t.Errorf("bound %d: (-want +got):\n%s", bound, diff)
		}
	}
}

func TestIdempotence(t *testing.T) {
	single := NewAligner(nil)
	multi := NewAligner(&Options{Threads: 4, MinCellsPerJob: 2})

	for _, p := range randomPairs(30, 25, "ACG", 8) {
		_, alns1, err := single.Global(p[0], p[1], 5000)
		if err != nil {
			t.Error(err)
			return
		}
		_, alns2, err := single.Global(p[0], p[1], 5000)
		if err != nil {
			t.Error(err)
			return
		}
		_, alns3, err := multi.Global(p[0], p[1], 5000)
		if err != nil {
			t.Error(err)
			return
		}

		if Fingerprint(alns1) != Fingerprint(alns2) || Fingerprint(alns1) != Fingerprint(alns3) {
			t.Errorf("%s vs %s: fingerprints differ", p[0], p[1])
		}
		if diff := cmp.Diff(sortedAlignmentStrings(alns1), sortedAlignmentStrings(alns3)); diff != "" {
			t.Errorf("%s vs %s: (-single +multi):\n%s", p[0], p[1], diff)
		}
	}
}

func TestWriteMoves(t *testing.T) {
	r, err := NewAligner(nil).Fill([]byte("GCA"), []byte("GA"))
	if err != nil {
		t.Error(err)
		return
	}
	defer r.Close()

	var buf bytes.Buffer
	if err = r.WriteMoves(&buf); err != nil {
		t.Error(err)
		return
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Errorf("4 lines expected, %d returned:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "×") {
		t.Errorf("the first cell should have no move:\n%s", buf.String())
	}
}

func BenchmarkFill(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	s1 := util.RandomSeq(r, 2000, []byte("ACGT"))
	s2 := util.RandomSeq(r, 2000, []byte("ACGT"))

	for _, threads := range []int{1, 4} {
		alg := NewAligner(&Options{Threads: threads, MinCellsPerJob: 256})
		b.Run(fmt.Sprintf("threads=%d", threads), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				res, err := alg.Fill(s1, s2)
				if err != nil {
					b.Fatal(err)
				}
				res.Close()
			}
		})
	}
}

func BenchmarkFullMatrix(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	s1 := util.RandomSeq(r, 2000, []byte("ACGT"))
	s2 := util.RandomSeq(r, 2000, []byte("ACGT"))
	fm := NewFullMatrixAligner()

	for i := 0; i < b.N; i++ {
		RecycleFullMatrixResult(fm.Global(s1, s2, false))
	}
}
