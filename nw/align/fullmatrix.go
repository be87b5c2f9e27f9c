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
	"sync"

	"github.com/tim-napoli/nw/nw/util"
)

// FullMatrixAligner computes a global alignment row by row with the whole
// score matrix in memory, and traces back a single optimal alignment.
// It needs O(len(a)*len(b)) integers and is mostly used to check Aligner.
type FullMatrixAligner struct {
	// reusable variables
	scores []int        // score matrix
	moves  []Move       // move matrix, with ties as in Aligner
	w      int          // width of the last matrix
	buf    bytes.Buffer // only for printing the matrix
}

// FullMatrixResult holds the details of the alignment.
type FullMatrixResult struct {
	Score   int // simply the score
	Len     int // length of alignment
	Matches int // number of matches
	Gaps    int // number of gaps

	AlignA []byte // Alignment string for seq A
	AlignM []byte // Matching symbols, "|" for match, " " for mismatch
	AlignB []byte // Alignment string for seq B

	Matrix []byte // Matrix text, only for debugging.
}

// Reset resets all the values.
func (r *FullMatrixResult) Reset() {
	r.Score = 0
	r.Len = 0
	r.Matches = 0
	r.Gaps = 0

	r.AlignA = r.AlignA[:0]
	r.AlignM = r.AlignM[:0]
	r.AlignB = r.AlignB[:0]
	r.Matrix = nil
}

// Alignment returns the alignment, sharing memory with the result.
func (r *FullMatrixResult) Alignment() *Alignment {
	return &Alignment{Up: r.AlignA, Down: r.AlignB}
}

var poolFullMatrixResult = &sync.Pool{New: func() interface{} {
	return &FullMatrixResult{
		AlignA: make([]byte, 0, 1024),
		AlignB: make([]byte, 0, 1024),
		AlignM: make([]byte, 0, 1024),
	}
}}

// RecycleFullMatrixResult recycles an alignment result.
func RecycleFullMatrixResult(r *FullMatrixResult) {
	poolFullMatrixResult.Put(r)
}

// NewFullMatrixAligner returns an aligner.
func NewFullMatrixAligner() *FullMatrixAligner {
	return &FullMatrixAligner{
		scores: make([]int, 0, 1<<10),
		moves:  make([]Move, 0, 1<<10),
	}
}

// Global aligns a (along the x axis) and b (along the y axis).
// Please remember to recycle the result after using
// by calling RecycleFullMatrixResult.
func (alg *FullMatrixAligner) Global(a, b []byte, saveMatrix bool) *FullMatrixResult {
	w := len(a) + 1 // width of the matrix
	h := len(b) + 1 // height of the matrix
	n := w * h
	alg.w = w

	// ---------------------------------------------------
	// initialize

	if n <= cap(alg.scores) {
		alg.scores = alg.scores[:n]
		alg.moves = alg.moves[:n]
	} else {
		alg.scores = make([]int, n)
		alg.moves = make([]Move, n)
	}
	scores, moves := alg.scores, alg.moves

	var x, y, k int

	// topleft most cell
	scores[0] = 0
	moves[0] = MoveNone
	// the first row
	for x = 1; x < w; x++ {
		scores[x] = GapScore * x
		moves[x] = MoveLeft
	}
	// the first column
	for y = 1; y < h; y++ {
		k = y * w
		scores[k] = GapScore * y
		moves[k] = MoveTop
	}

	// ---------------------------------------------------
	// compute

	var sTop, sLeft, sTopLeft, best int
	var m Move
	for y = 1; y < h; y++ {
		for x = 1; x < w; x++ {
			k = y*w + x

			sTop = scores[k-w] + GapScore
			sLeft = scores[k-1] + GapScore
			sTopLeft = scores[k-w-1]
			if a[x-1] == b[y-1] {
				sTopLeft += MatchScore
			} else {
				sTopLeft += MisMatchScore
			}

			best = max(sTop, sLeft, sTopLeft)

			m = MoveNone
			if sTop == best {
				m |= MoveTop
			}
			if sLeft == best {
				m |= MoveLeft
			}
			if sTopLeft == best {
				m |= MoveTopLeft
			}

			scores[k] = best
			moves[k] = m
		}
	}

	// ---------------------------------------------------
	// traceback, preferring the diagonal

	r := poolFullMatrixResult.Get().(*FullMatrixResult)
	r.Reset()

	if saveMatrix {
		r.Matrix = alg.printMatrix(a, b)
	}

	x, y = w-1, h-1
	r.Score = scores[n-1]

	for m = moves[n-1]; m != MoveNone; m = moves[y*w+x] {
		r.Len++

		switch {
		case m.Has(MoveTopLeft):
			r.AlignA = append(r.AlignA, a[x-1])
			r.AlignB = append(r.AlignB, b[y-1])
			if a[x-1] == b[y-1] {
				r.AlignM = append(r.AlignM, '|')
				r.Matches++
			} else {
				r.AlignM = append(r.AlignM, ' ')
			}
			x--
			y--
		case m.Has(MoveTop):
			r.AlignA = append(r.AlignA, GapChar)
			r.AlignB = append(r.AlignB, b[y-1])
			r.AlignM = append(r.AlignM, ' ')

			r.Gaps++
			y--
		case m.Has(MoveLeft):
			r.AlignA = append(r.AlignA, a[x-1])
			r.AlignB = append(r.AlignB, GapChar)
			r.AlignM = append(r.AlignM, ' ')

			r.Gaps++
			x--
		}
	}

	util.ReverseBytes(r.AlignA)
	util.ReverseBytes(r.AlignB)
	util.ReverseBytes(r.AlignM)

	return r
}

// Move returns the move of cell (x, y) of the last alignment.
func (alg *FullMatrixAligner) Move(x, y int) Move {
	return alg.moves[y*alg.w+x]
}

// Score returns the score of cell (x, y) of the last alignment.
func (alg *FullMatrixAligner) Score(x, y int) int {
	return alg.scores[y*alg.w+x]
}

func (alg *FullMatrixAligner) printMatrix(a, b []byte) []byte {
	w := len(a) + 1
	h := len(b) + 1
	var x, y, k int
	buf := &alg.buf

	buf.Reset()

	// a
	buf.WriteString(fmt.Sprintf("%c  %s%-3s", ' ', " ", " "))
	for x = 0; x < len(a); x++ {
		buf.WriteString(fmt.Sprintf("  %s%3c", " ", a[x]))
	}
	buf.WriteByte('\n')

	for y = 0; y < h; y++ {
		if y == 0 {
			buf.WriteString(fmt.Sprintf("%c", ' '))
		} else {
			buf.WriteString(fmt.Sprintf("%c", b[y-1]))
		}

		for x = 0; x < w; x++ {
			k = y*w + x
			buf.WriteString(fmt.Sprintf("  %s%3d", alg.moves[k], alg.scores[k]))
		}
		buf.WriteByte('\n')
	}

	// the buffer is reused
	matrix := make([]byte, buf.Len())
	copy(matrix, buf.Bytes())
	return matrix
}
