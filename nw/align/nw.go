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

// Package align computes global alignments of two sequences with the
// Needleman-Wunsch algorithm, and enumerates all the optimal alignments
// up to a bound.
//
// Scores are fixed: +1 for a match, -1 for a mismatch and -1 for a gap.
//
// The score matrix is never stored. Cells are computed by anti-diagonals,
// only the scores of the last three diagonals are kept, and the move of
// every cell is saved in a matrix.Matrix, which may be backed by a file.
// Cells of a diagonal are independent and are computed by a pool of workers.
package align

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/tim-napoli/nw/nw/matrix"
)

// Scores of a match, a mismatch and a gap.
const (
	MatchScore    = 1
	MisMatchScore = -1
	GapScore      = -1
)

// ErrInvalidThreads means Options.Threads is not positive.
var ErrInvalidThreads = errors.New("align: the number of threads should be positive")

// Options contains all alignment options.
type Options struct {
	// number of goroutines computing the cells of a diagonal
	Threads int
	// diagonals shorter than 2*MinCellsPerJob are computed by a single goroutine,
	// longer ones are split into jobs of at least MinCellsPerJob cells.
	MinCellsPerJob int

	// store the move matrix in a temporary file in TmpDir
	OnDisk bool
	TmpDir string

	// Progress, if not nil, is called with the number of newly computed diagonals.
	Progress func(n int)
}

// DefaultOptions is the default Options.
var DefaultOptions = Options{
	Threads:        1,
	MinCellsPerJob: 4096,
}

// Aligner implements the Needleman-Wunsch algorithm.
type Aligner struct {
	Options *Options
}

// NewAligner returns an aligner.
func NewAligner(options *Options) *Aligner {
	if options == nil {
		opt := DefaultOptions
		options = &opt
	}
	return &Aligner{Options: options}
}

// Result holds the moves of all the cells, from which the alignments are built.
// Remember to call Close to release the move matrix.
type Result struct {
	A, B  []byte // seq A along the x axis, seq B along the y axis
	Score int    // the best score

	Moves *matrix.Matrix // (len(A)+1) * (len(B)+1) moves
}

// Move returns the move of cell (x, y).
func (r *Result) Move(x, y int) Move {
	return Move(r.Moves.Data()[r.Moves.CoordOffset(x, y)])
}

// Close releases the move matrix.
func (r *Result) Close() error {
	return r.Moves.Close()
}

// Alignments returns at most bound optimal alignments.
// A negative bound means no limit, and 0 returns nothing.
func (r *Result) Alignments(bound int) ([]*Alignment, error) {
	if bound == 0 {
		return nil, nil
	}
	t, err := BuildTree(r, NewBudget(bound))
	if err != nil {
		return nil, err
	}
	return t.Alignments()
}

// Fill computes the best score of aligning a and b, and the moves of all the cells.
func (alg *Aligner) Fill(a, b []byte) (*Result, error) {
	opt := alg.Options
	if opt.Threads < 1 {
		return nil, ErrInvalidThreads
	}

	moves, err := matrix.New(len(a)+1, len(b)+1, 1, &matrix.Options{
		OnDisk: opt.OnDisk,
		TmpDir: opt.TmpDir,
	})
	if err != nil {
		return nil, errors.Wrap(err, "allocating move matrix")
	}

	s := newSweep(a, b, moves)
	score := s.run(opt.Threads, opt.MinCellsPerJob, opt.Progress)

	return &Result{A: a, B: b, Score: score, Moves: moves}, nil
}

// Global aligns two sequences and returns the best score
// and at most bound optimal alignments (see Result.Alignments).
func (alg *Aligner) Global(a, b []byte, bound int) (score int, alns []*Alignment, err error) {
	r, err := alg.Fill(a, b)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		if e := r.Close(); e != nil && err == nil {
			err = errors.Wrap(e, "releasing move matrix")
		}
	}()

	alns, err = r.Alignments(bound)
	if err != nil {
		return 0, nil, err
	}
	return r.Score, alns, nil
}

// WriteMoves writes the move matrix as text, only for debugging small sequences.
func (r *Result) WriteMoves(w io.Writer) error {
	var buf bytes.Buffer

	buf.WriteString("    -")
	for _, c := range r.A {
		fmt.Fprintf(&buf, " %2c", c)
	}
	buf.WriteByte('\n')

	for y := 0; y <= len(r.B); y++ {
		if y == 0 {
			buf.WriteString("  -")
		} else {
			fmt.Fprintf(&buf, "%3c", r.B[y-1])
		}
		for x := 0; x <= len(r.A); x++ {
			fmt.Fprintf(&buf, " %2s", r.Move(x, y))
		}
		buf.WriteByte('\n')
	}

	_, err := w.Write(buf.Bytes())
	return err
}
