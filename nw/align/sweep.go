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
	"sync"

	"github.com/tim-napoli/nw/nw/matrix"
)

// progressStep is the number of diagonals between two calls of Options.Progress.
const progressStep = 256

// sweep computes the moves diagonal by diagonal.
type sweep struct {
	a, b  []byte
	moves *matrix.Matrix
	data  []byte // raw buffer of moves
	w, h  int

	// scores of the diagonals d-2, d-1 and d.
	scores [3][]int
}

func newSweep(a, b []byte, moves *matrix.Matrix) *sweep {
	return &sweep{
		a:     a,
		b:     b,
		moves: moves,
		data:  moves.Data(),
		w:     moves.W(),
		h:     moves.H(),
	}
}

// diagonal describes the diagonal being computed. The predecessors of its
// i-th cell are at i+top and i+left in prev, and at i+topLeft in prev2.
type diagonal struct {
	d      int
	x0, y0 int // the first cell
	off    int // offset of the first cell in the move matrix

	top, left, topLeft int

	prev2, prev, cur []int
}

// the first row and column only have one possible move.
func (s *sweep) seed() {
	s.data[0] = byte(MoveNone)
	for x := 1; x < s.w; x++ {
		s.data[s.moves.CoordOffset(x, 0)] = byte(MoveLeft)
	}
	for y := 1; y < s.h; y++ {
		s.data[s.moves.CoordOffset(0, y)] = byte(MoveTop)
	}
}

// run computes all the diagonals and returns the score of the last cell.
func (s *sweep) run(threads, minCells int, progress func(int)) int {
	size := s.moves.MaxDiagSize()
	for k := range s.scores {
		s.scores[k] = make([]int, size)
	}

	s.seed()

	last := s.moves.Diagonals() - 1

	// diagonals 0 and 1 only contain cells of the first row or column
	for d := 0; d <= min(last, 1); d++ {
		for i := 0; i < s.moves.DiagSize(d); i++ {
			s.scores[d][i] = d * GapScore
		}
	}
	if last < 2 {
		if progress != nil {
			progress(last + 1)
		}
		return s.scores[last][0]
	}

	if minCells < 1 {
		minCells = 1
	}
	var p *pool
	if threads > 1 && size >= 2*minCells {
		p = newPool(s, threads)
		defer p.close()
	}

	var dg diagonal
	var n, done int
	for d := 2; d <= last; d++ {
		s.prepare(&dg, d)

		n = s.moves.DiagSize(d)
		if p == nil || n < 2*minCells {
			s.compute(&dg, 0, n)
		} else {
			p.run(&dg, n, max(minCells, (n+threads-1)/threads))
		}

		// d-2 <- d-1 <- d
		s.scores[0], s.scores[1], s.scores[2] = s.scores[1], s.scores[2], s.scores[0]

		if progress != nil {
			done++
			if done == progressStep {
				progress(done)
				done = 0
			}
		}
	}
	if progress != nil {
		progress(done + 2)
	}

	return s.scores[1][0]
}

func (s *sweep) prepare(dg *diagonal, d int) {
	dg.d = d
	dg.x0 = s.moves.DiagX(d)
	dg.y0 = s.moves.DiagY(d)
	dg.off = s.moves.DiagOffset(d)

	// diagonals shift their first cell down once they reach the last column
	switch {
	case d < s.w:
		dg.top, dg.left, dg.topLeft = -1, 0, -1
	case d == s.w:
		dg.top, dg.left, dg.topLeft = 0, 1, 0
	default:
		dg.top, dg.left, dg.topLeft = 0, 1, 1
	}

	dg.prev2, dg.prev, dg.cur = s.scores[0], s.scores[1], s.scores[2]
}

// compute computes cells [lo, hi) of a diagonal.
func (s *sweep) compute(dg *diagonal, lo, hi int) {
	var x, y int
	var sTop, sLeft, sTopLeft, best int
	var m Move
	for i := lo; i < hi; i++ {
		x, y = dg.x0-i, dg.y0+i

		// the move is already seeded
		if x == 0 || y == 0 {
			dg.cur[i] = dg.d * GapScore
			continue
		}

		sTop = dg.prev[i+dg.top] + GapScore
		sLeft = dg.prev[i+dg.left] + GapScore
		sTopLeft = dg.prev2[i+dg.topLeft]
		if s.a[x-1] == s.b[y-1] {
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

		dg.cur[i] = best
		s.data[dg.off+i] = byte(m)
	}
}

// pool is a fixed set of goroutines computing parts of a diagonal.
type pool struct {
	jobs chan job
	wg   sync.WaitGroup
}

type job struct {
	dg     diagonal
	lo, hi int
}

func newPool(s *sweep, n int) *pool {
	p := &pool{jobs: make(chan job, n)}
	for i := 0; i < n; i++ {
		go func() {
			for j := range p.jobs {
				s.compute(&j.dg, j.lo, j.hi)
				p.wg.Done()
			}
		}()
	}
	return p
}

// run splits the n cells of a diagonal into jobs and waits for all of them,
// so the next diagonal can read the scores.
func (p *pool) run(dg *diagonal, n, chunk int) {
	for lo := 0; lo < n; lo += chunk {
		p.wg.Add(1)
		p.jobs <- job{dg: *dg, lo: lo, hi: min(lo+chunk, n)}
	}
	p.wg.Wait()
}

func (p *pool) close() {
	close(p.jobs)
}
