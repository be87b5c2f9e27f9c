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

package matrix

// Diagonals returns the number of anti-diagonals, w+h-1.
func (m *Matrix) Diagonals() int {
	return m.w + m.h - 1
}

// MaxDiagSize returns the size of the longest diagonal, min(w, h).
func (m *Matrix) MaxDiagSize() int {
	return min(m.w, m.h)
}

// DiagSize returns the number of cells of diagonal d.
func (m *Matrix) DiagSize(d int) int {
	k := d + 1 - m.w
	if k <= 0 {
		return min(d+1, m.h)
	}
	return min(m.h-k, m.w)
}

// DiagOffset returns the offset of the first cell of diagonal d,
// i.e., the sum of the sizes of diagonals 0..d-1.
//
//	     0  1  2  3  4        s = min(w, h), l = max(w, h)
//	  0  f  f  f  m  m
//	  1  f  f  m  m  l        f: d <  s, growing diagonals
//	  2  f  m  m  l  l        m: d <  l, diagonals of size s
//	                          l: d >= l, shrinking diagonals
//
// d may be w+h-1, for which w*h is returned.
func (m *Matrix) DiagOffset(d int) int {
	s, l := m.w, m.h
	if s > l {
		s, l = l, s
	}

	if d <= s {
		return d * (d + 1) / 2
	}
	if d <= l {
		return s*(s+1)/2 + (d-s)*s
	}
	// sizes of the shrinking diagonals l..d-1 are s-1, s-2, ..., w+h-d
	n := m.w + m.h - 1 - d
	return s*(s+1)/2 + (l-s)*s + tri(s-1) - tri(n)
}

func tri(n int) int {
	return n * (n + 1) / 2
}

// DiagX returns the x of the first cell of diagonal d,
// which is on the first row or the last column.
func (m *Matrix) DiagX(d int) int {
	if d < m.w {
		return d
	}
	return m.w - 1
}

// DiagY returns the y of the first cell of diagonal d.
func (m *Matrix) DiagY(d int) int {
	if d < m.w {
		return 0
	}
	return d - m.w + 1
}

// CoordOffset returns the offset of cell (x, y).
// The i-th cell of diagonal d is (DiagX(d)-i, DiagY(d)+i).
func (m *Matrix) CoordOffset(x, y int) int {
	d := x + y
	return m.DiagOffset(d) + y - m.DiagY(d)
}

// DiagCoord returns the cell of the i-th value of diagonal d.
func (m *Matrix) DiagCoord(d, i int) (x, y int) {
	return m.DiagX(d) - i, m.DiagY(d) + i
}
