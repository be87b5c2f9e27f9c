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

// Move records where the best score of a cell comes from.
// Several flags are set when predecessors tie.
type Move uint8

const (
	MoveNone    Move = 0 // the topleft corner
	MoveTop     Move = 1 // from (x, y-1), a gap in seq A
	MoveLeft    Move = 2 // from (x-1, y), a gap in seq B
	MoveTopLeft Move = 4 // from (x-1, y-1), a match or mismatch
)

// directions in the order they are explored during backtracking.
var directions = [3]Move{MoveTop, MoveLeft, MoveTopLeft}

// Has tells whether the flag f is set.
func (m Move) Has(f Move) bool { return m&f != 0 }

// Ties returns the number of flags set.
func (m Move) Ties() int {
	var n int
	for _, f := range directions {
		if m&f != 0 {
			n++
		}
	}
	return n
}

func (m Move) String() string {
	switch m {
	case MoveNone:
		return "×"
	case MoveTop:
		return "↓"
	case MoveLeft:
		return "→"
	case MoveTopLeft:
		return "↘"
	case MoveTop | MoveLeft:
		return "⇲"
	}
	return "■" // ties including the diagonal
}
