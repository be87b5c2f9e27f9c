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

	"github.com/tim-napoli/nw/nw/util"
	"github.com/zeebo/wyhash"
)

// GapChar is the symbol of a gap in alignments.
const GapChar = '-'

// Alignment is a global alignment of two sequences:
//
//	GCATG-CU   Up
//	G-ATTACA   Down
//
// Up and Down have the same length and share a single buffer.
type Alignment struct {
	Up   []byte
	Down []byte
}

// Len returns the number of columns.
func (a *Alignment) Len() int { return len(a.Up) }

// Score computes the score of the alignment from its columns.
func (a *Alignment) Score() int {
	return ScoreAlignment(a.Up, a.Down)
}

// ScoreAlignment computes the score of an alignment.
// A column containing a GapChar is a gap.
func ScoreAlignment(up, down []byte) int {
	var score int
	for i, c := range up {
		switch {
		case c == GapChar || down[i] == GapChar:
			score += GapScore
		case c == down[i]:
			score += MatchScore
		default:
			score += MisMatchScore
		}
	}
	return score
}

// Stats returns the numbers of matches and gaps.
func (a *Alignment) Stats() (matches, gaps int) {
	for i, c := range a.Up {
		if c == GapChar || a.Down[i] == GapChar {
			gaps++
		} else if c == a.Down[i] {
			matches++
		}
	}
	return
}

// Equal tells whether two alignments are identical.
func (a *Alignment) Equal(b *Alignment) bool {
	return bytes.Equal(a.Up, b.Up) && bytes.Equal(a.Down, b.Down)
}

func (a *Alignment) String() string {
	return string(a.Up) + "\n" + string(a.Down)
}

// Hash returns a 64-bit hash of the alignment.
func (a *Alignment) Hash() uint64 {
	return wyhash.Hash(a.Down, wyhash.Hash(a.Up, 1))
}

// Ungap returns s without gaps.
func Ungap(s []byte) []byte {
	t := make([]byte, 0, len(s))
	for _, c := range s {
		if c != GapChar {
			t = append(t, c)
		}
	}
	return t
}

// Alignments is a list of alignments, sorted by Up and then Down.
type Alignments []*Alignment

func (s Alignments) Len() int { return len(s) }
func (s Alignments) Less(i, j int) bool {
	if c := bytes.Compare(s[i].Up, s[j].Up); c != 0 {
		return c < 0
	}
	return bytes.Compare(s[i].Down, s[j].Down) < 0
}
func (s Alignments) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

// Fingerprint returns a hash of a set of alignments, which does not depend on their order.
func Fingerprint(alns []*Alignment) uint64 {
	var h uint64
	for _, a := range alns {
		h += util.Hash64(a.Hash())
	}
	return h
}

// Distinct returns the number of distinct alignments.
func Distinct(alns []*Alignment) int {
	hashes := make([]uint64, len(alns))
	for i, a := range alns {
		hashes[i] = a.Hash()
	}
	util.UniqUint64s(&hashes)
	return len(hashes)
}
