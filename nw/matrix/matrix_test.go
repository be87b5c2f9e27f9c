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

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

var testDims = [][2]int{
	{1, 1}, {1, 7}, {7, 1}, {2, 2}, {4, 3}, {3, 4},
	{11, 11}, {19, 7}, {7, 29}, {29, 7}, {64, 65},
}

func naiveDiagOffset(m *Matrix, d int) int {
	var off int
	for i := 0; i < d; i++ {
		off += m.DiagSize(i)
	}
	return off
}

func TestDiagSizes(t *testing.T) {
	for _, dim := range testDims {
		m, err := New(dim[0], dim[1], 1, nil)
		require.NoError(t, err)

		var sum int
		for d := 0; d < m.Diagonals(); d++ {
			require.Positive(t, m.DiagSize(d))
			require.LessOrEqual(t, m.DiagSize(d), m.MaxDiagSize())
			sum += m.DiagSize(d)
		}
		require.Equal(t, dim[0]*dim[1], sum, "w=%d, h=%d", dim[0], dim[1])

		require.NoError(t, m.Close())
	}
}

func TestDiagOffset(t *testing.T) {
	for _, dim := range testDims {
		m, err := New(dim[0], dim[1], 1, nil)
		require.NoError(t, err)

		for d := 0; d <= m.Diagonals(); d++ {
			require.Equal(t, naiveDiagOffset(m, d), m.DiagOffset(d), "w=%d, h=%d, d=%d", dim[0], dim[1], d)
		}

		require.NoError(t, m.Close())
	}
}

func TestCoordOffset(t *testing.T) {
	m, err := New(4, 3, 4, nil)
	require.NoError(t, err)
	defer m.Close()

	references := []int{
		0, 1, 3, 6,
		2, 4, 7, 9,
		5, 8, 10, 11,
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			require.Equal(t, references[y*4+x], m.CoordOffset(x, y), "x=%d, y=%d", x, y)
		}
	}
}

func TestCoordOffsetBijection(t *testing.T) {
	for _, dim := range testDims {
		w, h := dim[0], dim[1]
		m, err := New(w, h, 1, nil)
		require.NoError(t, err)

		seen := make([]bool, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				off := m.CoordOffset(x, y)
				require.GreaterOrEqual(t, off, 0)
				require.Less(t, off, w*h)
				require.False(t, seen[off], "offset %d used twice, w=%d, h=%d", off, w, h)
				seen[off] = true
			}
		}

		// DiagCoord walks the same cells in storage order
		var off int
		for d := 0; d < m.Diagonals(); d++ {
			for i := 0; i < m.DiagSize(d); i++ {
				x, y := m.DiagCoord(d, i)
				require.Equal(t, off, m.CoordOffset(x, y))
				off++
			}
		}

		require.NoError(t, m.Close())
	}
}

func TestOnDisk(t *testing.T) {
	dir := t.TempDir()
	m, err := New(19, 7, 4, &Options{OnDisk: true, TmpDir: dir})
	require.NoError(t, err)
	require.True(t, m.OnDisk())
	require.Equal(t, int64(19*7*4), m.Size())

	info, err := os.Stat(m.Path())
	require.NoError(t, err)
	require.Equal(t, m.Size(), info.Size())

	for y := 0; y < m.H(); y++ {
		for x := 0; x < m.W(); x++ {
			binary.LittleEndian.PutUint32(m.At(x, y), uint32(y*m.W()+x))
		}
	}
	for y := 0; y < m.H(); y++ {
		for x := 0; x < m.W(); x++ {
			require.Equal(t, uint32(y*m.W()+x), binary.LittleEndian.Uint32(m.At(x, y)))
		}
	}
	require.NoError(t, m.Sync())

	path := m.Path()
	require.NoError(t, m.Close())
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))

	// closing twice is harmless
	require.NoError(t, m.Close())
	require.Nil(t, m.Data())
}

func TestInvalid(t *testing.T) {
	_, err := New(0, 3, 1, nil)
	require.ErrorIs(t, err, ErrInvalidDimensions)
	_, err = New(3, 3, 0, nil)
	require.ErrorIs(t, err, ErrInvalidDimensions)
	_, err = New(1<<40, 1<<40, 1, nil)
	require.ErrorIs(t, err, ErrTooLarge)

	_, err = New(3, 3, 1, &Options{OnDisk: true, TmpDir: "testdata/not-existed"})
	require.Error(t, err)
}

func TestOnDiskFailure(t *testing.T) {
	dir := t.TempDir()

	// the file is created, but can not be resized or mapped to 1 PiB
	m, err := New(1<<25, 1<<25, 1, &Options{OnDisk: true, TmpDir: dir})
	require.Error(t, err)
	require.Nil(t, m)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, files, "temporary files left behind")
}
