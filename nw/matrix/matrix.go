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

// Package matrix implements a 2-D matrix stored by anti-diagonals.
//
// Cells sharing the same x+y are stored contiguously, which is the order
// in which the Needleman-Wunsch recurrence can compute them:
//
//	   Matrix as it is           Stored by diagonals
//
//	        0 1 2
//	      0 a b c                0   1 2   3 4 5   6 7   8
//	      1 d e f                a   b d   c e g   f h   i
//	      2 g h i
//
// The backing memory is either an anonymous private mapping, or a
// temporary file mapped shared, so the matrix can be larger than the
// physical memory.
package matrix

import (
	"math"
	"os"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidDimensions means the width, height or element size is not positive.
	ErrInvalidDimensions = errors.New("matrix: width, height and element size should be positive")

	// ErrTooLarge means w*h*elemSize does not fit in an int.
	ErrTooLarge = errors.New("matrix: matrix size overflows")

	// ErrDiskBackingUnsupported means file-backed mappings are not available on this platform.
	ErrDiskBackingUnsupported = errors.New("matrix: file-backed matrix is not supported on this platform")
)

// TmpFilePattern is the pattern of temporary file names, "*" is replaced by a random string.
var TmpFilePattern = "nw-matrix-*"

// Options contains the options for allocating a matrix.
type Options struct {
	OnDisk bool   // store the matrix in a temporary file
	TmpDir string // directory of the temporary file, os.TempDir() if empty
}

// Matrix is a w*h matrix of elemSize-byte values stored by anti-diagonals.
type Matrix struct {
	w, h     int
	elemSize int

	file *os.File // nil for anonymous mappings
	path string
	data []byte
}

// New allocates a w*h matrix of elemSize-byte values.
// All values are initialized to zero.
// Nothing needs to be released if an error is returned.
func New(w, h, elemSize int, opt *Options) (*Matrix, error) {
	if w <= 0 || h <= 0 || elemSize <= 0 {
		return nil, ErrInvalidDimensions
	}
	if w > math.MaxInt/h || w*h > math.MaxInt/elemSize {
		return nil, ErrTooLarge
	}
	if opt == nil {
		opt = &Options{}
	}

	m := &Matrix{w: w, h: h, elemSize: elemSize}
	size := w * h * elemSize

	var err error
	if !opt.OnDisk {
		m.data, err = mmapAnonymous(size)
		if err != nil {
			return nil, errors.Wrapf(err, "allocating %d bytes", size)
		}
		return m, nil
	}

	m.file, err = os.CreateTemp(opt.TmpDir, TmpFilePattern)
	if err != nil {
		return nil, errors.Wrap(err, "creating temporary matrix file")
	}
	m.path = m.file.Name()

	ok := false
	defer func() {
		if !ok {
			m.file.Close()
			os.Remove(m.path)
		}
	}()

	if err = m.file.Truncate(int64(size)); err != nil {
		return nil, errors.Wrapf(err, "resizing %s to %d bytes", m.path, size)
	}
	m.data, err = mmapFile(m.file, size)
	if err != nil {
		return nil, errors.Wrapf(err, "mapping %d bytes of %s", size, m.path)
	}

	ok = true
	return m, nil
}

// Close releases the mapping and removes the temporary file if there is one.
// Calling Close more than once is a no-op.
func (m *Matrix) Close() error {
	var err error
	if m.data != nil {
		err = munmap(m.data)
		m.data = nil
	}
	if m.file != nil {
		if e := m.file.Close(); err == nil {
			err = e
		}
		if e := os.Remove(m.path); err == nil {
			err = e
		}
		m.file = nil
	}
	return err
}

// Sync flushes a file-backed matrix to disk. It does nothing for anonymous mappings.
func (m *Matrix) Sync() error {
	if m.file == nil || m.data == nil {
		return nil
	}
	return msync(m.data)
}

// W returns the width.
func (m *Matrix) W() int { return m.w }

// H returns the height.
func (m *Matrix) H() int { return m.h }

// ElemSize returns the size of a value in bytes.
func (m *Matrix) ElemSize() int { return m.elemSize }

// Size returns the size of the backing memory in bytes.
func (m *Matrix) Size() int64 { return int64(m.w) * int64(m.h) * int64(m.elemSize) }

// OnDisk tells whether the matrix is backed by a temporary file.
func (m *Matrix) OnDisk() bool { return m.file != nil }

// Path returns the path of the temporary file, or "" for anonymous mappings.
func (m *Matrix) Path() string { return m.path }

// Data returns the raw buffer, which is nil after Close.
func (m *Matrix) Data() []byte { return m.data }

// Elem returns the bytes of the value at the given cell offset.
func (m *Matrix) Elem(off int) []byte {
	i := off * m.elemSize
	return m.data[i : i+m.elemSize : i+m.elemSize]
}

// At returns the bytes of the value of cell (x, y).
func (m *Matrix) At(x, y int) []byte {
	return m.Elem(m.CoordOffset(x, y))
}
