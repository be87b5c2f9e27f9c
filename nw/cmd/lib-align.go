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

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tim-napoli/nw/nw/align"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

const (
	algIterative    = "iterative"
	algParallelized = "parallelized"
	algFullMatrix   = "full-matrix"
	algRecursive    = "recursive"
	algClusterized  = "clusterized"
)

type algorithm struct {
	name        string
	implemented bool
	desc        string
}

var algorithms = []algorithm{
	{algIterative, true, "diagonal sweep with a single goroutine"},
	{algParallelized, true, "diagonal sweep with -j/--threads goroutines"},
	{algFullMatrix, true, "row-major full score matrix, a single optimal alignment"},
	{algRecursive, false, "recursive computation of cells"},
	{algClusterized, false, "sweep distributed over several machines"},
}

func availableAlgorithms() string {
	names := make([]string, 0, len(algorithms))
	for _, alg := range algorithms {
		if alg.implemented {
			names = append(names, alg.name)
		}
	}
	return strings.Join(names, ", ")
}

func checkAlgorithm(name string) error {
	for _, alg := range algorithms {
		if alg.name != name {
			continue
		}
		if !alg.implemented {
			return fmt.Errorf("algorithm %q is not implemented, available: %s", name, availableAlgorithms())
		}
		return nil
	}
	return fmt.Errorf("invalid algorithm: %q, available: %s", name, availableAlgorithms())
}

// the minimum number of cells to show the progress bar
var progressMinCells uint64 = 1 << 24

// matrixCells returns the number of cells of the matrix of two sequences.
func matrixCells(lenA, lenB int) uint64 {
	return uint64(lenA+1) * uint64(lenB+1)
}

// closeResult releases the move matrix. The error of the release is
// only returned if err is nil.
func closeResult(r *align.Result, err error) error {
	if e := r.Close(); e != nil && err == nil {
		return errors.Wrap(e, "releasing move matrix")
	}
	return err
}

// alignOptions contains the options of one alignment.
type alignOptions struct {
	Algorithm      string
	Threads        int
	MinCellsPerJob int

	Bound int

	OnDisk bool
	TmpDir string

	Verbose     bool
	PrintMatrix bool
}

// alignOutcome is the result of one alignment.
type alignOutcome struct {
	Score      int
	Alignments []*align.Alignment

	MatrixBytes int64
	TmpFile     string // empty for an anonymous mapping
	Matrix      []byte // text of the move matrix

	FillTime      time.Duration
	BacktrackTime time.Duration
}

// runAlignment aligns a and b with the chosen algorithm.
func runAlignment(a, b []byte, opt *alignOptions) (*alignOutcome, error) {
	if err := checkAlgorithm(opt.Algorithm); err != nil {
		return nil, err
	}
	if opt.Algorithm == algFullMatrix {
		return runFullMatrix(a, b, opt), nil
	}

	threads := 1
	if opt.Algorithm == algParallelized {
		threads = opt.Threads
	}
	alg := align.NewAligner(&align.Options{
		Threads:        threads,
		MinCellsPerJob: opt.MinCellsPerJob,
		OnDisk:         opt.OnDisk,
		TmpDir:         opt.TmpDir,
	})

	// process bar
	var pbs *mpb.Progress
	var bar *mpb.Bar
	if opt.Verbose && matrixCells(len(a), len(b)) >= progressMinCells {
		pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
		bar = pbs.AddBar(int64(len(a)+len(b)+1),
			mpb.PrependDecorators(
				decor.Name("computed diagonals: ", decor.WC{W: len("computed diagonals: "), C: decor.DindentRight}),
				decor.Name("", decor.WCSyncSpaceR),
				decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
				decor.AverageETA(decor.ET_STYLE_GO),
				decor.OnComplete(decor.Name(""), ". done"),
			),
		)
		alg.Options.Progress = func(n int) { bar.IncrBy(n) }
	}

	out := &alignOutcome{}

	timeStart := time.Now()
	r, err := alg.Fill(a, b)
	if bar != nil {
		if err != nil {
			bar.Abort(false)
		}
		pbs.Wait()
	}
	if err != nil {
		return nil, err
	}
	out.FillTime = time.Since(timeStart)

	out.Score = r.Score
	out.MatrixBytes = r.Moves.Size()
	out.TmpFile = r.Moves.Path()

	if opt.PrintMatrix {
		var buf bytes.Buffer
		if err = r.WriteMoves(&buf); err != nil {
			return nil, closeResult(r, err)
		}
		out.Matrix = buf.Bytes()
	}

	timeStart = time.Now()
	out.Alignments, err = r.Alignments(opt.Bound)
	if err != nil {
		return nil, closeResult(r, err)
	}
	out.BacktrackTime = time.Since(timeStart)

	if err = closeResult(r, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func runFullMatrix(a, b []byte, opt *alignOptions) *alignOutcome {
	fm := align.NewFullMatrixAligner()

	out := &alignOutcome{
		// a score and a move per cell
		MatrixBytes: int64(len(a)+1) * int64(len(b)+1) * 9,
	}

	timeStart := time.Now()
	r := fm.Global(a, b, opt.PrintMatrix)
	out.FillTime = time.Since(timeStart)
	defer align.RecycleFullMatrixResult(r)

	out.Score = r.Score
	out.Matrix = r.Matrix
	if opt.Bound != 0 {
		up := append([]byte(nil), r.AlignA...)
		down := append([]byte(nil), r.AlignB...)
		out.Alignments = []*align.Alignment{{Up: up, Down: down}}
	}
	return out
}

// writeAlignments writes alignments as pairs of lines.
func writeAlignments(w io.Writer, out *alignOutcome, withScore bool) error {
	var err error
	if withScore {
		if _, err = fmt.Fprintf(w, "score: %d\n", out.Score); err != nil {
			return err
		}
	}
	for _, aln := range out.Alignments {
		if _, err = fmt.Fprintf(w, "%s\n%s\n", aln.Up, aln.Down); err != nil {
			return err
		}
	}
	return nil
}

// matchAlignment tells whether an alignment equals the expected one.
func matchAlignment(alns []*align.Alignment, up, down []byte) bool {
	expected := &align.Alignment{Up: up, Down: down}
	for _, aln := range alns {
		if aln.Equal(expected) {
			return true
		}
	}
	return false
}
