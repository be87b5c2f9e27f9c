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
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tim-napoli/nw/nw/align"
)

// runReport is a summary of one run, saved in TOML format.
type runReport struct {
	Version string `toml:"version"`

	LenA int `toml:"len_a"`
	LenB int `toml:"len_b"`

	Algorithm string `toml:"algorithm"`
	Threads   int    `toml:"threads"`
	Backing   string `toml:"backing"`

	MatrixBytes int64 `toml:"matrix_bytes"`

	Score       int    `toml:"score"`
	Bound       int    `toml:"bound"`
	Alignments  int    `toml:"alignments"`
	Distinct    int    `toml:"distinct"`
	Fingerprint string `toml:"fingerprint"`

	Validation string `toml:"validation,omitempty"`

	FillTime      string `toml:"fill_time"`
	BacktrackTime string `toml:"backtrack_time"`
}

func newRunReport(a, b []byte, opt *alignOptions, out *alignOutcome) *runReport {
	threads := 1
	if opt.Algorithm == algParallelized {
		threads = opt.Threads
	}
	backing := "memory"
	if out.TmpFile != "" {
		backing = "file"
	}

	return &runReport{
		Version: VERSION,

		LenA: len(a),
		LenB: len(b),

		Algorithm: opt.Algorithm,
		Threads:   threads,
		Backing:   backing,

		MatrixBytes: out.MatrixBytes,

		Score:      out.Score,
		Bound:      opt.Bound,
		Alignments: len(out.Alignments),
		Distinct:   align.Distinct(out.Alignments),
		// uint64 does not fit in a TOML integer
		Fingerprint: fmt.Sprintf("%016x", align.Fingerprint(out.Alignments)),

		FillTime:      out.FillTime.String(),
		BacktrackTime: out.BacktrackTime.String(),
	}
}

func writeReport(file string, report *runReport) error {
	outfh, gw, w, err := outStream(file, strings.HasSuffix(file, ".gz"), -1)
	if err != nil {
		return err
	}

	err = toml.NewEncoder(outfh).Encode(report)
	if err != nil {
		return err
	}

	if err = outfh.Flush(); err != nil {
		return err
	}
	if gw != nil {
		if err = gw.Close(); err != nil {
			return err
		}
	}
	return w.Close()
}
