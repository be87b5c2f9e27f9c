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
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/util/pathutil"
	"github.com/shenwei356/xopen"
	"github.com/tim-napoli/nw/nw/util"
)

// DefaultRandomLetters is the alphabet of random sequences.
const DefaultRandomLetters = "ABCDEF"

// firstSeq reads the first sequence of a FASTA/FASTQ file.
func firstSeq(file string) ([]byte, error) {
	if !isStdin(file) {
		ok, err := pathutil.Exists(file)
		if err != nil {
			return nil, errors.Wrap(err, file)
		}
		if !ok {
			return nil, fmt.Errorf("file not found: %s", file)
		}
	}

	fastxReader, err := fastx.NewReader(nil, file, "")
	if err != nil {
		return nil, errors.Wrap(err, file)
	}
	defer fastxReader.Close()

	record, err := fastxReader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("no sequences found in file: %s", file)
		}
		return nil, errors.Wrap(err, file)
	}

	// the record is reused by the reader
	return append([]byte(nil), record.Seq.Seq...), nil
}

// seqsFromFiles reads the first sequence of each of the two files.
func seqsFromFiles(files []string) ([]byte, []byte, error) {
	if len(files) != 2 {
		return nil, nil, fmt.Errorf("two sequence files expected, %d given", len(files))
	}
	a, err := firstSeq(files[0])
	if err != nil {
		return nil, nil, err
	}
	b, err := firstSeq(files[1])
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// readTwoLines reads the first two lines of a plain or compressed file.
// A missing second line is an empty sequence.
func readTwoLines(file string) ([]byte, []byte, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, nil, errors.Wrap(err, file)
	}
	defer fh.Close()

	lines := make([][]byte, 0, 2)
	scanner := bufio.NewScanner(fh)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<30)
	var line []byte
	for scanner.Scan() {
		line = bytes.TrimRight(scanner.Bytes(), "\r\n")
		lines = append(lines, append([]byte(nil), line...))
		if len(lines) == 2 {
			break
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, nil, errors.Wrap(err, file)
	}

	switch len(lines) {
	case 0:
		return nil, nil, fmt.Errorf("two lines expected in file: %s", file)
	case 1:
		return lines[0], []byte{}, nil
	}
	return lines[0], lines[1], nil
}

// randomSeqs generates two sequences of n letters.
func randomSeqs(n int, seed int64, letters string) ([]byte, []byte, error) {
	if letters == "" {
		return nil, nil, fmt.Errorf("the alphabet of random sequences should not be empty")
	}
	r := rand.New(rand.NewSource(seed))
	a := util.RandomSeq(r, n, []byte(letters))
	b := util.RandomSeq(r, n, []byte(letters))
	return a, b, nil
}
