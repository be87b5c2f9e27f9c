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
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
	"github.com/tim-napoli/nw/nw/align"
	"github.com/twotwotwo/sorts"
)

// the maximum number of cells to print the matrix
var maxPrintCells = 1 << 16

var alignCmd = &cobra.Command{
	Use:   "align",
	Short: "Globally align two sequences and output optimal alignments",
	Long: `Globally align two sequences and output optimal alignments

Input:
  Two sequences are given in one of the following ways:
    1. Two positional arguments.
    2. Two FASTA/FASTQ files (-f/--files), the first record of each file is used.
    3. One file with two lines (-F/--single-file).
    4. Two random sequences of N letters (-R/--random).

Scores:
  match: +1, mismatch: -1, gap: -1.

Algorithms (-a/--algorithm):
  iterative      anti-diagonal sweep with a single goroutine.
  parallelized   anti-diagonal sweep, cells of a diagonal are computed by -j/--threads goroutines.
  full-matrix    row by row with the whole score matrix, only one optimal alignment is returned.
  recursive      not implemented.
  clusterized    not implemented.

Attention:
  1. All optimal alignments can be numerous, -n/--bound limits how many are built.
     A negative value means no limit, and 0 only computes the score.
  2. The move matrix needs (len(A)+1)*(len(B)+1) bytes. Use -D/--on-disk to back it with
     a temporary file in --tmp-dir for sequences larger than the RAM.
  3. With -v/--validate, the exit status is 1 if the expected alignment is not found.

Output:
  One alignment per two lines, the first line for sequence A and the second for sequence B.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		seq.ValidateSeq = false

		var fhLog *os.File
		if opt.Log2File {
			fhLog = addLog(opt.LogFile, opt.Verbose)
		}

		var unmatched bool
		timeStart := time.Now()
		defer func() {
			if opt.Verbose || opt.Log2File {
				log.Info()
				log.Infof("elapsed time: %s", time.Since(timeStart))
				log.Info()
			}
			if opt.Log2File {
				fhLog.Close()
			}
			if unmatched {
				os.Exit(1)
			}
		}()

		// ---------------------------------------------------------------
		// flags

		algorithm := getFlagString(cmd, "algorithm")
		checkError(checkAlgorithm(algorithm))

		bound := getFlagInt(cmd, "bound")
		minCells := getFlagPositiveInt(cmd, "min-cells-per-job")

		files := getFlagStringSlice(cmd, "files")
		singleFile := expandPath(getFlagString(cmd, "single-file"))
		nRandom := getFlagNonNegativeInt(cmd, "random")
		seed := getFlagInt64(cmd, "seed")
		letters := getFlagString(cmd, "random-letters")

		var nSources int
		if len(args) > 0 {
			nSources++
			if len(args) != 2 {
				checkError(fmt.Errorf("two sequences expected, %d given", len(args)))
			}
		}
		if len(files) > 0 {
			nSources++
			if len(files) != 2 {
				checkError(fmt.Errorf("two files expected for flag -f/--files, %d given", len(files)))
			}
			for i, file := range files {
				files[i] = expandPath(file)
			}
		}
		if singleFile != "" {
			nSources++
		}
		if nRandom > 0 {
			nSources++
		}
		if nSources == 0 {
			checkError(fmt.Errorf("please give two sequences, or use one of -f/--files, -F/--single-file and -R/--random"))
		}
		if nSources > 1 {
			checkError(fmt.Errorf("only one source of sequences is allowed"))
		}
		if nRandom > 0 && letters == "" {
			checkError(fmt.Errorf("flag --random-letters should not be empty"))
		}

		showTime := getFlagBool(cmd, "time")
		showScore := getFlagBool(cmd, "score")
		printMatrix := getFlagBool(cmd, "print-matrix")
		sortAlns := getFlagBool(cmd, "sort")

		validateFile := expandPath(getFlagString(cmd, "validate"))
		if validateFile != "" {
			ok, err := pathutil.Exists(validateFile)
			checkError(err)
			if !ok {
				checkError(fmt.Errorf("validation file not found: %s", validateFile))
			}
		}

		onDisk := getFlagBool(cmd, "on-disk")
		tmpDir := expandPath(getFlagString(cmd, "tmp-dir"))
		if tmpDir != "" {
			ok, err := pathutil.DirExists(tmpDir)
			checkError(err)
			if !ok {
				checkError(fmt.Errorf("temporary directory not found: %s", tmpDir))
			}
		}
		if algorithm == algFullMatrix && onDisk {
			log.Warningf("flag -D/--on-disk is ignored by the algorithm %s", algFullMatrix)
			onDisk = false
		}

		outFile := expandPath(getFlagString(cmd, "out-file"))
		reportFile := expandPath(getFlagString(cmd, "report"))

		// ---------------------------------------------------------------
		// sequences

		var a, b []byte
		var err error
		switch {
		case len(args) == 2:
			a, b = []byte(args[0]), []byte(args[1])
		case len(files) == 2:
			a, b, err = seqsFromFiles(files)
		case singleFile != "":
			a, b, err = readTwoLines(singleFile)
		default:
			a, b, err = randomSeqs(nRandom, seed, letters)
		}
		checkError(err)

		cells := matrixCells(len(a), len(b))
		if printMatrix && cells > uint64(maxPrintCells) {
			log.Warningf("the matrix of %s cells is too large to print, flag --print-matrix is ignored",
				humanize.Comma(int64(cells)))
			printMatrix = false
		}

		if opt.Verbose {
			log.Infof("nw v%s", VERSION)
			log.Info()
			log.Infof("sequence A: %s letters", humanize.Comma(int64(len(a))))
			log.Infof("sequence B: %s letters", humanize.Comma(int64(len(b))))
			log.Infof("algorithm: %s", algorithm)
			if algorithm == algParallelized {
				log.Infof("  threads: %d", opt.NumCPUs)
			}
			if algorithm != algFullMatrix {
				if onDisk {
					dir := tmpDir
					if dir == "" {
						dir = os.TempDir()
					}
					log.Infof("move matrix: %s, backed by a temporary file in %s", humanize.Bytes(cells), dir)
				} else {
					log.Infof("move matrix: %s in memory", humanize.Bytes(cells))
				}
			}
			if bound < 0 {
				log.Infof("computing all optimal alignments ...")
			} else {
				log.Infof("computing at most %d optimal alignment(s) ...", bound)
			}
		}

		// ---------------------------------------------------------------
		// alignment

		aopt := &alignOptions{
			Algorithm:      algorithm,
			Threads:        opt.NumCPUs,
			MinCellsPerJob: minCells,
			Bound:          bound,
			OnDisk:         onDisk,
			TmpDir:         tmpDir,
			Verbose:        opt.Verbose,
			PrintMatrix:    printMatrix,
		}
		out, err := runAlignment(a, b, aopt)
		checkError(err)

		if opt.Verbose {
			log.Infof("best score: %d", out.Score)
			log.Infof("%d optimal alignment(s) built", len(out.Alignments))
		}
		if showTime {
			log.Infof("time of filling the matrix: %s", out.FillTime)
			log.Infof("time of backtracking: %s", out.BacktrackTime)
		}

		if sortAlns && len(out.Alignments) > 1 {
			sorts.Quicksort(align.Alignments(out.Alignments))
		}

		// ---------------------------------------------------------------
		// output

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)

		if out.Matrix != nil {
			_, err = outfh.Write(out.Matrix)
			checkError(err)
		}
		checkError(writeAlignments(outfh, out, showScore))

		checkError(outfh.Flush())
		if gw != nil {
			checkError(gw.Close())
		}
		if !isStdin(outFile) {
			checkError(w.Close())
		}

		report := newRunReport(a, b, aopt, out)

		if validateFile != "" {
			up, down, err := readTwoLines(validateFile)
			checkError(err)
			if matchAlignment(out.Alignments, up, down) {
				report.Validation = "matched"
				if opt.Verbose {
					log.Infof("the expected alignment in %s is found", validateFile)
				}
			} else {
				report.Validation = "unmatched"
				unmatched = true
				log.Warningf("the expected alignment in %s is not found", validateFile)
			}
		}

		if reportFile != "" {
			checkError(writeReport(reportFile, report))
			if opt.Verbose {
				log.Infof("run report saved to %s", reportFile)
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(alignCmd)

	// algorithm

	alignCmd.Flags().StringP("algorithm", "a", algParallelized,
		formatFlagUsage(fmt.Sprintf(`Algorithm, available: %s.`, availableAlgorithms())))

	alignCmd.Flags().IntP("bound", "n", 1,
		formatFlagUsage(`Maximum number of optimal alignments to output. A negative value for all, 0 for none.`))

	alignCmd.Flags().IntP("min-cells-per-job", "", align.DefaultOptions.MinCellsPerJob,
		formatFlagUsage(`Minimum number of cells of a diagonal computed by one goroutine in the parallelized algorithm.`))

	// input

	alignCmd.Flags().StringSliceP("files", "f", []string{},
		formatFlagUsage(`Two FASTA/FASTQ files, separated by comma or by giving the flag twice. The first record of each file is used.`))

	alignCmd.Flags().StringP("single-file", "F", "",
		formatFlagUsage(`One file of two lines, for sequence A and B respectively.`))

	alignCmd.Flags().IntP("random", "R", 0,
		formatFlagUsage(`Align two random sequences of this length.`))

	alignCmd.Flags().Int64P("seed", "S", 1,
		formatFlagUsage(`Rand seed for generating random sequences.`))

	alignCmd.Flags().StringP("random-letters", "", DefaultRandomLetters,
		formatFlagUsage(`Letters of random sequences.`))

	// out-of-core

	alignCmd.Flags().BoolP("on-disk", "D", false,
		formatFlagUsage(`Store the move matrix in a temporary file instead of the RAM.`))

	alignCmd.Flags().StringP("tmp-dir", "", "",
		formatFlagUsage(`Directory of the temporary file. The default one of the system is used if empty.`))

	// output

	alignCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	alignCmd.Flags().BoolP("score", "s", false,
		formatFlagUsage(`Output the best score before the alignments.`))

	alignCmd.Flags().BoolP("sort", "", false,
		formatFlagUsage(`Sort alignments in lexicographic order.`))

	alignCmd.Flags().BoolP("print-matrix", "", false,
		formatFlagUsage(fmt.Sprintf(`Output the move matrix before the alignments, for matrices of at most %d cells.`, maxPrintCells)))

	alignCmd.Flags().BoolP("time", "t", false,
		formatFlagUsage(`Log the time of filling the matrix and backtracking.`))

	alignCmd.Flags().StringP("validate", "v", "",
		formatFlagUsage(`File of two lines containing an expected alignment. Exit with 1 if it is not found.`))

	alignCmd.Flags().StringP("report", "", "",
		formatFlagUsage(`Save a summary of the run to this file in TOML format.`))

	alignCmd.SetUsageTemplate(usageTemplate("{ <seq A> <seq B> | -f <a.fa> -f <b.fa> | -F <seqs.txt> | -R <N> } [-o out.txt]"))
}
