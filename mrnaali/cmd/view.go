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
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shenwei356/breader"
	"github.com/spf13/cobra"
	"github.com/vreuter/mrnaali/mrnaali/ali"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Check, filter and convert alignment records",
	Long: `Check, filter and convert alignment records

Input:
  - Tab-delimited records (default), or comma-separated records written with --comma (--comma-in).
  - Every line is checked, the first malformed record stops the program.

Output:
  - Tab-delimited lines (default), or comma-separated lists including a
    final comma (--comma), one record per line.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		if opt.Log2File {
			fh := addLog(opt.LogFile, opt.Verbose)
			defer fh.Close()
		}

		commaIn := getFlagBool(cmd, "comma-in")
		comma := getFlagBool(cmd, "comma")
		outFile := getFlagString(cmd, "out-file")

		minScore, err := scoreThreshold(getFlagInt(cmd, "min-score"))
		checkError(err)
		onlyEST := getFlagBool(cmd, "est")
		onlyMRNA := getFlagBool(cmd, "mrna")
		if onlyEST && onlyMRNA {
			checkError(fmt.Errorf("flags --est and --mrna are exclusive"))
		}
		chunkSize := getFlagPositiveInt(cmd, "chunk-size")

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)

		// ---------------------------------------------------------------

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		write := recordWriter(comma)

		keep := func(r *ali.MrnaAli) bool {
			if r.Score < minScore {
				return false
			}
			if onlyEST && !r.IsEst {
				return false
			}
			if onlyMRNA && r.IsEst {
				return false
			}
			return true
		}

		fn := func(line string) (interface{}, bool, error) {
			items := make([]string, ali.NumColumns+1)
			r, err := parseRecordLine(line, commaIn, &items)
			if err != nil {
				return nil, false, err
			}
			if r == nil {
				return nil, false, nil
			}
			if !keep(r) {
				ali.Free(r)
				return nil, false, nil
			}
			return r, true, nil
		}

		timeStart := time.Now()
		var nTotal int
		var reader *breader.BufferedReader
		var r *ali.MrnaAli
		for _, file := range files {
			reader, err = breader.NewBufferedReader(file, opt.NumCPUs, chunkSize, fn)
			checkError(errors.Wrap(err, file))

			for chunk := range reader.Ch {
				checkError(errors.Wrap(chunk.Err, file))

				for _, data := range chunk.Data {
					r = data.(*ali.MrnaAli)
					checkError(write(r, outfh))
					ali.Free(r)
					nTotal++
				}
			}
		}

		if opt.Verbose {
			log.Infof("%d records written, elapsed time: %s", nTotal, time.Since(timeStart))
		}
	},
}

// scoreThreshold checks the value of -m/--min-score, scores are 32-bit integers.
func scoreThreshold(v int) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("the value of flag -m/--min-score should be in the range of [%d, %d]: %d",
			math.MinInt32, math.MaxInt32, v)
	}
	return int32(v), nil
}

func init() {
	RootCmd.AddCommand(viewCmd)

	addInputFlags(viewCmd)
	addOutputFlags(viewCmd)

	viewCmd.Flags().IntP("min-score", "m", math.MinInt32,
		formatFlagUsage(`Only output records with a score not less than this value.`))

	viewCmd.Flags().BoolP("est", "", false,
		formatFlagUsage(`Only output EST alignments.`))

	viewCmd.Flags().BoolP("mrna", "", false,
		formatFlagUsage(`Only output mRNA (non-EST) alignments.`))

	viewCmd.Flags().IntP("chunk-size", "", 1000,
		formatFlagUsage(`Number of lines in a chunk for parallel parsing.`))

	viewCmd.SetUsageTemplate(usageTemplate("[file ...]"))
}
