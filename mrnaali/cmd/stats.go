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

	"github.com/spf13/cobra"
	"github.com/vreuter/mrnaali/mrnaali/ali"
	"gonum.org/v1/gonum/stat"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summary statistics of alignment records",
	Long: `Summary statistics of alignment records

Output columns:
  file         input file
  records      number of records
  mrnas        number of mRNA alignments
  ests         number of EST alignments
  introns      number of alignments with introns
  multi_bac    number of alignments spanning more than one BAC
  aligned      total aligned bases (sum of block sizes)
  blocks_mean  mean number of blocks per record
  blocks_sd    standard deviation of the number of blocks
  score_mean   mean score
  score_sd     standard deviation of scores

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		if opt.Log2File {
			fh := addLog(opt.LogFile, opt.Verbose)
			defer fh.Close()
		}

		commaIn := getFlagBool(cmd, "comma-in")
		outFile := getFlagString(cmd, "out-file")

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		outfh.WriteString("file\trecords\tmrnas\tests\tintrons\tmulti_bac\taligned\tblocks_mean\tblocks_sd\tscore_mean\tscore_sd\n")
		for _, file := range files {
			list, err := loadRecords(file, commaIn)
			checkError(err)

			s := summarize(list)
			fmt.Fprintf(outfh, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\n",
				file, s.Records, s.Records-s.ESTs, s.ESTs, s.Introns, s.MultiBac, s.Aligned,
				s.BlocksMean, s.BlocksSD, s.ScoreMean, s.ScoreSD)

			ali.FreeList(&list)
		}
	},
}

// Summary holds statistics of a list of records.
type Summary struct {
	Records  int
	ESTs     int
	Introns  int
	MultiBac int
	Aligned  uint64

	BlocksMean, BlocksSD float64
	ScoreMean, ScoreSD   float64
}

func summarize(list ali.List) Summary {
	s := Summary{Records: len(list)}
	if len(list) == 0 {
		return s
	}

	blocks := make([]float64, len(list))
	scores := make([]float64, len(list))
	for i, r := range list {
		if r.IsEst {
			s.ESTs++
		}
		if r.HasIntrons {
			s.Introns++
		}
		if r.TStartBac != r.TEndBac {
			s.MultiBac++
		}
		for _, size := range r.BlockSizes {
			s.Aligned += uint64(size)
		}
		blocks[i] = float64(r.BlockCount)
		scores[i] = float64(r.Score)
	}

	s.BlocksMean, s.BlocksSD = stat.PopMeanStdDev(blocks, nil)
	s.ScoreMean, s.ScoreSD = stat.PopMeanStdDev(scores, nil)
	return s
}

func init() {
	RootCmd.AddCommand(statsCmd)

	addInputFlags(statsCmd)

	statsCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	statsCmd.SetUsageTemplate(usageTemplate("[file ...]"))
}
