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
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/twotwotwo/sorts"
	"github.com/vreuter/mrnaali/mrnaali/ali"
)

var sortCmd = &cobra.Command{
	Use:   "sort",
	Short: "Sort alignment records",
	Long: `Sort alignment records

Sort keys (-k/--key):
  score   score, then id
  qacc    accession of the mRNA, then start in the mRNA
  target  the first BAC, then start position in it

Attention:
  1. All records are loaded into main memory.

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
		key := strings.ToLower(getFlagString(cmd, "key"))
		reverse := getFlagBool(cmd, "reverse")

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)

		// ---------------------------------------------------------------

		timeStart := time.Now()
		if opt.Verbose {
			log.Infof("loading records from %d files ...", len(files))
		}

		list := make(ali.List, 0, 1024)
		for _, file := range files {
			_list, err := loadRecords(file, commaIn)
			checkError(err)
			list = append(list, _list...)
		}
		defer ali.FreeList(&list)

		if opt.Verbose {
			log.Infof("  %d records loaded in %s", len(list), time.Since(timeStart))
		}

		var data sort.Interface
		switch key {
		case "score":
			data = ali.ByScore(list)
		case "qacc":
			data = ali.ByQAcc(list)
		case "target":
			data = ali.ByTarget(list)
		default:
			checkError(fmt.Errorf("invalid sort key: %s. available: score, qacc, target", key))
		}
		if reverse {
			data = sort.Reverse(data)
		}
		sorts.Quicksort(data)

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
		for _, r := range list {
			checkError(write(r, outfh))
		}

		if opt.Verbose {
			log.Infof("elapsed time: %s", time.Since(timeStart))
		}
	},
}

func init() {
	RootCmd.AddCommand(sortCmd)

	addInputFlags(sortCmd)
	addOutputFlags(sortCmd)

	sortCmd.Flags().StringP("key", "k", "score",
		formatFlagUsage(`Sort key, available values: score, qacc, target.`))

	sortCmd.Flags().BoolP("reverse", "R", false,
		formatFlagUsage(`Sort in descending order.`))

	sortCmd.SetUsageTemplate(usageTemplate("[file ...]"))
}
