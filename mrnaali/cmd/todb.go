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
	"os"
	"time"

	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"github.com/vreuter/mrnaali/mrnaali/ali"
	"github.com/vreuter/mrnaali/mrnaali/alidb"
)

var todbCmd = &cobra.Command{
	Use:   "todb",
	Short: "Save alignment records into a SQLite database",
	Long: `Save alignment records into a SQLite database

Attention:
  1. The table is created if the database file does not exist, or with the flag --create.
  2. Records of each file are saved in one transaction, IDs must be unique.
  3. Block lists are saved as in tab-delimited records.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		if opt.Log2File {
			fh := addLog(opt.LogFile, opt.Verbose)
			defer fh.Close()
		}

		cfg := getDBConfig(cmd)
		commaIn := getFlagBool(cmd, "comma-in")
		create := getFlagBool(cmd, "create")

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)

		// ---------------------------------------------------------------

		existed, err := pathutil.Exists(cfg.DB)
		checkError(err)
		if !existed {
			create = true
		}

		db, err := openDB(cfg)
		checkError(err)
		defer db.Close()

		if create {
			if opt.Verbose {
				log.Infof("creating table %s in %s", cfg.Table, cfg.DB)
			}
			checkError(alidb.CreateTable(db, cfg.Table))
		}

		timeStart := time.Now()

		var pbs *mpb.Progress
		var bar *mpb.Bar
		var chDuration chan time.Duration
		var doneDuration chan int
		if opt.Verbose && len(files) > 1 {
			pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
			bar = pbs.AddBar(int64(len(files)),
				mpb.PrependDecorators(
					decor.Name("saved files: ", decor.WC{W: len("saved files: "), C: decor.DindentRight}),
					decor.Name("", decor.WCSyncSpaceR),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
					decor.EwmaETA(decor.ET_STYLE_GO, 3),
					decor.OnComplete(decor.Name(""), ". done"),
				),
			)

			chDuration = make(chan time.Duration, opt.NumCPUs)
			doneDuration = make(chan int)
			go func() {
				for t := range chDuration {
					bar.EwmaIncrBy(1, t)
				}
				doneDuration <- 1
			}()
		}

		var nTotal int
		var start time.Time
		for _, file := range files {
			start = time.Now()

			list, err := loadRecords(file, commaIn)
			checkError(err)

			checkError(alidb.SaveList(db, cfg.Table, list))
			nTotal += len(list)
			ali.FreeList(&list)

			if bar != nil {
				chDuration <- time.Since(start)
			}
		}

		if bar != nil {
			close(chDuration)
			<-doneDuration
			pbs.Wait()
		}

		if opt.Verbose {
			log.Infof("%d records saved to %s (table: %s), elapsed time: %s",
				nTotal, cfg.DB, cfg.Table, time.Since(timeStart))
		}
	},
}

func init() {
	RootCmd.AddCommand(todbCmd)

	addInputFlags(todbCmd)
	addDBFlags(todbCmd)

	todbCmd.Flags().BoolP("create", "", false,
		formatFlagUsage(`Create the table.`))

	todbCmd.SetUsageTemplate(usageTemplate("[file ...]"))
}
