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
	"time"

	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
	"github.com/vreuter/mrnaali/mrnaali/ali"
	"github.com/vreuter/mrnaali/mrnaali/alidb"
)

var fromdbCmd = &cobra.Command{
	Use:   "fromdb",
	Short: "Dump alignment records from a SQLite database",
	Long: `Dump alignment records from a SQLite database

Examples:
  1. all records
       mrnaali fromdb -d mrnaAli.db
  2. EST alignments of a BAC
       mrnaali fromdb -d mrnaAli.db -w "isEst = 1 AND tStartBac = 1001"

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		if opt.Log2File {
			fh := addLog(opt.LogFile, opt.Verbose)
			defer fh.Close()
		}

		cfg := getDBConfig(cmd)
		where := getFlagString(cmd, "where")
		comma := getFlagBool(cmd, "comma")
		outFile := getFlagString(cmd, "out-file")

		existed, err := pathutil.Exists(cfg.DB)
		checkError(err)
		if !existed {
			checkError(fmt.Errorf("database file not found: %s", cfg.DB))
		}

		// ---------------------------------------------------------------

		db, err := openDB(cfg)
		checkError(err)
		defer db.Close()

		rdr, err := alidb.NewReader(db, cfg.Table, where)
		checkError(err)

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		timeStart := time.Now()
		write := recordWriter(comma)
		var n int
		var r *ali.MrnaAli
		for rdr.Next() {
			r = rdr.Record()
			checkError(write(r, outfh))
			ali.Free(r)
			n++
		}
		checkError(rdr.Err())
		checkError(rdr.Close())

		if opt.Verbose {
			log.Infof("%d records dumped, elapsed time: %s", n, time.Since(timeStart))
		}
	},
}

func init() {
	RootCmd.AddCommand(fromdbCmd)

	addDBFlags(fromdbCmd)
	addOutputFlags(fromdbCmd)

	fromdbCmd.Flags().StringP("where", "w", "",
		formatFlagUsage(`SQL condition for selecting records.`))

	fromdbCmd.SetUsageTemplate(usageTemplate(""))
}
