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
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/iafan/cwalk"
	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
	"github.com/twotwotwo/sorts"
	"github.com/vreuter/mrnaali/mrnaali/ali"
)

// Options contains the global flags
type Options struct {
	NumCPUs int
	Verbose bool

	LogFile  string
	Log2File bool

	CompressionLevel int
}

func getOptions(cmd *cobra.Command) *Options {
	threads := getFlagNonNegativeInt(cmd, "threads")
	if threads == 0 {
		threads = runtime.NumCPU()
	}

	sorts.MaxProcs = threads
	runtime.GOMAXPROCS(threads)

	logfile := getFlagString(cmd, "log")
	return &Options{
		NumCPUs: threads,
		Verbose: !getFlagBool(cmd, "quiet"),

		LogFile:  logfile,
		Log2File: logfile != "",

		CompressionLevel: -1,
	}
}

func getFileListFromDir(path string, pattern *regexp.Regexp, threads int) ([]string, error) {
	files := make([]string, 0, 512)
	ch := make(chan string, threads)
	done := make(chan int)
	go func() {
		for file := range ch {
			files = append(files, file)
		}
		done <- 1
	}()

	cwalk.NumWorkers = threads
	err := cwalk.WalkWithSymlinks(path, func(_path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && pattern.MatchString(info.Name()) {
			ch <- filepath.Join(path, _path)
		}
		return nil
	})
	close(ch)
	<-done
	if err != nil {
		return nil, err
	}

	return files, err
}

// addInputFlags adds flags for collecting input files.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("infile-list", "X", "",
		formatFlagUsage(`File of input files list (one file per line). If given, they are appended to files from CLI arguments.`))

	cmd.Flags().StringP("in-dir", "I", "",
		formatFlagUsage(`Directory containing record files. Directory symlinks are followed.`))

	cmd.Flags().StringP("file-regexp", "r", `\.(tsv|txt|tab)(\.gz|\.xz|\.zst|\.bz2)?$`,
		formatFlagUsage(`Regular expression for matching files in -I/--in-dir, case ignored.`))

	cmd.Flags().BoolP("comma-in", "", false,
		formatFlagUsage(`Input records are comma-separated lists (one record per line), as written with --comma.`))
}

// addOutputFlags adds flags for writing records.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	cmd.Flags().BoolP("comma", "", false,
		formatFlagUsage(`Output records as comma-separated lists including a final comma, instead of tab-delimited lines.`))
}

// recordWriter returns the function for writing a record.
func recordWriter(comma bool) func(r *ali.MrnaAli, w *bufio.Writer) error {
	if comma {
		return func(r *ali.MrnaAli, w *bufio.Writer) error {
			if err := r.CommaOut(w); err != nil {
				return err
			}
			return w.WriteByte('\n')
		}
	}
	return func(r *ali.MrnaAli, w *bufio.Writer) error {
		return r.TabOut(w)
	}
}

// parseRecordLine returns a record from a line, or nil for an empty line.
func parseRecordLine(line string, commaIn bool, items *[]string) (*ali.MrnaAli, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, nil
	}
	if commaIn {
		return ali.CommaIn(line)
	}
	ali.SplitFields(line, '\t', items)
	return ali.Load(*items)
}

// loadRecords reads all records in a file.
func loadRecords(file string, commaIn bool) (ali.List, error) {
	if !commaIn {
		return ali.LoadAll(file)
	}

	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, err
	}

	list := make(ali.List, 0, 1024)
	scanner := bufio.NewScanner(fh)
	scanner.Buffer(make([]byte, 64<<10), ali.BufferSize)
	var r *ali.MrnaAli
	var nLine int
	for scanner.Scan() {
		nLine++
		r, err = parseRecordLine(scanner.Text(), true, nil)
		if err != nil {
			ali.FreeList(&list)
			fh.Close()
			return nil, errors.Wrapf(err, "%s: line %d", file, nLine)
		}
		if r != nil {
			list = append(list, r)
		}
	}
	if err = scanner.Err(); err != nil {
		ali.FreeList(&list)
		fh.Close()
		return nil, err
	}
	return list, fh.Close()
}
