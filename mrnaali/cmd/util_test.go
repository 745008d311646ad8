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
	"math"
	"os"
	"strings"
	"testing"

	"github.com/vreuter/mrnaali/mrnaali/ali"
)

var _lines = []string{
	"7\t1\t-1\t1\t0\t2500\tBC012345\t42\t1800\t10\t160\t1001\t500\t1002\t300\t2\t100,50,\t0,100,\t1001,1002,\t500,250,\t20,10,\t30,5,",
	"8\t-1\t1\t0\t1\t-3\tAA000001\t43\t900\t0\t0\t3\t0\t3\t0\t0\t\t\t\t\t\t",
}

func TestParseRecordLine(t *testing.T) {
	items := make([]string, ali.NumColumns+1)

	r, err := parseRecordLine("\r\n", false, &items)
	if err != nil || r != nil {
		t.Errorf("empty line should be skipped: %v %v", r, err)
	}

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	writeComma := recordWriter(true)
	writeTab := recordWriter(false)

	for _, line := range _lines {
		r, err = parseRecordLine(line+"\n", false, &items)
		if err != nil {
			t.Error(err)
			return
		}

		// tab -> comma -> record -> tab
		buf.Reset()
		if err = writeComma(r, w); err != nil {
			t.Error(err)
			return
		}
		w.Flush()

		r2, err := parseRecordLine(buf.String(), true, nil)
		if err != nil {
			t.Error(err)
			return
		}

		buf.Reset()
		if err = writeTab(r2, w); err != nil {
			t.Error(err)
			return
		}
		w.Flush()
		if buf.String() != line+"\n" {
			t.Errorf("expected %q, returned %q", line+"\n", buf.String())
		}

		ali.Free(r)
		ali.Free(r2)
	}
}

func TestSummarize(t *testing.T) {
	items := make([]string, ali.NumColumns+1)
	list := make(ali.List, 0, len(_lines))
	for _, line := range _lines {
		r, err := parseRecordLine(line, false, &items)
		if err != nil {
			t.Error(err)
			return
		}
		list = append(list, r)
	}
	defer ali.FreeList(&list)

	s := summarize(list)
	if s.Records != 2 || s.ESTs != 1 || s.Introns != 1 || s.MultiBac != 1 || s.Aligned != 150 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if math.Abs(s.BlocksMean-1) > 1e-9 || math.Abs(s.BlocksSD-1) > 1e-9 {
		t.Errorf("unexpected block statistics: %f %f", s.BlocksMean, s.BlocksSD)
	}
	if math.Abs(s.ScoreMean-1248.5) > 1e-9 {
		t.Errorf("unexpected mean score: %f", s.ScoreMean)
	}

	if s = summarize(nil); s.Records != 0 || s.ScoreMean != 0 {
		t.Errorf("unexpected summary of an empty list: %+v", s)
	}
}

func TestScoreThreshold(t *testing.T) {
	for _, v := range []int{math.MinInt32, -3, 0, 2500, math.MaxInt32} {
		s, err := scoreThreshold(v)
		if err != nil {
			t.Error(err)
			return
		}
		if int(s) != v {
			t.Errorf("expected %d, returned %d", v, s)
		}
	}

	for _, v := range []int64{math.MinInt32 - 1, math.MaxInt32 + 1, 1 << 40} {
		if int64(int(v)) != v { // 32-bit platforms
			continue
		}
		if _, err := scoreThreshold(int(v)); err == nil {
			t.Errorf("error expected for %d", v)
		}
	}
}

func TestLoadRecordsCommaIn(t *testing.T) {
	file := "t.comma.txt"

	fh, err := os.Create(file)
	if err != nil {
		t.Error(err)
		return
	}
	items := make([]string, ali.NumColumns+1)
	for _, line := range _lines {
		r, err := parseRecordLine(line, false, &items)
		if err != nil {
			t.Error(err)
			return
		}
		r.CommaOut(fh)
		fh.WriteString("\n")
		ali.Free(r)
	}
	fh.Close()

	list, err := loadRecords(file, true)
	if err != nil {
		t.Error(err)
		return
	}
	if len(list) != len(_lines) {
		t.Errorf("expected %d records, returned %d", len(_lines), len(list))
	}
	for i, r := range list {
		fields := r.Fields()
		if strings.Join(fields, "\t") != _lines[i] {
			t.Errorf("#%d: unexpected record: %s", i, r)
		}
	}
	ali.FreeList(&list)

	// clean up

	err = os.RemoveAll(file)
	if err != nil {
		t.Error(err)
		return
	}
}

func TestReadDBConfig(t *testing.T) {
	file := "t.config.toml"

	err := os.WriteFile(file, []byte("db = \"alignments.db\"\ntable = \"estAli\"\n"), 0644)
	if err != nil {
		t.Error(err)
		return
	}

	cfg, err := readDBConfig(file)
	if err != nil {
		t.Error(err)
		return
	}
	if cfg.DB != "alignments.db" || cfg.Table != "estAli" {
		t.Errorf("unexpected config: %+v", cfg)
	}

	err = os.WriteFile(file, []byte("db = alignments.db\n"), 0644)
	if err != nil {
		t.Error(err)
		return
	}
	if _, err = readDBConfig(file); err == nil {
		t.Errorf("error expected for an invalid config file")
	}

	// clean up

	err = os.RemoveAll(file)
	if err != nil {
		t.Error(err)
		return
	}
}
