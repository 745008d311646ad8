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

package alidb

import (
	"errors"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/vreuter/mrnaali/mrnaali/ali"
)

var testRows = [][]string{
	{"7", "1", "-1", "1", "0", "2500", "BC012345", "42", "1800", "10", "160",
		"1001", "500", "1002", "300", "2",
		"100,50,", "0,100,", "1001,1002,", "500,250,", "20,10,", "30,5,"},
	{"8", "-1", "1", "0", "1", "-3", "AA000001", "43", "900", "0", "0",
		"3", "0", "3", "0", "0",
		"", "", "", "", "", ""},
	{"9", "1", "1", "0", "0", "12", "BC012345", "44", "2000", "200", "260",
		"1002", "10", "1002", "70", "1",
		"60,", "200,", "1002,", "10,", "60,", "60,"},
}

func newTestDB(t *testing.T) *sqlx.DB {
	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal("Failed to open database:", err)
	}
	// every connection to :memory: is a new database
	db.SetMaxOpenConns(1)

	if err = CreateTable(db, DefaultTable); err != nil {
		t.Fatal("Failed to create table:", err)
	}
	return db
}

func loadTestRecords(t *testing.T) ali.List {
	list := make(ali.List, 0, len(testRows))
	for _, row := range testRows {
		r, err := ali.Load(row)
		if err != nil {
			t.Fatal(err)
		}
		list = append(list, r)
	}
	return list
}

func TestSchema(t *testing.T) {
	s := Schema("foo")
	if !strings.HasPrefix(s, "CREATE TABLE foo (") {
		t.Errorf("unexpected schema: %s", s)
	}
	for _, name := range ali.ColumnNames {
		if !strings.Contains(s, "    "+name+" ") {
			t.Errorf("column %s missing in schema", name)
		}
	}
}

func TestSaveAndLoadWhere(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	list := loadTestRecords(t)
	defer ali.FreeList(&list)

	if err := SaveList(db, DefaultTable, list); err != nil {
		t.Error(err)
		return
	}

	var readTests = []struct {
		Name  string
		Where string
		Args  []interface{}
		IDs   []uint32
	}{
		{Name: "all records", IDs: []uint32{7, 8, 9}},
		{Name: "by accession", Where: "qAcc = ?", Args: []interface{}{"BC012345"}, IDs: []uint32{7, 9}},
		{Name: "ESTs", Where: "isEst = 1", IDs: []uint32{8}},
		{Name: "nothing", Where: "score > ?", Args: []interface{}{10000}},
	}

	for _, tt := range readTests {
		records, err := LoadWhere(db, DefaultTable, tt.Where, tt.Args...)
		if err != nil {
			t.Errorf("%s: %s", tt.Name, err)
			continue
		}
		if len(records) != len(tt.IDs) {
			t.Errorf("%s: expected %d records, returned %d", tt.Name, len(tt.IDs), len(records))
			ali.FreeList(&records)
			continue
		}
		for i, r := range records {
			if r.ID != tt.IDs[i] {
				t.Errorf("%s: expected record %d, returned %d", tt.Name, tt.IDs[i], r.ID)
				continue
			}
			for _, o := range list {
				if o.ID == r.ID && !o.Equal(r) {
					t.Errorf("%s: record changed in database: %s vs %s", tt.Name, o, r)
				}
			}
		}
		ali.FreeList(&records)
	}
}

func TestReaderErrors(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	if _, err := NewReader(db, "bar", ""); err == nil {
		t.Errorf("error expected for a missing table")
	}

	if _, err := NewReader(db, "foo; DROP TABLE mrnaAli", ""); !errors.Is(err, ErrInvalidTableName) {
		t.Errorf("expected %s, returned %v", ErrInvalidTableName, err)
	}

	// a row violating the length invariant
	_, err := db.Exec(`INSERT INTO mrnaAli VALUES (1, 1, 1, 0, 0, 0, 'X1', 1, 10, 0, 10,
		1, 0, 1, 10, 2, '10,', '0,', '1,', '0,', '10,', '10,')`)
	if err != nil {
		t.Fatal("Failed insert:", err)
	}

	rdr, err := NewReader(db, DefaultTable, "")
	if err != nil {
		t.Error(err)
		return
	}
	defer rdr.Close()

	var n int
	for rdr.Next() {
		n++
	}
	if n != 0 {
		t.Errorf("no records expected, %d returned", n)
	}
	if !errors.Is(rdr.Err(), ali.ErrLengthMismatch) {
		t.Errorf("expected %s, returned %v", ali.ErrLengthMismatch, rdr.Err())
	}
}

func TestSaveDuplicate(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	list := loadTestRecords(t)
	defer ali.FreeList(&list)

	if err := Save(db, DefaultTable, list[0]); err != nil {
		t.Error(err)
		return
	}
	if err := Save(db, DefaultTable, list[0]); err == nil {
		t.Errorf("error expected for a duplicated id")
	}

	// the failed transaction leaves nothing behind
	if err := SaveList(db, DefaultTable, list); err == nil {
		t.Errorf("error expected for a duplicated id")
	}
	records, err := LoadWhere(db, DefaultTable, "")
	if err != nil {
		t.Error(err)
		return
	}
	if len(records) != 1 {
		t.Errorf("expected 1 record, returned %d", len(records))
	}
	ali.FreeList(&records)
}

func TestSaveInTransaction(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	list := loadTestRecords(t)
	defer ali.FreeList(&list)

	tx, err := db.Beginx()
	if err != nil {
		t.Error(err)
		return
	}
	for _, r := range list[:2] {
		if err = Save(tx, DefaultTable, r); err != nil {
			tx.Rollback()
			t.Error(err)
			return
		}
	}
	if err = tx.Commit(); err != nil {
		t.Error(err)
		return
	}

	records, err := LoadWhere(db, DefaultTable, "")
	if err != nil {
		t.Error(err)
		return
	}
	defer ali.FreeList(&records)
	if len(records) != 2 {
		t.Errorf("expected 2 records, returned %d", len(records))
	}
	for i, r := range records {
		if !r.Equal(list[i]) {
			t.Errorf("#%d: expected %s, returned %s", i, list[i], r)
		}
	}
}

func TestSaveInvalidRecord(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	list := loadTestRecords(t)
	defer ali.FreeList(&list)

	list[0].TBlockBacs = list[0].TBlockBacs[:1]
	if err := Save(db, DefaultTable, list[0]); !errors.Is(err, ali.ErrLengthMismatch) {
		t.Errorf("expected %s, returned %v", ali.ErrLengthMismatch, err)
	}

	records, err := LoadWhere(db, DefaultTable, "")
	if err != nil {
		t.Error(err)
		return
	}
	if len(records) != 0 {
		t.Errorf("no records expected, %d returned", len(records))
	}
	ali.FreeList(&records)
}
