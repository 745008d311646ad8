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

// Package alidb reads and saves mRNA/genomic alignment records in a
// database table whose columns follow the record fields.
//
//	db, err := sqlx.Open("sqlite3", "mrnaAli.db")
//
//	rdr, err := alidb.NewReader(db, "mrnaAli", "qAcc = ?", "BC012345")
//	for rdr.Next() {
//		r := rdr.Record()
//		r.TabOut(os.Stdout)
//		ali.Free(r)
//	}
//	if rdr.Err() != nil {
//		panic(rdr.Err())
//	}
//	rdr.Close()
package alidb

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/vreuter/mrnaali/mrnaali/ali"
)

// DefaultTable is the conventional table name.
var DefaultTable = "mrnaAli"

// ErrInvalidTableName means the table name is not a plain SQL identifier.
var ErrInvalidTableName = errors.New("alidb: invalid table name")

var reTableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkTable(table string) error {
	if !reTableName.MatchString(table) {
		return errors.Wrapf(ErrInvalidTableName, "%q", table)
	}
	return nil
}

// column types in the row order
var columnTypes = []string{
	"INT UNSIGNED NOT NULL",     // id
	"TINYINT NOT NULL",          // readDir
	"TINYINT NOT NULL",          // orientation
	"TINYINT UNSIGNED NOT NULL", // hasIntrons
	"TINYINT UNSIGNED NOT NULL", // isEst
	"INT NOT NULL",              // score
	"CHAR(12) NOT NULL",         // qAcc
	"INT UNSIGNED NOT NULL",     // qId
	"INT UNSIGNED NOT NULL",     // qTotalSize
	"INT UNSIGNED NOT NULL",     // qStart
	"INT UNSIGNED NOT NULL",     // qEnd
	"INT UNSIGNED NOT NULL",     // tStartBac
	"INT UNSIGNED NOT NULL",     // tStartPos
	"INT UNSIGNED NOT NULL",     // tEndBac
	"INT UNSIGNED NOT NULL",     // tEndPos
	"INT UNSIGNED NOT NULL",     // blockCount
	"LONGBLOB NOT NULL",         // blockSizes
	"LONGBLOB NOT NULL",         // qBlockStarts
	"LONGBLOB NOT NULL",         // tBlockBacs
	"LONGBLOB NOT NULL",         // tBlockStarts
	"LONGBLOB NOT NULL",         // startGoods
	"LONGBLOB NOT NULL",         // endGoods
}

// Schema returns the statement creating a table for records.
func Schema(table string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", table)
	for i, name := range ali.ColumnNames {
		fmt.Fprintf(&b, "    %s %s,\n", name, columnTypes[i])
	}
	b.WriteString("    PRIMARY KEY(id)\n)")
	return b.String()
}

// CreateTable creates a table for records.
func CreateTable(db *sqlx.DB, table string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	_, err := db.Exec(Schema(table))
	return errors.Wrapf(err, "create table %s", table)
}

// Save inserts a record into the table, db could be a *sqlx.DB or a *sqlx.Tx.
// Block lists are stored as in the tab-delimited text.
func Save(db sqlx.Ext, table string, r *ali.MrnaAli) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return errors.Wrapf(err, "save record %d", r.ID)
	}
	fields := r.Fields()
	values := make([]interface{}, len(fields))
	for i, f := range fields {
		values[i] = f
	}

	query, args, err := squirrel.Insert(table).
		Columns(ali.ColumnNames...).
		Values(values...).
		ToSql()
	if err != nil {
		return err
	}
	_, err = db.Exec(db.Rebind(query), args...)
	return errors.Wrapf(err, "save record %d", r.ID)
}

// SaveList inserts all records of a list in one transaction.
func SaveList(db *sqlx.DB, table string, list ali.List) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	for _, r := range list {
		if err = Save(tx, table, r); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Reader reads records from a table. Successive calls to the Next method
// step through the rows. Iteration stops unrecoverably when rows are
// exhausted or at the first error.
type Reader struct {
	rows   *sqlx.Rows
	row    []string
	dest   []interface{}
	record *ali.MrnaAli
	err    error
}

// NewReader runs a query selecting all record columns of the table.
// The optional where clause may contain placeholders ("?") for args.
func NewReader(db *sqlx.DB, table string, where string, args ...interface{}) (*Reader, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	q := squirrel.Select(ali.ColumnNames...).From(table)
	if where != "" {
		q = q.Where(where, args...)
	}
	query, qargs, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.Queryx(db.Rebind(query), qargs...)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", table)
	}

	r := &Reader{
		rows: rows,
		row:  make([]string, ali.NumColumns),
		dest: make([]interface{}, ali.NumColumns),
	}
	for i := range r.row {
		r.dest[i] = &r.row[i]
	}
	return r, nil
}

// Next advances to the next record, which will then be available through
// Record(). It returns false when the iteration stops, either by reaching
// the end of the rows or an error.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	r.record = nil
	if !r.rows.Next() {
		r.err = r.rows.Err()
		return false
	}
	if r.err = r.rows.Scan(r.dest...); r.err != nil {
		return false
	}
	r.record, r.err = ali.Load(r.row)
	return r.err == nil
}

// Record returns the record read by the last call to Next.
// The caller owns the record and should Free it.
func (r *Reader) Record() *ali.MrnaAli { return r.record }

// Err returns the error that stopped the iteration.
func (r *Reader) Err() error { return r.err }

// Close closes the rows. The database is left open.
func (r *Reader) Close() error { return r.rows.Close() }

// LoadWhere returns all records of the table matching the where clause,
// or all records if where is empty.
func LoadWhere(db *sqlx.DB, table string, where string, args ...interface{}) (ali.List, error) {
	rdr, err := NewReader(db, table, where, args...)
	if err != nil {
		return nil, err
	}
	list := make(ali.List, 0, 64)
	for rdr.Next() {
		list = append(list, rdr.Record())
	}
	if err = rdr.Err(); err != nil {
		rdr.Close()
		ali.FreeList(&list)
		return nil, err
	}
	return list, rdr.Close()
}
