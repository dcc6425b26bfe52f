package datarecording

import (
	"context"
	"database/sql"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A Query selects rows of one table. Where and OrderBy are SQL fragments
// without their keywords, for example "Port = ?" and "Seq DESC".
type Query struct {
	Where   string
	Args    []any
	OrderBy string

	// Limit caps the number of rows. Zero means no limit. Offset is only
	// honored together with Limit.
	Limit  int
	Offset int
}

// filter returns the part of the statement that follows the table name and
// restricts the rows, without ordering or paging.
func (q Query) filter() string {
	if q.Where == "" {
		return ""
	}

	return " WHERE " + q.Where
}

func (q Query) suffix() string {
	var b strings.Builder

	b.WriteString(q.filter())

	if q.OrderBy != "" {
		b.WriteString(" ORDER BY " + q.OrderBy)
	}

	if q.Limit > 0 {
		b.WriteString(" LIMIT " + strconv.Itoa(q.Limit))

		if q.Offset > 0 {
			b.WriteString(" OFFSET " + strconv.Itoa(q.Offset))
		}
	}

	return b.String()
}

// DataReader reads back the tables written by a DataRecorder.
type DataReader interface {
	// MapTable tells the reader which struct the rows of a table decode
	// into. A table must be mapped before it is selected from.
	MapTable(tableName string, sampleEntry any)

	// ListTables returns the tables that exist in the database.
	ListTables(ctx context.Context) ([]string, error)

	// Select returns pointers to the mapped struct, one per matching row.
	Select(ctx context.Context, tableName string, q Query) ([]any, error)

	// Count returns the number of rows matching q, ignoring its ordering
	// and paging.
	Count(ctx context.Context, tableName string, q Query) (int, error)

	// Close closes the reader
	Close() error
}

type mapping struct {
	structType reflect.Type
	columns    []string
}

type sqliteReader struct {
	*sql.DB

	mappings map[string]mapping
}

// NewReader opens a database file for reading.
func NewReader(dbFilename string) (DataReader, error) {
	db, err := sql.Open("sqlite3", dbFilename)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", dbFilename)
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB creates a reader on an open database.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		DB:       db,
		mappings: make(map[string]mapping),
	}
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	columns, err := columnsOf(sampleEntry)
	if err != nil {
		panic(err)
	}

	r.mappings[tableName] = mapping{
		structType: reflect.TypeOf(sampleEntry),
		columns:    columns,
	}
}

func (r *sqliteReader) ListTables(ctx context.Context) ([]string, error) {
	rows, err := r.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table'")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		tables = append(tables, name)
	}

	sort.Strings(tables)

	return tables, rows.Err()
}

func (r *sqliteReader) lookup(tableName string) (mapping, error) {
	m, ok := r.mappings[tableName]
	if !ok {
		return mapping{}, errors.Errorf("table %s is not mapped", tableName)
	}

	return m, nil
}

func (r *sqliteReader) Select(
	ctx context.Context,
	tableName string,
	q Query,
) ([]any, error) {
	m, err := r.lookup(tableName)
	if err != nil {
		return nil, err
	}

	stmt := "SELECT " + strings.Join(m.columns, ", ") +
		" FROM " + tableName + q.suffix()

	rows, err := r.QueryContext(ctx, stmt, q.Args...)
	if err != nil {
		return nil, errors.Wrapf(err, "selecting from %s", tableName)
	}
	defer rows.Close()

	var results []any

	for rows.Next() {
		ptr := reflect.New(m.structType)
		targets := make([]any, len(m.columns))

		for i := range m.columns {
			targets[i] = ptr.Elem().Field(i).Addr().Interface()
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, errors.Wrapf(err, "scanning %s", tableName)
		}

		results = append(results, ptr.Interface())
	}

	return results, rows.Err()
}

func (r *sqliteReader) Count(
	ctx context.Context,
	tableName string,
	q Query,
) (int, error) {
	var n int

	stmt := "SELECT COUNT(*) FROM " + tableName + q.filter()

	err := r.QueryRowContext(ctx, stmt, q.Args...).Scan(&n)
	if err != nil {
		return 0, errors.Wrapf(err, "counting %s", tableName)
	}

	return n, nil
}

func (r *sqliteReader) Close() error {
	return r.DB.Close()
}
