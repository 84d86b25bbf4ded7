package tputil

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/tracetriage/tracetriage/internal/errorutil"
)

// DB queries a trace that was exported to a SQLite database
// (trace_processor's export format). It exposes the same logical tables as
// the HTTP interface: trace_bounds, process, thread and slice.
type DB struct {
	db *sql.DB
}

// OpenDB opens an exported trace database read-only. Any failure here,
// including a missing file, is the fatal trace-open error class.
func OpenDB(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", errorutil.ErrTraceOpen, err)
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errorutil.ErrTraceOpen, err)
	}
	// sql.Open does not touch the file. Force a read so an unreadable or
	// non-database file fails now rather than on the first query.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", errorutil.ErrTraceOpen, err)
	}
	if _, err := db.Exec("SELECT count(*) FROM sqlite_master"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", errorutil.ErrTraceOpen, err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) RunQuery(ctx context.Context, statement string) ([]Row, error) {
	rows, err := d.db.QueryContext(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []Row
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
