package gormstore

import (
	"database/sql"
)

// rowsIterator streams single-column file id results. It owns its *sql.Rows, and
// therefore a pooled connection, until exhausted or closed.
type rowsIterator struct {
	rows    *sql.Rows
	current string
	err     error
	closed  bool
}

func (it *rowsIterator) Next() bool {
	if it.closed {
		return false
	}
	if !it.rows.Next() {
		it.err = it.rows.Err()
		_ = it.Close()
		return false
	}
	if err := it.rows.Scan(&it.current); err != nil {
		it.err = err
		_ = it.Close()
		return false
	}
	return true
}

func (it *rowsIterator) FileID() string { return it.current }

func (it *rowsIterator) Err() error { return it.err }

func (it *rowsIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	it.current = ""
	return it.rows.Close()
}
