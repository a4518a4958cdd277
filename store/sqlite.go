/*
Copyright © 2019 the alfpp authors.
This file is part of alfpp.

alfpp is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

alfpp is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with alfpp.  If not, see <http://www.gnu.org/licenses/>.
*/

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/spatialmodel/alfpp"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	replicate TEXT NOT NULL,
	year INTEGER NOT NULL,
	doc TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS records_replicate_year ON records (replicate, year);`

// SQLite keeps records in a SQLite database, one row per record with the
// record itself stored as a JSON document.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path. If truncate is true,
// existing records are removed.
func OpenSQLite(ctx context.Context, path string, truncate bool) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %v", path, err)
	}
	// Writes are batched by the caller, so one connection is enough.
	db.SetMaxOpenConns(1)
	for _, stmt := range []string{"PRAGMA busy_timeout=5000", "PRAGMA journal_mode=WAL", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: initializing %s: %v", path, err)
		}
	}
	if truncate {
		if _, err := db.ExecContext(ctx, "DELETE FROM records"); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: truncating %s: %v", path, err)
		}
	}
	return &SQLite{db: db}, nil
}

// Insert adds r to the database.
func (s *SQLite) Insert(ctx context.Context, r *alfpp.MetricRecord) error {
	return s.InsertMany(ctx, []*alfpp.MetricRecord{r})
}

// InsertMany adds rs to the database in a single transaction.
func (s *SQLite) InsertMany(ctx context.Context, rs []*alfpp.MetricRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: %v", err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO records (replicate, year, doc) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("store: %v", err)
	}
	defer stmt.Close()
	for _, r := range rs {
		doc, err := json.Marshal(r)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("store: encoding %v: %v", r, err)
		}
		if _, err := stmt.ExecContext(ctx, r.Replicate, r.Year, string(doc)); err != nil {
			tx.Rollback()
			return fmt.Errorf("store: inserting %v: %v", r, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: %v", err)
	}
	return nil
}

// All returns the records in insertion order.
func (s *SQLite) All(ctx context.Context) ([]*alfpp.MetricRecord, error) {
	return s.query(ctx, "SELECT doc FROM records ORDER BY id")
}

// Replicate returns the records of one replicate in year order.
func (s *SQLite) Replicate(ctx context.Context, replicate string) ([]*alfpp.MetricRecord, error) {
	return s.query(ctx, "SELECT doc FROM records WHERE replicate = ? ORDER BY year, id", replicate)
}

func (s *SQLite) query(ctx context.Context, q string, args ...interface{}) ([]*alfpp.MetricRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: %v", err)
	}
	defer rows.Close()
	var o []*alfpp.MetricRecord
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("store: %v", err)
		}
		r := new(alfpp.MetricRecord)
		if err := json.Unmarshal([]byte(doc), r); err != nil {
			return nil, fmt.Errorf("store: decoding record: %v", err)
		}
		o = append(o, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: %v", err)
	}
	return o, nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }
