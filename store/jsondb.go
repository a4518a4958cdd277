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
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/alfpp"
	"github.com/spatialmodel/alfpp/cloud"
)

// defaultTable is the table that holds records in a JSON document
// database.
const defaultTable = "_default"

// JSONDB is a document database kept as a single JSON file in the layout
// used by TinyDB: {"_default": {"1": {...}, "2": {...}}}. The file is
// rewritten after every insert. The path may be a blob URL, in which case
// the file is uploaded with retries.
type JSONDB struct {
	path string

	// MaxRetries is the number of times a failed blob upload is retried.
	MaxRetries uint64

	log logrus.FieldLogger

	mu      sync.Mutex
	records []*alfpp.MetricRecord
}

// OpenJSONDB opens the database at path, creating it if needed. If
// truncate is false, existing records are loaded; a blob database must
// already exist in that case.
func OpenJSONDB(ctx context.Context, path string, truncate bool, log logrus.FieldLogger) (*JSONDB, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	db := &JSONDB{path: path, MaxRetries: 5, log: log}
	if !truncate {
		var b []byte
		var err error
		if cloud.IsBlob(path) {
			b, err = cloud.ReadBlob(ctx, path)
		} else {
			b, err = ioutil.ReadFile(path)
			if os.IsNotExist(err) {
				b, err = nil, nil
			}
		}
		if err != nil {
			return nil, fmt.Errorf("store: reading %s: %v", path, err)
		}
		if db.records, err = decodeTinyDB(b); err != nil {
			return nil, fmt.Errorf("store: %s: %v", path, err)
		}
	}
	if err := db.flush(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// Insert appends r to the database.
func (db *JSONDB) Insert(ctx context.Context, r *alfpp.MetricRecord) error {
	return db.InsertMany(ctx, []*alfpp.MetricRecord{r})
}

// InsertMany appends rs to the database and rewrites the file.
func (db *JSONDB) InsertMany(ctx context.Context, rs []*alfpp.MetricRecord) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.records = append(db.records, rs...)
	if err := db.flushLocked(ctx); err != nil {
		db.records = db.records[:len(db.records)-len(rs)]
		return err
	}
	return nil
}

// All returns the records in document ID order.
func (db *JSONDB) All(_ context.Context) ([]*alfpp.MetricRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]*alfpp.MetricRecord(nil), db.records...), nil
}

// Close does nothing; the file is written on every insert.
func (db *JSONDB) Close() error { return nil }

func (db *JSONDB) flush(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.flushLocked(ctx)
}

func (db *JSONDB) flushLocked(ctx context.Context) error {
	b, err := encodeTinyDB(db.records)
	if err != nil {
		return fmt.Errorf("store: encoding %s: %v", db.path, err)
	}
	if cloud.IsBlob(db.path) {
		return cloud.WriteBlob(ctx, db.path, b, db.MaxRetries, db.log)
	}
	return writeFileAtomic(db.path, b)
}

// writeFileAtomic replaces the file at path with b.
func writeFileAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("store: %v", err)
	}
	f, err := ioutil.TempFile(dir, filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("store: %v", err)
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("store: writing %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("store: writing %s: %v", path, err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("store: writing %s: %v", path, err)
	}
	return nil
}

func encodeTinyDB(records []*alfpp.MetricRecord) ([]byte, error) {
	table := make(map[string]*alfpp.MetricRecord, len(records))
	for i, r := range records {
		table[strconv.Itoa(i+1)] = r
	}
	return json.Marshal(map[string]map[string]*alfpp.MetricRecord{defaultTable: table})
}

func decodeTinyDB(b []byte) ([]*alfpp.MetricRecord, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var doc map[string]map[string]*alfpp.MetricRecord
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	table := doc[defaultTable]
	ids := make([]int, 0, len(table))
	for k := range table {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("invalid document ID %q", k)
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	o := make([]*alfpp.MetricRecord, len(ids))
	for i, id := range ids {
		o[i] = table[strconv.Itoa(id)]
	}
	return o, nil
}
