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

// Package store holds MetricRecords produced by alfpp runs.
package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/alfpp"
	"github.com/spatialmodel/alfpp/cloud"
)

// Store is an alfpp.Store that must be closed after use.
type Store interface {
	alfpp.Store
	Close() error
}

// Open opens the store at path. Paths ending in .sqlite or .db are SQLite
// databases; ":memory:" is an in-process store; anything else, including
// blob URLs, is a JSON document database. If truncate is true, existing
// records are removed.
func Open(ctx context.Context, path string, truncate bool, log logrus.FieldLogger) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sqlite", ".db":
		if cloud.IsBlob(path) {
			return nil, fmt.Errorf("store: SQLite databases must be local files, not %s", path)
		}
		return OpenSQLite(ctx, path, truncate)
	}
	if path == ":memory:" {
		return NewMemory(), nil
	}
	return OpenJSONDB(ctx, path, truncate, log)
}

// MetricSeries arranges the named metric of records by replicate and
// year. Records without the metric are skipped.
func MetricSeries(records []*alfpp.MetricRecord, metric string) (map[string]map[int]interface{}, error) {
	known := false
	for _, m := range alfpp.Metrics {
		if m == metric {
			known = true
		}
	}
	if !known {
		return nil, fmt.Errorf("store: unknown metric %q; valid metrics are %s", metric, strings.Join(alfpp.Metrics, ", "))
	}
	o := make(map[string]map[int]interface{})
	for _, r := range records {
		v, ok := r.Metric(metric)
		if !ok {
			continue
		}
		rep, ok := o[r.Replicate]
		if !ok {
			rep = make(map[int]interface{})
			o[r.Replicate] = rep
		}
		rep[r.Year] = v
	}
	return o, nil
}
