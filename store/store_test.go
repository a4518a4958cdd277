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
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/spatialmodel/alfpp"
	"github.com/stretchr/testify/require"
)

func testRecords() []*alfpp.MetricRecord {
	avYear := 1949
	return []*alfpp.MetricRecord{
		{
			Replicate:       "0",
			Year:            1950,
			AvYear:          &avYear,
			FireCounts:      alfpp.RegionCounts{"Boreal": {3: 10, 4: 1}, "Tundra": {}},
			AllFireSizes:    map[string][]int{"Boreal": {10, 1}, "Tundra": {}},
			AvgFireSize:     map[string]float64{"Boreal": 5.5, "Tundra": 0},
			NumberOfFires:   map[string]int{"Boreal": 2, "Tundra": 0},
			TotalAreaBurned: map[string]int{"Boreal": 11, "Tundra": 0},
			VegCounts:       map[string]map[string]int{"Boreal": {"Black Spruce": 40}, "Tundra": {"Tundra": 12}},
			SeverityCounts:  alfpp.RegionCounts{"Boreal": {1: 4, 3: 7}, "Tundra": {}},
		},
		{
			Replicate:       alfpp.ObservedReplicate,
			Year:            1950,
			FireCounts:      alfpp.RegionCounts{"Boreal": {1: 2}},
			AllFireSizes:    map[string][]int{"Boreal": {2}},
			AvgFireSize:     map[string]float64{"Boreal": 2},
			NumberOfFires:   map[string]int{"Boreal": 1},
			TotalAreaBurned: map[string]int{"Boreal": 2},
		},
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for _, path := range []string{
		":memory:",
		filepath.Join(dir, "alfpp.json"),
		filepath.Join(dir, "alfpp.sqlite"),
		"file://" + filepath.ToSlash(filepath.Join(dir, "blob", "alfpp.json")),
	} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := Open(ctx, path, true, nil)
			require.NoError(t, err)
			defer s.Close()

			want := testRecords()
			require.NoError(t, s.InsertMany(ctx, want[:1]))
			require.NoError(t, s.Insert(ctx, want[1]))
			have, err := s.All(ctx)
			require.NoError(t, err)
			require.Equal(t, want, have)
		})
	}
}

func TestJSONDBReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "alfpp.json")
	db, err := OpenJSONDB(ctx, path, true, nil)
	require.NoError(t, err)
	records := testRecords()
	require.NoError(t, db.InsertMany(ctx, records))

	b, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), `"_default":{"1":{"replicate":"0","year":1950,"av_year":1949`)

	db, err = OpenJSONDB(ctx, path, false, nil)
	require.NoError(t, err)
	have, err := db.All(ctx)
	require.NoError(t, err)
	require.Equal(t, records, have)

	db, err = OpenJSONDB(ctx, path, true, nil)
	require.NoError(t, err)
	have, err = db.All(ctx)
	require.NoError(t, err)
	require.Empty(t, have)
}

func TestSQLiteReplicate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "alfpp.db")
	s, err := OpenSQLite(ctx, path, false)
	require.NoError(t, err)
	records := testRecords()
	require.NoError(t, s.InsertMany(ctx, records))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path, false)
	require.NoError(t, err)
	defer s.Close()
	have, err := s.Replicate(ctx, alfpp.ObservedReplicate)
	require.NoError(t, err)
	require.Equal(t, records[1:], have)
}

func TestMetricSeries(t *testing.T) {
	series, err := MetricSeries(testRecords(), alfpp.MetricVegCounts)
	require.NoError(t, err)
	require.Equal(t, map[string]map[int]interface{}{
		"0": {1950: map[string]map[string]int{"Boreal": {"Black Spruce": 40}, "Tundra": {"Tundra": 12}}},
	}, series)

	series, err = MetricSeries(testRecords(), alfpp.MetricTotalAreaBurned)
	require.NoError(t, err)
	require.Len(t, series, 2)
	require.Equal(t, map[string]int{"Boreal": 2}, series[alfpp.ObservedReplicate][1950])

	_, err = MetricSeries(testRecords(), "flammability")
	require.Error(t, err)
}
