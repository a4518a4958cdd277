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

package alfpp

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
)

func rect(x0, y0, x1, y1 float64) geom.Polygon {
	return geom.Polygon{{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: y0},
	}}
}

// writeRegions writes a shapefile with an integer "ID" and string "NAME"
// field and returns its path.
func writeRegions(t *testing.T, polys []geom.Polygon, ids []int, names []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "regions.shp")
	e, err := shp.NewEncoderFromFields(path, goshp.POLYGON,
		goshp.NumberField("ID", 10), goshp.StringField("NAME", 20))
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range polys {
		if err := e.EncodeFields(p, ids[i], names[i]); err != nil {
			t.Fatal(err)
		}
	}
	e.Close()
	return path
}

func TestVectorPartition(t *testing.T) {
	g := testGrid(t)
	file := writeRegions(t,
		[]geom.Polygon{rect(0, 0, 2, 2), rect(0, 2, 2, 4), rect(1.6, 0, 4, 4), rect(10, 10, 11, 11)},
		[]int{1, 1, 2, 3},
		[]string{"west", "west", "east", "nowhere"})

	west := []int{0, 1, 4, 5, 8, 9, 12, 13}
	east := []int{2, 3, 6, 7, 10, 11, 14, 15}

	for _, test := range []struct {
		rule      BurnRule
		contested int
	}{
		{rule: CellCenter, contested: 0},
		{rule: AnyOverlap, contested: 4},
	} {
		t.Run(test.rule.String(), func(t *testing.T) {
			p, err := NewVectorPartition(VectorConfig{
				File: file, IDField: "ID", NameField: "NAME", Rule: test.rule,
			}, g, nil)
			if err != nil {
				t.Fatal(err)
			}
			checkPartition(t, p, 1, 2, 3)
			if len(p.Regions()) != 2 {
				t.Fatalf("have %d regions; want 2 (region 3 is outside the grid)", len(p.Regions()))
			}
			if have := p.Regions()[0].Cells(); !reflect.DeepEqual(have, west) {
				t.Errorf("west: %v != %v", have, west)
			}
			if have := p.Regions()[1].Cells(); !reflect.DeepEqual(have, east) {
				t.Errorf("east: %v != %v", have, east)
			}
			if _, ok := p.NameOf(3); ok {
				t.Error("dropped region should not have a name")
			}
			if name, _ := p.NameOf(2); name != "east" {
				t.Errorf("name = %q", name)
			}
			if p.Contested != test.contested {
				t.Errorf("contested = %d; want %d", p.Contested, test.contested)
			}
		})
	}
}

func TestVectorPartitionBackgroundID(t *testing.T) {
	g := testGrid(t)
	file := writeRegions(t,
		[]geom.Polygon{rect(0, 0, 4, 4), rect(2, 0, 4, 4)},
		[]int{0, 2},
		[]string{"everywhere", "east"})
	p, err := NewVectorPartition(VectorConfig{
		File: file, IDField: "ID", NameField: "NAME", Rule: AnyOverlap,
	}, g, nil)
	if err != nil {
		t.Fatal(err)
	}
	checkPartition(t, p, 2)
	if len(p.Regions()) != 1 {
		t.Fatalf("have %d regions; want 1", len(p.Regions()))
	}
	if _, ok := p.NameOf(0); ok {
		t.Error("background region should not have a name")
	}
	if p.Contested != 0 {
		t.Errorf("contested = %d; want 0", p.Contested)
	}
	east := []int{2, 3, 6, 7, 10, 11, 14, 15}
	m := p.Regions()[0]
	if have := m.Cells(); !reflect.DeepEqual(have, east) {
		t.Errorf("%v != %v", have, east)
	}
	for i, v := range m.Indicator() {
		if (v != 0) != m.Contains(i) {
			t.Errorf("cell %d: indicator %d, member %v", i, v, m.Contains(i))
		}
	}

	t.Run("only background", func(t *testing.T) {
		bg := writeRegions(t, []geom.Polygon{rect(0, 0, 4, 4)}, []int{0}, []string{"everywhere"})
		_, err := NewVectorPartition(VectorConfig{File: bg, IDField: "ID", NameField: "NAME"}, g, nil)
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("want ConfigError, have %v", err)
		}
	})
}

func TestVectorPartitionErrors(t *testing.T) {
	g := testGrid(t)
	file := writeRegions(t, []geom.Polygon{rect(0, 0, 4, 4)}, []int{1}, []string{"all"})
	var cfgErr *ConfigError

	t.Run("missing field", func(t *testing.T) {
		_, err := NewVectorPartition(VectorConfig{File: file, IDField: "GROUP", NameField: "NAME"}, g, nil)
		if !errors.As(err, &cfgErr) {
			t.Errorf("want ConfigError, have %v", err)
		}
	})
	t.Run("no georeferencing", func(t *testing.T) {
		bare, _ := NewReferenceGrid(4, 4, [6]float64{}, "")
		_, err := NewVectorPartition(VectorConfig{File: file, IDField: "ID", NameField: "NAME"}, bare, nil)
		if !errors.As(err, &cfgErr) {
			t.Errorf("want ConfigError, have %v", err)
		}
	})
	t.Run("outside grid", func(t *testing.T) {
		far := writeRegions(t, []geom.Polygon{rect(100, 100, 101, 101)}, []int{1}, []string{"far"})
		_, err := NewVectorPartition(VectorConfig{File: far, IDField: "ID", NameField: "NAME"}, g, nil)
		if !errors.As(err, &cfgErr) {
			t.Errorf("want ConfigError, have %v", err)
		}
	})
}

func TestParseBurnRule(t *testing.T) {
	for s, want := range map[string]BurnRule{"": CellCenter, "center": CellCenter, "Overlap": AnyOverlap} {
		have, err := ParseBurnRule(s)
		if err != nil || have != want {
			t.Errorf("%q: %v, %v; want %v", s, have, err, want)
		}
	}
	if _, err := ParseBurnRule("touch"); err == nil {
		t.Error("want error for unknown rule")
	}
}
