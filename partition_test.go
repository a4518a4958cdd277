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
	"reflect"
	"testing"
)

func TestRasterPartition(t *testing.T) {
	p := quadrants(t)
	checkPartition(t, p, 1, 2)

	var ids []int32
	for _, m := range p.Regions() {
		ids = append(ids, m.ID)
	}
	if want := []int32{1, 2}; !reflect.DeepEqual(ids, want) {
		t.Errorf("%v != %v", ids, want)
	}
	nw := p.Regions()[0]
	if nw.Len() != 4 || nw.At(0, 0) != 1 || nw.At(3, 3) != Background {
		t.Errorf("unexpected NW region: %v", nw.Cells())
	}
	want := []int32{
		1, 1, 0, 0,
		1, 1, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
	}
	if have := nw.Indicator(); !reflect.DeepEqual(have, want) {
		t.Errorf("%v != %v", have, want)
	}
}

func TestRasterPartitionNames(t *testing.T) {
	g := testGrid(t)
	data := make([]int32, g.Len())
	data[0], data[5], data[15] = 3, 7, 3
	p, err := NewRasterPartition(&Raster{Grid: g, Data: data}, g, Background, map[int32]string{7: "seven"})
	if err != nil {
		t.Fatal(err)
	}
	checkPartition(t, p, 3, 7)
	have := p.Names()
	want := map[int32]string{3: "3", 7: "seven"}
	if !reflect.DeepEqual(have, want) {
		t.Errorf("%v != %v", have, want)
	}
}

func TestRasterPartitionErrors(t *testing.T) {
	g := testGrid(t)
	var cfgErr *ConfigError

	t.Run("shape", func(t *testing.T) {
		small, _ := NewReferenceGrid(2, 2, [6]float64{}, "")
		_, err := NewRasterPartition(&Raster{Grid: small, Data: []int32{1, 1, 1, 1}}, g, Background, nil)
		if !errors.As(err, &cfgErr) {
			t.Errorf("want ConfigError, have %v", err)
		}
	})
	t.Run("empty", func(t *testing.T) {
		_, err := NewRasterPartition(&Raster{Grid: g, Data: make([]int32, g.Len())}, g, Background, nil)
		if !errors.As(err, &cfgErr) {
			t.Errorf("want ConfigError, have %v", err)
		}
	})
	t.Run("duplicate names", func(t *testing.T) {
		data := make([]int32, g.Len())
		data[0], data[1] = 1, 2
		_, err := NewRasterPartition(&Raster{Grid: g, Data: data}, g, Background,
			map[int32]string{1: "a", 2: "a"})
		if !errors.As(err, &cfgErr) {
			t.Errorf("want ConfigError, have %v", err)
		}
	})
}

func TestFullDomain(t *testing.T) {
	g := testGrid(t)
	ref := &Raster{Grid: g, Data: []int32{
		255, 1, 1, 1,
		1, 1, 1, 1,
		1, 1, 1, 1,
		1, 1, 1, 255,
	}}

	t.Run("all cells", func(t *testing.T) {
		p, err := NewFullDomain(ref, nil)
		if err != nil {
			t.Fatal(err)
		}
		checkPartition(t, p, FullDomainID)
		if n := p.Regions()[0].Len(); n != 16 {
			t.Errorf("region has %d cells; want 16", n)
		}
		if name, _ := p.NameOf(FullDomainID); name != FullDomainName {
			t.Errorf("name = %q", name)
		}
	})

	t.Run("background", func(t *testing.T) {
		bg := VegNoData
		p, err := NewFullDomain(ref, &bg)
		if err != nil {
			t.Fatal(err)
		}
		checkPartition(t, p, FullDomainID)
		m := p.Regions()[0]
		if m.Len() != 14 || m.Contains(0) || m.Contains(15) {
			t.Errorf("unexpected cells %v", m.Cells())
		}
	})

	t.Run("all background", func(t *testing.T) {
		bg := int32(1)
		all := &Raster{Grid: g, Data: make([]int32, g.Len())}
		for i := range all.Data {
			all.Data[i] = bg
		}
		var cfgErr *ConfigError
		if _, err := NewFullDomain(all, &bg); !errors.As(err, &cfgErr) {
			t.Errorf("want ConfigError, have %v", err)
		}
	})
}
