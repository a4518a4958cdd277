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
	"fmt"
	"sync"
	"testing"
)

// memSource is an in-memory RasterSource.
type memSource struct {
	grid  *ReferenceGrid
	bands [][]int32
}

func (m *memSource) Grid() *ReferenceGrid { return m.grid }
func (m *memSource) Bands() int           { return len(m.bands) }
func (m *memSource) Close() error         { return nil }

func (m *memSource) ReadBand(band int) ([]int32, error) {
	o := make([]int32, len(m.bands[band-1]))
	copy(o, m.bands[band-1])
	return o, nil
}

// memFiles maps paths to in-memory rasters.
type memFiles struct {
	sync.Mutex
	files map[string]*memSource
	opens int
}

func newMemFiles() *memFiles { return &memFiles{files: make(map[string]*memSource)} }

func (f *memFiles) add(path string, grid *ReferenceGrid, bands ...[]int32) {
	f.Lock()
	defer f.Unlock()
	f.files[path] = &memSource{grid: grid, bands: bands}
}

func (f *memFiles) open(path string) (RasterSource, error) {
	f.Lock()
	defer f.Unlock()
	f.opens++
	s, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	return s, nil
}

// testGrid returns a georeferenced 4x4 grid with unit cells whose upper
// left corner is at (0, 4).
func testGrid(t *testing.T) *ReferenceGrid {
	g, err := NewReferenceGrid(4, 4, [6]float64{0, 1, 0, 4, 0, -1}, "")
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// quadrants returns a partition of the 4x4 test grid with the north west
// quadrant as region 1 and the south east quadrant as region 2.
func quadrants(t *testing.T) *RasterPartition {
	g := testGrid(t)
	p, err := NewRasterPartition(&Raster{Grid: g, Data: []int32{
		1, 1, 0, 0,
		1, 1, 0, 0,
		0, 0, 2, 2,
		0, 0, 2, 2,
	}}, g, Background, map[int32]string{1: "NW", 2: "SE"})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// checkPartition checks that every region of p is non-empty, that its ID
// is in allowed and that no cell belongs to two regions.
func checkPartition(t *testing.T, p Partition, allowed ...int32) {
	t.Helper()
	ok := make(map[int32]bool)
	for _, id := range allowed {
		ok[id] = true
	}
	owner := make(map[int]int32)
	for _, m := range p.Regions() {
		if !ok[m.ID] {
			t.Errorf("region %d is not one of %v", m.ID, allowed)
		}
		if m.Empty() {
			t.Errorf("region %d is empty", m.ID)
		}
		for _, i := range m.Cells() {
			if other, dup := owner[i]; dup {
				t.Errorf("cell %d belongs to regions %d and %d", i, other, m.ID)
			}
			owner[i] = m.ID
		}
		name, found := p.NameOf(m.ID)
		if !found || name != m.Name {
			t.Errorf("region %d: NameOf = %q, %v; want %q", m.ID, name, found, m.Name)
		}
	}
}
