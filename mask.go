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

import "sort"

// RegionMask is one named region of a Partition. Membership is stored as
// the sorted row-major indices of the cells the region owns.
type RegionMask struct {
	ID   int32
	Name string

	grid       *ReferenceGrid
	background int32
	cells      []int
}

func newRegionMask(id int32, name string, grid *ReferenceGrid, background int32, cells []int) *RegionMask {
	if !sort.IntsAreSorted(cells) {
		sort.Ints(cells)
	}
	return &RegionMask{ID: id, Name: name, grid: grid, background: background, cells: cells}
}

// Len returns the number of cells in the region.
func (m *RegionMask) Len() int { return len(m.cells) }

// Empty returns whether the region contains no cells.
func (m *RegionMask) Empty() bool { return len(m.cells) == 0 }

// Cells returns the sorted row-major indices of the cells in the region.
// The returned slice must not be modified.
func (m *RegionMask) Cells() []int { return m.cells }

// Contains returns whether the cell with row-major index i is in the region.
func (m *RegionMask) Contains(i int) bool {
	j := sort.SearchInts(m.cells, i)
	return j < len(m.cells) && m.cells[j] == i
}

// At returns the region ID if the cell at row, col belongs to the
// region and the partition background value otherwise.
func (m *RegionMask) At(row, col int) int32 {
	if m.Contains(m.grid.Index(row, col)) {
		return m.ID
	}
	return m.background
}

// Indicator returns a dense row-major grid holding the region ID in
// member cells and the background value everywhere else.
func (m *RegionMask) Indicator() []int32 {
	o := make([]int32, m.grid.Len())
	if m.background != 0 {
		for i := range o {
			o[i] = m.background
		}
	}
	for _, i := range m.cells {
		o[i] = m.ID
	}
	return o
}
