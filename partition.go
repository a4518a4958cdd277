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
	"fmt"
	"sort"
	"strconv"
)

// Partition divides a ReferenceGrid into mutually exclusive, non-empty,
// named regions.
type Partition interface {
	// Grid returns the grid the regions are defined on.
	Grid() *ReferenceGrid

	// Regions returns the regions in ascending ID order.
	Regions() []*RegionMask

	// NameOf returns the name of the region with the given ID.
	NameOf(id int32) (string, bool)
}

// regionSet holds the regions shared by all Partition implementations.
type regionSet struct {
	grid    *ReferenceGrid
	regions []*RegionMask
	names   map[int32]string
}

func (s *regionSet) Grid() *ReferenceGrid   { return s.grid }
func (s *regionSet) Regions() []*RegionMask { return s.regions }

func (s *regionSet) NameOf(id int32) (string, bool) {
	n, ok := s.names[id]
	return n, ok
}

// Names returns a copy of the ID to name mapping of the regions.
func (s *regionSet) Names() map[int32]string {
	o := make(map[int32]string, len(s.names))
	for k, v := range s.names {
		o[k] = v
	}
	return o
}

// newRegionSet creates masks from the cells claimed by each region ID.
// Regions without cells are dropped and their names removed. input names
// the source of the regions for error reporting.
func newRegionSet(input string, grid *ReferenceGrid, background int32, cells map[int32][]int, names map[int32]string) (*regionSet, error) {
	ids := make([]int32, 0, len(cells))
	for id, c := range cells {
		if len(c) > 0 && id != background {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, &ConfigError{Input: input, Err: errors.New("no non-empty regions overlap the reference grid")}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	s := &regionSet{grid: grid, names: make(map[int32]string, len(ids))}
	seen := make(map[string]int32, len(ids))
	for _, id := range ids {
		name, ok := names[id]
		if !ok {
			name = strconv.Itoa(int(id))
		}
		if other, dup := seen[name]; dup {
			return nil, &ConfigError{Input: input, Err: fmt.Errorf("regions %d and %d are both named %q", other, id, name)}
		}
		seen[name] = id
		s.names[id] = name
		s.regions = append(s.regions, newRegionMask(id, name, grid, background, cells[id]))
	}
	return s, nil
}

// RasterPartition is a Partition whose regions are the distinct
// non-background values of a classified raster.
type RasterPartition struct {
	*regionSet
	Background int32
}

// NewRasterPartition creates a partition from domains, which must have the
// same shape as ref. Region names are taken from names, falling back to the
// region value formatted as a string.
func NewRasterPartition(domains *Raster, ref *ReferenceGrid, background int32, names map[int32]string) (*RasterPartition, error) {
	if err := ref.Check(domains.Grid); err != nil {
		return nil, &ConfigError{Input: "raster partition", Err: err}
	}
	cells := make(map[int32][]int)
	for i, v := range domains.Data {
		if v == background {
			continue
		}
		cells[v] = append(cells[v], i)
	}
	s, err := newRegionSet("raster partition", ref, background, cells, names)
	if err != nil {
		return nil, err
	}
	return &RasterPartition{regionSet: s, Background: background}, nil
}

// FullDomain is a Partition with a single region covering the study area.
type FullDomain struct {
	*regionSet
}

// NewFullDomain creates a single-region partition on the grid of ref. If
// background is nil, the region covers every cell; otherwise it covers the
// cells of ref whose value differs from *background.
func NewFullDomain(ref *Raster, background *int32) (*FullDomain, error) {
	var cells []int
	if background == nil {
		cells = make([]int, ref.Grid.Len())
		for i := range cells {
			cells[i] = i
		}
	} else {
		for i, v := range ref.Data {
			if v != *background {
				cells = append(cells, i)
			}
		}
	}
	s, err := newRegionSet("full domain", ref.Grid, 0, map[int32][]int{FullDomainID: cells},
		map[int32]string{FullDomainID: FullDomainName})
	if err != nil {
		return nil, err
	}
	return &FullDomain{regionSet: s}, nil
}
