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

import "fmt"

// Counts maps category values to pixel counts.
type Counts map[int32]int

// RegionCounts maps region names to the category counts in each region.
type RegionCounts map[string]Counts

// ValueFilter reports whether a raster value should be counted.
type ValueFilter func(v int32) bool

// CountByRegion counts the distinct values of r within each region of p.
// Only values for which keep returns true are counted; a nil keep counts
// every value. Every region of p appears in the result, with an empty
// Counts if nothing was counted.
func CountByRegion(r *Raster, p Partition, keep ValueFilter) (RegionCounts, error) {
	if err := p.Grid().Check(r.Grid); err != nil {
		return nil, err
	}
	if len(r.Data) != p.Grid().Len() {
		return nil, fmt.Errorf("alfpp: raster has %d values; grid has %d cells", len(r.Data), p.Grid().Len())
	}
	o := make(RegionCounts, len(p.Regions()))
	for _, m := range p.Regions() {
		c := make(Counts)
		for _, i := range m.Cells() {
			v := r.Data[i]
			if keep != nil && !keep(v) {
				continue
			}
			c[v]++
		}
		o[m.Name] = c
	}
	return o, nil
}

// FireValues keeps fire identifiers: positive values other than the
// background.
func (c Conventions) FireValues(v int32) bool {
	return v > 0 && v != c.Background
}

// SeverityValues keeps burn severity classes: positive values other than
// the background and the unclassified sentinel.
func (c Conventions) SeverityValues(v int32) bool {
	return v > 0 && v != c.Background && v != c.SeverityUnclassified
}

// VegValues keeps every vegetation code inside the model domain.
func (c Conventions) VegValues(v int32) bool {
	return v != c.VegNoData
}
