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
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FireMetrics holds the fire statistics of one fire scar raster, keyed by
// region name.
type FireMetrics struct {
	// FireCounts maps each fire identifier to the number of cells it burned.
	FireCounts RegionCounts

	// AllFireSizes lists fire sizes in ascending fire identifier order.
	AllFireSizes map[string][]int

	// AvgFireSize is the mean fire size rounded to 2 decimal places, or 0
	// for regions without fires.
	AvgFireSize map[string]float64

	NumberOfFires   map[string]int
	TotalAreaBurned map[string]int
}

// NewFireMetrics derives fire statistics from per-region fire counts.
func NewFireMetrics(counts RegionCounts) *FireMetrics {
	m := &FireMetrics{
		FireCounts:      counts,
		AllFireSizes:    make(map[string][]int, len(counts)),
		AvgFireSize:     make(map[string]float64, len(counts)),
		NumberOfFires:   make(map[string]int, len(counts)),
		TotalAreaBurned: make(map[string]int, len(counts)),
	}
	for region, c := range counts {
		ids := sortedValues(c)
		sizes := make([]int, len(ids))
		fsizes := make([]float64, len(ids))
		total := 0
		for i, id := range ids {
			sizes[i] = c[id]
			fsizes[i] = float64(c[id])
			total += c[id]
		}
		m.AllFireSizes[region] = sizes
		m.NumberOfFires[region] = len(ids)
		m.TotalAreaBurned[region] = total
		if len(fsizes) == 0 {
			m.AvgFireSize[region] = 0
			continue
		}
		m.AvgFireSize[region] = floats.Round(stat.Mean(fsizes, nil), 2)
	}
	return m
}

// VegMetrics holds vegetation class counts keyed by region and class name.
type VegMetrics struct {
	VegCounts map[string]map[string]int

	// Dropped holds the number of cells per vegetation code that has no
	// entry in the class name lookup.
	Dropped map[int32]int
}

// NewVegMetrics names the vegetation codes in counts using names. Codes
// missing from names are left out of VegCounts and tallied in Dropped.
func NewVegMetrics(counts RegionCounts, names map[int32]string) *VegMetrics {
	m := &VegMetrics{
		VegCounts: make(map[string]map[string]int, len(counts)),
		Dropped:   make(map[int32]int),
	}
	for region, c := range counts {
		named := make(map[string]int, len(c))
		for code, n := range c {
			name, ok := names[code]
			if !ok {
				m.Dropped[code] += n
				continue
			}
			named[name] += n
		}
		m.VegCounts[region] = named
	}
	return m
}

// DroppedCells returns the total number of cells left out of VegCounts.
func (m *VegMetrics) DroppedCells() int {
	n := 0
	for _, c := range m.Dropped {
		n += c
	}
	return n
}

// SeverityMetrics holds burn severity class counts keyed by region.
type SeverityMetrics struct {
	SeverityCounts RegionCounts
}

// NewSeverityMetrics wraps per-region severity counts.
func NewSeverityMetrics(counts RegionCounts) *SeverityMetrics {
	return &SeverityMetrics{SeverityCounts: counts}
}

func sortedValues(c Counts) []int32 {
	o := make([]int32, 0, len(c))
	for v := range c {
		o = append(o, v)
	}
	sort.Slice(o, func(i, j int) bool { return o[i] < o[j] })
	return o
}
