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
	"sort"
	"strconv"
)

// MetricRecord is the result of processing one timestep. Metric payloads
// are keyed by region name; payloads that were not computed are nil.
type MetricRecord struct {
	Replicate string `json:"replicate"`
	Year      int    `json:"year"`

	// AvYear is the year of the vegetation layer when it differs from Year.
	AvYear *int `json:"av_year,omitempty"`

	FireCounts      RegionCounts              `json:"fire_counts,omitempty"`
	AllFireSizes    map[string][]int          `json:"all_fire_sizes,omitempty"`
	AvgFireSize     map[string]float64        `json:"avg_fire_size,omitempty"`
	NumberOfFires   map[string]int            `json:"number_of_fires,omitempty"`
	TotalAreaBurned map[string]int            `json:"total_area_burned,omitempty"`
	VegCounts       map[string]map[string]int `json:"veg_counts,omitempty"`
	SeverityCounts  RegionCounts              `json:"severity_counts,omitempty"`
}

// Metric names as they appear in stored records.
const (
	MetricFireCounts      = "fire_counts"
	MetricAllFireSizes    = "all_fire_sizes"
	MetricAvgFireSize     = "avg_fire_size"
	MetricNumberOfFires   = "number_of_fires"
	MetricTotalAreaBurned = "total_area_burned"
	MetricVegCounts       = "veg_counts"
	MetricSeverityCounts  = "severity_counts"
)

// Metrics lists the names of all metrics a record can hold.
var Metrics = []string{
	MetricFireCounts, MetricAllFireSizes, MetricAvgFireSize, MetricNumberOfFires,
	MetricTotalAreaBurned, MetricVegCounts, MetricSeverityCounts,
}

// Metric returns the payload of the named metric, keyed by region name.
// ok is false if the name is unknown or the metric was not computed.
func (r *MetricRecord) Metric(name string) (payload interface{}, ok bool) {
	switch name {
	case MetricFireCounts:
		return r.FireCounts, r.FireCounts != nil
	case MetricAllFireSizes:
		return r.AllFireSizes, r.AllFireSizes != nil
	case MetricAvgFireSize:
		return r.AvgFireSize, r.AvgFireSize != nil
	case MetricNumberOfFires:
		return r.NumberOfFires, r.NumberOfFires != nil
	case MetricTotalAreaBurned:
		return r.TotalAreaBurned, r.TotalAreaBurned != nil
	case MetricVegCounts:
		return r.VegCounts, r.VegCounts != nil
	case MetricSeverityCounts:
		return r.SeverityCounts, r.SeverityCounts != nil
	default:
		return nil, false
	}
}

func (r *MetricRecord) String() string {
	return fmt.Sprintf("replicate %s year %d", r.Replicate, r.Year)
}

func (r *MetricRecord) setFire(m *FireMetrics) {
	r.FireCounts = m.FireCounts
	r.AllFireSizes = m.AllFireSizes
	r.AvgFireSize = m.AvgFireSize
	r.NumberOfFires = m.NumberOfFires
	r.TotalAreaBurned = m.TotalAreaBurned
}

// SortRecords sorts records by replicate and then year. Numeric replicates
// sort numerically and before non-numeric ones.
func SortRecords(records []*MetricRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Replicate != b.Replicate {
			return LessReplicate(a.Replicate, b.Replicate)
		}
		return a.Year < b.Year
	})
}

// LessReplicate orders replicate labels, comparing integer labels by value.
func LessReplicate(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	default:
		return a < b
	}
}
