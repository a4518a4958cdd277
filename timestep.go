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

	"github.com/sirupsen/logrus"
)

// Role is the part a raster layer plays in a timestep. It selects the
// metrics computed from the layer.
type Role string

// Layer roles.
const (
	// FireScar layers hold fire identifiers.
	FireScar Role = "FireScar"

	// Veg layers hold vegetation class codes.
	Veg Role = "Veg"

	// BurnSeverity layers hold burn severity classes.
	BurnSeverity Role = "BurnSeverity"

	// FireHistory layers mark the cells burned in an observed year.
	FireHistory Role = "FireHistory"
)

// Layer is one input raster of a timestep.
type Layer struct {
	Path string

	// Year is the year the layer represents. It may differ from the
	// timestep year when layers are lagged.
	Year int
}

// Kind distinguishes modeled from observed timesteps.
type Kind int

const (
	// Modeled timesteps come from one replicate of a simulation and hold a
	// FireScar layer and optionally Veg and BurnSeverity layers.
	Modeled Kind = iota

	// Observed timesteps hold a single FireHistory layer.
	Observed
)

// Timestep is the set of layers that belong to one replicate and year.
type Timestep struct {
	Kind      Kind
	Replicate string
	Year      int
	Layers    map[Role]Layer
}

func (ts *Timestep) String() string {
	return fmt.Sprintf("replicate %s year %d", ts.Replicate, ts.Year)
}

// Result is the outcome of processing one timestep.
type Result struct {
	Record *MetricRecord

	// VegDrops holds the number of cells per vegetation code that were
	// dropped because the code has no class name.
	VegDrops map[int32]int
}

// Processor computes the MetricRecord of a timestep. A Processor is
// read-only once created and may be shared by concurrent goroutines.
type Processor struct {
	Partition Partition
	Open      RasterOpener

	// VegNames maps vegetation codes to class names.
	VegNames map[int32]string

	Conventions Conventions

	// FireScarBand is the band of FireScar layers that holds fire
	// identifiers.
	FireScarBand int

	Log logrus.FieldLogger
}

// NewProcessor returns a Processor with the default vegetation names,
// conventions and fire scar band.
func NewProcessor(p Partition, open RasterOpener) *Processor {
	return &Processor{
		Partition:    p,
		Open:         open,
		VegNames:     DefaultVegNames,
		Conventions:  DefaultConventions(),
		FireScarBand: 1,
		Log:          logrus.StandardLogger(),
	}
}

// Process reads the layers of ts and computes its metrics. Any failure,
// including a panic while decoding a layer, is returned as a
// *TimestepError.
func (p *Processor) Process(ts *Timestep) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &TimestepError{Replicate: ts.Replicate, Year: ts.Year, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	switch ts.Kind {
	case Modeled:
		res, err = p.modeled(ts)
	case Observed:
		res, err = p.observed(ts)
	default:
		err = fmt.Errorf("unknown timestep kind %d", ts.Kind)
	}
	if err != nil {
		return nil, &TimestepError{Replicate: ts.Replicate, Year: ts.Year, Err: err}
	}
	if n := len(res.VegDrops); n > 0 {
		p.logger().WithFields(logrus.Fields{
			"replicate": ts.Replicate,
			"year":      ts.Year,
			"codes":     dropCodes(res.VegDrops),
		}).Warn("vegetation codes without class names were not counted")
	}
	return res, nil
}

func (p *Processor) logger() logrus.FieldLogger {
	if p.Log == nil {
		return logrus.StandardLogger()
	}
	return p.Log
}

func (p *Processor) read(ts *Timestep, role Role, band int) (*Raster, error) {
	l, ok := ts.Layers[role]
	if !ok {
		return nil, fmt.Errorf("missing %s layer", role)
	}
	r, err := ReadRaster(p.Open, l.Path, band, p.Partition.Grid())
	if err != nil {
		return nil, err
	}
	r.Variable = string(role)
	r.Replicate = ts.Replicate
	r.Year = l.Year
	return r, nil
}

func (p *Processor) modeled(ts *Timestep) (*Result, error) {
	c := p.Conventions
	rec := &MetricRecord{Replicate: ts.Replicate, Year: ts.Year}
	res := &Result{Record: rec}

	band := p.FireScarBand
	if band == 0 {
		band = 1
	}
	fire, err := p.read(ts, FireScar, band)
	if err != nil {
		return nil, err
	}
	counts, err := CountByRegion(fire, p.Partition, c.FireValues)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", ts.Layers[FireScar].Path, err)
	}
	rec.setFire(NewFireMetrics(counts))

	if l, ok := ts.Layers[Veg]; ok {
		veg, err := p.read(ts, Veg, 1)
		if err != nil {
			return nil, err
		}
		counts, err := CountByRegion(veg, p.Partition, c.VegValues)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", l.Path, err)
		}
		vm := NewVegMetrics(counts, p.VegNames)
		rec.VegCounts = vm.VegCounts
		if len(vm.Dropped) > 0 {
			res.VegDrops = vm.Dropped
		}
		if l.Year != ts.Year {
			y := l.Year
			rec.AvYear = &y
		}
	}

	if l, ok := ts.Layers[BurnSeverity]; ok {
		sev, err := p.read(ts, BurnSeverity, 1)
		if err != nil {
			return nil, err
		}
		counts, err := CountByRegion(sev, p.Partition, c.SeverityValues)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", l.Path, err)
		}
		rec.SeverityCounts = NewSeverityMetrics(counts).SeverityCounts
	}
	return res, nil
}

// observed labels the connected burned areas of a fire history layer as
// individual fires.
func (p *Processor) observed(ts *Timestep) (*Result, error) {
	c := p.Conventions
	hist, err := p.read(ts, FireHistory, 1)
	if err != nil {
		return nil, err
	}
	burned := make([]int32, len(hist.Data))
	for i, v := range hist.Data {
		if c.FireValues(v) {
			burned[i] = 1
		}
	}
	g := hist.Grid
	labels, n := LabelComponents(burned, g.Width, g.Height, 0)
	p.logger().WithFields(logrus.Fields{"year": ts.Year, "fires": n}).Debug("labeled observed fires")
	hist.Data = labels

	counts, err := CountByRegion(hist, p.Partition, func(v int32) bool { return v > 0 })
	if err != nil {
		return nil, fmt.Errorf("%s: %v", ts.Layers[FireHistory].Path, err)
	}
	rec := &MetricRecord{Replicate: ObservedReplicate, Year: ts.Year}
	rec.setFire(NewFireMetrics(counts))
	return &Result{Record: rec}, nil
}

func dropCodes(d map[int32]int) []int32 {
	o := make([]int32, 0, len(d))
	for code := range d {
		o = append(o, code)
	}
	sort.Slice(o, func(i, j int) bool { return o[i] < o[j] })
	return o
}
