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
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/geom/proj"
	"github.com/sirupsen/logrus"
)

// BurnRule decides which grid cells a polygon covers when it is burned
// into a grid. A partition uses one rule for all of its regions.
type BurnRule int

const (
	// CellCenter assigns a cell to a polygon when the cell center lies
	// inside the polygon or on its edge.
	CellCenter BurnRule = iota

	// AnyOverlap assigns a cell to a polygon when their intersection
	// has a non-zero area.
	AnyOverlap
)

func (r BurnRule) String() string {
	switch r {
	case CellCenter:
		return "center"
	case AnyOverlap:
		return "overlap"
	default:
		return fmt.Sprintf("BurnRule(%d)", int(r))
	}
}

// ParseBurnRule parses "center" or "overlap".
func ParseBurnRule(s string) (BurnRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "center":
		return CellCenter, nil
	case "overlap":
		return AnyOverlap, nil
	default:
		return 0, fmt.Errorf("alfpp: invalid burn rule %q; valid rules are center and overlap", s)
	}
}

// VectorConfig specifies a partition read from a polygon shapefile.
type VectorConfig struct {
	// File is the path to the shapefile.
	File string

	// IDField holds the integer region identifier. Rows sharing an
	// identifier form one region.
	IDField string

	// NameField holds the region name.
	NameField string

	Rule       BurnRule
	Background int32
}

// VectorPartition is a Partition whose regions are burned from polygons.
type VectorPartition struct {
	*regionSet
	Rule BurnRule

	// Contested is the number of cells claimed by more than one region.
	// Each such cell belongs to the claimant with the lowest ID.
	Contested int
}

// regionShape is one shapefile polygon tagged with its region ID.
type regionShape struct {
	geom.Polygonal
	id int32
}

// NewVectorPartition reads the shapefile described by cfg and burns its
// polygons into grid. If both the shapefile and grid have a known
// spatial reference, the polygons are reprojected to the grid's.
func NewVectorPartition(cfg VectorConfig, grid *ReferenceGrid, log logrus.FieldLogger) (*VectorPartition, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if !grid.Georeferenced() {
		return nil, &ConfigError{Input: cfg.File, Err: errors.New("the reference grid has no georeferencing to burn polygons into")}
	}
	shapes, names, err := readRegionShapes(cfg, grid, log)
	if err != nil {
		return nil, err
	}

	cells, contested := burnShapes(shapes, grid, cfg.Rule)

	s, err := newRegionSet(cfg.File, grid, cfg.Background, cells, names)
	if err != nil {
		return nil, err
	}
	fields := logrus.Fields{"file": cfg.File, "rule": cfg.Rule, "regions": len(s.regions)}
	if dropped := len(names) - len(s.regions); dropped > 0 {
		fields["dropped"] = dropped
	}
	if contested > 0 {
		log.WithFields(fields).WithField("contested_cells", contested).
			Warn("overlapping regions; contested cells assigned to the lowest region ID")
	} else {
		log.WithFields(fields).Debug("burned vector partition")
	}
	return &VectorPartition{regionSet: s, Rule: cfg.Rule, Contested: contested}, nil
}

func readRegionShapes(cfg VectorConfig, grid *ReferenceGrid, log logrus.FieldLogger) ([]*regionShape, map[int32]string, error) {
	cfgErr := func(err error) error { return &ConfigError{Input: cfg.File, Err: err} }

	dec, err := shp.NewDecoder(cfg.File)
	if err != nil {
		return nil, nil, cfgErr(err)
	}
	defer dec.Close()

	available := make(map[string]bool)
	for _, f := range dec.Fields() {
		available[strings.ToLower(f.String())] = true
	}
	for _, f := range []string{cfg.IDField, cfg.NameField} {
		if f == "" || !available[strings.ToLower(f)] {
			return nil, nil, cfgErr(fmt.Errorf("shapefile does not contain field `%s`", f))
		}
	}

	trans, err := shapeTransform(dec, grid)
	if err != nil {
		return nil, nil, cfgErr(err)
	}
	if trans == nil {
		log.WithField("file", cfg.File).Debug("no reprojection; assuming the shapefile uses the grid's spatial reference")
	}

	var shapes []*regionShape
	names := make(map[int32]string)
	for {
		g, fields, more := dec.DecodeRowFields(cfg.IDField, cfg.NameField)
		if !more {
			break
		}
		if dec.Error() != nil {
			break
		}
		id, err := parseRegionID(fields[cfg.IDField])
		if err != nil {
			return nil, nil, cfgErr(err)
		}
		if id == cfg.Background {
			log.WithFields(logrus.Fields{"file": cfg.File, "region": id}).
				Warn("skipping polygon whose region ID equals the background value")
			continue
		}
		if trans != nil {
			if g, err = g.Transform(trans); err != nil {
				return nil, nil, cfgErr(err)
			}
		}
		poly, ok := g.(geom.Polygonal)
		if !ok {
			return nil, nil, cfgErr(fmt.Errorf("region %d: shapes need to be polygons, not %T", id, g))
		}
		shapes = append(shapes, &regionShape{Polygonal: poly, id: id})
		names[id] = strings.TrimSpace(fields[cfg.NameField])
	}
	if err := dec.Error(); err != nil {
		return nil, nil, cfgErr(err)
	}
	return shapes, names, nil
}

// shapeTransform returns the transform from the shapefile's spatial
// reference to the grid's, or nil if either is unknown.
func shapeTransform(dec *shp.Decoder, grid *ReferenceGrid) (proj.Transformer, error) {
	if grid.CRS == "" {
		return nil, nil
	}
	src, err := dec.SR()
	if err != nil {
		// No .prj file.
		return nil, nil
	}
	dst, err := proj.Parse(grid.CRS)
	if err != nil {
		return nil, fmt.Errorf("parsing grid spatial reference: %v", err)
	}
	return src.NewTransform(dst)
}

func parseRegionID(s string) (int32, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid region identifier %q: %v", s, err)
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("region identifier %q is not a 32-bit integer", s)
	}
	return int32(f), nil
}

// burnShapes assigns every grid cell covered by one of shapes to the
// lowest covering region ID. It returns the cells of each region and the
// number of cells claimed by more than one region.
func burnShapes(shapes []*regionShape, grid *ReferenceGrid, rule BurnRule) (map[int32][]int, int) {
	cells := make(map[int32][]int)
	if len(shapes) == 0 {
		return cells, 0
	}
	tree := rtree.NewTree(25, 50)
	b := geom.NewBounds()
	for _, s := range shapes {
		tree.Insert(s)
		b.Extend(s.Bounds())
	}
	r0, r1, c0, c1, ok := grid.cellRange(b)
	if !ok {
		return cells, 0
	}
	contested := 0
	var claims []int32
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			cell := grid.CellPolygon(row, col)
			claims = claims[:0]
			for _, item := range tree.SearchIntersect(cell.Bounds()) {
				s := item.(*regionShape)
				if covers(s.Polygonal, cell, grid.CellCenter(row, col), rule) {
					claims = append(claims, s.id)
				}
			}
			if len(claims) == 0 {
				continue
			}
			sort.Slice(claims, func(i, j int) bool { return claims[i] < claims[j] })
			if claims[0] != claims[len(claims)-1] {
				contested++
			}
			i := grid.Index(row, col)
			cells[claims[0]] = append(cells[claims[0]], i)
		}
	}
	return cells, contested
}

// minOverlap is the fraction of a cell a polygon must cover to claim the
// cell under the AnyOverlap rule. Clipping polygons that only share an edge
// with a cell can leave slivers smaller than this.
const minOverlap = 1e-9

func covers(p geom.Polygonal, cell geom.Polygon, center geom.Point, rule BurnRule) bool {
	if rule == AnyOverlap {
		return cell.Intersection(p).Area() > minOverlap*cell.Area()
	}
	return center.Within(p) != geom.Outside
}
