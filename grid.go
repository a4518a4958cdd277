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
	"math"

	"github.com/ctessum/geom"
)

// ReferenceGrid describes the geometry shared by every raster and region
// mask in a run. It is established from the first raster of the run and
// is not modified afterwards.
type ReferenceGrid struct {
	Width, Height int

	// Transform is the affine transform from pixel to map coordinates in
	// GDAL order: x0, dx, rx, y0, ry, dy. The zero value means that the
	// georeferencing is unknown.
	Transform [6]float64

	// CRS is the coordinate reference system in Proj4 or WKT format,
	// or empty if unknown.
	CRS string
}

// NewReferenceGrid returns a new grid, checking that its dimensions are valid.
func NewReferenceGrid(width, height int, transform [6]float64, crs string) (*ReferenceGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("alfpp: invalid grid dimensions %dx%d", width, height)
	}
	if transform != [6]float64{} && (transform[1] == 0 || transform[5] == 0) {
		return nil, fmt.Errorf("alfpp: invalid grid transform %v: cell size cannot be zero", transform)
	}
	return &ReferenceGrid{Width: width, Height: height, Transform: transform, CRS: crs}, nil
}

// Len returns the number of cells in the grid.
func (g *ReferenceGrid) Len() int { return g.Width * g.Height }

// Georeferenced returns whether the grid transform is known.
func (g *ReferenceGrid) Georeferenced() bool { return g.Transform != [6]float64{} }

// Index returns the row-major index of the cell at row, col.
func (g *ReferenceGrid) Index(row, col int) int { return row*g.Width + col }

// RowCol returns the row and column of the cell with row-major index i.
func (g *ReferenceGrid) RowCol(i int) (row, col int) { return i / g.Width, i % g.Width }

func (g *ReferenceGrid) String() string {
	return fmt.Sprintf("%dx%d grid %v", g.Width, g.Height, g.Transform)
}

// Check returns an error if o does not have the same shape as g, or if
// both grids are georeferenced and their transforms differ.
func (g *ReferenceGrid) Check(o *ReferenceGrid) error {
	if o == nil {
		return fmt.Errorf("alfpp: missing grid")
	}
	if g.Width != o.Width || g.Height != o.Height {
		return fmt.Errorf("alfpp: grid shape %dx%d does not match reference shape %dx%d",
			o.Width, o.Height, g.Width, g.Height)
	}
	if !g.Georeferenced() || !o.Georeferenced() {
		return nil
	}
	tol := 1e-6 * math.Max(math.Abs(g.Transform[1]), math.Abs(g.Transform[5]))
	for i := range g.Transform {
		if math.Abs(g.Transform[i]-o.Transform[i]) > tol {
			return fmt.Errorf("alfpp: grid transform %v does not match reference transform %v",
				o.Transform, g.Transform)
		}
	}
	return nil
}

// point returns the map coordinates of fractional pixel position (x, y),
// where x runs along columns and y along rows.
func (g *ReferenceGrid) point(x, y float64) geom.Point {
	t := g.Transform
	return geom.Point{
		X: t[0] + x*t[1] + y*t[2],
		Y: t[3] + x*t[4] + y*t[5],
	}
}

// CellCenter returns the map coordinates of the center of the cell at row, col.
func (g *ReferenceGrid) CellCenter(row, col int) geom.Point {
	return g.point(float64(col)+0.5, float64(row)+0.5)
}

// CellPolygon returns the outline of the cell at row, col.
func (g *ReferenceGrid) CellPolygon(row, col int) geom.Polygon {
	x, y := float64(col), float64(row)
	p0 := g.point(x, y)
	return geom.Polygon{{p0, g.point(x+1, y), g.point(x+1, y+1), g.point(x, y+1), p0}}
}

// Bounds returns the extent of the grid in map coordinates.
func (g *ReferenceGrid) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	w, h := float64(g.Width), float64(g.Height)
	for _, p := range []geom.Point{g.point(0, 0), g.point(w, 0), g.point(w, h), g.point(0, h)} {
		b.Extend(p.Bounds())
	}
	return b
}

// cellRange returns the inclusive row and column ranges of the cells that
// may overlap b. For rotated grids the whole grid is returned. ok is false
// if no cell can overlap b.
func (g *ReferenceGrid) cellRange(b *geom.Bounds) (r0, r1, c0, c1 int, ok bool) {
	t := g.Transform
	if t[2] != 0 || t[4] != 0 {
		return 0, g.Height - 1, 0, g.Width - 1, true
	}
	ca := math.Floor((b.Min.X - t[0]) / t[1])
	cb := math.Floor((b.Max.X - t[0]) / t[1])
	ra := math.Floor((b.Min.Y - t[3]) / t[5])
	rb := math.Floor((b.Max.Y - t[3]) / t[5])
	c0f, c1f := math.Min(ca, cb), math.Max(ca, cb)
	r0f, r1f := math.Min(ra, rb), math.Max(ra, rb)
	if c1f < 0 || r1f < 0 || c0f > float64(g.Width-1) || r0f > float64(g.Height-1) {
		return 0, 0, 0, 0, false
	}
	c0 = int(math.Max(c0f, 0))
	c1 = int(math.Min(c1f, float64(g.Width-1)))
	r0 = int(math.Max(r0f, 0))
	r1 = int(math.Min(r1f, float64(g.Height-1)))
	return r0, r1, c0, c1, true
}
