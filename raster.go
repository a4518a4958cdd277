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
)

// RasterSource is an open single- or multi-band integer raster.
type RasterSource interface {
	// Grid returns the geometry of the raster.
	Grid() *ReferenceGrid

	// Bands returns the number of bands in the raster.
	Bands() int

	// ReadBand returns the values of band (starting at 1) in row-major order.
	ReadBand(band int) ([]int32, error)

	Close() error
}

// RasterOpener opens the raster at path.
type RasterOpener func(path string) (RasterSource, error)

// Raster is one band of a classified raster, tagged with the model
// variable, replicate and year it represents.
type Raster struct {
	Grid *ReferenceGrid

	// Data holds the cell values in row-major order.
	Data []int32

	Variable  string
	Replicate string
	Year      int
}

// At returns the value of the cell at row, col.
func (r *Raster) At(row, col int) int32 { return r.Data[r.Grid.Index(row, col)] }

// ReadRaster reads band of the raster at path. If ref is not nil, the raster
// grid must match it.
func ReadRaster(open RasterOpener, path string, band int, ref *ReferenceGrid) (*Raster, error) {
	src, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("alfpp: opening raster %s: %v", path, err)
	}
	defer src.Close()
	if band < 1 || band > src.Bands() {
		return nil, fmt.Errorf("alfpp: raster %s has %d band(s); band %d requested", path, src.Bands(), band)
	}
	grid := src.Grid()
	if ref != nil {
		if err := ref.Check(grid); err != nil {
			return nil, fmt.Errorf("alfpp: raster %s: %v", path, err)
		}
	}
	data, err := src.ReadBand(band)
	if err != nil {
		return nil, fmt.Errorf("alfpp: reading band %d of raster %s: %v", band, path, err)
	}
	if len(data) != grid.Len() {
		return nil, fmt.Errorf("alfpp: raster %s band %d has %d values; want %d", path, band, len(data), grid.Len())
	}
	return &Raster{Grid: grid, Data: data}, nil
}

// OpenReference reads the first band of the raster at path to establish the
// reference grid of a run. Failure is a configuration error.
func OpenReference(open RasterOpener, path string) (*Raster, error) {
	r, err := ReadRaster(open, path, 1, nil)
	if err != nil {
		return nil, &ConfigError{Input: path, Err: err}
	}
	return r, nil
}
