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

package raster

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/spatialmodel/alfpp"
)

// NetCDF is a raster read from a NetCDF file. Each variable with
// dimensions (y, x) is one band, in the order the variables are defined.
// The optional global attributes "transform" (GDAL order) and "crs"
// (Proj4) hold the georeferencing.
type NetCDF struct {
	f     *os.File
	cf    *cdf.File
	grid  *alfpp.ReferenceGrid
	bands []string
}

// OpenNetCDF opens the NetCDF file at path.
func OpenNetCDF(path string) (*NetCDF, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	cf, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("raster: opening %s: %v", path, err)
	}
	n := &NetCDF{f: f, cf: cf}
	var w, h int
	for _, v := range cf.Header.Variables() {
		dims := cf.Header.Dimensions(v)
		if len(dims) != 2 || dims[0] != "y" || dims[1] != "x" {
			continue
		}
		l := cf.Header.Lengths(v)
		h, w = l[0], l[1]
		n.bands = append(n.bands, v)
	}
	if len(n.bands) == 0 {
		f.Close()
		return nil, fmt.Errorf("raster: %s has no variables with dimensions (y, x)", path)
	}
	var transform [6]float64
	if t, ok := cf.Header.GetAttribute("", "transform").([]float64); ok && len(t) == 6 {
		copy(transform[:], t)
	}
	crs, _ := cf.Header.GetAttribute("", "crs").(string)
	if n.grid, err = alfpp.NewReferenceGrid(w, h, transform, crs); err != nil {
		f.Close()
		return nil, fmt.Errorf("raster: %s: %v", path, err)
	}
	return n, nil
}

func (n *NetCDF) Grid() *alfpp.ReferenceGrid { return n.grid }
func (n *NetCDF) Bands() int                 { return len(n.bands) }
func (n *NetCDF) Close() error               { return n.f.Close() }

// ReadBand reads band (starting at 1) and converts it to int32. Floating
// point values are truncated.
func (n *NetCDF) ReadBand(band int) ([]int32, error) {
	if band < 1 || band > len(n.bands) {
		return nil, fmt.Errorf("raster: band %d out of range [1, %d]", band, len(n.bands))
	}
	v := n.bands[band-1]
	r := n.cf.Reader(v, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("raster: reading variable %s: %v", v, err)
	}
	switch d := buf.(type) {
	case []int32:
		return d, nil
	case []int16:
		o := make([]int32, len(d))
		for i, x := range d {
			o[i] = int32(x)
		}
		return o, nil
	case []int8:
		o := make([]int32, len(d))
		for i, x := range d {
			o[i] = int32(x)
		}
		return o, nil
	case []uint8:
		o := make([]int32, len(d))
		for i, x := range d {
			o[i] = int32(x)
		}
		return o, nil
	case []float32:
		o := make([]int32, len(d))
		for i, x := range d {
			o[i] = int32(x)
		}
		return o, nil
	case []float64:
		o := make([]int32, len(d))
		for i, x := range d {
			o[i] = int32(x)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("raster: variable %s has unsupported type %T", v, buf)
	}
}

// WriteNetCDF writes bands, keyed by variable name, to a NetCDF file at
// path. Variables are defined in name order.
func WriteNetCDF(path string, grid *alfpp.ReferenceGrid, bands map[string][]int32) error {
	names := sortedKeys(bands)
	h := cdf.NewHeader([]string{"y", "x"}, []int{grid.Height, grid.Width})
	if grid.Georeferenced() {
		h.AddAttribute("", "transform", grid.Transform[:])
	}
	if grid.CRS != "" {
		h.AddAttribute("", "crs", grid.CRS)
	}
	for _, name := range names {
		if len(bands[name]) != grid.Len() {
			return fmt.Errorf("raster: variable %s has %d values for %v", name, len(bands[name]), grid)
		}
		h.AddVariable(name, []string{"y", "x"}, []int32{0})
	}
	h.Define()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("raster: %v", err)
	}
	cf, err := cdf.Create(f, h)
	if err != nil {
		f.Close()
		return fmt.Errorf("raster: creating %s: %v", path, err)
	}
	for _, name := range names {
		w := cf.Writer(name, []int{0, 0}, []int{grid.Height, grid.Width})
		if _, err := w.Write(bands[name]); err != nil {
			f.Close()
			return fmt.Errorf("raster: writing variable %s: %v", name, err)
		}
	}
	return f.Close()
}
