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

// Package raster reads and writes the classified rasters processed by
// alfpp. GeoTIFF and NetCDF files are supported.
package raster

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spatialmodel/alfpp"
)

// Open opens the raster at path, choosing the format from the file
// extension. It satisfies alfpp.RasterOpener.
func Open(path string) (alfpp.RasterSource, error) {
	switch ext(path) {
	case ".tif", ".tiff":
		return OpenGeoTIFF(path)
	case ".nc":
		return OpenNetCDF(path)
	default:
		return nil, fmt.Errorf("raster: unsupported raster format %q", path)
	}
}

// IsRaster returns whether path has the extension of a supported raster
// format.
func IsRaster(path string) bool {
	switch ext(path) {
	case ".tif", ".tiff", ".nc":
		return true
	}
	return false
}

func ext(path string) string { return strings.ToLower(filepath.Ext(path)) }

func sortedKeys(m map[string][]int32) []string {
	o := make([]string, 0, len(m))
	for k := range m {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}
