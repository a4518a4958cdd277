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
	"bytes"
	"encoding/binary"
	"fmt"
	"io/ioutil"
	"math"
	"sort"
	"strings"

	"github.com/spatialmodel/alfpp"
)

// Write writes a single-band raster to path, choosing the format from the
// file extension.
func Write(path string, grid *alfpp.ReferenceGrid, data []int32) error {
	switch ext(path) {
	case ".tif", ".tiff":
		return WriteGeoTIFF(path, grid, data)
	case ".nc":
		return WriteNetCDF(path, grid, map[string][]int32{"band1": data})
	default:
		return fmt.Errorf("raster: unsupported output format %q", path)
	}
}

type tiffEntry struct {
	tag, typ uint16
	count    uint32
	value    []byte
}

// WriteGeoTIFF writes data as an uncompressed single-band GeoTIFF. The
// narrowest of unsigned 8 bit, signed 16 bit and signed 32 bit samples that
// holds every value is used.
func WriteGeoTIFF(path string, grid *alfpp.ReferenceGrid, data []int32) error {
	if len(data) != grid.Len() {
		return fmt.Errorf("raster: have %d values for %v", len(data), grid)
	}
	o := binary.LittleEndian
	bits, format := 8, 1
	for _, v := range data {
		if v < 0 || v > math.MaxUint8 {
			bits, format = 16, 2
		}
		if v < math.MinInt16 || v > math.MaxInt16 {
			bits = 32
			break
		}
	}
	pix := new(bytes.Buffer)
	for _, v := range data {
		switch bits {
		case 8:
			pix.WriteByte(uint8(v))
		case 16:
			binary.Write(pix, o, int16(v))
		default:
			binary.Write(pix, o, v)
		}
	}

	shorts := func(v ...uint16) []byte {
		b := make([]byte, 2*len(v))
		for i, s := range v {
			o.PutUint16(b[2*i:], s)
		}
		return b
	}
	long := func(v uint32) []byte {
		b := make([]byte, 4)
		o.PutUint32(b, v)
		return b
	}
	doubles := func(v ...float64) []byte {
		b := make([]byte, 8*len(v))
		for i, f := range v {
			o.PutUint64(b[8*i:], math.Float64bits(f))
		}
		return b
	}

	const pixOffset = 8
	entries := []tiffEntry{
		{tagImageWidth, dtLong, 1, long(uint32(grid.Width))},
		{tagImageLength, dtLong, 1, long(uint32(grid.Height))},
		{tagBitsPerSample, dtShort, 1, shorts(uint16(bits))},
		{tagCompression, dtShort, 1, shorts(1)},
		{tagPhotometric, dtShort, 1, shorts(1)},
		{tagStripOffsets, dtLong, 1, long(pixOffset)},
		{tagSamplesPerPixel, dtShort, 1, shorts(1)},
		{tagRowsPerStrip, dtLong, 1, long(uint32(grid.Height))},
		{tagStripByteCounts, dtLong, 1, long(uint32(pix.Len()))},
		{tagSampleFormat, dtShort, 1, shorts(uint16(format))},
	}
	if grid.Georeferenced() {
		t := grid.Transform
		if t[2] == 0 && t[4] == 0 {
			entries = append(entries,
				tiffEntry{tagModelPixelScale, dtDouble, 3, doubles(t[1], -t[5], 0)},
				tiffEntry{tagModelTiepoint, dtDouble, 6, doubles(0, 0, 0, t[0], t[3], 0)})
		} else {
			entries = append(entries, tiffEntry{tagModelTransformation, dtDouble, 16, doubles(
				t[1], t[2], 0, t[0],
				t[4], t[5], 0, t[3],
				0, 0, 0, 0,
				0, 0, 0, 1)})
		}
		keys := []uint16{1, 1, 0, 1, keyRasterType, 0, 1, 1}
		if code, ok := EPSG(grid.CRS); ok {
			key := uint16(keyProjectedCSType)
			if strings.Contains(grid.CRS, "+proj=longlat") {
				key = keyGeographicType
			}
			keys = append(keys, key, 0, 1, uint16(code))
			keys[3] = 2
		}
		entries = append(entries, tiffEntry{tagGeoKeyDirectory, dtShort, uint32(len(keys)), shorts(keys...)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })

	ifdOffset := pixOffset + pix.Len()
	ifdOffset += ifdOffset % 2
	valueOffset := ifdOffset + 2 + 12*len(entries) + 4

	var ifd, values bytes.Buffer
	binary.Write(&ifd, o, uint16(len(entries)))
	for _, e := range entries {
		binary.Write(&ifd, o, e.tag)
		binary.Write(&ifd, o, e.typ)
		binary.Write(&ifd, o, e.count)
		if len(e.value) <= 4 {
			v := make([]byte, 4)
			copy(v, e.value)
			ifd.Write(v)
			continue
		}
		binary.Write(&ifd, o, uint32(valueOffset+values.Len()))
		values.Write(e.value)
	}
	binary.Write(&ifd, o, uint32(0))

	var out bytes.Buffer
	out.WriteString("II")
	binary.Write(&out, o, uint16(42))
	binary.Write(&out, o, uint32(ifdOffset))
	out.Write(pix.Bytes())
	for out.Len() < ifdOffset {
		out.WriteByte(0)
	}
	out.Write(ifd.Bytes())
	out.Write(values.Bytes())
	if err := ioutil.WriteFile(path, out.Bytes(), 0644); err != nil {
		return fmt.Errorf("raster: writing %s: %v", path, err)
	}
	return nil
}
