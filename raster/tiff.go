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
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// TIFF tags read by this package.
const (
	tagImageWidth          = 256
	tagImageLength         = 257
	tagBitsPerSample       = 258
	tagCompression         = 259
	tagPhotometric         = 262
	tagStripOffsets        = 273
	tagSamplesPerPixel     = 277
	tagRowsPerStrip        = 278
	tagStripByteCounts     = 279
	tagPlanarConfiguration = 284
	tagSampleFormat        = 339
	tagModelPixelScale     = 33550
	tagModelTiepoint       = 33922
	tagModelTransformation = 34264
	tagGeoKeyDirectory     = 34735
)

// TIFF field types.
const (
	dtByte   = 1
	dtASCII  = 2
	dtShort  = 3
	dtLong   = 4
	dtDouble = 12
)

var typeSize = map[uint16]uint32{dtByte: 1, dtASCII: 1, dtShort: 2, dtLong: 4, dtDouble: 8}

// GeoTIFF keys.
const (
	keyRasterType      = 1025
	keyGeographicType  = 2048
	keyProjectedCSType = 3072
	rasterPixelIsPoint = 2
)

// tiffTags holds the tags of the first image file directory of a TIFF file.
type tiffTags struct {
	order   binary.ByteOrder
	ints    map[uint16][]uint32
	doubles map[uint16][]float64
	ascii   map[uint16]string
}

// readTags parses the first image file directory of the TIFF file b.
// BigTIFF files are not supported.
func readTags(b []byte) (*tiffTags, error) {
	if len(b) < 8 {
		return nil, errors.New("not a TIFF file")
	}
	t := &tiffTags{
		ints:    make(map[uint16][]uint32),
		doubles: make(map[uint16][]float64),
		ascii:   make(map[uint16]string),
	}
	switch string(b[0:2]) {
	case "II":
		t.order = binary.LittleEndian
	case "MM":
		t.order = binary.BigEndian
	default:
		return nil, errors.New("not a TIFF file")
	}
	if magic := t.order.Uint16(b[2:4]); magic != 42 {
		if magic == 43 {
			return nil, errors.New("BigTIFF files are not supported")
		}
		return nil, errors.New("not a TIFF file")
	}
	off := t.order.Uint32(b[4:8])
	if uint64(off)+2 > uint64(len(b)) {
		return nil, errors.New("invalid image file directory offset")
	}
	n := uint32(t.order.Uint16(b[off : off+2]))
	if uint64(off)+2+12*uint64(n) > uint64(len(b)) {
		return nil, errors.New("truncated image file directory")
	}
	for i := uint32(0); i < n; i++ {
		e := b[off+2+12*i : off+2+12*(i+1)]
		tag := t.order.Uint16(e[0:2])
		typ := t.order.Uint16(e[2:4])
		count := t.order.Uint32(e[4:8])
		size, ok := typeSize[typ]
		if !ok {
			continue
		}
		if uint64(size)*uint64(count) > uint64(len(b)) {
			return nil, fmt.Errorf("tag %d: invalid count %d", tag, count)
		}
		data := e[8:12]
		if size*count > 4 {
			vo := t.order.Uint32(e[8:12])
			if uint64(vo)+uint64(size*count) > uint64(len(b)) {
				return nil, fmt.Errorf("tag %d: value out of range", tag)
			}
			data = b[vo : vo+size*count]
		}
		switch typ {
		case dtByte:
			v := make([]uint32, count)
			for j := range v {
				v[j] = uint32(data[j])
			}
			t.ints[tag] = v
		case dtShort:
			v := make([]uint32, count)
			for j := range v {
				v[j] = uint32(t.order.Uint16(data[2*j:]))
			}
			t.ints[tag] = v
		case dtLong:
			v := make([]uint32, count)
			for j := range v {
				v[j] = t.order.Uint32(data[4*j:])
			}
			t.ints[tag] = v
		case dtDouble:
			v := make([]float64, count)
			for j := range v {
				v[j] = math.Float64frombits(t.order.Uint64(data[8*j:]))
			}
			t.doubles[tag] = v
		case dtASCII:
			s := data[:count]
			for len(s) > 0 && s[len(s)-1] == 0 {
				s = s[:len(s)-1]
			}
			t.ascii[tag] = string(s)
		}
	}
	return t, nil
}

// first returns the first value of an integer tag, or def if the tag is
// not present.
func (t *tiffTags) first(tag uint16, def uint32) uint32 {
	if v := t.ints[tag]; len(v) > 0 {
		return v[0]
	}
	return def
}

// geoKey returns the value of a short GeoTIFF key.
func (t *tiffTags) geoKey(key uint32) (uint32, bool) {
	d := t.ints[tagGeoKeyDirectory]
	if len(d) < 4 {
		return 0, false
	}
	n := int(d[3])
	for i := 0; i < n && 4+4*i+3 < len(d); i++ {
		k := d[4+4*i : 4+4*(i+1)]
		if k[0] == key && k[1] == 0 {
			return k[3], true
		}
	}
	return 0, false
}

// transform returns the GDAL-order affine transform of the image, or the
// zero value if the file has no georeferencing.
func (t *tiffTags) transform() [6]float64 {
	if m := t.doubles[tagModelTransformation]; len(m) >= 8 {
		return [6]float64{m[3], m[0], m[1], m[7], m[4], m[5]}
	}
	scale := t.doubles[tagModelPixelScale]
	tie := t.doubles[tagModelTiepoint]
	if len(scale) < 2 || len(tie) < 6 {
		return [6]float64{}
	}
	i, j := tie[0], tie[1]
	if rt, ok := t.geoKey(keyRasterType); ok && rt == rasterPixelIsPoint {
		// The tie point refers to the cell center.
		i, j = i+0.5, j+0.5
	}
	return [6]float64{tie[3] - i*scale[0], scale[0], 0, tie[4] + j*scale[1], 0, -scale[1]}
}

// epsg returns the EPSG code of the coordinate reference system, if any.
func (t *tiffTags) epsg() (int, bool) {
	if v, ok := t.geoKey(keyProjectedCSType); ok && v != 32767 {
		return int(v), true
	}
	if v, ok := t.geoKey(keyGeographicType); ok && v != 32767 {
		return int(v), true
	}
	return 0, false
}
