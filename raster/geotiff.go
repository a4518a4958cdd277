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
	"fmt"
	"image"
	"io/ioutil"
	"math"

	"github.com/spatialmodel/alfpp"
	"golang.org/x/image/tiff"
)

// maxCells is the largest number of cells per band a GeoTIFF may hold.
const maxCells = 1 << 31

// GeoTIFF is a raster read from a GeoTIFF file. All bands are held in
// memory.
type GeoTIFF struct {
	grid  *alfpp.ReferenceGrid
	bands [][]int32
}

// OpenGeoTIFF reads the GeoTIFF file at path. Uncompressed files may hold
// 8, 16 or 32 bit integer or floating point samples; floating point
// values are truncated to integers. Compressed files are decoded with
// golang.org/x/image/tiff and must hold unsigned 8 or 16 bit samples.
func OpenGeoTIFF(path string) (*GeoTIFF, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tags, err := readTags(b)
	if err != nil {
		return nil, fmt.Errorf("raster: %s: %v", path, err)
	}
	w32, h32 := tags.first(tagImageWidth, 0), tags.first(tagImageLength, 0)
	if w32 == 0 || h32 == 0 || uint64(w32)*uint64(h32) > maxCells {
		return nil, fmt.Errorf("raster: %s: invalid image dimensions %dx%d", path, w32, h32)
	}
	w, h := int(w32), int(h32)
	var bands [][]int32
	if tags.first(tagCompression, 1) == 1 {
		bands, err = decodeStrips(b, tags, w, h)
	} else {
		var img image.Image
		if img, err = tiff.Decode(bytes.NewReader(b)); err == nil {
			bands, err = imageBands(img, int(tags.first(tagSamplesPerPixel, 1)))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("raster: decoding %s: %v", path, err)
	}
	var crs string
	if code, ok := tags.epsg(); ok {
		crs = CRS(code)
	}
	grid, err := alfpp.NewReferenceGrid(w, h, tags.transform(), crs)
	if err != nil {
		return nil, fmt.Errorf("raster: %s: %v", path, err)
	}
	return &GeoTIFF{grid: grid, bands: bands}, nil
}

func (g *GeoTIFF) Grid() *alfpp.ReferenceGrid { return g.grid }
func (g *GeoTIFF) Bands() int                 { return len(g.bands) }
func (g *GeoTIFF) Close() error               { return nil }

// ReadBand returns a copy of band (starting at 1).
func (g *GeoTIFF) ReadBand(band int) ([]int32, error) {
	if band < 1 || band > len(g.bands) {
		return nil, fmt.Errorf("raster: band %d out of range [1, %d]", band, len(g.bands))
	}
	o := make([]int32, len(g.bands[band-1]))
	copy(o, g.bands[band-1])
	return o, nil
}

// decodeStrips decodes the samples of an uncompressed, stripped image.
func decodeStrips(b []byte, tags *tiffTags, w, h int) ([][]int32, error) {
	spp := int(tags.first(tagSamplesPerPixel, 1))
	bits := int(tags.first(tagBitsPerSample, 1))
	for _, v := range tags.ints[tagBitsPerSample] {
		if int(v) != bits {
			return nil, fmt.Errorf("mixed bits per sample %v", tags.ints[tagBitsPerSample])
		}
	}
	format := tags.first(tagSampleFormat, 1)
	planar := tags.first(tagPlanarConfiguration, 1) == 2

	offsets, counts := tags.ints[tagStripOffsets], tags.ints[tagStripByteCounts]
	if len(offsets) == 0 || len(offsets) != len(counts) {
		return nil, fmt.Errorf("invalid strip layout")
	}
	var data []byte
	for i, off := range offsets {
		end := uint64(off) + uint64(counts[i])
		if end > uint64(len(b)) {
			return nil, fmt.Errorf("strip %d out of range", i)
		}
		data = append(data, b[off:end]...)
	}

	if spp < 1 {
		return nil, fmt.Errorf("invalid samples per pixel %d", spp)
	}
	size := bits / 8
	sample, err := sampleReader(tags, bits, format)
	if err != nil {
		return nil, err
	}
	want := uint64(w) * uint64(h) * uint64(spp) * uint64(size)
	if want > uint64(len(data)) {
		return nil, fmt.Errorf("have %d bytes of image data; want %d", len(data), want)
	}
	n := w * h
	bands := make([][]int32, spp)
	for bi := range bands {
		band := make([]int32, n)
		for p := range band {
			k := p*spp + bi
			if planar {
				k = bi*n + p
			}
			band[p] = sample(data[k*size:])
		}
		bands[bi] = band
	}
	return bands, nil
}

// sampleReader returns a function that converts the bytes of one sample
// to an integer.
func sampleReader(tags *tiffTags, bits int, format uint32) (func([]byte) int32, error) {
	o := tags.order
	switch {
	case bits == 8 && format == 1:
		return func(b []byte) int32 { return int32(b[0]) }, nil
	case bits == 8 && format == 2:
		return func(b []byte) int32 { return int32(int8(b[0])) }, nil
	case bits == 16 && format == 1:
		return func(b []byte) int32 { return int32(o.Uint16(b)) }, nil
	case bits == 16 && format == 2:
		return func(b []byte) int32 { return int32(int16(o.Uint16(b))) }, nil
	case bits == 32 && format == 1:
		return func(b []byte) int32 { return int32(o.Uint32(b)) }, nil
	case bits == 32 && format == 2:
		return func(b []byte) int32 { return int32(o.Uint32(b)) }, nil
	case bits == 32 && format == 3:
		return func(b []byte) int32 { return int32(math.Float32frombits(o.Uint32(b))) }, nil
	case bits == 64 && format == 3:
		return func(b []byte) int32 { return int32(math.Float64frombits(o.Uint64(b))) }, nil
	default:
		return nil, fmt.Errorf("unsupported sample type: %d bits, format %d", bits, format)
	}
}

// imageBands splits a decoded image into bands.
func imageBands(img image.Image, spp int) ([][]int32, error) {
	r := img.Bounds()
	w, h := r.Dx(), r.Dy()
	var nb int
	var px func(x, y int, o []int32)
	switch m := img.(type) {
	case *image.Gray:
		nb = 1
		px = func(x, y int, o []int32) { o[0] = int32(m.GrayAt(x, y).Y) }
	case *image.Gray16:
		nb = 1
		px = func(x, y int, o []int32) { o[0] = int32(m.Gray16At(x, y).Y) }
	case *image.Paletted:
		nb = 1
		px = func(x, y int, o []int32) { o[0] = int32(m.ColorIndexAt(x, y)) }
	case *image.RGBA:
		nb = 4
		px = func(x, y int, o []int32) {
			c := m.RGBAAt(x, y)
			o[0], o[1], o[2], o[3] = int32(c.R), int32(c.G), int32(c.B), int32(c.A)
		}
	case *image.NRGBA:
		nb = 4
		px = func(x, y int, o []int32) {
			c := m.NRGBAAt(x, y)
			o[0], o[1], o[2], o[3] = int32(c.R), int32(c.G), int32(c.B), int32(c.A)
		}
	case *image.RGBA64:
		nb = 4
		px = func(x, y int, o []int32) {
			c := m.RGBA64At(x, y)
			o[0], o[1], o[2], o[3] = int32(c.R), int32(c.G), int32(c.B), int32(c.A)
		}
	case *image.NRGBA64:
		nb = 4
		px = func(x, y int, o []int32) {
			c := m.NRGBA64At(x, y)
			o[0], o[1], o[2], o[3] = int32(c.R), int32(c.G), int32(c.B), int32(c.A)
		}
	default:
		return nil, fmt.Errorf("unsupported image type %T", img)
	}
	// Three sample images are decoded with an opaque alpha channel.
	if nb == 4 && spp == 3 {
		nb = 3
	}
	bands := make([][]int32, nb)
	for i := range bands {
		bands[i] = make([]int32, w*h)
	}
	v := make([]int32, 4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px(r.Min.X+x, r.Min.Y+y, v)
			for i := range bands {
				bands[i][y*w+x] = v[i]
			}
		}
	}
	return bands, nil
}
