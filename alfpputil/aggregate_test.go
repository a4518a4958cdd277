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

package alfpputil

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/alfpp"
	"github.com/spatialmodel/alfpp/raster"
	"github.com/spatialmodel/alfpp/store"
)

// testConfig returns a configuration holding the default value of every
// option, as the command line would.
func testConfig() *viper.Viper {
	cfg := viper.New()
	for _, option := range options {
		cfg.Set(option.name, option.defaultVal)
	}
	return cfg
}

func writeRaster(t *testing.T, path string, data []int32) {
	t.Helper()
	g, err := alfpp.NewReferenceGrid(4, 4, [6]float64{0, 1, 0, 4, 0, -1}, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := raster.WriteGeoTIFF(path, g, data); err != nil {
		t.Fatal(err)
	}
}

// Region 1 is the two western columns and region 2 the two eastern ones.
var halves = []int32{
	1, 1, 2, 2,
	1, 1, 2, 2,
	1, 1, 2, 2,
	1, 1, 2, 2,
}

func TestAggregateModeled(t *testing.T) {
	dir := t.TempDir()
	maps := filepath.Join(dir, "maps")
	writeRaster(t, filepath.Join(maps, "FireScar_0_1950.tif"), []int32{
		0, 3, 3, 0,
		0, 3, 0, 0,
		0, 0, 0, 5,
		0, 0, 5, 5,
	})
	writeRaster(t, filepath.Join(maps, "Veg_0_1950.tif"), []int32{
		2, 1, 1, 1,
		1, 1, 1, 1,
		1, 1, 1, 1,
		1, 1, 1, 1,
	})
	writeRaster(t, filepath.Join(dir, "regions.tif"), halves)

	cfg := testConfig()
	cfg.Set("MapsDir", maps)
	cfg.Set("OutputFile", filepath.Join(dir, "out.sqlite"))
	cfg.Set("Subdomains.File", filepath.Join(dir, "regions.tif"))
	cfg.Set("Subdomains.Names", `{"1":"west","2":"east"}`)
	cfg.Set("Workers", 2)

	ctx := context.Background()
	s, err := Aggregate(ctx, cfg, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Processed != 1 || len(s.Failed) != 0 {
		t.Fatalf("summary: %+v", s)
	}

	db, err := store.OpenSQLite(ctx, filepath.Join(dir, "out.sqlite"), false)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	records, err := db.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("have %d records", len(records))
	}
	r := records[0]
	if r.Replicate != "0" || r.Year != 1950 || r.AvYear != nil {
		t.Errorf("record %v", r)
	}
	wantCounts := alfpp.RegionCounts{"west": {3: 2}, "east": {3: 1, 5: 3}}
	if !reflect.DeepEqual(r.FireCounts, wantCounts) {
		t.Errorf("%v != %v", r.FireCounts, wantCounts)
	}
	wantSizes := map[string][]int{"west": {2}, "east": {1, 3}}
	if !reflect.DeepEqual(r.AllFireSizes, wantSizes) {
		t.Errorf("%v != %v", r.AllFireSizes, wantSizes)
	}
	wantTotal := map[string]int{"west": 2, "east": 4}
	if !reflect.DeepEqual(r.TotalAreaBurned, wantTotal) {
		t.Errorf("%v != %v", r.TotalAreaBurned, wantTotal)
	}
	wantVeg := map[string]map[string]int{"west": {"Tundra": 7, "Black Spruce": 1}, "east": {"Tundra": 8}}
	if !reflect.DeepEqual(r.VegCounts, wantVeg) {
		t.Errorf("%v != %v", r.VegCounts, wantVeg)
	}
	if r.SeverityCounts != nil {
		t.Errorf("unexpected severity counts %v", r.SeverityCounts)
	}
}

func TestAggregateHistorical(t *testing.T) {
	dir := t.TempDir()
	writeRaster(t, filepath.Join(dir, "FireHistory_1950.tif"), []int32{
		1, 1, 0, 0,
		0, 0, 0, 1,
		0, 0, 0, 1,
		1, 0, 0, 0,
	})
	cfg := testConfig()
	cfg.Set("MapsDir", dir)
	cfg.Set("OutputFile", ":memory:")

	s, err := Aggregate(context.Background(), cfg, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Processed != 1 || len(s.Failed) != 0 {
		t.Errorf("summary: %+v", s)
	}
}

func TestAggregateConfigErrors(t *testing.T) {
	dir := t.TempDir()
	writeRaster(t, filepath.Join(dir, "FireScar_0_1950.tif"), make([]int32, 16))
	vegOnly := filepath.Join(t.TempDir(), "veg")
	writeRaster(t, filepath.Join(vegOnly, "Veg_0_2000.tif"), make([]int32, 16))
	for _, test := range []struct {
		name string
		set  map[string]interface{}
	}{
		{name: "no fire scars", set: map[string]interface{}{"MapsDir": vegOnly}},
		{name: "no maps", set: map[string]interface{}{"MapsDir": ""}},
		{name: "no output", set: map[string]interface{}{"OutputFile": ""}},
		{name: "missing partition", set: map[string]interface{}{"Subdomains.File": filepath.Join(dir, "missing.shp")}},
		{name: "bad band", set: map[string]interface{}{"FireScarBand": 0}},
		{name: "bad timeout", set: map[string]interface{}{"TaskTimeout": "soon"}},
	} {
		t.Run(test.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Set("MapsDir", dir)
			cfg.Set("OutputFile", ":memory:")
			for k, v := range test.set {
				cfg.Set(k, v)
			}
			if _, err := Aggregate(context.Background(), cfg, false, nil); err == nil {
				t.Error("want error")
			}
		})
	}
}

func TestAggregateCorruptRaster(t *testing.T) {
	dir := t.TempDir()
	maps := filepath.Join(dir, "maps")
	writeRaster(t, filepath.Join(maps, "FireScar_0_2000.tif"), make([]int32, 16))
	// The header claims a 65535 x 65535 image backed by 8 bytes of data.
	b := []byte{'I', 'I', 42, 0, 8, 0, 0, 0, 6, 0}
	for _, e := range [][4]uint16{
		{256, 3, 0xFFFF, 0},
		{257, 3, 0xFFFF, 0},
		{258, 3, 8, 0},
		{259, 3, 1, 0},
		{273, 3, 0, 0},
		{279, 3, 8, 0},
	} {
		b = binary.LittleEndian.AppendUint16(b, e[0])
		b = binary.LittleEndian.AppendUint16(b, e[1])
		b = binary.LittleEndian.AppendUint32(b, 1)
		b = binary.LittleEndian.AppendUint16(b, e[2])
		b = binary.LittleEndian.AppendUint16(b, e[3])
	}
	b = append(b, 0, 0, 0, 0)
	if err := os.WriteFile(filepath.Join(maps, "FireScar_0_2001.tif"), b, 0644); err != nil {
		t.Fatal(err)
	}
	writeRaster(t, filepath.Join(dir, "regions.tif"), halves)

	cfg := testConfig()
	cfg.Set("MapsDir", maps)
	cfg.Set("OutputFile", ":memory:")
	cfg.Set("ReferenceRaster", filepath.Join(maps, "FireScar_0_2000.tif"))
	cfg.Set("Subdomains.File", filepath.Join(dir, "regions.tif"))
	cfg.Set("Workers", 2)

	s, err := Aggregate(context.Background(), cfg, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Processed != 1 || len(s.Failed) != 1 {
		t.Fatalf("processed %d, failed %d; want 1 and 1", s.Processed, len(s.Failed))
	}
	if s.Failed[0].Year != 2001 {
		t.Errorf("failed timestep %v", s.Failed[0])
	}
}

func TestPartitionCmd(t *testing.T) {
	dir := t.TempDir()
	writeRaster(t, filepath.Join(dir, "ref.tif"), make([]int32, 16))
	writeRaster(t, filepath.Join(dir, "regions.tif"), halves)
	out := filepath.Join(dir, "partition.nc")

	Cfg.Set("ReferenceRaster", filepath.Join(dir, "ref.tif"))
	Cfg.Set("Subdomains.File", filepath.Join(dir, "regions.tif"))
	Cfg.Set("Subdomains.Names", `{"1":"west","2":"east"}`)
	Cfg.Set("PartitionOutput", out)
	defer func() {
		for _, k := range []string{"ReferenceRaster", "Subdomains.File", "Subdomains.Names", "PartitionOutput"} {
			Cfg.Set(k, nil)
		}
	}()

	b := new(bytes.Buffer)
	Root.SetOutput(b)
	Root.SetArgs([]string{"partition"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if want := "1\twest\t8 cells\n2\teast\t8 cells\n"; b.String() != want {
		t.Errorf("%q != %q", b.String(), want)
	}

	src, err := raster.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()
	data, err := src.ReadBand(1)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(data, halves) {
		t.Errorf("%v != %v", data, halves)
	}
}

func TestVersionCmd(t *testing.T) {
	b := new(bytes.Buffer)
	Root.SetOutput(b)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), alfpp.Version) {
		t.Errorf("version output %q", b.String())
	}
}
