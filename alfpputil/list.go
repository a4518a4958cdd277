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
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/alfpp"
	"github.com/spatialmodel/alfpp/raster"
)

// mapFile is a raster file whose name follows the
// {variable}_{replicate}_{year} or {variable}_{year} convention.
type mapFile struct {
	path      string
	variable  string
	replicate string
	year      int
}

// parseMapName splits the base name of path into its variable, replicate
// and year. If observed is true, the name has no replicate part.
func parseMapName(path string, observed bool) (*mapFile, error) {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(name, "_")
	want := 3
	if observed {
		want = 2
	}
	if len(parts) < want {
		return nil, fmt.Errorf("file name %q does not match the %s convention", name, convention(observed))
	}
	year, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return nil, fmt.Errorf("file name %q: invalid year: %v", name, err)
	}
	f := &mapFile{path: path, year: year}
	if observed {
		f.variable = strings.Join(parts[:len(parts)-1], "_")
		f.replicate = alfpp.ObservedReplicate
		return f, nil
	}
	f.variable = strings.Join(parts[:len(parts)-2], "_")
	f.replicate = parts[len(parts)-2]
	return f, nil
}

func convention(observed bool) string {
	if observed {
		return "{variable}_{year}"
	}
	return "{variable}_{replicate}_{year}"
}

// findMaps walks dir and returns the raster files it contains, sorted by
// path. Files whose names cannot be parsed are skipped.
func findMaps(dir string, observed bool, log logrus.FieldLogger) ([]*mapFile, error) {
	var files []*mapFile
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !raster.IsRaster(path) {
			return nil
		}
		f, err := parseMapName(path, observed)
		if err != nil {
			log.WithField("path", path).Warn(err)
			return nil
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, &alfpp.ConfigError{Input: dir, Err: err}
	}
	if len(files) == 0 {
		return nil, &alfpp.ConfigError{Input: dir, Err: fmt.Errorf("no rasters named %s found", convention(observed))}
	}
	return files, nil
}

type stepKey struct {
	replicate string
	year      int
}

// ListTimesteps finds the modeled outputs under dir and groups them into
// one timestep per replicate and year. Only FireScar, Veg and BurnSeverity
// layers are used. If lagFire is true, the fire layers of each year are
// paired with the vegetation of the year before, and the first year of
// each replicate, which has no preceding vegetation, is skipped.
// Timesteps without a FireScar layer are skipped with a warning.
func ListTimesteps(dir string, lagFire bool, log logrus.FieldLogger) ([]*alfpp.Timestep, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	files, err := findMaps(dir, false, log)
	if err != nil {
		return nil, err
	}

	fire := make(map[stepKey]map[alfpp.Role]alfpp.Layer)
	veg := make(map[stepKey]alfpp.Layer)
	firstYear := make(map[string]int)
	for _, f := range files {
		k := stepKey{replicate: f.replicate, year: f.year}
		if y, ok := firstYear[f.replicate]; !ok || f.year < y {
			firstYear[f.replicate] = f.year
		}
		layer := alfpp.Layer{Path: f.path, Year: f.year}
		switch role := alfpp.Role(f.variable); role {
		case alfpp.FireScar, alfpp.BurnSeverity:
			if fire[k] == nil {
				fire[k] = make(map[alfpp.Role]alfpp.Layer)
			}
			if err := addLayer(fire[k], role, layer); err != nil {
				return nil, &alfpp.ConfigError{Input: dir, Err: err}
			}
		case alfpp.Veg:
			if old, dup := veg[k]; dup {
				return nil, &alfpp.ConfigError{Input: dir, Err: duplicateErr(role, old.Path, layer.Path)}
			}
			veg[k] = layer
		default:
			log.WithField("path", f.path).Debug("ignoring unused variable")
		}
	}

	var o []*alfpp.Timestep
	for k, layers := range fire {
		vegYear := k.year
		if lagFire {
			if k.year == firstYear[k.replicate] {
				continue
			}
			vegYear--
		}
		if v, ok := veg[stepKey{replicate: k.replicate, year: vegYear}]; ok {
			layers[alfpp.Veg] = v
		}
		if _, ok := layers[alfpp.FireScar]; !ok {
			log.WithFields(logrus.Fields{"replicate": k.replicate, "year": k.year}).
				Warn("skipping timestep without a FireScar layer")
			continue
		}
		o = append(o, &alfpp.Timestep{Kind: alfpp.Modeled, Replicate: k.replicate, Year: k.year, Layers: layers})
	}
	sortTimesteps(o)
	return o, nil
}

// ListHistorical finds the observed fire history rasters under dir and
// returns one timestep per year.
func ListHistorical(dir string, log logrus.FieldLogger) ([]*alfpp.Timestep, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	files, err := findMaps(dir, true, log)
	if err != nil {
		return nil, err
	}
	byYear := make(map[int]map[alfpp.Role]alfpp.Layer)
	for _, f := range files {
		if byYear[f.year] == nil {
			byYear[f.year] = make(map[alfpp.Role]alfpp.Layer)
		}
		if err := addLayer(byYear[f.year], alfpp.FireHistory, alfpp.Layer{Path: f.path, Year: f.year}); err != nil {
			return nil, &alfpp.ConfigError{Input: dir, Err: err}
		}
	}
	o := make([]*alfpp.Timestep, 0, len(byYear))
	for year, layers := range byYear {
		o = append(o, &alfpp.Timestep{Kind: alfpp.Observed, Replicate: alfpp.ObservedReplicate, Year: year, Layers: layers})
	}
	sortTimesteps(o)
	return o, nil
}

func addLayer(layers map[alfpp.Role]alfpp.Layer, role alfpp.Role, l alfpp.Layer) error {
	if old, dup := layers[role]; dup {
		return duplicateErr(role, old.Path, l.Path)
	}
	layers[role] = l
	return nil
}

func duplicateErr(role alfpp.Role, a, b string) error {
	return fmt.Errorf("%s layer given by both %s and %s", role, a, b)
}

func sortTimesteps(ts []*alfpp.Timestep) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Replicate != ts[j].Replicate {
			return alfpp.LessReplicate(ts[i].Replicate, ts[j].Replicate)
		}
		return ts[i].Year < ts[j].Year
	})
}
