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
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/alfpp"
	"github.com/spatialmodel/alfpp/cloud"
	"github.com/spatialmodel/alfpp/raster"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// PartitionConfig specifies how the study area is divided into regions.
type PartitionConfig struct {
	// File is a polygon shapefile or a classified raster aligned with the
	// model grid. If it is empty, the whole grid is one region.
	File string

	// IDField and NameField are the shapefile fields holding region
	// identifiers and names.
	IDField, NameField string

	// Names maps raster region values to names.
	Names map[int32]string

	Background int32
	Rule       alfpp.BurnRule
}

// PartitionConfigFromViper reads the Subdomains.* options from cfg.
func PartitionConfigFromViper(cfg *viper.Viper) (PartitionConfig, error) {
	var pc PartitionConfig
	pc.File = os.ExpandEnv(cfg.GetString("Subdomains.File"))
	pc.IDField = cfg.GetString("Subdomains.IDField")
	pc.NameField = cfg.GetString("Subdomains.NameField")
	bg, err := cast.ToInt32E(cfg.Get("Subdomains.Background"))
	if err != nil {
		return pc, fmt.Errorf("alfpp: invalid Subdomains.Background: %v", err)
	}
	pc.Background = bg
	if pc.Rule, err = alfpp.ParseBurnRule(cfg.GetString("Subdomains.Rule")); err != nil {
		return pc, err
	}
	names, err := getStringMapString("Subdomains.Names", cfg)
	if err != nil {
		return pc, err
	}
	if pc.Names, err = codeMap(names); err != nil {
		return pc, fmt.Errorf("alfpp: invalid Subdomains.Names: %v", err)
	}
	return pc, nil
}

// ReadPartition builds the partition described by pc on the grid of ref.
// Remote partition files are downloaded first.
func ReadPartition(ctx context.Context, pc PartitionConfig, ref *alfpp.Raster, log logrus.FieldLogger) (alfpp.Partition, error) {
	if pc.File == "" {
		return alfpp.NewFullDomain(ref, nil)
	}
	file, err := cloud.MaybeDownload(ctx, pc.File, "")
	if err != nil {
		return nil, &alfpp.ConfigError{Input: pc.File, Err: err}
	}
	switch {
	case strings.EqualFold(filepath.Ext(file), ".shp"):
		return alfpp.NewVectorPartition(alfpp.VectorConfig{
			File:       file,
			IDField:    pc.IDField,
			NameField:  pc.NameField,
			Rule:       pc.Rule,
			Background: pc.Background,
		}, ref.Grid, log)
	case raster.IsRaster(file):
		domains, err := alfpp.ReadRaster(raster.Open, file, 1, ref.Grid)
		if err != nil {
			return nil, &alfpp.ConfigError{Input: pc.File, Err: err}
		}
		return alfpp.NewRasterPartition(domains, ref.Grid, pc.Background, pc.Names)
	default:
		return nil, &alfpp.ConfigError{Input: pc.File, Err: fmt.Errorf("unsupported partition file type %q", filepath.Ext(file))}
	}
}

// LoadVegNames returns the vegetation class lookup. If file is not empty,
// the lookup is read from the YAML, TOML or JSON file it names. Otherwise
// inline, a map or a JSON object string of code to name, is used. If both
// are empty, alfpp.DefaultVegNames is returned.
func LoadVegNames(ctx context.Context, inline interface{}, file string) (map[int32]string, error) {
	if file != "" {
		return readVegNames(ctx, file)
	}
	m, err := toStringMapString(inline)
	if err != nil {
		return nil, fmt.Errorf("alfpp: invalid VegNames: %v", err)
	}
	if len(m) == 0 {
		return alfpp.DefaultVegNames, nil
	}
	names, err := codeMap(m)
	if err != nil {
		return nil, fmt.Errorf("alfpp: invalid VegNames: %v", err)
	}
	return names, nil
}

func readVegNames(ctx context.Context, file string) (map[int32]string, error) {
	local, err := cloud.MaybeDownload(ctx, os.ExpandEnv(file), "")
	if err != nil {
		return nil, &alfpp.ConfigError{Input: file, Err: err}
	}
	b, err := ioutil.ReadFile(local)
	if err != nil {
		return nil, &alfpp.ConfigError{Input: file, Err: err}
	}
	m := make(map[string]string)
	switch strings.ToLower(filepath.Ext(local)) {
	case ".yaml", ".yml":
		// YAML keys are usually integers.
		raw := make(map[interface{}]interface{})
		if err = yaml.Unmarshal(b, &raw); err == nil {
			m, err = cast.ToStringMapStringE(raw)
		}
	case ".toml":
		_, err = toml.Decode(string(b), &m)
	case ".json":
		err = json.Unmarshal(b, &m)
	default:
		err = fmt.Errorf("unsupported lookup table format %q; use .yaml, .toml or .json", filepath.Ext(local))
	}
	if err != nil {
		return nil, &alfpp.ConfigError{Input: file, Err: err}
	}
	names, err := codeMap(m)
	if err != nil {
		return nil, &alfpp.ConfigError{Input: file, Err: err}
	}
	if len(names) == 0 {
		return nil, &alfpp.ConfigError{Input: file, Err: fmt.Errorf("the lookup table is empty")}
	}
	return names, nil
}

// codeMap converts the string keys of m to raster codes.
func codeMap(m map[string]string) (map[int32]string, error) {
	if len(m) == 0 {
		return nil, nil
	}
	o := make(map[int32]string, len(m))
	for k, v := range m {
		code, err := cast.ToInt32E(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("invalid code %q: %v", k, err)
		}
		o[code] = v
	}
	return o, nil
}

// getStringMapString returns a map[string]string from a viper
// configuration, accounting for the fact that it might be a JSON object.
func getStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	m, err := toStringMapString(cfg.Get(varName))
	if err != nil {
		return nil, fmt.Errorf("alfpp: invalid %s: %v", varName, err)
	}
	return m, nil
}

func toStringMapString(i interface{}) (map[string]string, error) {
	switch v := i.(type) {
	case nil:
		return nil, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}, map[interface{}]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			return nil, err
		}
		return o, nil
	default:
		return nil, fmt.Errorf("invalid type %T", i)
	}
}
