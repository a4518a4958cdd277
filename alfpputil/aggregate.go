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
	"context"
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/alfpp"
	"github.com/spatialmodel/alfpp/cloud"
	"github.com/spatialmodel/alfpp/raster"
	"github.com/spatialmodel/alfpp/store"
	"github.com/spf13/cast"
)

// Aggregate lists the timesteps under the configured MapsDir, summarizes
// them over the configured partition and writes the records to
// OutputFile. If observed is true, the inputs are observed fire history
// rasters rather than modeled outputs.
func Aggregate(ctx context.Context, cfg *viper.Viper, observed bool, log logrus.FieldLogger) (*alfpp.RunSummary, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	mapsDir := os.ExpandEnv(cfg.GetString("MapsDir"))
	if mapsDir == "" {
		return nil, &alfpp.ConfigError{Input: "MapsDir", Err: fmt.Errorf("no input directory specified")}
	}
	outputFile := os.ExpandEnv(cfg.GetString("OutputFile"))
	if outputFile == "" {
		return nil, &alfpp.ConfigError{Input: "OutputFile", Err: fmt.Errorf("no output file specified")}
	}

	var timesteps []*alfpp.Timestep
	var err error
	if observed {
		timesteps, err = ListHistorical(mapsDir, log)
	} else {
		timesteps, err = ListTimesteps(mapsDir, cfg.GetBool("LagFire"), log)
	}
	if err != nil {
		return nil, err
	}
	if len(timesteps) == 0 {
		return nil, &alfpp.ConfigError{Input: mapsDir, Err: fmt.Errorf("no timesteps with a FireScar layer found")}
	}

	refPath := os.ExpandEnv(cfg.GetString("ReferenceRaster"))
	if refPath == "" {
		refPath = firstLayer(timesteps[0])
	}
	ref, err := openReference(ctx, refPath)
	if err != nil {
		return nil, err
	}
	pc, err := PartitionConfigFromViper(cfg)
	if err != nil {
		return nil, err
	}
	p, err := ReadPartition(ctx, pc, ref, log)
	if err != nil {
		return nil, err
	}

	proc := alfpp.NewProcessor(p, raster.Open)
	proc.Log = log
	if !observed {
		if proc.VegNames, err = LoadVegNames(ctx, cfg.Get("VegNames"), cfg.GetString("VegNamesFile")); err != nil {
			return nil, err
		}
		if proc.FireScarBand = cfg.GetInt("FireScarBand"); proc.FireScarBand < 1 {
			return nil, &alfpp.ConfigError{Input: "FireScarBand", Err: fmt.Errorf("band %d is not positive", proc.FireScarBand)}
		}
	}

	rc, err := RunConfigFromViper(cfg)
	if err != nil {
		return nil, err
	}
	rc.Log = log

	st, err := store.Open(ctx, outputFile, !cfg.GetBool("Append"), log)
	if err != nil {
		return nil, &alfpp.ConfigError{Input: outputFile, Err: err}
	}
	summary, err := alfpp.Run(ctx, rc, proc, timesteps, st)
	if cerr := st.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("alfpp: closing %s: %v", outputFile, cerr)
	}
	return summary, err
}

// RunConfigFromViper reads the worker pool options from cfg.
func RunConfigFromViper(cfg *viper.Viper) (alfpp.RunConfig, error) {
	rc := alfpp.RunConfig{
		Workers:    cfg.GetInt("Workers"),
		QueueDepth: cfg.GetInt("QueueDepth"),
		FailFast:   cfg.GetBool("FailFast"),
	}
	if rc.Workers < 0 || rc.QueueDepth < 0 {
		return rc, &alfpp.ConfigError{Input: "Workers", Err: fmt.Errorf("Workers and QueueDepth must not be negative")}
	}
	if t := cfg.Get("TaskTimeout"); t != nil {
		timeout, err := cast.ToDurationE(t)
		if err != nil {
			return rc, &alfpp.ConfigError{Input: "TaskTimeout", Err: err}
		}
		rc.TaskTimeout = timeout
	}
	return rc, nil
}

// Partition reads the configured reference raster and divides its grid
// into the configured regions.
func Partition(ctx context.Context, cfg *viper.Viper, log logrus.FieldLogger) (alfpp.Partition, error) {
	refPath := os.ExpandEnv(cfg.GetString("ReferenceRaster"))
	if refPath == "" {
		return nil, &alfpp.ConfigError{Input: "ReferenceRaster", Err: fmt.Errorf("no reference raster specified")}
	}
	ref, err := openReference(ctx, refPath)
	if err != nil {
		return nil, err
	}
	pc, err := PartitionConfigFromViper(cfg)
	if err != nil {
		return nil, err
	}
	return ReadPartition(ctx, pc, ref, log)
}

// WritePartition writes p to path as a raster holding the ID of the region
// each cell belongs to and the partition background elsewhere.
func WritePartition(path string, p alfpp.Partition) error {
	regions := p.Regions()
	if len(regions) == 0 {
		return fmt.Errorf("alfpp: partition has no regions")
	}
	data := regions[0].Indicator()
	for _, r := range regions[1:] {
		for _, i := range r.Cells() {
			data[i] = r.ID
		}
	}
	return raster.Write(path, p.Grid(), data)
}

func openReference(ctx context.Context, path string) (*alfpp.Raster, error) {
	local, err := cloud.MaybeDownload(ctx, path, "")
	if err != nil {
		return nil, &alfpp.ConfigError{Input: path, Err: err}
	}
	return alfpp.OpenReference(raster.Open, local)
}

func firstLayer(ts *alfpp.Timestep) string {
	for _, role := range []alfpp.Role{alfpp.FireScar, alfpp.FireHistory, alfpp.Veg, alfpp.BurnSeverity} {
		if l, ok := ts.Layers[role]; ok {
			return l.Path
		}
	}
	return ""
}
