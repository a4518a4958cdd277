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

// Package alfpputil holds the command-line interface and configuration
// glue for alfpp.
package alfpputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/alfpp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to alfpp.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "verbose",
			usage: `
              verbose turns on debug logging.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "MapsDir",
			usage: `
              MapsDir is the directory holding the rasters to summarize.
              It is searched recursively. Modeled outputs are named
              {variable}_{replicate}_{year}.tif and observed fire history
              rasters are named {variable}_{year}.tif.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), historicalCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the database the metric records are written to.
              Paths ending in .sqlite or .db are SQLite databases; other
              paths, including gs://, s3:// and file:// blob URLs, are JSON
              document databases.`,
			shorthand:  "o",
			defaultVal: "alfpp.json",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), historicalCmd.Flags()},
		},
		{
			name: "Append",
			usage: `
              Append adds records to an existing OutputFile instead of
              replacing its contents.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), historicalCmd.Flags()},
		},
		{
			name: "ReferenceRaster",
			usage: `
              ReferenceRaster is the raster whose grid defines the study
              area. If it is empty, the first input raster is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{partitionCmd.Flags(), runCmd.Flags(), historicalCmd.Flags()},
		},
		{
			name: "Subdomains.File",
			usage: `
              Subdomains.File is a polygon shapefile or a classified raster
              dividing the study area into regions. If it is empty, the whole
              study area is summarized as a single region.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{partitionCmd.Flags(), runCmd.Flags(), historicalCmd.Flags()},
		},
		{
			name: "Subdomains.IDField",
			usage: `
              Subdomains.IDField is the shapefile field holding integer
              region identifiers.`,
			defaultVal: "OBJECTID",
			flagsets:   []*pflag.FlagSet{partitionCmd.Flags(), runCmd.Flags(), historicalCmd.Flags()},
		},
		{
			name: "Subdomains.NameField",
			usage: `
              Subdomains.NameField is the shapefile field holding region names.`,
			defaultVal: "Name",
			flagsets:   []*pflag.FlagSet{partitionCmd.Flags(), runCmd.Flags(), historicalCmd.Flags()},
		},
		{
			name: "Subdomains.Names",
			usage: `
              Subdomains.Names maps the values of a raster Subdomains.File
              to region names, for example {"1":"Boreal","2":"Tundra"}.
              Unnamed regions are named by their value.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{partitionCmd.Flags(), runCmd.Flags(), historicalCmd.Flags()},
		},
		{
			name: "Subdomains.Background",
			usage: `
              Subdomains.Background is the value of cells outside every region.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{partitionCmd.Flags(), runCmd.Flags(), historicalCmd.Flags()},
		},
		{
			name: "Subdomains.Rule",
			usage: `
              Subdomains.Rule selects which cells a polygon covers: "center"
              for cells whose center lies in the polygon, or "overlap" for
              cells the polygon overlaps at all.`,
			defaultVal: "center",
			flagsets:   []*pflag.FlagSet{partitionCmd.Flags(), runCmd.Flags(), historicalCmd.Flags()},
		},
		{
			name: "PartitionOutput",
			usage: `
              PartitionOutput is the .tif or .nc file the burned partition is
              written to.`,
			defaultVal: "partition.tif",
			flagsets:   []*pflag.FlagSet{partitionCmd.Flags()},
		},
		{
			name: "VegNames",
			usage: `
              VegNames maps vegetation codes to class names, for example
              {"1":"Tundra","2":"Black Spruce"}. If neither VegNames nor
              VegNamesFile is set, the ALFRESCO classes are used.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "VegNamesFile",
			usage: `
              VegNamesFile is a YAML, TOML or JSON file mapping vegetation
              codes to class names. It takes precedence over VegNames.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LagFire",
			usage: `
              LagFire pairs the fire layers of each year with the vegetation
              of the year before.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "FireScarBand",
			usage: `
              FireScarBand is the band of FireScar rasters that holds fire
              identifiers. ALFRESCO writes multi-band FireScar outputs with
              the fire identifiers in band 2; use --FireScarBand=2 for those.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Workers",
			usage: `
              Workers is the number of timesteps processed at once. Zero
              means one per processor.`,
			shorthand:  "w",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), historicalCmd.Flags()},
		},
		{
			name: "QueueDepth",
			usage: `
              QueueDepth is the number of timesteps queued per worker.`,
			defaultVal: 4,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), historicalCmd.Flags()},
		},
		{
			name: "TaskTimeout",
			usage: `
              TaskTimeout limits the time spent on each timestep, for
              example "5m". Zero means no limit.`,
			defaultVal: "0s",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), historicalCmd.Flags()},
		},
		{
			name: "FailFast",
			usage: `
              FailFast stops the run at the first timestep that cannot be
              processed. Otherwise failed timesteps are reported and skipped.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), historicalCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("ALFPP")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(v)
				set.StringP(option.name, option.shorthand, b.String(), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(historicalCmd)
	Root.AddCommand(partitionCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	Cfg.AutomaticEnv()
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("alfpp: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// newLogger returns a logger writing to standard error at the level
// selected by the verbose option.
func newLogger(cfg *viper.Viper) *logrus.Logger {
	log := logrus.New()
	log.Out = os.Stderr
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableSorting:  true,
	}
	log.Level = logrus.InfoLevel
	if cfg.GetBool("verbose") {
		log.Level = logrus.DebugLevel
	}
	return log
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "alfpp",
	Short: "Summarize ALFRESCO outputs by region.",
	Long: `alfpp summarizes the gridded outputs of the ALFRESCO landscape fire
model over named sub-regions of the study area. Fire sizes, burned area,
vegetation cover and burn severity are counted for every replicate and year
and saved to a document database.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'ALFPP_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of alfpp.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("alfpp v%s\n", alfpp.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd summarizes modeled outputs.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Summarize modeled outputs.",
	Long: `run summarizes the FireScar, Veg and BurnSeverity rasters of every
replicate and year found in MapsDir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return aggregateCmd(cmd, false)
	},
	DisableAutoGenTag: true,
}

// historicalCmd summarizes observed fire history.
var historicalCmd = &cobra.Command{
	Use:   "historical",
	Short: "Summarize observed fire history.",
	Long: `historical summarizes the observed fire history rasters found in
MapsDir. Each raster marks the cells burned in one year; contiguous burned
cells are counted as one fire.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return aggregateCmd(cmd, true)
	},
	DisableAutoGenTag: true,
}

// partitionCmd burns the configured regions into the reference grid.
var partitionCmd = &cobra.Command{
	Use:   "partition",
	Short: "Write the region partition as a raster.",
	Long: `partition divides the grid of ReferenceRaster into the regions given
by the Subdomains options and writes the result to PartitionOutput, so that
the regions can be checked before a run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(Cfg)
		p, err := Partition(context.Background(), Cfg, log)
		if err != nil {
			return err
		}
		out := os.ExpandEnv(Cfg.GetString("PartitionOutput"))
		if err := WritePartition(out, p); err != nil {
			return err
		}
		for _, r := range p.Regions() {
			cmd.Printf("%d\t%s\t%d cells\n", r.ID, r.Name, r.Len())
		}
		return nil
	},
	DisableAutoGenTag: true,
}

func aggregateCmd(cmd *cobra.Command, observed bool) error {
	s, err := Aggregate(context.Background(), Cfg, observed, newLogger(Cfg))
	if err != nil {
		return err
	}
	cmd.Printf("run %s: %d records written, %d timesteps failed\n", s.ID, s.Processed, len(s.Failed))
	for _, f := range s.Failed {
		cmd.Printf("\t%v\n", f)
	}
	return nil
}
