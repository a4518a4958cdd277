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

package alfpp

// Raster value conventions used by ALFRESCO outputs.
const (
	// Background marks cells that are not part of any feature: unburned
	// cells in fire scar layers and cells outside every region in
	// partition rasters.
	Background int32 = 0

	// SeverityUnclassified marks burn severity cells with no severity class.
	SeverityUnclassified int32 = 255

	// VegNoData marks vegetation cells outside of the model domain.
	VegNoData int32 = 255
)

const (
	// FullDomainID is the region identifier used by FullDomain.
	FullDomainID int32 = 1

	// FullDomainName is the region name used by FullDomain.
	FullDomainName = "_alf_"

	// ObservedReplicate is the replicate label of observed fire history records.
	ObservedReplicate = "observed"
)

// Conventions holds the sentinel values that producers and consumers of
// rasters must agree on.
type Conventions struct {
	// Background is excluded from fire and severity counts.
	Background int32

	// SeverityUnclassified is excluded from severity counts.
	SeverityUnclassified int32

	// VegNoData is excluded from vegetation counts.
	VegNoData int32
}

// DefaultConventions returns the conventions used by ALFRESCO.
func DefaultConventions() Conventions {
	return Conventions{
		Background:           Background,
		SeverityUnclassified: SeverityUnclassified,
		VegNoData:            VegNoData,
	}
}

// DefaultVegNames is the ALFRESCO vegetation class lookup.
var DefaultVegNames = map[int32]string{
	0: "No Veg",
	1: "Tundra",
	2: "Black Spruce",
	3: "White Spruce",
	4: "Deciduous",
	5: "Shrub Tundra",
	6: "Graminoid Tundra",
	7: "Wetland Tundra",
	8: "Barren Lichen-Moss",
	9: "Temperate Rainforest",
}
