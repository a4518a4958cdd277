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

/*
Package alfpp summarizes the gridded outputs of the ALFRESCO landscape fire
model over named sub-regions of the study area.

A run reads classified rasters (fire scars, vegetation, burn severity, or
observed fire history) for every replicate and year, counts the category
values that fall inside each region of a Partition, derives fire,
vegetation and severity metrics from the counts, and appends one
MetricRecord per timestep to a Store.

Partitions can be built from a polygon shapefile (NewVectorPartition), from
a classified raster that is already aligned with the model grid
(NewRasterPartition), or from the model grid itself (NewFullDomain).
*/
package alfpp
