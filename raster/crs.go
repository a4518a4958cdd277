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

import "strings"

// proj4 holds Proj4 definitions of the coordinate reference systems
// ALFRESCO inputs and region layers are usually distributed in.
var proj4 = map[int]string{
	3338: "+proj=aea +lat_1=55 +lat_2=65 +lat_0=50 +lon_0=-154 +x_0=0 +y_0=0 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs",
	4269: "+proj=longlat +ellps=GRS80 +datum=NAD83 +no_defs",
	4326: "+proj=longlat +ellps=WGS84 +datum=WGS84 +no_defs",
	3857: "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +wktext +no_defs",
}

// CRS returns the Proj4 definition of an EPSG code, or an empty string
// if it is not known.
func CRS(epsg int) string { return proj4[epsg] }

// EPSG returns the EPSG code of a Proj4 definition returned by CRS.
func EPSG(crs string) (int, bool) {
	crs = strings.TrimSpace(crs)
	for code, def := range proj4 {
		if def == crs {
			return code, true
		}
	}
	return 0, false
}
