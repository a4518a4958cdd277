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

// Command alfpp summarizes the outputs of the ALFRESCO landscape fire
// model over the regions of a study area.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/alfpp/alfpputil"
)

func main() {
	if err := alfpputil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
