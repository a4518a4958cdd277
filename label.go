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

// LabelComponents assigns a distinct positive label to every 4-connected
// group of cells in data (row-major, width by height) whose value differs
// from background. Labels are numbered from 1 in the row-major order of
// each component's first cell. It returns the labels, with 0 for
// background cells, and the number of components.
func LabelComponents(data []int32, width, height int, background int32) ([]int32, int) {
	labels := make([]int32, len(data))
	var next int32
	var queue []int
	for start, v := range data {
		if v == background || labels[start] != 0 {
			continue
		}
		next++
		labels[start] = next
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			i := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			row, col := i/width, i%width
			for _, n := range [4][2]int{{row - 1, col}, {row + 1, col}, {row, col - 1}, {row, col + 1}} {
				if n[0] < 0 || n[0] >= height || n[1] < 0 || n[1] >= width {
					continue
				}
				j := n[0]*width + n[1]
				if data[j] == background || labels[j] != 0 {
					continue
				}
				labels[j] = next
				queue = append(queue, j)
			}
		}
	}
	return labels, int(next)
}
