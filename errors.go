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

import "fmt"

// ConfigError is returned when a run cannot start because one of its
// inputs is unusable. Configuration errors are not retried.
type ConfigError struct {
	// Input names the offending input, usually a file path.
	Input string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("alfpp: configuration error in %s: %v", e.Input, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// TimestepError reports the failure of a single timestep. The run that
// produced it skips the timestep and continues.
type TimestepError struct {
	Replicate string
	Year      int
	Err       error
}

func (e *TimestepError) Error() string {
	return fmt.Sprintf("alfpp: replicate %s year %d: %v", e.Replicate, e.Year, e.Err)
}

func (e *TimestepError) Unwrap() error { return e.Err }
