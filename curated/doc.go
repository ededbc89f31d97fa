// This file is part of Beamsync.
//
// Beamsync is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Beamsync is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Beamsync.  If not, see <https://www.gnu.org/licenses/>.

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. It takes a
// formatting pattern and placeholder values, like the Errorf() function in
// the fmt package, and the pattern doubles as the error's identity. Packages
// that return curated errors declare their patterns as exported constants so
// that callers can test for them:
//
//	if err := reg.Schedule(0, 0, 0); err != nil {
//		if curated.Is(err, dispatch.ReleasedRegistration) {
//			return
//		}
//	}
//
// The Is() function tests the outermost error only. The Has() function is
// similar but checks for the pattern anywhere in the error chain. IsAny()
// reports whether the error is curated at all; an uncurated error is one
// this project did not create and can be treated as unexpected.
package curated
