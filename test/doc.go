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

// Package test contains helper functions to remove common boilerplate and
// make testing easier.
//
// The ExpectedFailure and ExpectedSuccess functions test for failure and
// success under generic conditions. Note how the nil type is interpreted: it
// is considered a success, because of how Go errors work (nil indicating no
// error), and so will cause ExpectedFailure to fail and ExpectedSuccess to
// succeed.
//
// The Equate() function compares like-typed variables for equality. Some
// types can be compared against an int literal for convenience. See the
// Equate() documentation for the supported types.
//
// The Writer type implements io.Writer and can be used to capture diagnostic
// output for comparison with the Compare() and Contains() functions.
package test
