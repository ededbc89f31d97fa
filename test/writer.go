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

package test

import (
	"strings"
	"testing"
)

// Writer is an implementation of io.Writer that records everything written
// to it. Useful for capturing diagnostic output.
type Writer struct {
	b strings.Builder
}

// Write implements the io.Writer interface. It never returns an error.
func (w *Writer) Write(p []byte) (int, error) {
	return w.b.Write(p)
}

func (w *Writer) String() string {
	return w.b.String()
}

// Compare the captured output with the expected string.
func (w *Writer) Compare(t *testing.T, expected string) bool {
	t.Helper()

	if w.b.String() != expected {
		t.Errorf("captured output does not match expected (%q  - wanted %q)", w.b.String(), expected)
		return false
	}
	return true
}

// Contains tests whether the captured output contains the string s.
func (w *Writer) Contains(t *testing.T, s string) bool {
	t.Helper()

	if !strings.Contains(w.b.String(), s) {
		t.Errorf("captured output does not contain %q (captured: %q)", s, w.b.String())
		return false
	}
	return true
}

// Clear the captured output ready for reuse of the Writer.
func (w *Writer) Clear() {
	w.b.Reset()
}
