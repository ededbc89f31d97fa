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

package main

import (
	"os"
	"path/filepath"
	"testing"

	"beamsync/test"
)

func TestCbreakKeysRequiresTerminal(t *testing.T) {
	// a plain file is not a character device so cbreak mode must be refused
	// rather than attempted
	path := filepath.Join(t.TempDir(), "input")
	if err := os.WriteFile(path, []byte("q"), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer f.Close()

	keys, restore, err := cbreakKeys(f)
	test.ExpectedFailure(t, err)
	if keys != nil || restore != nil {
		t.Errorf("no key channel or restore function expected on failure")
	}
}
