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
	"fmt"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// cbreakKeys puts the input file into cbreak mode and returns a channel of
// the keys pressed. The returned restore function must be called before the
// program exits or the user's terminal will be left in cbreak mode.
func cbreakKeys(input *os.File) (chan byte, func(), error) {
	stat, err := input.Stat()
	if err != nil {
		return nil, nil, err
	}
	if stat.Mode()&os.ModeCharDevice == 0 {
		return nil, nil, fmt.Errorf("input is not a terminal")
	}

	var saved unix.Termios
	if err := termios.Tcgetattr(input.Fd(), &saved); err != nil {
		return nil, nil, err
	}

	cbreak := saved
	termios.Cfmakecbreak(&cbreak)
	if err := termios.Tcsetattr(input.Fd(), termios.TCIFLUSH, &cbreak); err != nil {
		return nil, nil, err
	}

	restore := func() {
		_ = termios.Tcsetattr(input.Fd(), termios.TCIFLUSH, &saved)
	}

	keys := make(chan byte)
	go func() {
		b := make([]byte, 1)
		for {
			n, err := input.Read(b)
			if err != nil {
				close(keys)
				return
			}
			if n == 1 {
				keys <- b[0]
			}
		}
	}()

	return keys, restore, nil
}
