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

package logger_test

import (
	"testing"

	"beamsync/logger"
	"beamsync/test"
)

func TestCentral(t *testing.T) {
	logger.Clear()

	tw := &test.Writer{}
	logger.Write(tw)
	tw.Compare(t, "")

	logger.Log("test", "this is a test")
	logger.Write(tw)
	tw.Compare(t, "test: this is a test\n")

	logger.Logf("test", "this is test #%d", 2)
	tw.Clear()
	logger.Write(tw)
	tw.Compare(t, "test: this is a test\ntest: this is test #2\n")

	logger.Clear()
	tw.Clear()
	logger.Write(tw)
	tw.Compare(t, "")
}

func TestRepeats(t *testing.T) {
	logger.Clear()

	// identical consecutive entries fold into one with a repeat count
	logger.Log("tracker", "dropped out of order pulse")
	logger.Log("tracker", "dropped out of order pulse")
	logger.Log("tracker", "dropped out of order pulse")

	tw := &test.Writer{}
	logger.Write(tw)
	tw.Compare(t, "tracker: dropped out of order pulse (repeat x3)\n")

	// a different entry breaks the run
	logger.Log("tracker", "something else")
	logger.Log("tracker", "dropped out of order pulse")
	tw.Clear()
	logger.Write(tw)
	tw.Compare(t, "tracker: dropped out of order pulse (repeat x3)\ntracker: something else\ntracker: dropped out of order pulse\n")
}

func TestTail(t *testing.T) {
	logger.Clear()

	logger.Log("test", "one")
	logger.Log("test", "two")
	logger.Log("test", "three")

	tw := &test.Writer{}
	logger.Tail(tw, 2)
	tw.Compare(t, "test: two\ntest: three\n")

	// a tail longer than the log is the whole log
	tw.Clear()
	logger.Tail(tw, 100)
	tw.Compare(t, "test: one\ntest: two\ntest: three\n")
}

func TestEcho(t *testing.T) {
	logger.Clear()

	tw := &test.Writer{}
	logger.SetEcho(tw)
	defer logger.SetEcho(nil)

	logger.Log("test", "echoed")
	tw.Compare(t, "test: echoed\n")
}
