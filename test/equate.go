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
	"testing"
	"time"

	"beamsync/timing"
)

// Equate is used to test equality between one value and another. Generally,
// both values must be of the same type but for some types the expected value
// can be an int. The reason for this is that a literal number value is of
// type int and it is convenient to write something like this, without having
// to cast the expected value:
//
//	var t timing.TimePoint
//	t = someFunction()
//	test.Equate(t, tp, 16666666)
//
// This is by no means a comprehensive comparison function. It is however,
// good enough for the types this project works with.
func Equate(t *testing.T, value, expectedValue interface{}) {
	t.Helper()

	switch v := value.(type) {
	default:
		t.Fatalf("unhandled type for Equate() function (%T))", v)

	case nil:
		if expectedValue != nil {
			t.Errorf("equation of type %T failed (%v  - wanted nil)", v, v)
		}

	case int:
		switch ev := expectedValue.(type) {
		case int:
			if v != ev {
				t.Errorf("equation of type %T failed (%d  - wanted %d)", v, v, ev)
			}
		default:
			t.Fatalf("values for Equate() are not the same type (%T and %T)", v, expectedValue)
		}

	case bool:
		switch ev := expectedValue.(type) {
		case bool:
			if v != ev {
				t.Errorf("equation of type %T failed (%v  - wanted %v)", v, v, ev)
			}
		default:
			t.Fatalf("values for Equate() are not the same type (%T and %T)", v, expectedValue)
		}

	case string:
		switch ev := expectedValue.(type) {
		case string:
			if v != ev {
				t.Errorf("equation of type %T failed (%s  - wanted %s)", v, v, ev)
			}
		default:
			t.Fatalf("values for Equate() are not the same type (%T and %T)", v, expectedValue)
		}

	case time.Duration:
		switch ev := expectedValue.(type) {
		case time.Duration:
			if v != ev {
				t.Errorf("equation of type %T failed (%v  - wanted %v)", v, v, ev)
			}
		case int:
			if v != time.Duration(ev) {
				t.Errorf("equation of type %T failed (%v  - wanted %dns)", v, v, ev)
			}
		default:
			t.Fatalf("values for Equate() are not compatible (%T and %T)", v, ev)
		}

	case timing.TimePoint:
		switch ev := expectedValue.(type) {
		case timing.TimePoint:
			if v != ev {
				t.Errorf("equation of type %T failed (%v  - wanted %v)", v, v, ev)
			}
		case int:
			if v != timing.TimePoint(ev) {
				t.Errorf("equation of type %T failed (%v  - wanted %dns)", v, v, ev)
			}
		default:
			t.Fatalf("values for Equate() are not compatible (%T and %T)", v, ev)
		}

	case timing.Period:
		switch ev := expectedValue.(type) {
		case timing.Period:
			if v != ev {
				t.Errorf("equation of type %T failed (%v  - wanted %v)", v, v, ev)
			}
		case time.Duration:
			if v != timing.Period(ev) {
				t.Errorf("equation of type %T failed (%v  - wanted %v)", v, v, ev)
			}
		case int:
			if v != timing.Period(ev) {
				t.Errorf("equation of type %T failed (%v  - wanted %dns)", v, v, ev)
			}
		default:
			t.Fatalf("values for Equate() are not compatible (%T and %T)", v, ev)
		}
	}
}
