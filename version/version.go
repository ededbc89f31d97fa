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

// Package version records the version of the binary being run.
package version

import (
	"runtime/debug"
)

// The name to use when referring to the application.
const ApplicationName = "Beamsync"

// if number is empty then the project was not built using the makefile
var number string

// Revision contains the vcs revision. If the source has been modified but
// not committed then the revision string is suffixed with "+dirty".
var revision string

// version string of the project. the value "unreleased" means the project
// was built manually (ie. not with the makefile); the value "local" means
// there is no version number and no vcs information at all, which can
// happen when running with "go run ."
var version string

// Version returns the version string, the revision string and whether this
// is a numbered release version. If release is true then the revision
// information should be used sparingly.
func Version() (string, string, bool) {
	return version, revision, version == number && number != ""
}

func init() {
	var vcsRevision string
	var vcsModified bool

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, v := range info.Settings {
			switch v.Key {
			case "vcs.revision":
				vcsRevision = v.Value
			case "vcs.modified":
				vcsModified = v.Value == "true"
			}
		}
	}

	if version == "" {
		if vcsRevision == "" {
			version = "local"
		} else {
			version = "unreleased"
		}
	}

	revision = vcsRevision
	if vcsModified {
		revision += "+dirty"
	}
}
