// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import "fmt"

// javaVersionNames maps a class file's major_version field to the JDK
// release that introduced it (JVMS 4.1 Table 4.1-B), extended through
// Java 24 (major version 68).
var javaVersionNames = map[uint16]string{
	45: "1.1", 46: "1.2", 47: "1.3", 48: "1.4", 49: "5",
	50: "6", 51: "7", 52: "8", 53: "9", 54: "10",
	55: "11", 56: "12", 57: "13", 58: "14", 59: "15",
	60: "16", 61: "17", 62: "18", 63: "19", 64: "20",
	65: "21", 66: "22", 67: "23", 68: "24",
}

// JavaVersionName renders a class file's major_version as the JDK release
// string that introduced it, or a generic fallback for versions outside
// the known table (older pre-1.1 or not-yet-released majors).
func JavaVersionName(major uint16) string {
	if name, ok := javaVersionNames[major]; ok {
		return name
	}
	if major < 45 {
		return fmt.Sprintf("pre-1.1 (major %d)", major)
	}
	return fmt.Sprintf("unreleased (major %d)", major)
}
