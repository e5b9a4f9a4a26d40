// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

// Anomalies recorded against a parsed ClassFile: conditions that are not
// format violations (and so do not abort parsing) but that a careful
// reader of the file would want to know about.
var (
	// AnoMajorVersionUnreleased is reported when major_version lies above
	// the known JDK release table. Versions below 45 are not reported.
	AnoMajorVersionUnreleased = "major_version does not correspond to a known JDK release"

	// AnoAbstractOrNativeMethodHasCode is reported when a method flagged
	// abstract or native nonetheless carries a Code attribute, which JVMS
	// 4.7.3 forbids.
	AnoAbstractOrNativeMethodHasCode = "abstract or native method has a Code attribute"

	// AnoConcreteMethodMissingCode is reported when a method that is
	// neither abstract nor native has no Code attribute.
	AnoConcreteMethodMissingCode = "non-abstract, non-native method has no Code attribute"

	// AnoInterfaceWithInstanceField is reported when an interface class
	// declares a field that is not both static and final.
	AnoInterfaceWithInstanceField = "interface field is not both static and final"

	// AnoSuperClassIndexZeroOnNonObject is reported when super_class is 0
	// (JVMS permits this only for java/lang/Object itself).
	AnoSuperClassIndexZeroOnNonObject = "super_class is 0 on a class other than java/lang/Object"

	// AnoDeprecatedMember is reported when a field or method carries a
	// Deprecated attribute.
	AnoDeprecatedMember = "member carries a Deprecated attribute"
)
