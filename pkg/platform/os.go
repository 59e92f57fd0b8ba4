// SPDX-License-Identifier: MPL-2.0

package platform

// OS name constants for runtime.GOOS comparisons, shared by config dir
// resolution and artifact name validation.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)
