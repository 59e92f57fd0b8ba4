// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// This package contains utilities for handling platform-specific concerns,
// such as Windows reserved filenames that cannot be used as artifact
// names, plus OS name constants for runtime.GOOS comparisons.
package platform
