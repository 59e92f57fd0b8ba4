// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for appc.
//
// This package implements the Cobra command hierarchy for the appc CLI:
// one-shot builds, live watch mode, and configuration management.
package cmd
