// SPDX-License-Identifier: MPL-2.0

// Package fspath resolves and normalizes the textual paths that appear in
// include directives. All paths handed to the rest of the system are in
// canonical form: absolute, cleaned, and forward-slash separated regardless
// of the host OS. Canonical paths are what keys the include tree's child
// tables and what appears inside boundary markers, so two spellings of the
// same file always collapse to one entry.
package fspath

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Normalize cleans p and converts it to forward-slash form.
func Normalize(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// Resolve resolves a directive reference against the containing directory of
// the file that spelled it. Absolute references are normalized as-is;
// relative references are joined onto dir. The reference may use either
// separator style.
func Resolve(dir, ref string) string {
	ref = strings.TrimSpace(ref)
	if filepath.IsAbs(ref) || path.IsAbs(ref) {
		return Normalize(ref)
	}
	return Normalize(filepath.Join(filepath.FromSlash(dir), filepath.FromSlash(ref)))
}

// Abs resolves p to canonical absolute form, consulting the working
// directory for relative inputs.
func Abs(p string) (string, error) {
	abs, err := filepath.Abs(filepath.FromSlash(p))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return Normalize(abs), nil
}

// Dir returns the containing directory of a canonical path, in canonical
// form.
func Dir(p string) string {
	return Normalize(filepath.Dir(filepath.FromSlash(p)))
}

// Base returns the final element of a canonical path.
func Base(p string) string {
	return path.Base(filepath.ToSlash(p))
}
