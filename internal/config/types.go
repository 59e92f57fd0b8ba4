// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kartikk221/application-compiler/pkg/platform"
)

const (
	// DefaultKeyword is the directive keyword scanned for in source files.
	DefaultKeyword DirectiveKeyword = "include"

	// DefaultWatchDelay is the debounce window for filesystem events, in
	// milliseconds.
	DefaultWatchDelay Interval = 250
	// DefaultSettleDelay is the post-debounce settle window, in milliseconds.
	DefaultSettleDelay Interval = 50
	// DefaultWriteDelay is the minimum spacing between artifact writes, in
	// milliseconds.
	DefaultWriteDelay Interval = 250
)

var (
	// ErrInvalidKeyword is the sentinel error wrapped by InvalidKeywordError.
	ErrInvalidKeyword = errors.New("invalid directive keyword")
	// ErrInvalidInterval is the sentinel error wrapped by InvalidIntervalError.
	ErrInvalidInterval = errors.New("invalid interval")
	// ErrInvalidOutputDirPath is returned when an OutputDirPath value is whitespace-only.
	ErrInvalidOutputDirPath = errors.New("invalid output dir path")
	// ErrInvalidOutputFileName is returned when an OutputFileName value is malformed.
	ErrInvalidOutputFileName = errors.New("invalid output file name")
	// ErrInvalidCheckCommand is the sentinel error wrapped by InvalidCheckCommandError.
	ErrInvalidCheckCommand = errors.New("invalid check command")
	// ErrInvalidWriteConfig is the sentinel error wrapped by InvalidWriteConfigError.
	ErrInvalidWriteConfig = errors.New("invalid write config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// DirectiveKeyword is the identifier recognized as an include directive
	// in scanned source files. A valid keyword is a non-empty identifier:
	// letters, digits, '_' or '$', not starting with a digit.
	DirectiveKeyword string

	// InvalidKeywordError is returned when a DirectiveKeyword value is not a
	// valid identifier. It wraps ErrInvalidKeyword for errors.Is() compatibility.
	InvalidKeywordError struct {
		Value DirectiveKeyword
	}

	// Interval is a duration expressed in whole milliseconds, the unit used
	// in config files. A valid interval is non-negative.
	Interval int

	// InvalidIntervalError is returned when an Interval value is negative.
	// It wraps ErrInvalidInterval for errors.Is() compatibility.
	InvalidIntervalError struct {
		Field string
		Value Interval
	}

	// OutputDirPath is a filesystem path to the artifact output directory.
	// The zero value ("") is valid and disables live writing.
	OutputDirPath string

	// InvalidOutputDirPathError is returned when an OutputDirPath value is
	// non-empty but whitespace-only.
	InvalidOutputDirPathError struct {
		Value OutputDirPath
	}

	// OutputFileName is the artifact file name. The zero value ("") is valid
	// and means "derive from the root file name". Non-zero values must be a
	// bare file name without path separators.
	OutputFileName string

	// InvalidOutputFileNameError is returned when an OutputFileName value is
	// whitespace-only or contains path separators.
	InvalidOutputFileNameError struct {
		Value OutputFileName
	}

	// CheckCommand is the syntax-checker argv. The zero value (empty slice)
	// is valid and disables post-write checking. Non-empty commands must not
	// contain blank arguments; "{file}" in an argument expands to the
	// artifact path at invocation time.
	CheckCommand []string

	// InvalidCheckCommandError is returned when a CheckCommand contains a
	// blank argument. It wraps ErrInvalidCheckCommand for errors.Is().
	InvalidCheckCommandError struct {
		Index int
	}

	// InvalidWriteConfigError is returned when a WriteConfig has invalid fields.
	// It wraps ErrInvalidWriteConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidWriteConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// WriteConfig configures live artifact output.
	WriteConfig struct {
		// Dir is the output directory; empty disables live writing.
		Dir OutputDirPath `json:"dir" mapstructure:"dir"`
		// Name is the artifact file name; empty derives it from the root file.
		Name OutputFileName `json:"name" mapstructure:"name"`
		// Delay is the write rate limit in milliseconds.
		Delay Interval `json:"delay" mapstructure:"delay"`
		// Check is the post-write syntax-checker argv.
		Check CheckCommand `json:"check" mapstructure:"check"`
		// RelativeErrors rewrites checker traces to original-source positions.
		RelativeErrors bool `json:"relative_errors" mapstructure:"relative_errors"`
	}

	// Config holds the application configuration.
	Config struct {
		// Keyword is the include directive keyword.
		Keyword DirectiveKeyword `json:"keyword" mapstructure:"keyword"`
		// WatchDelay is the filesystem event debounce window in milliseconds.
		WatchDelay Interval `json:"watch_delay" mapstructure:"watch_delay"`
		// SettleDelay is the post-debounce settle window in milliseconds.
		SettleDelay Interval `json:"settle_delay" mapstructure:"settle_delay"`
		// Write configures live artifact output.
		Write WriteConfig `json:"write" mapstructure:"write"`
	}
)

// String returns the string representation of the DirectiveKeyword.
func (k DirectiveKeyword) String() string { return string(k) }

// IsValid returns whether the DirectiveKeyword is a valid identifier,
// and a list of validation errors if it is not.
func (k DirectiveKeyword) IsValid() (bool, []error) {
	if k == "" {
		return false, []error{&InvalidKeywordError{Value: k}}
	}
	for i, r := range string(k) {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false, []error{&InvalidKeywordError{Value: k}}
			}
		default:
			return false, []error{&InvalidKeywordError{Value: k}}
		}
	}
	return true, nil
}

// Error implements the error interface for InvalidKeywordError.
func (e *InvalidKeywordError) Error() string {
	return fmt.Sprintf("invalid directive keyword %q: must be an identifier", e.Value)
}

// Unwrap returns ErrInvalidKeyword for errors.Is() compatibility.
func (e *InvalidKeywordError) Unwrap() error { return ErrInvalidKeyword }

// Duration converts the interval to a time.Duration.
func (i Interval) Duration() time.Duration {
	return time.Duration(i) * time.Millisecond
}

// IsValid returns whether the Interval is non-negative. The field name is
// not known here; callers attach it via isValidField.
func (i Interval) IsValid() (bool, []error) {
	return i.isValidField("")
}

func (i Interval) isValidField(field string) (bool, []error) {
	if i < 0 {
		return false, []error{&InvalidIntervalError{Field: field, Value: i}}
	}
	return true, nil
}

// Error implements the error interface for InvalidIntervalError.
func (e *InvalidIntervalError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid interval %s: %d ms (must be >= 0)", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid interval: %d ms (must be >= 0)", e.Value)
}

// Unwrap returns ErrInvalidInterval for errors.Is() compatibility.
func (e *InvalidIntervalError) Unwrap() error { return ErrInvalidInterval }

// String returns the string representation of the OutputDirPath.
func (p OutputDirPath) String() string { return string(p) }

// IsValid returns whether the OutputDirPath is valid.
// The zero value ("") is valid (disables live writing).
// Non-zero values must not be whitespace-only.
func (p OutputDirPath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidOutputDirPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidOutputDirPathError.
func (e *InvalidOutputDirPathError) Error() string {
	return fmt.Sprintf("invalid output dir path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidOutputDirPath for errors.Is() compatibility.
func (e *InvalidOutputDirPathError) Unwrap() error { return ErrInvalidOutputDirPath }

// String returns the string representation of the OutputFileName.
func (n OutputFileName) String() string { return string(n) }

// IsValid returns whether the OutputFileName is valid.
// The zero value ("") is valid (derives the name from the root file).
// Non-zero values must be a bare file name without path separators and
// must not be a Windows reserved name.
func (n OutputFileName) IsValid() (bool, []error) {
	if n == "" {
		return true, nil
	}
	if strings.TrimSpace(string(n)) == "" || strings.ContainsAny(string(n), `/\`) {
		return false, []error{&InvalidOutputFileNameError{Value: n}}
	}
	if platform.IsWindowsReservedName(string(n)) {
		return false, []error{&InvalidOutputFileNameError{Value: n}}
	}
	return true, nil
}

// Error implements the error interface for InvalidOutputFileNameError.
func (e *InvalidOutputFileNameError) Error() string {
	return fmt.Sprintf("invalid output file name %q: must be a bare file name", e.Value)
}

// Unwrap returns ErrInvalidOutputFileName for errors.Is() compatibility.
func (e *InvalidOutputFileNameError) Unwrap() error { return ErrInvalidOutputFileName }

// IsValid returns whether the CheckCommand is valid.
// The zero value (empty) is valid (disables checking).
// Non-empty commands must not contain blank arguments.
func (c CheckCommand) IsValid() (bool, []error) {
	var errs []error
	for i, arg := range c {
		if strings.TrimSpace(arg) == "" {
			errs = append(errs, &InvalidCheckCommandError{Index: i})
		}
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// Error implements the error interface for InvalidCheckCommandError.
func (e *InvalidCheckCommandError) Error() string {
	return fmt.Sprintf("invalid check command: argument %d is blank", e.Index)
}

// Unwrap returns ErrInvalidCheckCommand for errors.Is() compatibility.
func (e *InvalidCheckCommandError) Unwrap() error { return ErrInvalidCheckCommand }

// IsValid returns whether the WriteConfig has valid fields.
// It delegates to Dir.IsValid(), Name.IsValid(), Delay validation, and
// Check.IsValid(). RelativeErrors needs no validation.
func (w WriteConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := w.Dir.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := w.Name.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := w.Delay.isValidField("write.delay"); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := w.Check.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidWriteConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidWriteConfigError.
func (e *InvalidWriteConfigError) Error() string {
	return fmt.Sprintf("invalid write config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidWriteConfig for errors.Is() compatibility.
func (e *InvalidWriteConfigError) Unwrap() error { return ErrInvalidWriteConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to Keyword.IsValid(), both delay validations, and
// Write.IsValid().
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Keyword.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.WatchDelay.isValidField("watch_delay"); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.SettleDelay.isValidField("settle_delay"); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Write.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Keyword:     DefaultKeyword,
		WatchDelay:  DefaultWatchDelay,
		SettleDelay: DefaultSettleDelay,
		Write: WriteConfig{
			Dir:            "",
			Name:           "", // Will derive from root file name if empty
			Delay:          DefaultWriteDelay,
			Check:          CheckCommand{"node", "--check", "{file}"},
			RelativeErrors: true,
		},
	}
}
