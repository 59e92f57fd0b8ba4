// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/kartikk221/application-compiler/pkg/types"
)

// ErrInvalidLoadOptions is the sentinel error wrapped by InvalidLoadOptionsError.
var ErrInvalidLoadOptions = errors.New("invalid load options")

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath types.FilesystemPath
		// ConfigDirPath overrides the config directory lookup when set.
		ConfigDirPath types.FilesystemPath
	}

	// InvalidLoadOptionsError is returned when a LoadOptions has invalid fields.
	// It wraps ErrInvalidLoadOptions for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidLoadOptionsError struct {
		FieldErrors []error
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	fileProvider struct{}
)

// Validate checks that every set field holds a usable path. Zero-value
// fields are valid and mean "use the default lookup".
func (o LoadOptions) Validate() error {
	var errs []error
	if o.ConfigFilePath != "" {
		if valid, fieldErrs := o.ConfigFilePath.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if o.ConfigDirPath != "" {
		if valid, fieldErrs := o.ConfigDirPath.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return &InvalidLoadOptionsError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface for InvalidLoadOptionsError.
func (e *InvalidLoadOptionsError) Error() string {
	return fmt.Sprintf("invalid load options: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidLoadOptions for errors.Is() compatibility.
func (e *InvalidLoadOptionsError) Unwrap() error { return ErrInvalidLoadOptions }

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	cfg, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
