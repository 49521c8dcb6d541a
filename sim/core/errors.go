// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"errors"
	"fmt"
)

// ErrCancelled is returned by a blocking engine call that observed shutdown
// instead of completing. It terminates the calling actor and is not a
// failure of the run.
var ErrCancelled = errors.New("ErrCancelled")

// ConfigurationError rejects invalid construction parameters.
type ConfigurationError struct {
	Field  string
	Value  int
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %d: %s", e.Field, e.Value, e.Reason)
}

// IsCancellation reports whether err is the normal end-of-run signal rather
// than a failure.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCancelled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func requirePositive(field string, value int) error {
	if value <= 0 {
		return &ConfigurationError{Field: field, Value: value, Reason: "must be positive"}
	}
	return nil
}
