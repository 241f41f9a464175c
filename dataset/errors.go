/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package dataset

import (
	"errors"
	"fmt"

	"github.com/ilhamster/chartcore/dimension"
)

var (
	// ErrMonotonicityViolation is returned when an update would introduce a
	// new coordinate below the previous maximum of an ordered dimension.
	ErrMonotonicityViolation = errors.New("monotonicity violation")
	// ErrUnknownMetric is returned when a metric name was not registered at
	// construction.
	ErrUnknownMetric = errors.New("unknown metric")
	// ErrDimensionMismatch is returned when a 2D access pattern is used on a
	// 1D dataset, or vice versa.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrMetricKindMismatch is returned when a scalar accessor is used on an
	// array-like metric, or vice versa.
	ErrMetricKindMismatch = errors.New("metric kind mismatch")
	// ErrInvalidCoordinate is returned when an update contains a coordinate
	// that cannot be ordered or matched, such as NaN.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// MonotonicityError describes a rejected out-of-order coordinate.  It
// matches ErrMonotonicityViolation under errors.Is.
type MonotonicityError struct {
	// The offending axis: "x" or "y".
	Axis       string
	Coordinate dimension.Key
	// The largest coordinate present before the update.
	Max dimension.Key
}

func (me *MonotonicityError) Error() string {
	return fmt.Sprintf("%s: new %s coordinate %s is below previous maximum %s",
		ErrMonotonicityViolation, me.Axis, me.Coordinate, me.Max)
}

// Is supports errors.Is(err, ErrMonotonicityViolation).
func (me *MonotonicityError) Is(target error) bool {
	return target == ErrMonotonicityViolation
}
