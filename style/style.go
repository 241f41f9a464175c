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

// Package style supports specifying CSS styling for rendered chart bands.
//
// A Style instance comprises a mapping from style attribute name to value,
// both represented as strings, e.g. 'font-size' to '12.00px'.  A Style may be
// attached to a payload Datum via the `Define()` method, under keys prefixed
// with 'style_'.
package style

import (
	"fmt"
	"sort"

	"github.com/ilhamster/chartcore/measure"
	"github.com/ilhamster/chartcore/util"
)

const (
	keyPrefix = "style_"
)

// Style defines a set of styles that can be attached to a Datum.
type Style struct {
	attrs map[string]string
}

// New returns a new, empty Style.
func New() *Style {
	return &Style{
		attrs: map[string]string{},
	}
}

// Font returns a Style rendering text in the provided font.  A font size in
// points is rendered in pixels at the provided resolution; a non-positive
// dpi selects 72.
func Font(f measure.Font, dpi float64) *Style {
	if dpi <= 0 {
		dpi = 72
	}
	ret := New().With("font-family", f.Family)
	if f.Size > 0 {
		ret.With("font-size", Px(f.Size*dpi/72))
	}
	return ret
}

// Define returns a PropertyUpdate defining the receiver into a Datum.
// Attributes are defined in name order.
func (s *Style) Define() util.PropertyUpdate {
	names := make([]string, 0, len(s.attrs))
	for attr := range s.attrs {
		names = append(names, attr)
	}
	sort.Strings(names)
	ret := make([]util.PropertyUpdate, 0, len(names))
	for _, attr := range names {
		ret = append(ret, util.StringProperty(keyPrefix+attr, s.attrs[attr]))
	}
	return util.Chain(ret...)
}

// Px formats the provided value as a pixel specifier.
func Px(valPx float64) string {
	return fmt.Sprintf("%.2fpx", valPx)
}

// With sets the specified attribute type and value in the receiver.
func (s *Style) With(attrType string, attrVal string) *Style {
	s.attrs[attrType] = attrVal
	return s
}

// Get returns the value of the specified attribute, if it is set.
func (s *Style) Get(attrType string) (string, bool) {
	val, ok := s.attrs[attrType]
	return val, ok
}
