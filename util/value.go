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

package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type valueType int

// Enumerated value types.  The numbering is part of the JSON encoding.
const (
	unsetValue valueType = iota
	StringValueType
	StringIndexValueType
	StringsValueType
	StringIndicesValueType
	IntegerValueType
	IntegersValueType
	DoubleValueType
	DurationValueType
	TimestampValueType
	DoublesValueType
)

var valueTypeNames = map[valueType]string{
	unsetValue:             "unset",
	StringValueType:        "str",
	StringIndexValueType:   "str_idx",
	StringsValueType:       "strs",
	StringIndicesValueType: "str_idxs",
	IntegerValueType:       "int",
	IntegersValueType:      "ints",
	DoubleValueType:        "dbl",
	DoublesValueType:       "dbls",
	DurationValueType:      "duration",
	TimestampValueType:     "timestamp",
}

func (vt valueType) String() string {
	if name, ok := valueTypeNames[vt]; ok {
		return name
	}
	return fmt.Sprintf("valueType(%d)", int(vt))
}

// V is a single property value in a frame payload.
type V struct {
	V any
	T valueType
}

// timestamp is the wire form of a TimestampValueType V.
type timestamp struct {
	UnixSeconds int64
	UnixNanos   int64
}

func (ts timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int64{ts.UnixSeconds, ts.UnixNanos})
}

// StringValue returns a new V wrapping the provided string.
func StringValue(str string) *V {
	return &V{V: str, T: StringValueType}
}

// StringIndexValue returns a new V wrapping the provided string-table index.
func StringIndexValue(strIdx int64) *V {
	return &V{V: strIdx, T: StringIndexValueType}
}

// StringsValue returns a new V wrapping the provided strings.
func StringsValue(strs ...string) *V {
	return &V{V: strs, T: StringsValueType}
}

// StringIndicesValue returns a new V wrapping the provided string-table
// indices.
func StringIndicesValue(strIdxs ...int64) *V {
	return &V{V: strIdxs, T: StringIndicesValueType}
}

// IntegerValue returns a new V wrapping the provided int64.
func IntegerValue(i int64) *V {
	return &V{V: i, T: IntegerValueType}
}

// IntegersValue returns a new V wrapping the provided int64s.
func IntegersValue(ints ...int64) *V {
	return &V{V: ints, T: IntegersValueType}
}

// DoubleValue returns a new V wrapping the provided float64.
func DoubleValue(f float64) *V {
	return &V{V: f, T: DoubleValueType}
}

// DoublesValue returns a new V wrapping the provided float64s.  Tick
// coordinates are carried this way.
func DoublesValue(fs ...float64) *V {
	return &V{V: fs, T: DoublesValueType}
}

// DurationValue returns a new V wrapping the provided Duration.
func DurationValue(dur time.Duration) *V {
	return &V{V: dur, T: DurationValueType}
}

// TimestampValue returns a new V wrapping the provided Time.
func TimestampValue(t time.Time) *V {
	return &V{
		V: timestamp{
			UnixSeconds: t.Unix(),
			UnixNanos:   int64(t.Nanosecond()),
		},
		T: TimestampValueType,
	}
}

func (v *V) expect(t valueType) error {
	if v == nil {
		return fmt.Errorf("expected value type '%s', got no value", t)
	}
	if v.T != t {
		return fmt.Errorf("expected value type '%s', got '%s'", t, v.T)
	}
	return nil
}

// ExpectStringValue returns the string wrapped by val, or an error if val
// is not a string.
func ExpectStringValue(val *V) (string, error) {
	if err := val.expect(StringValueType); err != nil {
		return "", err
	}
	return val.V.(string), nil
}

func expectStringIndexValue(val *V) (int64, error) {
	if err := val.expect(StringIndexValueType); err != nil {
		return 0, err
	}
	return val.V.(int64), nil
}

// ExpectStringsValue returns the strings wrapped by val, or an error if val
// is not a string slice.
func ExpectStringsValue(val *V) ([]string, error) {
	if err := val.expect(StringsValueType); err != nil {
		return nil, err
	}
	return val.V.([]string), nil
}

func expectStringIndicesValue(val *V) ([]int64, error) {
	if err := val.expect(StringIndicesValueType); err != nil {
		return nil, err
	}
	return val.V.([]int64), nil
}

// ExpectIntegerValue returns the int64 wrapped by val, or an error if val is
// not an integer.
func ExpectIntegerValue(val *V) (int64, error) {
	if err := val.expect(IntegerValueType); err != nil {
		return 0, err
	}
	return val.V.(int64), nil
}

// ExpectIntegersValue returns the int64s wrapped by val, or an error if val
// is not an integer slice.
func ExpectIntegersValue(val *V) ([]int64, error) {
	if err := val.expect(IntegersValueType); err != nil {
		return nil, err
	}
	return val.V.([]int64), nil
}

// ExpectDoubleValue returns the float64 wrapped by val, or an error if val
// is not a double.
func ExpectDoubleValue(val *V) (float64, error) {
	if err := val.expect(DoubleValueType); err != nil {
		return 0, err
	}
	return val.V.(float64), nil
}

// ExpectDoublesValue returns the float64s wrapped by val, or an error if val
// is not a double slice.
func ExpectDoublesValue(val *V) ([]float64, error) {
	if err := val.expect(DoublesValueType); err != nil {
		return nil, err
	}
	return val.V.([]float64), nil
}

// ExpectDurationValue returns the Duration wrapped by val, or an error if
// val is not a duration.
func ExpectDurationValue(val *V) (time.Duration, error) {
	if err := val.expect(DurationValueType); err != nil {
		return 0, err
	}
	return val.V.(time.Duration), nil
}

// ExpectTimestampValue returns the Time wrapped by val, or an error if val
// is not a timestamp.
func ExpectTimestampValue(val *V) (time.Time, error) {
	if err := val.expect(TimestampValueType); err != nil {
		return time.Time{}, err
	}
	ts := val.V.(timestamp)
	return time.Unix(ts.UnixSeconds, ts.UnixNanos), nil
}

func quoted(strs []string) string {
	return "[ '" + strings.Join(strs, "', '") + "' ]"
}

// PrettyPrint returns the receiver, deterministically prettyprinted, with
// string indices resolved through st.  Only for use in tests.
func (v *V) PrettyPrint(st []string) string {
	lookup := func(idx int64) string {
		if idx < 0 || idx >= int64(len(st)) {
			return fmt.Sprintf("<bad string index %d>", idx)
		}
		return st[idx]
	}
	switch v.T {
	case unsetValue:
		return "unset"
	case StringValueType:
		return "'" + v.V.(string) + "'"
	case StringIndexValueType:
		return "'" + lookup(v.V.(int64)) + "'"
	case StringsValueType:
		return quoted(v.V.([]string))
	case StringIndicesValueType:
		idxs := v.V.([]int64)
		strs := make([]string, len(idxs))
		for i, idx := range idxs {
			strs[i] = lookup(idx)
		}
		return quoted(strs)
	case IntegerValueType:
		return strconv.FormatInt(v.V.(int64), 10)
	case IntegersValueType:
		ints := v.V.([]int64)
		strs := make([]string, len(ints))
		for i, n := range ints {
			strs[i] = strconv.FormatInt(n, 10)
		}
		return "[ " + strings.Join(strs, ", ") + " ]"
	case DoubleValueType:
		return fmt.Sprintf("%.6f", v.V.(float64))
	case DoublesValueType:
		fs := v.V.([]float64)
		strs := make([]string, len(fs))
		for i, f := range fs {
			strs[i] = fmt.Sprintf("%.6f", f)
		}
		return "[ " + strings.Join(strs, ", ") + " ]"
	case DurationValueType:
		return v.V.(time.Duration).String()
	case TimestampValueType:
		ts, _ := ExpectTimestampValue(v)
		return ts.UTC().String()
	}
	return "error: unsupported value type " + v.T.String()
}

// MarshalJSON encodes the receiver compactly, as the two-element array
// [type, value]:
//
//	[number,       ; the valueType
//	  null     |   ; if unset
//	  string   |   ; if string
//	  number   |   ; if integer, string index, double, or duration (ns)
//	  string[] |   ; if strings
//	  number[] |   ; if integers, doubles, or string indices
//	  [number, number] ; if timestamp ([secs, nanos] from epoch)
//	]
func (v *V) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{v.T, v.V})
}

func asInt(x any) (int64, error) {
	n, ok := x.(json.Number)
	if !ok {
		return 0, fmt.Errorf("expected a number, got %T", x)
	}
	return n.Int64()
}

func asFloat(x any) (float64, error) {
	n, ok := x.(json.Number)
	if !ok {
		return 0, fmt.Errorf("expected a number, got %T", x)
	}
	return n.Float64()
}

func asSlice(x any) ([]any, error) {
	s, ok := x.([]any)
	if !ok {
		return nil, fmt.Errorf("expected an array, got %T", x)
	}
	return s, nil
}

func (v *V) fromAny(got []any) error {
	if len(got) != 2 {
		return fmt.Errorf("value must be a [type, value] pair")
	}
	t, err := asInt(got[0])
	if err != nil {
		return err
	}
	v.T = valueType(t)
	raw := got[1]
	switch v.T {
	case unsetValue:
		v.V = nil
	case StringValueType:
		str, ok := raw.(string)
		if !ok {
			return fmt.Errorf("expected a string, got %T", raw)
		}
		v.V = str
	case StringIndexValueType, IntegerValueType:
		v.V, err = asInt(raw)
	case DurationValueType:
		var ns int64
		ns, err = asInt(raw)
		v.V = time.Duration(ns)
	case DoubleValueType:
		v.V, err = asFloat(raw)
	case StringsValueType:
		items, err := asSlice(raw)
		if err != nil {
			return err
		}
		strs := make([]string, len(items))
		for i, item := range items {
			str, ok := item.(string)
			if !ok {
				return fmt.Errorf("expected a string, got %T", item)
			}
			strs[i] = str
		}
		v.V = strs
	case StringIndicesValueType, IntegersValueType:
		items, err := asSlice(raw)
		if err != nil {
			return err
		}
		ints := make([]int64, len(items))
		for i, item := range items {
			if ints[i], err = asInt(item); err != nil {
				return err
			}
		}
		v.V = ints
	case DoublesValueType:
		items, err := asSlice(raw)
		if err != nil {
			return err
		}
		fs := make([]float64, len(items))
		for i, item := range items {
			if fs[i], err = asFloat(item); err != nil {
				return err
			}
		}
		v.V = fs
	case TimestampValueType:
		parts, err := asSlice(raw)
		if err != nil {
			return err
		}
		if len(parts) != 2 {
			return fmt.Errorf("timestamp value is improperly formed")
		}
		var ts timestamp
		if ts.UnixSeconds, err = asInt(parts[0]); err != nil {
			return err
		}
		if ts.UnixNanos, err = asInt(parts[1]); err != nil {
			return err
		}
		v.V = ts
	default:
		return fmt.Errorf("unsupported value type %d", t)
	}
	return err
}

func decodeJSON(data []byte) ([]any, error) {
	var got []any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&got); err != nil {
		return nil, err
	}
	return got, nil
}

// UnmarshalJSON decodes the receiver from its MarshalJSON form.
func (v *V) UnmarshalJSON(data []byte) error {
	got, err := decodeJSON(data)
	if err != nil {
		return err
	}
	return v.fromAny(got)
}
