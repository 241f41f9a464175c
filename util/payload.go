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

// Package util defines the property payload in which chart frames are
// handed to renderers and label UIs:
//
// V, a single typed property value, with {type}Value constructors and
// Expect{type}Value accessors that fail on a type mismatch;
//
// Datum, a tree node of string-keyed properties, and Data, a set of named
// Datum trees sharing one string table;
//
// PayloadBuilder and DataBuilder, for assembling Data programmatically from
// PropertyUpdates.
package util

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Datum is a single node of a payload tree.  Property keys, and string
// property values, are indices into the enclosing Data's string table.
type Datum struct {
	Properties map[int64]*V
	Children   []*Datum
}

func (d *Datum) sortedKeys(less func(a, b int64) bool) []int64 {
	keys := make([]int64, 0, len(d.Properties))
	for k := range d.Properties {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		return less(keys[a], keys[b])
	})
	return keys
}

// PrettyPrint returns the receiver deterministically prettyprinted, with
// properties in key order.  Only for use in tests.
func (d *Datum) PrettyPrint(indent string, st []string) string {
	ret := []string{}
	for _, k := range d.sortedKeys(func(a, b int64) bool { return st[a] < st[b] }) {
		ret = append(ret,
			fmt.Sprintf("%sProp '%s': %s", indent, st[k], d.Properties[k].PrettyPrint(st)))
	}
	for _, child := range d.Children {
		ret = append(ret,
			fmt.Sprintf("%sChild:", indent),
			child.PrettyPrint(indent+"  ", st))
	}
	return strings.Join(ret, "\n")
}

// MarshalJSON encodes the receiver compactly as [KV[], Datum[]], where each
// KV is a [key index, V] pair.
func (d *Datum) MarshalJSON() ([]byte, error) {
	keys := d.sortedKeys(func(a, b int64) bool { return a < b })
	props := make([]any, len(keys))
	for i, k := range keys {
		props[i] = []any{k, d.Properties[k]}
	}
	children := make([]any, len(d.Children))
	for i, child := range d.Children {
		children[i] = child
	}
	return json.Marshal([]any{props, children})
}

func (d *Datum) fromAny(got []any) error {
	if len(got) != 2 {
		return fmt.Errorf("datum must be a [properties, children] pair")
	}
	props, err := asSlice(got[0])
	if err != nil {
		return err
	}
	children, err := asSlice(got[1])
	if err != nil {
		return err
	}
	d.Properties = make(map[int64]*V, len(props))
	for _, prop := range props {
		kv, err := asSlice(prop)
		if err != nil {
			return err
		}
		if len(kv) != 2 {
			return fmt.Errorf("property must be a [key, value] pair")
		}
		k, err := asInt(kv[0])
		if err != nil {
			return err
		}
		rawV, err := asSlice(kv[1])
		if err != nil {
			return err
		}
		v := &V{}
		if err := v.fromAny(rawV); err != nil {
			return err
		}
		d.Properties[k] = v
	}
	d.Children = make([]*Datum, len(children))
	for i, child := range children {
		rawChild, err := asSlice(child)
		if err != nil {
			return err
		}
		d.Children[i] = &Datum{}
		if err := d.Children[i].fromAny(rawChild); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalJSON decodes the receiver from its MarshalJSON form.
func (d *Datum) UnmarshalJSON(data []byte) error {
	got, err := decodeJSON(data)
	if err != nil {
		return err
	}
	return d.fromAny(got)
}

// Section is a named payload tree, such as a single chart frame.
type Section struct {
	Name string
	Root *Datum
}

// PrettyPrint returns the receiver deterministically prettyprinted.
// Only for use in tests.
func (s *Section) PrettyPrint(indent string, st []string) string {
	return strings.Join([]string{
		fmt.Sprintf("%sSection %s", indent, s.Name),
		indent + "  Root:",
		s.Root.PrettyPrint(indent+"    ", st),
	}, "\n")
}

// Data is a complete payload.
type Data struct {
	StringTable []string
	Sections    []*Section
}

// Section returns the receiver's section with the provided name, or nil if
// there is none.
func (d *Data) Section(name string) *Section {
	for _, s := range d.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Properties returns the properties of datum keyed by name.
func (d *Data) Properties(datum *Datum) map[string]*V {
	ret := make(map[string]*V, len(datum.Properties))
	for k, v := range datum.Properties {
		if k >= 0 && k < int64(len(d.StringTable)) {
			ret[d.StringTable[k]] = v
		}
	}
	return ret
}

func (d *Data) lookup(idx int64) (string, error) {
	if idx < 0 || idx >= int64(len(d.StringTable)) {
		return "", fmt.Errorf("string index %d out of range", idx)
	}
	return d.StringTable[idx], nil
}

// String returns the string wrapped by val, resolving string-table indices
// through the receiver.
func (d *Data) String(val *V) (string, error) {
	if val != nil && val.T == StringIndexValueType {
		idx, err := expectStringIndexValue(val)
		if err != nil {
			return "", err
		}
		return d.lookup(idx)
	}
	return ExpectStringValue(val)
}

// Strings returns the strings wrapped by val, resolving string-table
// indices through the receiver.
func (d *Data) Strings(val *V) ([]string, error) {
	if val != nil && val.T == StringIndicesValueType {
		idxs, err := expectStringIndicesValue(val)
		if err != nil {
			return nil, err
		}
		ret := make([]string, len(idxs))
		for i, idx := range idxs {
			if ret[i], err = d.lookup(idx); err != nil {
				return nil, err
			}
		}
		return ret, nil
	}
	return ExpectStringsValue(val)
}

// PrettyPrint returns the receiver deterministically prettyprinted.
// Only for use in tests.
func (d *Data) PrettyPrint() string {
	ret := []string{"Data:"}
	for _, s := range d.Sections {
		ret = append(ret, s.PrettyPrint("  ", d.StringTable))
	}
	return strings.Join(ret, "\n")
}

// DataFromJSON decodes a Data from its JSON encoding.
func DataFromJSON(j []byte) (*Data, error) {
	ret := &Data{}
	if err := json.Unmarshal(j, ret); err != nil {
		return nil, err
	}
	return ret, nil
}
