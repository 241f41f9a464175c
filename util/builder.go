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
	"errors"
	"sync"
	"time"
)

// stringTable interns strings as dense integer indices.  It is thread-safe.
type stringTable struct {
	mu      sync.RWMutex
	indices map[string]int64
	strs    []string
}

func newStringTable() *stringTable {
	return &stringTable{
		indices: map[string]int64{},
	}
}

// index returns the index of str, interning it if necessary.
func (st *stringTable) index(str string) int64 {
	st.mu.RLock()
	idx, ok := st.indices[str]
	st.mu.RUnlock()
	if ok {
		return idx
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	// Another writer may have interned str since the read above.
	if idx, ok := st.indices[str]; ok {
		return idx
	}
	idx = int64(len(st.strs))
	st.strs = append(st.strs, str)
	st.indices[str] = idx
	return idx
}

func (st *stringTable) table() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]string{}, st.strs...)
}

// errorList collects the errors raised while building a payload.
type errorList struct {
	mu   sync.Mutex
	errs []error
}

func (el *errorList) add(err error) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.errs = append(el.errs, err)
}

func (el *errorList) failed() bool {
	el.mu.Lock()
	defer el.mu.Unlock()
	return len(el.errs) > 0
}

func (el *errorList) err() error {
	el.mu.Lock()
	defer el.mu.Unlock()
	return errors.Join(el.errs...)
}

// DataBuilder is implemented by types that can assemble payload trees.
type DataBuilder interface {
	With(updates ...PropertyUpdate) DataBuilder
	Child() DataBuilder
}

// PayloadBuilder assembles a Data from one or more named sections.
type PayloadBuilder struct {
	st   *stringTable
	errs *errorList

	mu       sync.Mutex
	sections []*Section
}

// NewPayloadBuilder returns a new, empty PayloadBuilder.
func NewPayloadBuilder() *PayloadBuilder {
	return &PayloadBuilder{
		st:   newStringTable(),
		errs: &errorList{},
	}
}

// Section adds a new named section to the payload, returning a DataBuilder
// for its root.  Section is safe for concurrent use, though each returned
// DataBuilder is not.
func (pb *PayloadBuilder) Section(name string) DataBuilder {
	root := newDatumBuilder(pb.st, pb.errs)
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.sections = append(pb.sections, &Section{
		Name: name,
		Root: root.d,
	})
	return root
}

// Data completes and returns the payload under construction, or the errors
// raised while building it.
func (pb *PayloadBuilder) Data() (*Data, error) {
	if err := pb.errs.err(); err != nil {
		return nil, err
	}
	pb.mu.Lock()
	defer pb.mu.Unlock()
	return &Data{
		StringTable: pb.st.table(),
		Sections:    append([]*Section{}, pb.sections...),
	}, nil
}

// PropertyUpdate updates the properties of a Datum under construction.  A
// nil PropertyUpdate does nothing.
type PropertyUpdate func(db *datumBuilder) error

// EmptyUpdate is a PropertyUpdate that does nothing.
var EmptyUpdate PropertyUpdate = nil

// ErrorProperty fails the payload under construction with err.
func ErrorProperty(err error) PropertyUpdate {
	return func(db *datumBuilder) error {
		return err
	}
}

type datumBuilder struct {
	st   *stringTable
	errs *errorList
	d    *Datum
}

func newDatumBuilder(st *stringTable, errs *errorList) *datumBuilder {
	return &datumBuilder{
		st:   st,
		errs: errs,
		d: &Datum{
			Properties: map[int64]*V{},
			Children:   []*Datum{},
		},
	}
}

// With applies the provided PropertyUpdates to the receiver in order,
// stopping at the first error.  Once any error is raised, the payload's
// builders ignore further updates.
func (db *datumBuilder) With(updates ...PropertyUpdate) DataBuilder {
	if db.errs.failed() {
		return db
	}
	for _, update := range updates {
		if update == nil {
			continue
		}
		if err := update(db); err != nil {
			db.errs.add(err)
			break
		}
	}
	return db
}

func (db *datumBuilder) Child() DataBuilder {
	child := newDatumBuilder(db.st, db.errs)
	db.d.Children = append(db.d.Children, child.d)
	return child
}

func (db *datumBuilder) set(key string, v *V) error {
	db.d.Properties[db.st.index(key)] = v
	return nil
}

func (db *datumBuilder) indices(strs []string) []int64 {
	ret := make([]int64, len(strs))
	for i, str := range strs {
		ret[i] = db.st.index(str)
	}
	return ret
}

// If applies du if predicate is true.
func If(predicate bool, du PropertyUpdate) PropertyUpdate {
	if predicate {
		return du
	}
	return EmptyUpdate
}

// IfElse applies t if predicate is true, and f otherwise.
func IfElse(predicate bool, t, f PropertyUpdate) PropertyUpdate {
	if predicate {
		return t
	}
	return f
}

// Chain applies the provided PropertyUpdates in order.
func Chain(updates ...PropertyUpdate) PropertyUpdate {
	return func(db *datumBuilder) error {
		for _, update := range updates {
			if update == nil {
				continue
			}
			if err := update(db); err != nil {
				return err
			}
		}
		return nil
	}
}

// StringProperty sets a string property.
func StringProperty(key, value string) PropertyUpdate {
	return func(db *datumBuilder) error {
		return db.set(key, StringIndexValue(db.st.index(value)))
	}
}

// StringsProperty sets a string slice property.
func StringsProperty(key string, values ...string) PropertyUpdate {
	return func(db *datumBuilder) error {
		return db.set(key, StringIndicesValue(db.indices(values)...))
	}
}

// StringsPropertyExtended appends to a string slice property, creating it if
// necessary.
func StringsPropertyExtended(key string, values ...string) PropertyUpdate {
	return func(db *datumBuilder) error {
		existing, ok := db.d.Properties[db.st.index(key)]
		if !ok {
			return db.set(key, StringIndicesValue(db.indices(values)...))
		}
		idxs, err := expectStringIndicesValue(existing)
		if err != nil {
			return err
		}
		existing.V = append(idxs, db.indices(values)...)
		return nil
	}
}

// IntegerProperty sets an integer property.
func IntegerProperty(key string, value int64) PropertyUpdate {
	return func(db *datumBuilder) error {
		return db.set(key, IntegerValue(value))
	}
}

// IntegersProperty sets an integer slice property.
func IntegersProperty(key string, values ...int64) PropertyUpdate {
	return func(db *datumBuilder) error {
		return db.set(key, IntegersValue(values...))
	}
}

// DoubleProperty sets a double property.
func DoubleProperty(key string, value float64) PropertyUpdate {
	return func(db *datumBuilder) error {
		return db.set(key, DoubleValue(value))
	}
}

// DoublesProperty sets a double slice property.
func DoublesProperty(key string, values ...float64) PropertyUpdate {
	return func(db *datumBuilder) error {
		return db.set(key, DoublesValue(values...))
	}
}

// DurationProperty sets a duration property.
func DurationProperty(key string, value time.Duration) PropertyUpdate {
	return func(db *datumBuilder) error {
		return db.set(key, DurationValue(value))
	}
}

// TimestampProperty sets a timestamp property.
func TimestampProperty(key string, value time.Time) PropertyUpdate {
	return func(db *datumBuilder) error {
		return db.set(key, TimestampValue(value))
	}
}
