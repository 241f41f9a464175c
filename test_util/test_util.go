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

// Package testutil provides helpers for testing the construction of frame
// payloads.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ilhamster/chartcore/util"
)

// UpdateComparator checks that a set of PropertyUpdates under test has the
// same effect as an expected set.
type UpdateComparator struct {
	got, want []util.PropertyUpdate
}

// NewUpdateComparator returns a new, empty UpdateComparator.
func NewUpdateComparator() *UpdateComparator {
	return &UpdateComparator{}
}

// WithTestUpdates sets the PropertyUpdates under test.
func (uc *UpdateComparator) WithTestUpdates(got ...util.PropertyUpdate) *UpdateComparator {
	uc.got = got
	return uc
}

// WithWantUpdates sets the expected PropertyUpdates.
func (uc *UpdateComparator) WithWantUpdates(want ...util.PropertyUpdate) *UpdateComparator {
	uc.want = want
	return uc
}

// Compare applies the 'got' and 'want' updates to sibling Datums and
// compares the results, returning a difference message and true if they
// differ.  Property order is not significant, and neither is string-table
// order.
func (uc *UpdateComparator) Compare(t *testing.T) (string, bool) {
	t.Helper()
	pb := util.NewPayloadBuilder()
	root := pb.Section("compare")
	root.Child().With(uc.got...)
	root.Child().With(uc.want...)
	data, err := pb.Data()
	if err != nil {
		t.Fatalf("failed to apply updates: %s", err)
	}
	children := data.Sections[0].Root.Children
	diff := cmp.Diff(
		children[1].PrettyPrint("", data.StringTable),
		children[0].PrettyPrint("", data.StringTable))
	if diff != "" {
		return fmt.Sprintf("Got %s, diff (-want +got):\n%s",
			data.Sections[0].PrettyPrint("", data.StringTable), diff), true
	}
	return "", false
}

// TestDataBuilder fluently assembles expected payload trees.
type TestDataBuilder interface {
	With(updates ...util.PropertyUpdate) TestDataBuilder
	Child() TestDataBuilder
	// AndChild adds a sibling of the receiver.
	AndChild() TestDataBuilder
	Parent() TestDataBuilder
}

type testDataBuilder struct {
	db     util.DataBuilder
	parent *testDataBuilder
}

func (tdb *testDataBuilder) With(updates ...util.PropertyUpdate) TestDataBuilder {
	tdb.db.With(updates...)
	return tdb
}

func (tdb *testDataBuilder) Child() TestDataBuilder {
	return &testDataBuilder{
		db:     tdb.db.Child(),
		parent: tdb,
	}
}

// AndChild adds a Datum to the receiver's parent, or to the receiver itself
// if it is the root.
func (tdb *testDataBuilder) AndChild() TestDataBuilder {
	if tdb.parent == nil {
		return tdb.Child()
	}
	return tdb.parent.Child()
}

// Parent returns the receiver's parent, or the receiver if it is the root.
func (tdb *testDataBuilder) Parent() TestDataBuilder {
	if tdb.parent == nil {
		return tdb
	}
	return tdb.parent
}

func dataOf(d any) (*util.Data, error) {
	switch v := d.(type) {
	case *util.PayloadBuilder:
		return v.Data()
	case *util.Data:
		return v, nil
	default:
		return nil, fmt.Errorf("argument must be a *util.PayloadBuilder or a *util.Data, got %T", d)
	}
}

// CompareData compares got and want, each a *util.PayloadBuilder or a
// *util.Data, reporting any difference on t.  Problems other than a
// difference are returned.
func CompareData(t *testing.T, got, want any) error {
	t.Helper()
	gotData, err := dataOf(got)
	if err != nil {
		return err
	}
	wantData, err := dataOf(want)
	if err != nil {
		return err
	}
	if diff := cmp.Diff(wantData.PrettyPrint(), gotData.PrettyPrint()); diff != "" {
		t.Errorf("Got data %s, diff (-want +got):\n%s", gotData.PrettyPrint(), diff)
	}
	return nil
}

func build(t *testing.T, name string, fn any) *util.PayloadBuilder {
	t.Helper()
	pb := util.NewPayloadBuilder()
	switch build := fn.(type) {
	case func(util.DataBuilder):
		build(pb.Section(name))
	case func(TestDataBuilder):
		build(&testDataBuilder{db: pb.Section(name)})
	default:
		t.Fatalf("expected a func(util.DataBuilder) or func(testutil.TestDataBuilder), got %T", fn)
	}
	return pb
}

// CompareBuilders builds a single-section payload with each of buildGot
// and buildWant, each a func(util.DataBuilder) or a func(TestDataBuilder),
// and compares them as CompareData does.
func CompareBuilders(t *testing.T, buildGot, buildWant any) error {
	t.Helper()
	return CompareData(t, build(t, "got", buildGot), build(t, "got", buildWant))
}
