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

package ticks

import (
	datarange "github.com/ilhamster/chartcore/data_range"
)

// labeled places one tick at each caller-supplied label within range.
// Categories cannot be subdivided, so count suggestions are no-ops and there
// are no minor ticks.
type labeled struct {
	opts   Options
	labels []Label
}

func (l *labeled) Kind() AxisKind {
	return Labeled
}

func (l *labeled) Ticks(r datarange.NumericRange, _ int) []LabeledTick {
	var ret []LabeledTick
	for _, label := range l.labels {
		if !r.Contains(label.Position) {
			continue
		}
		ret = append(ret, LabeledTick{
			Tick: Tick{
				Value:  label.Position,
				Length: l.opts.MajorLength,
				Index:  len(ret),
			},
			Label: label.Text,
		})
	}
	return ret
}

func (l *labeled) SuggestIncreased(count int) int {
	return count
}

func (l *labeled) SuggestDecreased(count int) int {
	return count
}

func (l *labeled) DefaultCount() int {
	return len(l.labels)
}

func (l *labeled) Minor(datarange.NumericRange, int) []Tick {
	return nil
}
