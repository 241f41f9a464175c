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

package chart

import (
	"fmt"
	"sync"
)

// IDAllocator hands out identifiers unique within the allocator, such as
// "chart-0", "chart-1", "plot-0".  Each kind is numbered independently.  It
// is safe for concurrent use.
type IDAllocator struct {
	mu   sync.Mutex
	next map[string]int
}

// NewIDAllocator returns a new IDAllocator.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{
		next: map[string]int{},
	}
}

// Next returns the next identifier of the provided kind.
func (ida *IDAllocator) Next(kind string) string {
	ida.mu.Lock()
	defer ida.mu.Unlock()
	n := ida.next[kind]
	ida.next[kind] = n + 1
	return fmt.Sprintf("%s-%d", kind, n)
}
