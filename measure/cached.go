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

package measure

import (
	"sync"

	"github.com/hashicorp/golang-lru/simplelru"
)

type cacheKey struct {
	font Font
	text string
}

// Cached wraps a Measurer with an LRU cache of the most recently measured
// strings.
type Cached struct {
	inner Measurer

	mu sync.Mutex
	// An LRU cache holding the most recently measured strings.
	lru *simplelru.LRU
}

// NewCached returns a new Cached measurer with the specified capacity.
func NewCached(inner Measurer, capacity int) (*Cached, error) {
	lru, err := simplelru.NewLRU(capacity, nil /* no onEvict policy */)
	if err != nil {
		return nil, err
	}
	return &Cached{
		inner: inner,
		lru:   lru,
	}, nil
}

// Measure implements Measurer.
func (c *Cached) Measure(f Font, text string) Size {
	key := cacheKey{f, text}
	c.mu.Lock()
	sizeIf, ok := c.lru.Get(key)
	c.mu.Unlock()
	if ok {
		if size, ok := sizeIf.(Size); ok {
			return size
		}
	}
	size := c.inner.Measure(f, text)
	c.mu.Lock()
	c.lru.Add(key, size)
	c.mu.Unlock()
	return size
}

// Len returns the number of cached measurements.
func (c *Cached) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
