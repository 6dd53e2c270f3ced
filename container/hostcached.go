// Copyright 2024 The Tessera authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package container

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/graphfabric/graphfabric/arena"
	"github.com/graphfabric/graphfabric/place"
	"github.com/graphfabric/graphfabric/status"
)

// HostCachedArray is a read-replicated distributed array, per §4.3: element
// i is owned by node i/segmentLength, but every node holds a cached handle
// table to every other node's segment so repeated remote reads of the same
// segment are cheap. It is NOT write-coherent; callers must not mutate
// through a cached handle.
//
// The cache itself is grounded on dedupe.go's inMemoryDedupe: an LRU in
// front of a delegate lookup, here caching (node) -> segment handle instead
// of (hash) -> index.
type HostCachedArray[T any] struct {
	segments      []*arena.Slab[T]
	segmentLength int
	n             int

	cache *lru.Cache[int, *arena.Slab[T]]
}

// Initialize splits n elements into one segment per place in dir (one slab
// per node's arena at tier), and sizes the local cache to hold cacheSize
// segment handles (0 means "cache every segment", a sane default when the
// node count is small).
func (h *HostCachedArray[T]) Initialize(dir *arena.Directory, places []place.Place, tier arena.Tier, n, cacheSize int) error {
	if h.segments != nil {
		return status.ErrAlreadyInit
	}
	if len(places) == 0 {
		return status.ErrBadAlloc
	}
	segLen := (n + len(places) - 1) / len(places)
	if segLen == 0 {
		segLen = 1
	}
	if cacheSize <= 0 {
		cacheSize = len(places)
	}

	segs := make([]*arena.Slab[T], len(places))
	remaining := n
	for i, p := range places {
		want := segLen
		if want > remaining {
			want = remaining
		}
		if want < 0 {
			want = 0
		}
		slab := arena.NewSlab[T](dir.ArenaAt(p, tier))
		if want > 0 {
			if _, err := slab.AllocateN(want); err != nil {
				return err
			}
		}
		segs[i] = slab
		remaining -= want
	}

	c, err := lru.New[int, *arena.Slab[T]](cacheSize)
	if err != nil {
		return err
	}
	h.segments = segs
	h.segmentLength = segLen
	h.n = n
	h.cache = c
	return nil
}

// Len returns the number of logical elements.
func (h *HostCachedArray[T]) Len() int { return h.n }

// Get returns a GlobalPtr to logical element i, resolving its owning
// segment through the local handle cache first.
func (h *HostCachedArray[T]) Get(i int) place.GlobalPtr[T] {
	seg := i / h.segmentLength
	off := i % h.segmentLength

	slab, ok := h.cache.Get(seg)
	if !ok {
		slab = h.segments[seg]
		h.cache.Add(seg, slab)
	}
	return slab.Ptr(off)
}

// Deinitialize releases all backing slabs and drops the cache.
func (h *HostCachedArray[T]) Deinitialize() {
	h.segments = nil
	h.segmentLength = 0
	h.n = 0
	if h.cache != nil {
		h.cache.Purge()
	}
	h.cache = nil
}
