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

// Package arena implements the locality-scoped slab heaps that back every
// distributed container in package container: one slab allocator per
// (place, tier) serving fixed-granule requests, tagged with the tier it
// belongs to (L1SP, L2SP, Main).
package arena

import (
	"sync"
	"unsafe"

	"github.com/graphfabric/graphfabric/place"
	"github.com/graphfabric/graphfabric/status"
)

// Tier names a memory region's class, per §3.
type Tier int

const (
	// L1SP is per-core scratchpad.
	L1SP Tier = iota
	// L2SP is per-pod scratchpad.
	L2SP
	// Main is per-node DRAM.
	Main
)

func (t Tier) String() string {
	switch t {
	case L1SP:
		return "L1SP"
	case L2SP:
		return "L2SP"
	case Main:
		return "Main"
	default:
		return "unknown-tier"
	}
}

// Granule is the slab allocator's fixed allocation unit, in bytes, per §3.
const Granule = 128

// Default capacities, per §4.2: 2^25 for a per-node arena, 2^10 for a
// per-pod arena. Per-core (L1SP) arenas use the per-pod figure as a
// conservative default; callers needing a different size use New directly.
const (
	DefaultHostBytes = 1 << 25
	DefaultPodBytes  = 1 << 10
)

// Arena is a contiguous byte region with a fixed tier tag and a slab
// allocator serving fixed-granule requests. It tracks only capacity in this
// implementation - the typed storage for allocated elements lives in the
// Slab that reserves granules from it - but it is the single source of
// truth for "is this arena exhausted".
//
// A GlobalPtr created from an arena remains valid until the matching
// deinitialize of the owner, or an explicit deallocate of that element -
// Arena itself never reclaims capacity except through Release.
type Arena struct {
	mu sync.Mutex

	place    place.Place
	tier     Tier
	capacity int // in granules
	used     int // in granules
}

// New creates an arena of sizeBytes at the given place and tier. sizeBytes
// is rounded down to a whole number of granules.
func New(at place.Place, tier Tier, sizeBytes int) *Arena {
	return &Arena{
		place:    at,
		tier:     tier,
		capacity: sizeBytes / Granule,
	}
}

// Place returns the place this arena is resident at.
func (a *Arena) Place() place.Place { return a.place }

// Tier returns this arena's tier tag.
func (a *Arena) Tier() Tier { return a.tier }

// CapacityGranules returns the arena's total size in granules.
func (a *Arena) CapacityGranules() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.capacity
}

// UsedGranules returns the number of granules currently reserved.
func (a *Arena) UsedGranules() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.used
}

// Reserve charges n granules against the arena's capacity, failing with
// status.ErrBadAlloc if that would exceed it.
func (a *Arena) Reserve(n int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.used+n > a.capacity {
		return status.ErrBadAlloc
	}
	a.used += n
	return nil
}

// Release gives back n granules previously reserved. The source has no
// arena GC/compaction (§1 non-goals); this only adjusts the capacity
// accounting so future Reserves in the same arena can reuse the space.
func (a *Arena) Release(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.used -= n
	if a.used < 0 {
		a.used = 0
	}
}

// granulesFor returns how many granules an element of type T consumes,
// rounding up, with a minimum of one granule per element.
func granulesFor[T any]() int {
	var zero T
	size := int(unsafe.Sizeof(zero))
	g := (size + Granule - 1) / Granule
	if g < 1 {
		g = 1
	}
	return g
}
