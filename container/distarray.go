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
	"github.com/graphfabric/graphfabric/arena"
	"github.com/graphfabric/graphfabric/place"
	"github.com/graphfabric/graphfabric/status"
)

// DistArray is logically a length-N sequence of T, physically stored as one
// bucket per supplied place, split as evenly as possible (§4.3). Get(i)
// returns the GlobalPtr of element i, located in bucket i/bucketSize at
// offset i%bucketSize; dereferencing it crosses the fabric the same way any
// other GlobalPtr does if the caller isn't on the owning place.
type DistArray[T any] struct {
	buckets    []*arena.Slab[T]
	places     []place.Place
	bucketSize int
	n          int
}

// Initialize splits n elements across places as evenly as possible,
// allocating one slab per place from dir. Returns status.ErrAlreadyInit if
// called on an already-initialized array, status.ErrBadAlloc if any bucket's
// arena is exhausted.
func (d *DistArray[T]) Initialize(dir *arena.Directory, places []place.Place, tier arena.Tier, n int) error {
	if d.buckets != nil {
		return status.ErrAlreadyInit
	}
	if len(places) == 0 {
		return status.ErrBadAlloc
	}
	bucketSize := (n + len(places) - 1) / len(places)
	if bucketSize == 0 {
		bucketSize = 1
	}

	buckets := make([]*arena.Slab[T], len(places))
	remaining := n
	for i, p := range places {
		want := bucketSize
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
		buckets[i] = slab
		remaining -= want
	}

	d.buckets = buckets
	d.places = append([]place.Place(nil), places...)
	d.bucketSize = bucketSize
	d.n = n
	return nil
}

// Len returns the number of logical elements.
func (d *DistArray[T]) Len() int { return d.n }

// Get returns a GlobalPtr to logical element i.
func (d *DistArray[T]) Get(i int) place.GlobalPtr[T] {
	b := i / d.bucketSize
	off := i % d.bucketSize
	return d.buckets[b].Ptr(off)
}

// Set stores v at logical index i.
func (d *DistArray[T]) Set(i int, v T) {
	d.Get(i).Store(v)
}

// Deinitialize releases all backing slabs. A no-op on a zero-value or
// already-deinitialized array, per §7.
func (d *DistArray[T]) Deinitialize() {
	d.buckets = nil
	d.places = nil
	d.bucketSize = 0
	d.n = 0
}

// Slice materializes the whole array into an ordinary Go slice, in index
// order - used for the sort/verification steps callers run over the result
// of PerThreadVector.Assign (S6).
func (d *DistArray[T]) Slice() []T {
	out := make([]T, d.n)
	for i := 0; i < d.n; i++ {
		out[i] = d.Get(i).Deref()
	}
	return out
}
