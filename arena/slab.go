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

package arena

import (
	"sync"

	"github.com/graphfabric/graphfabric/place"
)

// Slab is a typed view over an Arena: it allocates elements of type T,
// charging the arena's granule budget, and implements place.Cell[T] so that
// GlobalPtrs can be minted directly against it.
//
// allocate<T>() in the source returns an alias that, at any place, resolves
// to that place's slot; here, Allocate returns the offset of a freshly
// reserved element, and GlobalPtr wraps (place, offset, this slab).
type Slab[T any] struct {
	mu sync.Mutex

	arena    *Arena
	granules int

	storage []T
	free    []int
}

// NewSlab creates a slab of T backed by arena, charging arena.Reserve for
// every element allocated through it.
func NewSlab[T any](arena *Arena) *Slab[T] {
	return &Slab[T]{arena: arena, granules: granulesFor[T]()}
}

// Allocate reserves one element of T, returning its offset within the slab,
// or status.ErrBadAlloc if the backing arena is exhausted.
func (s *Slab[T]) Allocate() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.free); n > 0 {
		if err := s.arena.Reserve(s.granules); err != nil {
			return 0, err
		}
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		var zero T
		s.storage[idx] = zero
		return idx, nil
	}

	if err := s.arena.Reserve(s.granules); err != nil {
		return 0, err
	}
	s.storage = append(s.storage, *new(T))
	return len(s.storage) - 1, nil
}

// AllocateN reserves n contiguous elements in one call, used by containers
// that need a run of elements (e.g. a per-node vertex array), returning the
// offset of the first element.
func (s *Slab[T]) AllocateN(n int) (int, error) {
	if n <= 0 {
		return s.Allocate()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.arena.Reserve(s.granules * n); err != nil {
		return 0, err
	}
	start := len(s.storage)
	s.storage = append(s.storage, make([]T, n)...)
	return start, nil
}

// Deallocate gives back the element at offset, per §1's policy that
// deinitialize/deallocate are the only ways memory is ever reclaimed.
func (s *Slab[T]) Deallocate(offset int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arena.Release(s.granules)
	s.free = append(s.free, offset)
}

// Len returns the number of elements ever allocated (including freed ones
// still occupying storage); used by containers that need a dense index
// space, e.g. LocalCSR's topologyToToken array.
func (s *Slab[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.storage)
}

// Load implements place.Cell[T].
func (s *Slab[T]) Load(offset int) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage[offset]
}

// Store implements place.Cell[T].
func (s *Slab[T]) Store(offset int, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage[offset] = v
}

// Ptr mints a GlobalPtr referring to offset within this slab, resident at
// the slab's arena's place.
func (s *Slab[T]) Ptr(offset int) place.GlobalPtr[T] {
	return place.NewGlobalPtr[T](s.arena.Place(), offset, s)
}

// Snapshot returns a copy of the live backing slice, for bulk iteration
// (e.g. building offsets arrays). Callers must not rely on indices in the
// returned slice remaining valid after further Allocate/Deallocate calls.
func (s *Slab[T]) Snapshot() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.storage))
	copy(out, s.storage)
	return out
}
