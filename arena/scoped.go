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

import "github.com/graphfabric/graphfabric/place"

// NodeSpecificStorage allocates one T per node, identically aliased: every
// node's copy lives at the same offset of its own Main arena, so a single
// NewNodeSpecificStorage call mints the whole fabric-wide set and At(n)
// returns node n's slot.
type NodeSpecificStorage[T any] struct {
	dir   *Directory
	slabs []*Slab[T] // one per node
}

// NewNodeSpecificStorage allocates one slot of T on every node's Main arena.
func NewNodeSpecificStorage[T any](dir *Directory) (*NodeSpecificStorage[T], error) {
	s := &NodeSpecificStorage[T]{dir: dir, slabs: make([]*Slab[T], dir.dims.Nodes)}
	for n := range s.slabs {
		slab := NewSlab[T](dir.Host(n))
		if _, err := slab.Allocate(); err != nil {
			return nil, err
		}
		s.slabs[n] = slab
	}
	return s, nil
}

// At returns a GlobalPtr to node n's slot.
func (s *NodeSpecificStorage[T]) At(n int) place.GlobalPtr[T] {
	return s.slabs[n].Ptr(0)
}

// PodSpecificStorage allocates one T per pod, analogous to NodeSpecificStorage.
type PodSpecificStorage[T any] struct {
	dir   *Directory
	slabs [][]*Slab[T] // [node][pod]
}

// NewPodSpecificStorage allocates one slot of T on every pod's L2SP arena.
func NewPodSpecificStorage[T any](dir *Directory) (*PodSpecificStorage[T], error) {
	s := &PodSpecificStorage[T]{dir: dir, slabs: make([][]*Slab[T], dir.dims.Nodes)}
	for n := range s.slabs {
		s.slabs[n] = make([]*Slab[T], dir.dims.PodsPerNode)
		for p := range s.slabs[n] {
			slab := NewSlab[T](dir.Pod(n, p))
			if _, err := slab.Allocate(); err != nil {
				return nil, err
			}
			s.slabs[n][p] = slab
		}
	}
	return s, nil
}

// At returns a GlobalPtr to pod p of node n's slot.
func (s *PodSpecificStorage[T]) At(n, p int) place.GlobalPtr[T] {
	return s.slabs[n][p].Ptr(0)
}

// ThreadLocalStorage allocates one T per hardware thread. Initialisation
// allocates per-pod blocks sized threadsPerPod*sizeof(T) in L2SP, per §4.3;
// here that's modelled as one slab per pod holding ThreadsPerCore*CoresPerPod
// elements, indexed by (core, hwThread).
type ThreadLocalStorage[T any] struct {
	dir   *Directory
	slabs [][]*Slab[T] // [node][pod], each with CoresPerPod*ThreadsPerCore elements
}

// NewThreadLocalStorage allocates one slot per hardware thread of every pod.
func NewThreadLocalStorage[T any](dir *Directory) (*ThreadLocalStorage[T], error) {
	s := &ThreadLocalStorage[T]{dir: dir, slabs: make([][]*Slab[T], dir.dims.Nodes)}
	slotsPerPod := dir.dims.CoresPerPod * dir.threadDims.ThreadsPerCore
	for n := range s.slabs {
		s.slabs[n] = make([]*Slab[T], dir.dims.PodsPerNode)
		for p := range s.slabs[n] {
			slab := NewSlab[T](dir.Pod(n, p))
			if _, err := slab.AllocateN(slotsPerPod); err != nil {
				return nil, err
			}
			s.slabs[n][p] = slab
		}
	}
	return s, nil
}

// At returns a GlobalPtr to hardware thread hw of core c of pod p of node n.
func (s *ThreadLocalStorage[T]) At(n, p, c, hw int) place.GlobalPtr[T] {
	slotsPerCore := s.dir.threadDims.ThreadsPerCore
	return s.slabs[n][p].Ptr(c*slotsPerCore + hw)
}
